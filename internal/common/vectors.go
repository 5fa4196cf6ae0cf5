package common

import "math"

// CosineSimilarity calculates the cosine similarity between two vectors
// and returns the score along with a boolean indicating if the calculation was successful.
func CosineSimilarity(a, b []float64) (float64, bool) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, false
	}

	var dotProduct float64
	var normA float64
	var normB float64

	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, false
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

// CosineDistance calculates 1 minus the cosine similarity between two vectors.
// When either vector has zero norm (or the shapes mismatch) the distance is
// defined as 1.
func CosineDistance(a, b []float64) float64 {
	similarity, ok := CosineSimilarity(a, b)
	if !ok {
		return 1
	}
	return 1 - similarity
}

// ToFloat32 narrows a float64 vector to float32.
func ToFloat32(input []float64) []float32 {
	f32 := make([]float32, len(input))
	for i, v := range input {
		f32[i] = float32(v)
	}
	return f32
}

// ToFloat64 widens a float32 vector to float64.
func ToFloat64(input []float32) []float64 {
	f64 := make([]float64, len(input))
	for i, v := range input {
		f64[i] = float64(v)
	}
	return f64
}
