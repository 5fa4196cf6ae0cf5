package common

import "sort"

// DefaultNeighborCount is the default k for exact nearest-neighbor lists.
const DefaultNeighborCount = 10

// Neighbor is one entry of an exact nearest-neighbor list.
type Neighbor struct {
	Index    int
	Distance float64
}

// NearestNeighbors computes the exact k nearest neighbors of every vector by
// brute force cosine distance. It is quadratic and intended for point sets
// under roughly ten thousand vectors. k is capped at len(vectors)-1; a
// non-positive k selects DefaultNeighborCount.
func NearestNeighbors(vectors [][]float64, k int) [][]Neighbor {
	n := len(vectors)
	if k <= 0 {
		k = DefaultNeighborCount
	}
	if k > n-1 {
		k = n - 1
	}

	result := make([][]Neighbor, n)
	if k <= 0 {
		for i := range result {
			result[i] = []Neighbor{}
		}
		return result
	}

	for i := range vectors {
		candidates := make([]Neighbor, 0, n-1)
		for j := range vectors {
			if i == j {
				continue
			}
			candidates = append(candidates, Neighbor{
				Index:    j,
				Distance: CosineDistance(vectors[i], vectors[j]),
			})
		}
		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].Distance < candidates[b].Distance
		})
		result[i] = candidates[:k]
	}
	return result
}
