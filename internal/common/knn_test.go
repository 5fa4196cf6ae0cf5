package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNearestNeighbors(t *testing.T) {
	tests := map[string]struct {
		vectors       [][]float64
		k             int
		wantPerVector int
	}{
		"k-smaller-than-set": {
			vectors: [][]float64{
				{1, 0}, {0.9, 0.1}, {0, 1}, {-1, 0},
			},
			k:             2,
			wantPerVector: 2,
		},
		"k-capped-at-set-size-minus-one": {
			vectors: [][]float64{
				{1, 0}, {0, 1}, {1, 1},
			},
			k:             10,
			wantPerVector: 2,
		},
		"non-positive-k-uses-default": {
			vectors: [][]float64{
				{1, 0}, {0.9, 0.1}, {0, 1},
			},
			k:             0,
			wantPerVector: 2,
		},
		"single-vector-has-no-neighbors": {
			vectors:       [][]float64{{1, 2, 3}},
			k:             5,
			wantPerVector: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result := NearestNeighbors(tt.vectors, tt.k)

			assert.Len(t, result, len(tt.vectors))
			for i, neighbors := range result {
				assert.Len(t, neighbors, tt.wantPerVector)
				for _, nb := range neighbors {
					assert.NotEqual(t, i, nb.Index, "a vector is never its own neighbor")
				}
			}
		})
	}
}

func TestNearestNeighbors_Ordering(t *testing.T) {
	vectors := [][]float64{
		{1, 0},     // 0
		{0.9, 0.1}, // 1: closest to 0
		{0, 1},     // 2: orthogonal to 0
		{-1, 0},    // 3: opposite of 0
	}

	result := NearestNeighbors(vectors, 3)

	neighbors := result[0]
	assert.Equal(t, 1, neighbors[0].Index, "nearest neighbor first")
	assert.Equal(t, 2, neighbors[1].Index)
	assert.Equal(t, 3, neighbors[2].Index, "opposite vector last")

	for i := 1; i < len(neighbors); i++ {
		assert.GreaterOrEqual(t, neighbors[i].Distance, neighbors[i-1].Distance,
			"distances must be non-decreasing")
	}
}
