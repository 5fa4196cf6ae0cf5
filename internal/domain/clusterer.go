package domain

import (
	"math"
	"sort"
)

// DensityClusterer assigns density-based cluster labels to low-dimensional
// coordinates. The neighborhood radius is estimated from the data itself
// (the median distance to the MinSamples-th nearest neighbor), so the only
// tunables are the minimum cluster size and the core-point threshold.
type DensityClusterer struct {
	Config ClusteringConfig
}

// NewDensityClusterer creates a clusterer, filling default parameters.
func NewDensityClusterer(cfg ClusteringConfig) DensityClusterer {
	return DensityClusterer{Config: cfg.WithDefaults()}
}

// Cluster labels every coordinate row and derives summary statistics.
// Labels are dense non-negative integers; NoiseClusterID marks noise.
func (dc DensityClusterer) Cluster(coords [][]float64) ([]int, ClusterStats) {
	n := len(coords)
	labels := make([]int, n)
	if n == 0 {
		return labels, ComputeClusterStats(labels)
	}

	cfg := dc.Config.WithDefaults()
	if n <= cfg.MinSamples {
		for i := range labels {
			labels[i] = NoiseClusterID
		}
		return labels, ComputeClusterStats(labels)
	}

	eps := estimateEps(coords, cfg.MinSamples)
	labels = scan(coords, eps, cfg.MinSamples)
	dissolveSmallClusters(labels, cfg.MinClusterSize)

	return labels, ComputeClusterStats(labels)
}

// estimateEps returns the median distance to the k-th nearest neighbor,
// the knee heuristic of the k-distance curve.
func estimateEps(coords [][]float64, k int) float64 {
	n := len(coords)
	kDistances := make([]float64, 0, n)
	dists := make([]float64, 0, n-1)
	for i := range coords {
		dists = dists[:0]
		for j := range coords {
			if i == j {
				continue
			}
			dists = append(dists, euclidean(coords[i], coords[j]))
		}
		sort.Float64s(dists)
		idx := k - 1
		if idx >= len(dists) {
			idx = len(dists) - 1
		}
		kDistances = append(kDistances, dists[idx])
	}
	sort.Float64s(kDistances)
	return kDistances[len(kDistances)/2]
}

const unvisited = -2

// scan is a direct DBSCAN sweep: core points (at least minSamples neighbors
// within eps, counting themselves) seed clusters that expand breadth-first.
func scan(coords [][]float64, eps float64, minSamples int) []int {
	n := len(coords)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}

	nextCluster := 0
	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}
		neighbors := regionQuery(coords, i, eps)
		if len(neighbors) < minSamples {
			labels[i] = NoiseClusterID
			continue
		}

		cluster := nextCluster
		nextCluster++
		labels[i] = cluster

		queue := neighbors
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]
			if labels[j] == NoiseClusterID {
				labels[j] = cluster // border point reached from a core point
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster
			jNeighbors := regionQuery(coords, j, eps)
			if len(jNeighbors) >= minSamples {
				queue = append(queue, jNeighbors...)
			}
		}
	}
	return labels
}

// regionQuery returns the indices within eps of point i, including i itself.
func regionQuery(coords [][]float64, i int, eps float64) []int {
	var neighbors []int
	for j := range coords {
		if euclidean(coords[i], coords[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// dissolveSmallClusters reassigns clusters below the minimum size to noise
// and renumbers the survivors densely from zero.
func dissolveSmallClusters(labels []int, minClusterSize int) {
	sizes := map[int]int{}
	for _, label := range labels {
		if label != NoiseClusterID {
			sizes[label]++
		}
	}

	survivors := make([]int, 0, len(sizes))
	for label, size := range sizes {
		if size >= minClusterSize {
			survivors = append(survivors, label)
		}
	}
	sort.Ints(survivors)

	remap := make(map[int]int, len(survivors))
	for dense, label := range survivors {
		remap[label] = dense
	}

	for i, label := range labels {
		if label == NoiseClusterID {
			continue
		}
		if dense, kept := remap[label]; kept {
			labels[i] = dense
		} else {
			labels[i] = NoiseClusterID
		}
	}
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
