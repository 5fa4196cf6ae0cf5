package domain

// Default clustering parameters.
const (
	DefaultMinClusterSize = 10
	DefaultMinSamples     = 5
)

// ClusteringConfig parameterizes density clustering for one layer.
type ClusteringConfig struct {
	MinClusterSize int `json:"min_cluster_size"`
	MinSamples     int `json:"min_samples"`
}

// WithDefaults fills unset clustering parameters with their contract defaults.
func (c ClusteringConfig) WithDefaults() ClusteringConfig {
	if c.MinClusterSize <= 0 {
		c.MinClusterSize = DefaultMinClusterSize
	}
	if c.MinSamples <= 0 {
		c.MinSamples = DefaultMinSamples
	}
	return c
}

// ClusterStats summarizes one clustering run. Derived, never hand-edited.
type ClusterStats struct {
	ClusterCount    int         `json:"cluster_count"`
	NoiseCount      int         `json:"noise_count"`
	NoisePercentage float64     `json:"noise_percentage"`
	ClusterSizes    map[int]int `json:"cluster_sizes"`
}

// ComputeClusterStats derives statistics from cluster labels in a single pass.
func ComputeClusterStats(labels []int) ClusterStats {
	stats := ClusterStats{ClusterSizes: map[int]int{}}
	for _, label := range labels {
		if label == NoiseClusterID {
			stats.NoiseCount++
			continue
		}
		stats.ClusterSizes[label]++
	}
	stats.ClusterCount = len(stats.ClusterSizes)
	if len(labels) > 0 {
		stats.NoisePercentage = float64(stats.NoiseCount) / float64(len(labels)) * 100
	}
	return stats
}
