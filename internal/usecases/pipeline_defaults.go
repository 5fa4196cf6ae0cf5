package usecases

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/cleitonmarx/symbiont/depend"
	"go.yaml.in/yaml/v3"
)

//go:embed pipeline_defaults.yaml
var pipelineDefaultsYAML []byte

// PipelineDefaults holds the tunable defaults of the layer pipeline. They are
// loaded from the embedded defaults file, optionally overridden by an external
// YAML file, and overridable per request.
type PipelineDefaults struct {
	Clustering struct {
		MinClusterSize int `yaml:"min_cluster_size"`
		MinSamples     int `yaml:"min_samples"`
	} `yaml:"clustering"`
	Search struct {
		MinSimilarity      float64 `yaml:"min_similarity"`
		Limit              int     `yaml:"limit"`
		EmbeddingCacheSize int     `yaml:"embedding_cache_size"`
	} `yaml:"search"`
	Neighbors struct {
		Count               int `yaml:"count"`
		PrecomputeThreshold int `yaml:"precompute_threshold"`
	} `yaml:"neighbors"`
}

// LoadPipelineDefaults parses the embedded defaults, then merges the YAML
// file at path over them when path is non-empty.
func LoadPipelineDefaults(path string) (PipelineDefaults, error) {
	var defaults PipelineDefaults
	if err := yaml.Unmarshal(pipelineDefaultsYAML, &defaults); err != nil {
		return PipelineDefaults{}, fmt.Errorf("failed to parse embedded pipeline defaults: %w", err)
	}

	if path == "" {
		return defaults, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return PipelineDefaults{}, fmt.Errorf("failed to read pipeline defaults file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &defaults); err != nil {
		return PipelineDefaults{}, fmt.Errorf("failed to parse pipeline defaults file %s: %w", path, err)
	}
	return defaults, nil
}

// InitPipelineDefaults loads the pipeline defaults and registers them in the
// dependency container.
type InitPipelineDefaults struct {
	FilePath string `config:"PIPELINE_DEFAULTS_FILE" default:""`
}

// Initialize loads and registers the PipelineDefaults.
func (ipd InitPipelineDefaults) Initialize(ctx context.Context) (context.Context, error) {
	defaults, err := LoadPipelineDefaults(ipd.FilePath)
	if err != nil {
		return ctx, err
	}
	depend.Register(defaults)
	return ctx, nil
}
