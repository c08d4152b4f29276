package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StoreConfig configures the vector store and chunking.
type StoreConfig struct {
	Path         string `yaml:"path"`
	Collection   string `yaml:"collection"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	SearchLimit  int    `yaml:"search_limit"`
}

// ModelConfig configures the embedding and generation providers.
type ModelConfig struct {
	Host              string  `yaml:"host"`
	EmbeddingModel    string  `yaml:"embedding_model"`
	GenerationModel   string  `yaml:"generation_model"`
	Dimension         int     `yaml:"dimension"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// IngestConfig configures the ingestion pipeline.
type IngestConfig struct {
	DownloadTimeoutSecs int `yaml:"download_timeout_secs"`
	PoolSize            int `yaml:"pool_size"`
}

// CompareConfig configures version comparison thresholds.
type CompareConfig struct {
	MatchThreshold     float32 `yaml:"match_threshold"`
	UnchangedThreshold float32 `yaml:"unchanged_threshold"`
}

// Config is the root application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Models  ModelConfig   `yaml:"models"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Compare CompareConfig `yaml:"compare"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path:         "revisor.db",
			Collection:   "pdf_documents",
			ChunkSize:    1000,
			ChunkOverlap: 200,
			SearchLimit:  10,
		},
		Models: ModelConfig{
			Host:            "http://localhost:11434/v1",
			EmbeddingModel:  "text-embedding-ada-002",
			GenerationModel: "gpt-4",
			Dimension:       1536,
		},
		Ingest: IngestConfig{
			DownloadTimeoutSecs: 60,
		},
		Compare: CompareConfig{
			MatchThreshold:     0.7,
			UnchangedThreshold: 0.95,
		},
	}
}

// Load reads a config file. A missing file returns the defaults;
// fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Unmarshalling into the populated defaults leaves absent fields
	// untouched, while explicit values survive even when zero.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
