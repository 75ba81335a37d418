// Copyright 2025 The Historia Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxRetries bounds how many times a whole run is attempted
	// after a systemic failure.
	DefaultMaxRetries = 3

	// DefaultFetchWorkers bounds concurrent identifier resolution in the
	// parallel runner.
	DefaultFetchWorkers = 20

	// Index-stage batch bounds. Batches keep transaction size and
	// embedding-backend fan-out bounded.
	DefaultIndexBatchSize = 500
	MinIndexBatchSize     = 100
	MaxIndexBatchSize     = 1000
)

// ComponentConfig selects a registered component by name and carries its
// opaque parameters.
type ComponentConfig struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params"`
}

// Config is the run configuration loaded before a pipeline run.
type Config struct {
	DataSource       string         `yaml:"data_source"`
	DataSourceParams map[string]any `yaml:"data_source_params"`

	Snipper  ComponentConfig `yaml:"snipper"`
	Embedder ComponentConfig `yaml:"embedder"`

	IndexName string `yaml:"index_name"`

	// DocumentDataModel selects which persisted document type the run
	// targets. Optional; when set it must name a registered model. Only
	// the default document model is currently registered.
	DocumentDataModel string `yaml:"document_data_model"`

	MaxRetries     int `yaml:"max_retries"`
	FetchWorkers   int `yaml:"fetch_workers"`
	IndexBatchSize int `yaml:"index_batch_size"`
}

// LoadConfig reads and validates a YAML run configuration.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// ApplyDefaults fills unset fields with their defaults and clamps the
// index batch size into its allowed range.
func (c *Config) ApplyDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.FetchWorkers <= 0 {
		c.FetchWorkers = DefaultFetchWorkers
	}
	if c.IndexBatchSize <= 0 {
		c.IndexBatchSize = DefaultIndexBatchSize
	}
	if c.IndexBatchSize < MinIndexBatchSize {
		c.IndexBatchSize = MinIndexBatchSize
	}
	if c.IndexBatchSize > MaxIndexBatchSize {
		c.IndexBatchSize = MaxIndexBatchSize
	}
	if c.Snipper.Type == "" {
		c.Snipper.Type = SnipperSimple
	}
	if c.Embedder.Type == "" {
		c.Embedder.Type = EmbedderDummy
	}
}

// Validate reports hard configuration errors. Registry membership of the
// component names is checked separately when the components are built.
func (c *Config) Validate() error {
	if c.DataSource == "" {
		return fmt.Errorf("%w: data_source is required", ErrInvalidConfig)
	}
	if c.IndexName == "" {
		return ErrMissingIndexName
	}
	if c.Snipper.Type == "" {
		return fmt.Errorf("%w: snipper.type is required", ErrInvalidConfig)
	}
	if c.Embedder.Type == "" {
		return fmt.Errorf("%w: embedder.type is required", ErrInvalidConfig)
	}
	if c.DocumentDataModel != "" && !documentModels[c.DocumentDataModel] {
		return fmt.Errorf("%w: %q", ErrUnknownDocumentModel, c.DocumentDataModel)
	}
	return nil
}
