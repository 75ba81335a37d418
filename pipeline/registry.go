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

	"github.com/jagath-jaikumar/historia/ai"
	"github.com/jagath-jaikumar/historia/ai/openai"
	"github.com/jagath-jaikumar/historia/datasource"
	"github.com/jagath-jaikumar/historia/datasource/wikipedia"
	"github.com/jagath-jaikumar/historia/snipper"
	"github.com/jagath-jaikumar/historia/storage"
)

// Registered component names. The factory tables below are deliberately
// explicit so an unknown name fails fast at configuration time.
const (
	DataSourceWikipedia = "wikipedia"

	SnipperSimple   = "simple"
	SnipperSentence = "sentence"

	EmbedderDummy  = "dummy"
	EmbedderOpenAI = "openai"

	DocumentModelDefault = "document"
)

var documentModels = map[string]bool{
	DocumentModelDefault: true,
}

// Deps carries the external collaborators a run needs.
type Deps struct {
	Documents storage.DocumentRepository
	Indexes   storage.IndexRepository
}

var dataSourceFactories = map[string]func(params map[string]any, deps Deps) (datasource.DataSource, error){
	DataSourceWikipedia: func(params map[string]any, deps Deps) (datasource.DataSource, error) {
		return wikipedia.NewSource(params, deps.Documents, deps.Indexes)
	},
}

var snipperFactories = map[string]func(params map[string]any) (snipper.Snipper, error){
	SnipperSimple: func(params map[string]any) (snipper.Snipper, error) {
		length := intOrDefault(params, "snippet_length", snipper.DefaultSnippetLength)
		if length <= 0 {
			return nil, fmt.Errorf("%w: snippet_length must be positive", ErrInvalidConfig)
		}
		return snipper.NewSimpleSnipper(length), nil
	},
	SnipperSentence: func(params map[string]any) (snipper.Snipper, error) {
		maxTokens := intOrDefault(params, "max_tokens", snipper.DefaultMaxTokens)
		if maxTokens <= 0 {
			return nil, fmt.Errorf("%w: max_tokens must be positive", ErrInvalidConfig)
		}
		minTokens := intOrDefault(params, "min_tokens", 0)
		return snipper.NewSentenceSnipper(maxTokens, minTokens), nil
	},
}

var embedderFactories = map[string]func(params map[string]any) (ai.Embedder, error){
	EmbedderDummy: func(params map[string]any) (ai.Embedder, error) {
		return ai.NewDummyEmbedder(), nil
	},
	EmbedderOpenAI: func(params map[string]any) (ai.Embedder, error) {
		config := ai.DefaultConfig()
		if host, ok := params["host"].(string); ok && host != "" {
			config.EmbeddingHost = host
		}
		if model, ok := params["model"].(string); ok && model != "" {
			config.EmbeddingModel = model
		}
		return openai.NewEmbedder(config)
	},
}

// BuildDataSource resolves the configured data source name to a connector.
func BuildDataSource(config *Config, deps Deps) (datasource.DataSource, error) {
	factory, ok := dataSourceFactories[config.DataSource]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataSource, config.DataSource)
	}
	return factory(config.DataSourceParams, deps)
}

// BuildSnipper resolves the configured snipper type.
func BuildSnipper(config ComponentConfig) (snipper.Snipper, error) {
	factory, ok := snipperFactories[config.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSnipper, config.Type)
	}
	return factory(config.Params)
}

// BuildEmbedder resolves the configured embedder type.
func BuildEmbedder(config ComponentConfig) (ai.Embedder, error) {
	factory, ok := embedderFactories[config.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEmbedder, config.Type)
	}
	return factory(config.Params)
}

func intOrDefault(params map[string]any, key string, fallback int) int {
	raw, ok := params[key]
	if !ok {
		return fallback
	}
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}
