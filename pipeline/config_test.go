package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
data_source: wikipedia
data_source_params:
  categories:
    - Physics
  depth: 2
snipper:
  type: simple
  params:
    snippet_length: 50
embedder:
  type: dummy
index_name: physics_idx
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "wikipedia", config.DataSource)
	assert.Equal(t, "physics_idx", config.IndexName)
	assert.Equal(t, "simple", config.Snipper.Type)
	assert.Equal(t, 50, config.Snipper.Params["snippet_length"])
	assert.Equal(t, "dummy", config.Embedder.Type)

	// Defaults fill in what the file omits.
	assert.Equal(t, DefaultMaxRetries, config.MaxRetries)
	assert.Equal(t, DefaultFetchWorkers, config.FetchWorkers)
	assert.Equal(t, DefaultIndexBatchSize, config.IndexBatchSize)
}

func TestLoadConfigMissingDataSource(t *testing.T) {
	path := writeConfigFile(t, `
index_name: physics_idx
`)

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfigMissingIndexName(t *testing.T) {
	path := writeConfigFile(t, `
data_source: wikipedia
`)

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrMissingIndexName)
}

func TestLoadConfigUnknownDocumentModel(t *testing.T) {
	path := writeConfigFile(t, `
data_source: wikipedia
index_name: physics_idx
document_data_model: carbonite
`)

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrUnknownDocumentModel)
}

func TestLoadConfigRegisteredDocumentModel(t *testing.T) {
	path := writeConfigFile(t, `
data_source: wikipedia
index_name: physics_idx
document_data_model: document
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DocumentModelDefault, config.DocumentDataModel)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestApplyDefaultsClampsBatchSize(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "zero gets default", in: 0, want: DefaultIndexBatchSize},
		{name: "below minimum clamps up", in: 10, want: MinIndexBatchSize},
		{name: "above maximum clamps down", in: 5000, want: MaxIndexBatchSize},
		{name: "in range unchanged", in: 250, want: 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Config{IndexBatchSize: tt.in}
			config.ApplyDefaults()
			assert.Equal(t, tt.want, config.IndexBatchSize)
		})
	}
}

func TestBuildUnknownComponents(t *testing.T) {
	_, err := BuildDataSource(&Config{DataSource: "gopher_news"}, Deps{})
	assert.ErrorIs(t, err, ErrUnknownDataSource)

	_, err = BuildSnipper(ComponentConfig{Type: "haiku"})
	assert.ErrorIs(t, err, ErrUnknownSnipper)

	_, err = BuildEmbedder(ComponentConfig{Type: "quantum"})
	assert.ErrorIs(t, err, ErrUnknownEmbedder)
}
