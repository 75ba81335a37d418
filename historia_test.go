package historia

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jagath-jaikumar/historia/core"
	"github.com/jagath-jaikumar/historia/pipeline"
)

func TestNewMemoryDatabase(t *testing.T) {
	db, err := NewMemoryDatabase()
	require.NoError(t, err)

	assert.NotNil(t, db.DocumentRepository())
	assert.NotNil(t, db.IndexRepository())
	require.NoError(t, db.Close())
}

func TestNewDatabaseOnDisk(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	docs, err := db.DocumentRepository().UpsertDocuments(context.Background(),
		&core.Document{URL: "https://example.org/a", Content: "alpha"},
	)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestNewPipelineValidatesConfig(t *testing.T) {
	db, err := NewMemoryDatabase()
	require.NoError(t, err)
	defer db.Close()

	config := &pipeline.Config{DataSource: "wikipedia"}
	config.ApplyDefaults()

	_, err = db.NewPipeline(config)
	assert.ErrorIs(t, err, pipeline.ErrMissingIndexName)
}

func TestNewPipelineBuildsComponents(t *testing.T) {
	db, err := NewMemoryDatabase()
	require.NoError(t, err)
	defer db.Close()

	config := &pipeline.Config{
		DataSource:       "wikipedia",
		DataSourceParams: map[string]any{"categories": []string{"Physics"}},
		Snipper:          pipeline.ComponentConfig{Type: "simple"},
		Embedder:         pipeline.ComponentConfig{Type: "dummy"},
		IndexName:        "physics_idx",
	}
	config.ApplyDefaults()

	p, err := db.NewPipeline(config)
	require.NoError(t, err)
	assert.NotNil(t, p)
}
