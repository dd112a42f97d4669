package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/core"
)

func TestMarshalUnmarshalCatalogItem(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		item *core.CatalogItem
	}{
		{
			name: "minimal item",
			item: &core.CatalogItem{ID: "1", Title: "Shirt"},
		},
		{
			name: "full item",
			item: &core.CatalogItem{
				ID:          "L1212-00-001",
				Title:       "Pantalon large à pinces",
				Gender:      core.GenderWoman,
				Composition: "100% laine",
				Sleeve:      "Manches longues",
				Photo:       "//image1.example.com/L1212.jpg",
				URL:         "https://www.example.com/l1212.html",
				Color:       &core.ColorVector{R: 250, G: 10, B: 10},
				UpdatedAt:   now,
			},
		},
		{
			name: "black is a color",
			item: &core.CatalogItem{ID: "2", Title: "Coat", Color: &core.ColorVector{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalCatalogItem(tt.item)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalCatalogItem(data)
			require.NoError(t, err)
			assert.Equal(t, tt.item, decoded)
		})
	}
}

func TestUnmarshalCatalogItem_Invalid(t *testing.T) {
	_, err := UnmarshalCatalogItem([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	data := MarshalCatalogItem(&core.CatalogItem{ID: "1", Title: "Shirt"})
	_, err = UnmarshalCatalogItem(data[:len(data)-2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestUnmarshalCatalogItem_UnknownVersion(t *testing.T) {
	data := MarshalCatalogItem(&core.CatalogItem{ID: "1", Title: "Shirt"})
	data[0] = 0x7e
	_, err := UnmarshalCatalogItem(data)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestMarshalUnmarshalChunkJob(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	job := &batch.ChunkJob{
		ID:         42,
		Name:       "backfill",
		Parameters: batch.Parameters{"filePath": "/data/catalog.csv", "delimiter": ";"},
		Status:     batch.StatusFailed,
		Read:       120,
		Processed:  120,
		Skipped:    7,
		Failed:     3,
		Written:    100,
		Chunks:     2,
		CreatedAt:  start,
		StartedAt:  start.Add(time.Millisecond),
		EndedAt:    start.Add(2 * time.Second),
		Error:      "chunk write failed: disk full",
	}

	decoded, err := UnmarshalChunkJob(MarshalChunkJob(job))
	require.NoError(t, err)
	assert.Equal(t, job, decoded)
}

func TestMarshalUnmarshalChunkJob_EmptyParameters(t *testing.T) {
	job := &batch.ChunkJob{ID: 1, Name: "import", Status: batch.StatusCompleted}

	decoded, err := UnmarshalChunkJob(MarshalChunkJob(job))
	require.NoError(t, err)
	assert.Empty(t, decoded.Parameters)
	assert.True(t, decoded.CreatedAt.IsZero())
	assert.Equal(t, batch.StatusCompleted, decoded.Status)
}
