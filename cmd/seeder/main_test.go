package main

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/ingestion"
)

func TestGeneratedCatalogIsImportable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	rng := rand.New(rand.NewPCG(7, 7))

	written, err := writeCatalog(path, generateItems(rng, 50, 0.5, "//cdn.test/p"))
	require.NoError(t, err)
	assert.Equal(t, 50, written)

	reader := ingestion.NewCSVReader(path, ',', true)
	defer reader.Close()

	ctx := context.Background()
	count := 0
	for {
		rec, err := reader.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		require.NoError(t, rec.Err)
		require.NoError(t, core.ValidateCatalogItem(rec.Item))
		count++
	}
	assert.Equal(t, 50, count)
}

func TestGenerateItemsIsDeterministic(t *testing.T) {
	collect := func() []*core.CatalogItem {
		var items []*core.CatalogItem
		for item := range generateItems(rand.New(rand.NewPCG(1, 1)), 10, 1, "//cdn") {
			items = append(items, item)
		}
		return items
	}
	a, b := collect(), collect()
	require.Len(t, a, 10)
	assert.Equal(t, a, b)
	for _, item := range a {
		assert.True(t, item.HasColor())
	}
}
