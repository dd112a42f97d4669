package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/storage"
)

func newTestCatalog(t *testing.T) storage.CatalogRepository {
	t.Helper()
	catalogRepo, jobRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		catalogRepo.Close()
		jobRepo.Close()
		backend.Close()
	})
	return catalogRepo
}

func TestCatalogUpsertAndGet(t *testing.T) {
	repo := newTestCatalog(t)
	ctx := context.Background()

	item := &core.CatalogItem{ID: "A1", Title: "Shirt", Gender: core.GenderMan}
	stored, err := repo.UpsertItems(ctx, item)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].UpdatedAt.IsZero())

	got, err := repo.GetItem(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Shirt", got.Title)
	assert.Nil(t, got.Color)

	// Replace with a colored version
	item.Title = "Linen shirt"
	item.Color = &core.ColorVector{R: 1, G: 2, B: 3}
	_, err = repo.UpsertItems(ctx, item)
	require.NoError(t, err)

	got, err = repo.GetItem(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Linen shirt", got.Title)
	assert.Equal(t, &core.ColorVector{R: 1, G: 2, B: 3}, got.Color)
}

func TestCatalogGetMissing(t *testing.T) {
	repo := newTestCatalog(t)

	_, err := repo.GetItem(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	items, err := repo.GetItems(context.Background(), "nope", "neither")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCatalogUpsertIsAtomic(t *testing.T) {
	repo := newTestCatalog(t)
	ctx := context.Background()

	_, err := repo.UpsertItems(ctx,
		&core.CatalogItem{ID: "ok", Title: "fine"},
		&core.CatalogItem{ID: "", Title: "no identity"},
	)
	require.ErrorIs(t, err, storage.ErrInvalidQuery)

	count, err := repo.CountItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "no partial write is visible")
}

func TestCatalogSetItemColors(t *testing.T) {
	repo := newTestCatalog(t)
	ctx := context.Background()

	_, err := repo.UpsertItems(ctx,
		&core.CatalogItem{ID: "a", Title: "A", Composition: "cotton"},
		&core.CatalogItem{ID: "b", Title: "B"},
	)
	require.NoError(t, err)

	updated, err := repo.SetItemColors(ctx,
		&core.CatalogItem{ID: "a", Title: "stale title", Color: &core.ColorVector{R: 9}},
		&core.CatalogItem{ID: "gone", Color: &core.ColorVector{G: 9}},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	a, err := repo.GetItem(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", a.Title, "only the color is written")
	assert.Equal(t, "cotton", a.Composition)
	assert.Equal(t, &core.ColorVector{R: 9}, a.Color)

	_, err = repo.GetItem(ctx, "gone")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCatalogListItemsPaging(t *testing.T) {
	repo := newTestCatalog(t)
	ctx := context.Background()

	var items []*core.CatalogItem
	for i := 25; i >= 1; i-- {
		items = append(items, &core.CatalogItem{ID: fmt.Sprintf("P%03d", i), Title: "x"})
	}
	_, err := repo.UpsertItems(ctx, items...)
	require.NoError(t, err)

	var seen []string
	after := ""
	for {
		page, err := repo.ListItems(ctx, after, 10)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, it := range page {
			seen = append(seen, it.ID)
		}
		after = page[len(page)-1].ID
	}

	require.Len(t, seen, 25)
	for i, id := range seen {
		assert.Equal(t, fmt.Sprintf("P%03d", i+1), id)
	}

	_, err = repo.ListItems(ctx, "", 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestCatalogAllItemsAndCount(t *testing.T) {
	repo := newTestCatalog(t)
	ctx := context.Background()

	_, err := repo.UpsertItems(ctx,
		&core.CatalogItem{ID: "b", Title: "B"},
		&core.CatalogItem{ID: "a", Title: "A"},
		&core.CatalogItem{ID: "c", Title: "C"},
	)
	require.NoError(t, err)

	all, err := repo.AllItems(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

	count, err := repo.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
