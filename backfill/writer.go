package backfill

import (
	"context"
	"fmt"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/storage"
)

// ColorWriter stores the colors of a chunk of items, leaving other fields untouched.
type ColorWriter struct {
	repo storage.CatalogRepository
}

var _ batch.Writer[*core.CatalogItem] = (*ColorWriter)(nil)

// NewColorWriter creates a writer updating repo.
func NewColorWriter(repo storage.CatalogRepository) *ColorWriter {
	return &ColorWriter{repo: repo}
}

// Write implements batch.Writer.
func (w *ColorWriter) Write(ctx context.Context, items []*core.CatalogItem) error {
	if _, err := w.repo.SetItemColors(ctx, items...); err != nil {
		return fmt.Errorf("store %d colors: %w", len(items), err)
	}
	return nil
}
