package ingestion

import (
	"context"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/storage"
)

// CatalogWriter upserts a chunk of records in one transaction.
type CatalogWriter struct {
	repo storage.CatalogRepository
}

var _ batch.Writer[Record] = (*CatalogWriter)(nil)

// NewCatalogWriter creates a writer storing into repo.
func NewCatalogWriter(repo storage.CatalogRepository) *CatalogWriter {
	return &CatalogWriter{repo: repo}
}

// Write implements batch.Writer. When a chunk holds several records with
// the same identity the latest line wins, except that a colored record is
// never replaced by an uncolored one.
func (w *CatalogWriter) Write(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	latest := make(map[string]Record, len(records))
	order := make([]string, 0, len(records))
	for _, rec := range records {
		prev, seen := latest[rec.Item.ID]
		if !seen {
			order = append(order, rec.Item.ID)
			latest[rec.Item.ID] = rec
			continue
		}
		first, second := prev, rec
		if second.Line < first.Line {
			first, second = second, first
		}
		if first.Item.HasColor() && !second.Item.HasColor() {
			latest[rec.Item.ID] = first
		} else {
			latest[rec.Item.ID] = second
		}
	}

	items := make([]*core.CatalogItem, 0, len(order))
	for _, id := range order {
		items = append(items, latest[id].Item)
	}
	_, err := w.repo.UpsertItems(ctx, items...)
	return err
}
