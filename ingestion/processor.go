package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/storage"
)

// Deduplicator validates incoming records against the catalog.
//
// A record is skipped when the stored item already has a color and the
// incoming one does not, or when it would not change the stored item at
// all. Otherwise the incoming record passes through and replaces the stored one.
type Deduplicator struct {
	repo   storage.CatalogRepository
	logger *slog.Logger
}

var _ batch.Processor[Record] = (*Deduplicator)(nil)

// NewDeduplicator creates a Deduplicator reading from repo.
func NewDeduplicator(repo storage.CatalogRepository, logger *slog.Logger) *Deduplicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduplicator{repo: repo, logger: logger}
}

// Process implements batch.Processor.
func (d *Deduplicator) Process(ctx context.Context, rec Record) (Record, bool, error) {
	if rec.Err != nil {
		return rec, false, fmt.Errorf("line %d: %w", rec.Line, rec.Err)
	}
	if err := core.ValidateCatalogItem(rec.Item); err != nil {
		return rec, false, fmt.Errorf("line %d: %w", rec.Line, err)
	}

	existing, err := d.repo.GetItem(ctx, rec.Item.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return rec, true, nil
	case err != nil:
		return rec, false, fmt.Errorf("line %d: lookup %s: %w", rec.Line, rec.Item.ID, err)
	}

	if existing.HasColor() && !rec.Item.HasColor() {
		d.logger.Debug("keeping stored color", "line", rec.Line, "id", rec.Item.ID, "color", existing.Color.String())
		return rec, false, nil
	}
	if core.FingerprintOf(existing) == core.FingerprintOf(rec.Item) {
		d.logger.Debug("unchanged record", "line", rec.Line, "id", rec.Item.ID)
		return rec, false, nil
	}
	return rec, true, nil
}
