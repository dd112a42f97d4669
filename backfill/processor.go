package backfill

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/vision"
)

// Enricher attaches a dominant color to items that lack one.
type Enricher struct {
	extractor vision.ColorExtractor
	logger    *slog.Logger
}

var _ batch.Processor[*core.CatalogItem] = (*Enricher)(nil)

// NewEnricher creates an Enricher backed by extractor.
func NewEnricher(extractor vision.ColorExtractor, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{extractor: extractor, logger: logger}
}

// Process implements batch.Processor. Items that already have a color are
// skipped. Extraction failures are returned as item errors.
func (e *Enricher) Process(ctx context.Context, item *core.CatalogItem) (*core.CatalogItem, bool, error) {
	if item.HasColor() {
		return item, false, nil
	}

	color, err := e.Annotate(ctx, item)
	if err != nil {
		return item, false, err
	}
	return item.WithColor(color), true, nil
}

// Annotate extracts the dominant color of item's photo.
func (e *Enricher) Annotate(ctx context.Context, item *core.CatalogItem) (core.ColorVector, error) {
	color, err := e.extractor.ExtractColor(ctx, item.Photo)
	if err != nil {
		e.logger.Warn("color extraction failed", "id", item.ID, "photo", item.Photo, "err", err)
		return core.ColorVector{}, fmt.Errorf("item %s: %w", item.ID, err)
	}
	if err := color.Validate(); err != nil {
		e.logger.Warn("extractor returned an invalid color", "id", item.ID, "err", err)
		return core.ColorVector{}, fmt.Errorf("item %s: %w: %w", item.ID, vision.ErrColorMissing, err)
	}
	return color, nil
}
