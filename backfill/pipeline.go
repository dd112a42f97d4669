package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/storage"
	"github.com/poiesic/colormatch/vision"
)

const (
	// StepName names backfill jobs.
	StepName = "backfill"

	// ParamPageSize is the job parameter recording the catalog page size.
	ParamPageSize = "pageSize"
)

// Backfiller runs backfill jobs.
type Backfiller struct {
	repo      storage.CatalogRepository
	enricher  *Enricher
	policy    batch.Policy
	chunkSize int
	pageSize  int
	logger    *slog.Logger
}

// Option configures a Backfiller.
type Option func(*Backfiller) error

// WithPolicy sets the worker pool policy.
// Default is batch.DefaultPolicy().
func WithPolicy(policy batch.Policy) Option {
	return func(b *Backfiller) error {
		if err := policy.Validate(); err != nil {
			return err
		}
		b.policy = policy
		return nil
	}
}

// WithChunkSize sets how many items are written per transaction.
// Default is batch.DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(b *Backfiller) error {
		if size < 1 {
			return fmt.Errorf("%w: %d", batch.ErrInvalidChunkSize, size)
		}
		b.chunkSize = size
		return nil
	}
}

// WithPageSize sets how many items are fetched per catalog query.
// Default is DefaultPageSize.
func WithPageSize(size int) Option {
	return func(b *Backfiller) error {
		if size < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
		}
		b.pageSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backfiller) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBackfiller creates a Backfiller over repo using extractor.
func NewBackfiller(repo storage.CatalogRepository, extractor vision.ColorExtractor, opts ...Option) (*Backfiller, error) {
	if repo == nil {
		return nil, ErrCatalogRepositoryRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	b := &Backfiller{
		repo:      repo,
		policy:    batch.DefaultPolicy(),
		chunkSize: batch.DefaultChunkSize,
		pageSize:  DefaultPageSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.enricher = NewEnricher(extractor, b.logger.With("pipeline", StepName))
	return b, nil
}

// Step assembles the backfill job.
func (b *Backfiller) Step() batch.Step[*core.CatalogItem] {
	return batch.Step[*core.CatalogItem]{
		Name:      StepName,
		Reader:    NewPagedReader(b.repo, b.pageSize),
		Processor: b.enricher,
		Writer:    NewColorWriter(b.repo),
		ChunkSize: b.chunkSize,
		Policy:    b.policy,
	}
}

// Run executes one backfill over the whole catalog. The returned job is
// never nil; the error is non-nil only when the job FAILED.
func (b *Backfiller) Run(ctx context.Context, opts ...batch.Option) (*batch.ChunkJob, error) {
	opts = append([]batch.Option{batch.WithLogger(b.logger)}, opts...)
	params := batch.Parameters{ParamPageSize: strconv.Itoa(b.pageSize)}
	return batch.Run(ctx, b.Step(), params, opts...)
}

// Annotate extracts and stores the color of a single item, returning the
// stored color. An item that already has a color is returned unchanged.
func (b *Backfiller) Annotate(ctx context.Context, id string) (core.ColorVector, error) {
	item, err := b.repo.GetItem(ctx, id)
	if err != nil {
		return core.ColorVector{}, err
	}
	if item.HasColor() {
		return *item.Color, nil
	}

	color, err := b.enricher.Annotate(ctx, item)
	if err != nil {
		return core.ColorVector{}, err
	}
	if _, err := b.repo.SetItemColors(ctx, item.WithColor(color)); err != nil {
		return core.ColorVector{}, err
	}
	return color, nil
}
