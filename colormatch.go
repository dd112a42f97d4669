// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package colormatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/colormatch/backfill"
	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/colorspace"
	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/ingestion"
	"github.com/poiesic/colormatch/ranking"
	"github.com/poiesic/colormatch/storage"
	"github.com/poiesic/colormatch/storage/badger"
	"github.com/poiesic/colormatch/vision"
)

// Catalog is a product catalog annotated with dominant colors.
type Catalog struct {
	backend     *badger.Backend
	catalogRepo storage.CatalogRepository
	jobRepo     storage.JobRepository
	importer    *ingestion.Importer
	backfiller  *backfill.Backfiller
	ranker      *ranking.Ranker
	observers   []batch.Observer
	logger      *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	inMemory     bool
	visionConfig *vision.Config
	extractor    vision.ColorExtractor
	policy       batch.Policy
	chunkSize    int
	pageSize     int
	delimiter    rune
	header       bool
	rounding     colorspace.Rounding
	observers    []batch.Observer
	logger       *slog.Logger
}

// WithInMemory keeps the catalog in memory. The path given to OpenCatalog is ignored.
func WithInMemory() CatalogOption {
	return func(o *catalogOptions) {
		o.inMemory = true
	}
}

// WithVisionConfig sets the configuration used to build the color extractor.
func WithVisionConfig(cfg *vision.Config) CatalogOption {
	return func(o *catalogOptions) {
		o.visionConfig = cfg
	}
}

// WithExtractor supplies a color extractor, bypassing WithVisionConfig.
func WithExtractor(extractor vision.ColorExtractor) CatalogOption {
	return func(o *catalogOptions) {
		o.extractor = extractor
	}
}

// WithPolicy sets the worker pool policy of import and backfill jobs.
func WithPolicy(policy batch.Policy) CatalogOption {
	return func(o *catalogOptions) {
		o.policy = policy
	}
}

// WithChunkSize sets how many records each job commits per transaction.
func WithChunkSize(size int) CatalogOption {
	return func(o *catalogOptions) {
		o.chunkSize = size
	}
}

// WithPageSize sets how many items a backfill fetches per catalog query.
func WithPageSize(size int) CatalogOption {
	return func(o *catalogOptions) {
		o.pageSize = size
	}
}

// WithDelimiter sets the import field delimiter and whether sources carry a header line.
func WithDelimiter(delimiter rune, header bool) CatalogOption {
	return func(o *catalogOptions) {
		o.delimiter = delimiter
		o.header = header
	}
}

// WithRounding selects the Lab rounding used by similarity queries.
func WithRounding(rounding colorspace.Rounding) CatalogOption {
	return func(o *catalogOptions) {
		o.rounding = rounding
	}
}

// WithObserver adds an observer to every job the catalog runs.
func WithObserver(observer batch.Observer) CatalogOption {
	return func(o *catalogOptions) {
		o.observers = append(o.observers, observer)
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) CatalogOption {
	return func(o *catalogOptions) {
		o.logger = logger
	}
}

// OpenCatalog opens the catalog stored at path.
func OpenCatalog(path string, opts ...CatalogOption) (*Catalog, error) {
	options := &catalogOptions{
		policy:    batch.DefaultPolicy(),
		chunkSize: batch.DefaultChunkSize,
		pageSize:  backfill.DefaultPageSize,
		delimiter: ',',
		header:    true,
		rounding:  colorspace.RoundLegacy,
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	extractor := options.extractor
	if extractor == nil {
		var err error
		extractor, err = NewExtractor(options.visionConfig, logger)
		if err != nil {
			return nil, err
		}
	}

	backend, err := badger.OpenBackend(path, options.inMemory, badger.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	catalogRepo, err := badger.NewCatalogRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	jobRepo, err := badger.NewJobRepository(backend)
	if err != nil {
		catalogRepo.Close()
		backend.Close()
		return nil, err
	}

	c := &Catalog{
		backend:     backend,
		catalogRepo: catalogRepo,
		jobRepo:     jobRepo,
		observers:   append([]batch.Observer{&batch.LogObserver{Logger: logger}}, options.observers...),
		logger:      logger,
	}

	if err := c.init(extractor, options); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) init(extractor vision.ColorExtractor, options *catalogOptions) error {
	var err error
	c.importer, err = ingestion.NewImporter(c.catalogRepo,
		ingestion.WithPolicy(options.policy),
		ingestion.WithChunkSize(options.chunkSize),
		ingestion.WithDelimiter(options.delimiter),
		ingestion.WithHeader(options.header),
		ingestion.WithLogger(c.logger),
	)
	if err != nil {
		return err
	}

	c.backfiller, err = backfill.NewBackfiller(c.catalogRepo, extractor,
		backfill.WithPolicy(options.policy),
		backfill.WithChunkSize(options.chunkSize),
		backfill.WithPageSize(options.pageSize),
		backfill.WithLogger(c.logger),
	)
	if err != nil {
		return err
	}

	c.ranker, err = ranking.NewRanker(ranking.WithLogger(c.logger), ranking.WithRounding(options.rounding))
	return err
}

// Close releases the repositories and the underlying store.
func (c *Catalog) Close() error {
	var errs []error
	if err := c.jobRepo.Close(); err != nil {
		c.logger.Error("error closing job repository", "err", err)
		errs = append(errs, err)
	}
	if err := c.catalogRepo.Close(); err != nil {
		c.logger.Error("error closing catalog repository", "err", err)
		errs = append(errs, err)
	}
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CatalogRepository exposes the underlying item store.
func (c *Catalog) CatalogRepository() storage.CatalogRepository {
	return c.catalogRepo
}

// JobRepository exposes the job history store.
func (c *Catalog) JobRepository() storage.JobRepository {
	return c.jobRepo
}

func (c *Catalog) runOptions(extra []batch.Option) []batch.Option {
	opts := []batch.Option{
		batch.WithLogger(c.logger),
		batch.WithIDSource(c.jobRepo),
		batch.WithRecorder(c.jobRepo),
	}
	for _, obs := range c.observers {
		opts = append(opts, batch.WithObserver(obs))
	}
	return append(opts, extra...)
}

// GetItem returns the item with the given identity, or storage.ErrNotFound.
func (c *Catalog) GetItem(ctx context.Context, id string) (*core.CatalogItem, error) {
	return c.catalogRepo.GetItem(ctx, id)
}

// SaveItem validates and upserts a single item.
func (c *Catalog) SaveItem(ctx context.Context, item *core.CatalogItem) (*core.CatalogItem, error) {
	if err := core.ValidateCatalogItem(item); err != nil {
		return nil, err
	}
	saved, err := c.catalogRepo.UpsertItems(ctx, item)
	if err != nil {
		return nil, err
	}
	return saved[0], nil
}

// Count returns the number of catalog items.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	return c.catalogRepo.CountItems(ctx)
}

// GetColor returns the stored color of an item. Unknown items and items
// without a color both fail with storage.ErrNotFound; the latter also
// matches core.ErrMissingColor.
func (c *Catalog) GetColor(ctx context.Context, id string) (core.ColorVector, error) {
	item, err := c.catalogRepo.GetItem(ctx, id)
	if err != nil {
		return core.ColorVector{}, err
	}
	if !item.HasColor() {
		return core.ColorVector{}, fmt.Errorf("%w: %w: item %s", storage.ErrNotFound, core.ErrMissingColor, id)
	}
	return *item.Color, nil
}

// AnnotateAndSave extracts and stores the color of one item. An item that
// already has a color keeps it and no extraction happens.
func (c *Catalog) AnnotateAndSave(ctx context.Context, id string) (core.ColorVector, error) {
	return c.backfiller.Annotate(ctx, id)
}

// AnnotateAllMissing runs a backfill job over the whole catalog.
func (c *Catalog) AnnotateAllMissing(ctx context.Context, opts ...batch.Option) (*batch.ChunkJob, error) {
	return c.backfiller.Run(ctx, c.runOptions(opts)...)
}

// ImportFrom runs an import job over the delimited file at path.
func (c *Catalog) ImportFrom(ctx context.Context, path string, opts ...batch.Option) (*batch.ChunkJob, error) {
	return c.importer.Import(ctx, path, c.runOptions(opts)...)
}

// FindSimilar returns the identities of the n items closest in color to
// the item id, nearest first.
func (c *Catalog) FindSimilar(ctx context.Context, id string, n int) ([]string, error) {
	matches, err := c.FindSimilarItems(ctx, id, n)
	if err != nil {
		return nil, err
	}
	return ranking.IDs(matches), nil
}

// FindSimilarItems is FindSimilar returning the items and their distances.
func (c *Catalog) FindSimilarItems(ctx context.Context, id string, n int) ([]ranking.Match, error) {
	reference, err := c.catalogRepo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reference.HasColor() {
		return nil, fmt.Errorf("%w: item %s", core.ErrMissingColor, id)
	}
	candidates, err := c.catalogRepo.AllItems(ctx)
	if err != nil {
		return nil, err
	}
	return c.ranker.Rank(reference, candidates, n)
}

// Jobs returns up to limit finished jobs, most recent first.
func (c *Catalog) Jobs(ctx context.Context, limit int) ([]*batch.ChunkJob, error) {
	return c.jobRepo.ListJobs(ctx, limit)
}

// Job returns a finished job by id, or storage.ErrNotFound.
func (c *Catalog) Job(ctx context.Context, id uint64) (*batch.ChunkJob, error) {
	return c.jobRepo.GetJob(ctx, id)
}
