package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/storage"
)

const (
	// StepName names import jobs.
	StepName = "import"

	// ParamFilePath is the job parameter holding the source file path.
	ParamFilePath = "filePath"
)

// Importer runs import jobs against a catalog repository.
type Importer struct {
	repo      storage.CatalogRepository
	policy    batch.Policy
	chunkSize int
	delimiter rune
	header    bool
	logger    *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithPolicy sets the worker pool policy.
// Default is batch.DefaultPolicy().
func WithPolicy(policy batch.Policy) Option {
	return func(im *Importer) error {
		if err := policy.Validate(); err != nil {
			return err
		}
		im.policy = policy
		return nil
	}
}

// WithChunkSize sets how many records are written per transaction.
// Default is batch.DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(im *Importer) error {
		if size < 1 {
			return fmt.Errorf("%w: %d", batch.ErrInvalidChunkSize, size)
		}
		im.chunkSize = size
		return nil
	}
}

// WithDelimiter sets the field delimiter. Default is ','.
func WithDelimiter(delimiter rune) Option {
	return func(im *Importer) error {
		switch delimiter {
		case 0, '"', '\r', '\n':
			return fmt.Errorf("%w: %q", ErrInvalidDelimiter, delimiter)
		}
		im.delimiter = delimiter
		return nil
	}
}

// WithHeader controls whether the first line is skipped. Default is true.
func WithHeader(header bool) Option {
	return func(im *Importer) error {
		im.header = header
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		im.logger = logger
		return nil
	}
}

// NewImporter creates an Importer writing into repo.
func NewImporter(repo storage.CatalogRepository, opts ...Option) (*Importer, error) {
	if repo == nil {
		return nil, ErrCatalogRepositoryRequired
	}

	im := &Importer{
		repo:      repo,
		policy:    batch.DefaultPolicy(),
		chunkSize: batch.DefaultChunkSize,
		delimiter: ',',
		header:    true,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(im); err != nil {
			return nil, err
		}
	}
	return im, nil
}

// Step assembles the import job over reader.
func (im *Importer) Step(reader batch.Reader[Record]) batch.Step[Record] {
	return batch.Step[Record]{
		Name:      StepName,
		Reader:    reader,
		Processor: NewDeduplicator(im.repo, im.logger.With("pipeline", StepName)),
		Writer:    NewCatalogWriter(im.repo),
		ChunkSize: im.chunkSize,
		Policy:    im.policy,
		Validator: batch.RequireParameters(ParamFilePath),
	}
}

// Import runs one import job over the file at path. The returned job is
// never nil; the error is non-nil only when the job FAILED.
func (im *Importer) Import(ctx context.Context, path string, opts ...batch.Option) (*batch.ChunkJob, error) {
	reader := NewCSVReader(path, im.delimiter, im.header)
	defer reader.Close()

	opts = append([]batch.Option{batch.WithLogger(im.logger)}, opts...)
	return batch.Run(ctx, im.Step(reader), batch.Parameters{ParamFilePath: path}, opts...)
}
