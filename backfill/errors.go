package backfill

import "errors"

var (
	// ErrCatalogRepositoryRequired is returned when a catalog repository is not provided.
	ErrCatalogRepositoryRequired = errors.New("catalog repository required")

	// ErrExtractorRequired is returned when a color extractor is not provided.
	ErrExtractorRequired = errors.New("color extractor required")

	// ErrInvalidPageSize is returned for a page size below 1.
	ErrInvalidPageSize = errors.New("page size must be positive")
)
