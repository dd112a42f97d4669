package storage

import (
	"context"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository.
	// It does not close the underlying backend.
	Close() error
}

// CatalogRepository provides operations for managing catalog items.
type CatalogRepository interface {
	Repository

	// GetItem retrieves a single item by identity.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id string) (*core.CatalogItem, error)

	// GetItems retrieves multiple items by identity.
	// Returns only the items that exist (no error for missing items).
	GetItems(ctx context.Context, ids ...string) ([]*core.CatalogItem, error)

	// UpsertItems inserts or replaces items in a single transaction.
	// Sets UpdatedAt on every item. Either all items are stored or none.
	UpsertItems(ctx context.Context, items ...*core.CatalogItem) ([]*core.CatalogItem, error)

	// SetItemColors stores the Color of each given item on the stored record
	// with the same identity, leaving every other field untouched.
	// Items that no longer exist are ignored. Returns the number of records updated.
	SetItemColors(ctx context.Context, items ...*core.CatalogItem) (int, error)

	// ListItems returns up to limit items whose identity sorts strictly after
	// afterID, in ascending identity order. An empty afterID starts at the beginning.
	ListItems(ctx context.Context, afterID string, limit int) ([]*core.CatalogItem, error)

	// AllItems returns a snapshot of every item in ascending identity order.
	AllItems(ctx context.Context) ([]*core.CatalogItem, error)

	// CountItems returns the number of stored items.
	CountItems(ctx context.Context) (int, error)
}

// JobRepository persists terminal batch jobs and issues job identifiers.
// It satisfies batch.IDSource and batch.Recorder.
type JobRepository interface {
	Repository
	batch.IDSource
	batch.Recorder

	// GetJob retrieves a job by id.
	// Returns ErrNotFound if the job doesn't exist.
	GetJob(ctx context.Context, id uint64) (*batch.ChunkJob, error)

	// ListJobs returns up to limit jobs, most recent first.
	ListJobs(ctx context.Context, limit int) ([]*batch.ChunkJob, error)
}
