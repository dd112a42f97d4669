package backfill

import (
	"context"
	"io"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/storage"
)

// DefaultPageSize is the number of items fetched per catalog query.
const DefaultPageSize = 100

// PagedReader iterates the catalog in ascending identity order, one page at a time.
// Paging is keyed on the last identity seen, so items written behind the
// cursor during the run do not shift later pages.
type PagedReader struct {
	repo     storage.CatalogRepository
	pageSize int

	afterID string
	page    []*core.CatalogItem
	done    bool
}

var _ batch.Reader[*core.CatalogItem] = (*PagedReader)(nil)

// NewPagedReader creates a reader over repo.
func NewPagedReader(repo storage.CatalogRepository, pageSize int) *PagedReader {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &PagedReader{repo: repo, pageSize: pageSize}
}

// Read returns the next item, or io.EOF after the last one.
func (r *PagedReader) Read(ctx context.Context) (*core.CatalogItem, error) {
	if len(r.page) == 0 {
		if r.done {
			return nil, io.EOF
		}
		page, err := r.repo.ListItems(ctx, r.afterID, r.pageSize)
		if err != nil {
			return nil, err
		}
		if len(page) < r.pageSize {
			r.done = true
		}
		if len(page) == 0 {
			return nil, io.EOF
		}
		r.afterID = page[len(page)-1].ID
		r.page = page
	}

	item := r.page[0]
	r.page = r.page[1:]
	return item, nil
}
