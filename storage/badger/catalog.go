package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
type CatalogRepository struct {
	backend *Backend
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(backend *Backend) (*CatalogRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &CatalogRepository{backend: backend}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *CatalogRepository) Close() error {
	return nil
}

// GetItem retrieves a single item by identity.
func (r *CatalogRepository) GetItem(ctx context.Context, id string) (*core.CatalogItem, error) {
	var result *core.CatalogItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readItem(tx, makeItemKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: item %s", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// GetItems retrieves multiple items by identity.
func (r *CatalogRepository) GetItems(ctx context.Context, ids ...string) ([]*core.CatalogItem, error) {
	var result []*core.CatalogItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := r.readItem(tx, makeItemKey(id))
			if err != nil {
				return err
			}
			if item != nil {
				result = append(result, item)
			}
		}
		return nil
	}, false)
	return result, err
}

// UpsertItems inserts or replaces items in a single transaction.
func (r *CatalogRepository) UpsertItems(ctx context.Context, items ...*core.CatalogItem) ([]*core.CatalogItem, error) {
	if len(items) == 0 {
		return items, nil
	}
	now := time.Now().UTC()
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			if item == nil || item.ID == "" {
				return fmt.Errorf("%w: item identity required", storage.ErrInvalidQuery)
			}
			item.UpdatedAt = now
			if err := tx.Set(makeItemKey(item.ID), storage.MarshalCatalogItem(item)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SetItemColors stores the color of each item on its stored record.
func (r *CatalogRepository) SetItemColors(ctx context.Context, items ...*core.CatalogItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	updated := 0
	now := time.Now().UTC()
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			key := makeItemKey(item.ID)
			stored, err := r.readItem(tx, key)
			if err != nil {
				return err
			}
			if stored == nil {
				r.backend.logger.Debug("skipping color update for missing item", "item", item.ID)
				continue
			}
			stored.Color = item.Color
			stored.UpdatedAt = now
			if err := tx.Set(key, storage.MarshalCatalogItem(stored)); err != nil {
				return err
			}
			updated++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// ListItems returns up to limit items with identity strictly after afterID.
func (r *CatalogRepository) ListItems(ctx context.Context, afterID string, limit int) ([]*core.CatalogItem, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", storage.ErrInvalidQuery, limit)
	}
	var results []*core.CatalogItem
	err := r.scan(afterID, func(item *core.CatalogItem) bool {
		results = append(results, item)
		return len(results) < limit
	})
	return results, err
}

// AllItems returns every item in ascending identity order.
func (r *CatalogRepository) AllItems(ctx context.Context) ([]*core.CatalogItem, error) {
	var results []*core.CatalogItem
	err := r.scan("", func(item *core.CatalogItem) bool {
		results = append(results, item)
		return true
	})
	return results, err
}

// CountItems returns the number of stored items.
func (r *CatalogRepository) CountItems(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(catalogItemPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// scan visits items in key order starting after afterID until fn returns false.
func (r *CatalogRepository) scan(afterID string, fn func(*core.CatalogItem) bool) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(catalogItemPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeItemKey(afterID)); iter.Valid(); iter.Next() {
			entry := iter.Item()
			if afterID != "" && itemIDFromKey(entry.Key()) == afterID {
				continue
			}

			var item *core.CatalogItem
			if err := entry.Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalCatalogItem(val)
				return err
			}); err != nil {
				return err
			}
			if !fn(item) {
				return nil
			}
		}
		return nil
	}, false)
}

// readItem reads an item in a transaction. Returns nil, nil when absent.
func (r *CatalogRepository) readItem(tx *badger.Txn, key []byte) (*core.CatalogItem, error) {
	entry, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var item *core.CatalogItem
	err = entry.Value(func(val []byte) error {
		var err error
		item, err = storage.UnmarshalCatalogItem(val)
		return err
	})
	return item, err
}
