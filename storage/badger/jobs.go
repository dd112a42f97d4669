package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/storage"
)

// JobRepository implements storage.JobRepository for BadgerDB.
type JobRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
	mu      sync.Mutex
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new JobRepository.
func NewJobRepository(backend *Backend) (*JobRepository, error) {
	idSeq, err := backend.GetSequence(jobIDSeq)
	if err != nil {
		return nil, err
	}

	return &JobRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *JobRepository) Close() error {
	return r.idSeq.Release()
}

// NextJobID returns the next job identifier from the persistent sequence.
func (r *JobRepository) NextJobID(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nextID, err := r.idSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if nextID == 0 {
		nextID, err = r.idSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return nextID, nil
}

// SaveJob persists a job, replacing any previous record with the same ID.
func (r *JobRepository) SaveJob(ctx context.Context, job *batch.ChunkJob) error {
	if job == nil || job.ID == 0 {
		return fmt.Errorf("%w: job id required", storage.ErrInvalidQuery)
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeJobKey(job.ID), storage.MarshalChunkJob(job)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetJob retrieves a job by ID.
func (r *JobRepository) GetJob(ctx context.Context, id uint64) (*batch.ChunkJob, error) {
	var job *batch.ChunkJob
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := tx.Get(makeJobKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: job %d", storage.ErrNotFound, id)
			}
			return err
		}

		return entry.Value(func(val []byte) error {
			var unmarshalErr error
			job, unmarshalErr = storage.UnmarshalChunkJob(val)
			return unmarshalErr
		})
	}, false)
	return job, err
}

// ListJobs returns up to limit jobs, most recent first.
func (r *JobRepository) ListJobs(ctx context.Context, limit int) ([]*batch.ChunkJob, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", storage.ErrInvalidQuery, limit)
	}

	var jobs []*batch.ChunkJob
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(jobPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration must start past the last possible key
		for iter.Seek(makeJobKey(^uint64(0))); iter.Valid() && len(jobs) < limit; iter.Next() {
			var job *batch.ChunkJob
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				job, err = storage.UnmarshalChunkJob(val)
				return err
			}); err != nil {
				return err
			}
			jobs = append(jobs, job)
		}
		return nil
	}, false)
	return jobs, err
}
