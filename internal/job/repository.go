package job

import (
	"errors"
	"fmt"
	"sync"

	"github.com/trego/provider/internal/kv"
)

var (
	ErrNotFound          = errors.New("job not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrStorage           = errors.New("storage failure")
)

// Repository keeps the whole job collection as one JSON array under a fixed key.
//
// Read-modify-write cycles are serialised within a Repository. Two repositories
// sharing a store (separate processes, separate devices) are not coordinated and
// the last write wins.
type Repository struct {
	mu    sync.Mutex
	store kv.Store
	key   string
}

func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store, key: kv.KeyJobs}
}

// Load returns the stored collection in insertion order. A missing key is an
// empty collection.
func (r *Repository) Load() ([]Job, error) {
	var jobs []Job
	if _, err := kv.GetJSON(r.store, r.key, &jobs); err != nil {
		return nil, fmt.Errorf("%w: load jobs: %v", ErrStorage, err)
	}
	return jobs, nil
}

// Save replaces the stored collection.
func (r *Repository) Save(jobs []Job) error {
	if jobs == nil {
		jobs = []Job{}
	}
	if err := kv.SetJSON(r.store, r.key, jobs); err != nil {
		return fmt.Errorf("%w: save jobs: %v", ErrStorage, err)
	}
	return nil
}

func (r *Repository) Get(id string) (*Job, error) {
	jobs, err := r.Load()
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			return &jobs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Update loads the collection, applies fn to the job with the given id and
// writes the collection back. Nothing is written if the job is missing or fn
// returns an error.
func (r *Repository) Update(id string, fn func(j *Job) error) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs, err := r.Load()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range jobs {
		if jobs[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	updated := jobs[idx]
	if err := fn(&updated); err != nil {
		return nil, err
	}
	jobs[idx] = updated

	if err := r.Save(jobs); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Insert appends jobs to the collection.
func (r *Repository) Insert(jobs ...Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.Load()
	if err != nil {
		return err
	}
	return r.Save(append(existing, jobs...))
}

// InsertIfEmpty stores jobs only when the collection is empty, checking and
// writing under one lock. It returns the size of the collection it found;
// nothing is written when that is non-zero.
func (r *Repository) InsertIfEmpty(jobs ...Job) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.Load()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return len(existing), nil
	}
	return 0, r.Save(jobs)
}

// Replace overwrites the collection under the repository lock.
func (r *Repository) Replace(jobs []Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Save(jobs)
}
