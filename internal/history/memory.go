package history

import (
	"sort"
	"sync"
	"time"
)

// memoryRepository is the fallback store when no database is configured.
// Records live only for the lifetime of the process.
type memoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory creates an in-memory repository.
func NewMemory() Repository {
	return &memoryRepository{records: make(map[string]Record)}
}

func (r *memoryRepository) Create(rec *Record) error {
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = *rec
	return nil
}

func (r *memoryRepository) Get(id string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (r *memoryRepository) List(f Filter) ([]Record, error) {
	r.mu.RLock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		if f.Platform != "" && rec.Platform != f.Platform {
			continue
		}
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		out = append(out, rec)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
