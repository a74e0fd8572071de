package candidates

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu         sync.RWMutex
	candidates map[string]Candidate
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{candidates: make(map[string]Candidate)}
}

func (r *MemoryRepo) Create(ctx context.Context, c Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	r.candidates[c.ID] = c
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, c Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.candidates[c.ID]
	if !ok || existing.UserID != c.UserID {
		return ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	r.candidates[c.ID] = c
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.candidates[id]
	if !ok {
		return Candidate{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Candidate{}
	for _, c := range r.candidates {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
