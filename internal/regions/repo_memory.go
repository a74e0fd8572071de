package regions

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	regions map[string]Region
}

// NewMemoryRepo returns a repo seeded with the given regions.
func NewMemoryRepo(seed ...Region) *MemoryRepo {
	r := &MemoryRepo{regions: make(map[string]Region, len(seed))}
	now := time.Now().UTC()
	for _, s := range seed {
		s.CreatedAt, s.UpdatedAt = now, now
		r.regions[s.ID] = s
	}
	return r
}

func (r *MemoryRepo) List(ctx context.Context, activeOnly bool) ([]Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Region, 0, len(r.regions))
	for _, reg := range r.regions {
		if activeOnly && !reg.IsActive {
			continue
		}
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Region, error) {
	if err := ctx.Err(); err != nil {
		return Region{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.regions[id]
	if !ok {
		return Region{}, ErrNotFound
	}
	return reg, nil
}

func (r *MemoryRepo) Create(ctx context.Context, reg Region) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.regions[reg.ID]; ok {
		return ErrExists
	}
	now := time.Now().UTC()
	reg.CreatedAt, reg.UpdatedAt = now, now
	r.regions[reg.ID] = reg
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, id string, u Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regions[id]
	if !ok {
		return ErrNotFound
	}
	reg.Name = u.Name
	reg.IsActive = u.IsActive
	reg.PaymentReceiver = u.PaymentReceiver
	reg.PaymentNote = u.PaymentNote
	reg.UpdatedAt = time.Now().UTC()
	r.regions[id] = reg
	return nil
}

func (r *MemoryRepo) SetQRPath(ctx context.Context, id, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regions[id]
	if !ok {
		return ErrNotFound
	}
	reg.QRPath = path
	reg.UpdatedAt = time.Now().UTC()
	r.regions[id] = reg
	return nil
}
