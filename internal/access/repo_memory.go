package access

import (
	"context"
	"sort"
	"sync"
	"time"
)

type grantKey struct {
	userID   string
	role     Role
	regionID string
}

// MemoryRepo keeps grants in process memory.
type MemoryRepo struct {
	mu     sync.RWMutex
	grants map[grantKey]Grant
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{grants: make(map[grantKey]Grant)}
}

func (r *MemoryRepo) ListGrants(ctx context.Context, userID string) ([]Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Grant
	for k, g := range r.grants {
		if k.userID == userID {
			out = append(out, g)
		}
	}
	sortGrants(out)
	return out, nil
}

func (r *MemoryRepo) ListAll(ctx context.Context) ([]Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Grant, 0, len(r.grants))
	for _, g := range r.grants {
		out = append(out, g)
	}
	sortGrants(out)
	return out, nil
}

func (r *MemoryRepo) Put(ctx context.Context, grant Grant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := grantKey{grant.UserID, grant.Role, grant.RegionID}
	if _, ok := r.grants[key]; ok {
		return nil
	}
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = time.Now().UTC()
	}
	r.grants[key] = grant
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, grant Grant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.grants, grantKey{grant.UserID, grant.Role, grant.RegionID})
	return nil
}

func sortGrants(grants []Grant) {
	sort.Slice(grants, func(i, j int) bool {
		a, b := grants[i], grants[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		return a.RegionID < b.RegionID
	})
}
