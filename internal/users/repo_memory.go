package users

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	now := time.Now().UTC()
	if !ok {
		existing = User{ID: user.ID, CreatedAt: now}
	}
	existing.Email = user.Email
	existing.Name = user.Name
	existing.PictureURL = user.PictureURL
	existing.UpdatedAt = now
	r.users[user.ID] = existing
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) SaveProfile(ctx context.Context, userID string, p Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	user, ok := r.users[userID]
	if !ok {
		user = User{ID: userID, CreatedAt: now}
	}
	user.FullName = p.FullName
	user.Birthdate = p.Birthdate
	user.Phone = p.Phone
	user.School = p.School
	user.City = p.City
	user.RegionID = p.RegionID
	user.UpdatedAt = now
	r.users[userID] = user
	return nil
}
