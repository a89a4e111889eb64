package account

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps accounts in process memory. Used in dev mode without
// a database and in tests.
type MemoryRepository struct {
	createMu sync.Mutex

	mu      sync.RWMutex
	byID    map[string]*Account
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*Account),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, a *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[a.Email]; ok {
		return ErrEmailExists
	}
	cp := cloneAccount(a)
	r.byID[a.ID] = cp
	r.byEmail[a.Email] = a.ID
	return nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(r.byID[id]), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *MemoryRepository) UpdateFullName(_ context.Context, id, fullName string, at time.Time) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.FullName = fullName
	a.UpdatedAt = &at
	return cloneAccount(a), nil
}

func (r *MemoryRepository) Count(context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

func (r *MemoryRepository) WithinCreateLock(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	r.createMu.Lock()
	defer r.createMu.Unlock()
	return fn(ctx, r)
}

func cloneAccount(a *Account) *Account {
	cp := *a
	cp.Roles = append([]string(nil), a.Roles...)
	if a.UpdatedAt != nil {
		t := *a.UpdatedAt
		cp.UpdatedAt = &t
	}
	return &cp
}
