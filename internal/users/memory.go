package users

import (
	"context"
	"sync"
	"time"
)

// memoryRepository is a map-backed Repository for tests and single-process
// development runs.
type memoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*User
	byEmail map[string]int64
}

// NewMemoryRepository returns an in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		nextID:  1,
		byID:    make(map[int64]*User),
		byEmail: make(map[string]int64),
	}
}

func cloneUser(u *User) *User {
	c := *u
	return &c
}

func (r *memoryRepository) Create(_ context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return nil, ErrDuplicateEmail
	}

	stored := cloneUser(user)
	stored.ID = r.nextID
	stored.Active = true
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.nextID++

	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	return cloneUser(stored), nil
}

func (r *memoryRepository) GetByID(_ context.Context, id int64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *memoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *memoryRepository) Update(_ context.Context, id int64, input UpdateInput) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	user.UpdatedAt = time.Now()

	return cloneUser(user), nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byEmail, user.Email)
	delete(r.byID, id)
	return nil
}
