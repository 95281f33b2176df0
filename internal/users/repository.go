package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when a create would violate the unique
	// email constraint.
	ErrDuplicateEmail = errors.New("user already exists with this email")

	// ErrInvalidCredentials is returned when authentication fails. The same
	// error covers an unknown email and a wrong password so callers cannot
	// probe which addresses are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Repository is the persistence boundary for user records.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*User, error)
	Delete(ctx context.Context, id int64) error
}
