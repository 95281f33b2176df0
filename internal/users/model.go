package users

import "time"

// User is an account record. PasswordHash is excluded from JSON so it can
// never leak through API responses or cache snapshots.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Active       bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateInput carries the mutable profile fields. Nil pointers leave the
// corresponding column untouched.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Active    *bool
}
