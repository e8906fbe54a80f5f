package user

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("user not found")

// User is an authenticated customer account. Identity resolution happens at
// the API boundary; domain code only ever sees the resolved id.
type User struct {
	ID    string
	Name  string
	Email string
}

// Repository defines read operations for user accounts.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}
