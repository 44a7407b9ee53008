package auth

import "context"

// UserStore persists accounts.
type UserStore interface {
	// Create inserts a new account. Returns ErrAlreadyExists when the
	// email is taken.
	Create(ctx context.Context, email, passwordHash string) (User, error)

	// Find returns the account with the given id, or ErrNotFound.
	Find(ctx context.Context, id int64) (User, error)

	// FindByEmail returns the account registered under email, or
	// ErrNotFound.
	FindByEmail(ctx context.Context, email string) (User, error)
}
