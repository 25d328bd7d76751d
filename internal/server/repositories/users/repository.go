// Package users holds the account store: the Repository capability the
// account service depends on and its PostgreSQL, SQLite, Redis and in-memory
// implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists accounts keyed by email.
//
// FindByEmail returns common.ErrorNotFound when no account matches.
// Create assigns the ID, role and creation time and returns
// common.ErrorConflict when the email is already taken.
// Save rewrites the mutable fields (full name, password hash, role) of an
// existing account and returns common.ErrorNotFound when it is gone.
// Delete reports whether an account was removed.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, email, passwordHash, fullName string) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) (*models.Account, error)
	Delete(ctx context.Context, account *models.Account) (bool, error)
	ListAll(ctx context.Context) ([]*models.Account, error)
}
