package users

import (
	"context"

	"github.com/avasilkov/keyvault/internal/dbx"
)

type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateEmail(ctx context.Context, id int64, email string) error
	UpdateUsername(ctx context.Context, id int64, username string) error
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error

	// WithTx returns a copy of the repository bound to the given handle, so
	// callers can compose repository operations inside one transaction.
	WithTx(tx dbx.DBTX) Repository
}
