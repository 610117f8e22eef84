package resettokens

import (
	"context"
	"time"

	"github.com/avasilkov/keyvault/internal/dbx"
)

type Repository interface {
	// Create stores a fresh token for the user. Callers enforce the
	// one-live-token invariant by pairing it with DeleteAllForUser in one
	// transaction.
	Create(ctx context.Context, userID int64, token string, expiration time.Time) (*ResetToken, error)
	GetByToken(ctx context.Context, token string) (*ResetToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID int64) error

	WithTx(tx dbx.DBTX) Repository
}
