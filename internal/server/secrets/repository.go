package secrets

import (
	"context"
	"time"

	"github.com/avasilkov/keyvault/internal/cryptox"
	"github.com/avasilkov/keyvault/internal/dbx"
)

// Repository is the narrow persistence contract for stored secrets. Every
// owner-scoped operation filters by user id at the SQL level, so a caller can
// never touch another principal's rows.
type Repository interface {
	Create(ctx context.Context, secret *Secret) (*Secret, error)
	ListActive(ctx context.Context, userID int64) ([]PartialSecret, error)
	ListRevoked(ctx context.Context, userID int64) ([]PartialSecret, error)
	ListExpired(ctx context.Context, userID int64) ([]PartialSecret, error)
	// ListByOwner returns full rows including the encrypted triple; used by
	// the password-change re-encryption flow.
	ListByOwner(ctx context.Context, userID int64) ([]Secret, error)
	SetExpiration(ctx context.Context, id, userID int64, expiration time.Time) error
	SetRevoked(ctx context.Context, id, userID int64, revoked bool) error
	Delete(ctx context.Context, id, userID int64) error
	ReplaceCiphertext(ctx context.Context, id int64, enc *cryptox.EncryptedData) error
	// ListExpiringWithOwner returns non-revoked secrets whose expiration date
	// is later than since (recently expired or upcoming), joined with the
	// owner's email.
	ListExpiringWithOwner(ctx context.Context, since time.Time) ([]ExpiringSecret, error)

	WithTx(tx dbx.DBTX) Repository
}
