package secrets

import (
	"time"

	"github.com/avasilkov/keyvault/internal/server/keymaterial"
)

// Secret is a stored credential. Ciphertext, Salt and Nonce are mutually
// consistent: decrypting Ciphertext with the key derived from the owner's
// password hash and Salt, under Nonce, reproduces the original value.
// Only SSH key pairs carry PublicKey (the non-secret half).
type Secret struct {
	ID             int64
	UserID         int64
	Name           string
	Description    *string
	TypeID         keymaterial.KeyType
	Tag            *string
	Ciphertext     []byte
	Salt           []byte
	Nonce          []byte
	PublicKey      *string
	ExpirationDate *time.Time
	Revoked        bool
	CreatedAt      time.Time
}

// PartialSecret is the list-view projection. It never carries ciphertext or
// any other secret material.
type PartialSecret struct {
	ID             int64
	Name           string
	Description    *string
	TypeID         keymaterial.KeyType
	TypeName       string
	Tag            *string
	ExpirationDate *time.Time
}

// ExpiringSecret is one row of the expiry scan: a secret inside the
// notification window joined with its owner's address.
type ExpiringSecret struct {
	UserID         int64
	Email          string
	Name           string
	TypeName       string
	Description    *string
	CreatedAt      time.Time
	ExpirationDate time.Time
}
