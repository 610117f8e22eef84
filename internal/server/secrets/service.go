package secrets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avasilkov/keyvault/internal/common"
	"github.com/avasilkov/keyvault/internal/cryptox"
	"github.com/avasilkov/keyvault/internal/server/keymaterial"
)

// PasswordHashLookup resolves the stored password hash of a principal. The
// hash is the KDF input for every secret the principal owns.
type PasswordHashLookup interface {
	PasswordHashByUserID(ctx context.Context, id int64) (string, error)
}

type Service struct {
	repo   Repository
	hashes PasswordHashLookup
}

func NewService(repo Repository, hashes PasswordHashLookup) *Service {
	return &Service{repo: repo, hashes: hashes}
}

// CreateRequest describes a new secret. Value may be empty for Token and
// APIKey types, in which case material is generated server-side.
type CreateRequest struct {
	Name           string
	Value          string
	Description    *string
	TypeID         int
	Tag            *string
	ExpirationDate *time.Time
}

// Create validates, generates missing material, envelope-encrypts and
// persists a secret for userID.
func (s *Service) Create(ctx context.Context, userID int64, req *CreateRequest) (*Secret, error) {
	keyType, err := keymaterial.ParseKeyType(req.TypeID)
	if err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, fmt.Errorf("%w: key name is required", common.ErrValidation)
	}

	passwordHash, err := s.ownerHash(ctx, userID)
	if err != nil {
		return nil, err
	}

	value := req.Value
	var publicKey *string

	switch keyType {
	case keymaterial.SSHKey:
		pair, err := keymaterial.GenerateSSHKeyPair()
		if err != nil {
			return nil, fmt.Errorf("generating ssh key pair: %w", err)
		}
		value = pair.PrivateKey
		publicKey = &pair.PublicKey

	case keymaterial.Password:
		if value == "" {
			return nil, fmt.Errorf("%w: password value is required", common.ErrValidation)
		}
		if err := keymaterial.ValidatePassword(value); err != nil {
			return nil, err
		}

	case keymaterial.Token:
		if value == "" {
			if value, err = keymaterial.GenerateToken(keymaterial.Token, keymaterial.EncodingBase64); err != nil {
				return nil, err
			}
		}

	case keymaterial.APIKey:
		if value == "" {
			if value, err = keymaterial.GenerateToken(keymaterial.APIKey, keymaterial.EncodingHex); err != nil {
				return nil, err
			}
		}
	}

	enc, err := cryptox.Encrypt([]byte(value), passwordHash)
	if err != nil {
		return nil, err
	}

	secret := &Secret{
		UserID:         userID,
		Name:           req.Name,
		Description:    req.Description,
		TypeID:         keyType,
		Tag:            req.Tag,
		Ciphertext:     enc.Ciphertext,
		Salt:           enc.Salt,
		Nonce:          enc.Nonce,
		PublicKey:      publicKey,
		ExpirationDate: req.ExpirationDate,
	}

	secret, err = s.repo.Create(ctx, secret)
	if err != nil {
		return nil, fmt.Errorf("error creating secret: %w", err)
	}

	return secret, nil
}

// ImportRequest carries an externally supplied OpenSSH key pair.
type ImportRequest struct {
	Name        string
	Description *string
	Tag         *string
	PrivateKey  string
	PublicKey   string
}

// Import validates both halves of the key pair before anything is written.
// Malformed input aborts the import with no partial write.
func (s *Service) Import(ctx context.Context, userID int64, req *ImportRequest) (*Secret, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: key name is required", common.ErrValidation)
	}

	if !keymaterial.ValidateOpenSSHPrivateKey(req.PrivateKey) {
		return nil, fmt.Errorf("%w: private key is not valid OpenSSH format", common.ErrFormatValidation)
	}
	if !keymaterial.ValidateOpenSSHPublicKey(req.PublicKey) {
		return nil, fmt.Errorf("%w: public key is not valid OpenSSH format", common.ErrFormatValidation)
	}

	passwordHash, err := s.ownerHash(ctx, userID)
	if err != nil {
		return nil, err
	}

	enc, err := cryptox.Encrypt([]byte(req.PrivateKey), passwordHash)
	if err != nil {
		return nil, err
	}

	secret := &Secret{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		TypeID:      keymaterial.SSHKey,
		Tag:         req.Tag,
		Ciphertext:  enc.Ciphertext,
		Salt:        enc.Salt,
		Nonce:       enc.Nonce,
		PublicKey:   &req.PublicKey,
	}

	secret, err = s.repo.Create(ctx, secret)
	if err != nil {
		return nil, fmt.Errorf("error importing secret: %w", err)
	}

	return secret, nil
}

func (s *Service) ListActive(ctx context.Context, userID int64) ([]PartialSecret, error) {
	return s.repo.ListActive(ctx, userID)
}

func (s *Service) ListRevoked(ctx context.Context, userID int64) ([]PartialSecret, error) {
	return s.repo.ListRevoked(ctx, userID)
}

func (s *Service) ListExpired(ctx context.Context, userID int64) ([]PartialSecret, error) {
	return s.repo.ListExpired(ctx, userID)
}

func (s *Service) SetExpiration(ctx context.Context, id, userID int64, expiration time.Time) error {
	return s.repo.SetExpiration(ctx, id, userID, expiration)
}

func (s *Service) SetRevoked(ctx context.Context, id, userID int64, revoked bool) error {
	return s.repo.SetRevoked(ctx, id, userID, revoked)
}

func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *Service) ownerHash(ctx context.Context, userID int64) (string, error) {
	hash, err := s.hashes.PasswordHashByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthorized
		}
		return "", common.ErrInternal
	}
	return hash, nil
}

// ReencryptAll decrypts every secret owned by userID under oldHash and seals
// it again under newHash, replacing the stored triples. Callers run it inside
// the same transaction that updates the password hash; skipping it would make
// the owner's secrets permanently unrecoverable.
func ReencryptAll(ctx context.Context, repo Repository, userID int64, oldHash, newHash string) error {
	owned, err := repo.ListByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing secrets for re-encryption: %w", err)
	}

	for i := range owned {
		sec := &owned[i]

		plaintext, err := cryptox.Decrypt(sec.Ciphertext, sec.Salt, sec.Nonce, oldHash)
		if err != nil {
			return fmt.Errorf("decrypting secret %d: %w", sec.ID, err)
		}

		enc, err := cryptox.Encrypt(plaintext, newHash)
		common.WipeByteArray(plaintext)
		if err != nil {
			return fmt.Errorf("re-encrypting secret %d: %w", sec.ID, err)
		}

		if err := repo.ReplaceCiphertext(ctx, sec.ID, enc); err != nil {
			return fmt.Errorf("storing re-encrypted secret %d: %w", sec.ID, err)
		}
	}

	return nil
}
