package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avasilkov/keyvault/internal/common"
	"github.com/avasilkov/keyvault/internal/dbx"
	"github.com/avasilkov/keyvault/internal/logging"
	"github.com/avasilkov/keyvault/internal/server/auth"
	"github.com/avasilkov/keyvault/internal/server/config"
	"github.com/avasilkov/keyvault/internal/server/mailer"
	"github.com/avasilkov/keyvault/internal/server/resettokens"
	"github.com/avasilkov/keyvault/internal/server/secrets"
	"github.com/google/uuid"
)

type Service struct {
	repo                       Repository
	resetTokenRepo             resettokens.Repository
	secretRepo                 secrets.Repository
	db                         *sql.DB
	queue                      *mailer.Queue
	logger                     logging.Logger
	jwtSecret                  []byte
	tokenValidityDuration      time.Duration
	resetTokenValidityDuration time.Duration
	senderAddress              string
}

func NewService(repo Repository, resetTokenRepo resettokens.Repository, secretRepo secrets.Repository,
	db *sql.DB, queue *mailer.Queue, logger logging.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:                       repo,
		resetTokenRepo:             resetTokenRepo,
		secretRepo:                 secretRepo,
		db:                         db,
		queue:                      queue,
		logger:                     logger.With("module", "user_service"),
		jwtSecret:                  []byte(cfg.JWTSecret),
		tokenValidityDuration:      cfg.TokenValidityDuration,
		resetTokenValidityDuration: cfg.ResetTokenValidityDuration,
		senderAddress:              cfg.SMTPUsername,
	}
}

// Register creates a new principal and issues its first session token.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, string, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, "", err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, "", err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	user, err := s.repo.Create(ctx, &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, "", common.ErrConflict
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	return user, token, nil
}

// Login verifies credentials and issues a session token. Failures look
// identical whether the email is unknown or the password is wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrUnauthorized
		}
		return nil, "", common.ErrInternal
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		return nil, "", common.ErrInternal
	}
	if !ok {
		return nil, "", common.ErrUnauthorized
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	return user, token, nil
}

// CurrentUser looks up the authenticated principal and refreshes its token.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*User, string, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrUnauthorized
		}
		return nil, "", common.ErrInternal
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	return user, token, nil
}

func (s *Service) ChangeEmail(ctx context.Context, userID int64, email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return s.repo.UpdateEmail(ctx, userID, email)
}

func (s *Service) ChangeUsername(ctx context.Context, userID int64, username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	return s.repo.UpdateUsername(ctx, userID, username)
}

// ChangePassword re-verifies the old password, then atomically replaces the
// hash and re-encrypts every secret the user owns. The stored hash is the
// KDF input for the user's secrets, so skipping the re-encryption would
// leave them all permanently unrecoverable.
func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnauthorized
		}
		return common.ErrInternal
	}

	ok, err := auth.CheckPassword(oldPassword, user.PasswordHash)
	if err != nil {
		return common.ErrInternal
	}
	if !ok {
		return common.ErrUnauthorized
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	newHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrInternal
	}

	return s.rotatePasswordHash(ctx, userID, user.PasswordHash, newHash, "")
}

// DeleteAccount re-verifies the password and removes the principal. Secrets
// and reset tokens go with it via storage-level cascade.
func (s *Service) DeleteAccount(ctx context.Context, userID int64, password string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnauthorized
		}
		return common.ErrInternal
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		return common.ErrInternal
	}
	if !ok {
		return common.ErrUnauthorized
	}

	return s.repo.Delete(ctx, userID)
}

// RequestPasswordReset issues a fresh single-use reset token and mails it to
// the user. Any previous tokens for the user are invalidated in the same
// transaction. An unknown email is not an error: the response is uniform
// either way so the endpoint cannot be used to enumerate accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Debug(ctx, "reset requested for unknown email")
			return nil
		}
		return common.ErrInternal
	}

	resetToken := uuid.NewString()
	expiration := time.Now().Add(s.resetTokenValidityDuration)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.resetTokenRepo.WithTx(tx)
		if err := repo.DeleteAllForUser(ctx, user.ID); err != nil {
			return err
		}
		_, err := repo.Create(ctx, user.ID, resetToken, expiration)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "error storing reset token", "error", err)
		return common.ErrInternal
	}

	s.queue.Enqueue(ctx, mailer.Job{
		Recipient: user.Email,
		Subject:   "Reset Password",
		Body: fmt.Sprintf("Your secret reset token is: \n%s\nNow you can reset your password using this token.",
			resetToken),
	})

	return nil
}

// ResetPassword consumes a reset token: the password hash is replaced, the
// owner's secrets are re-encrypted and the token row is deleted, all in one
// transaction. An expired token is invalidated without consumption.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	rt, err := s.resetTokenRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	if rt.Expired(time.Now()) {
		return common.ErrResetTokenExpired
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.repo.GetByID(ctx, rt.UserID)
	if err != nil {
		return common.ErrInternal
	}

	newHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrInternal
	}

	return s.rotatePasswordHash(ctx, user.ID, user.PasswordHash, newHash, token)
}

// rotatePasswordHash swaps the stored hash and re-encrypts the owner's
// secrets as one unit of work. When consumeToken is non-empty the reset
// token is deleted in the same transaction (single-use guarantee).
func (s *Service) rotatePasswordHash(ctx context.Context, userID int64, oldHash, newHash, consumeToken string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := secrets.ReencryptAll(ctx, s.secretRepo.WithTx(tx), userID, oldHash, newHash); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).UpdatePasswordHash(ctx, userID, newHash); err != nil {
			return err
		}
		if consumeToken != "" {
			if err := s.resetTokenRepo.WithTx(tx).DeleteByToken(ctx, consumeToken); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "error rotating password hash", "error", err)
		return common.ErrInternal
	}

	return nil
}

func (s *Service) issueToken(userID int64) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.tokenValidityDuration)
}
