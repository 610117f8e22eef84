package httpapi

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/avasilkov/keyvault/internal/common"
	"github.com/avasilkov/keyvault/internal/cryptox"
	"github.com/avasilkov/keyvault/internal/dbx"
	"github.com/avasilkov/keyvault/internal/server/notifications"
	"github.com/avasilkov/keyvault/internal/server/resettokens"
	"github.com/avasilkov/keyvault/internal/server/secrets"
	"github.com/avasilkov/keyvault/internal/server/users"
	_ "modernc.org/sqlite"
)

// In-memory repository fakes mirroring the SQL scoping rules, so handler
// tests exercise the full service stack without Postgres.

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]users.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: map[int64]users.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return nil, common.ErrConflict
		}
	}
	created := *user
	created.ID = r.nextID
	created.CreatedAt = time.Now()
	r.nextID++
	r.users[created.ID] = created
	return &created, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) UpdateEmail(ctx context.Context, id int64, email string) error {
	return r.update(id, func(u *users.User) { u.Email = email })
}

func (r *memUserRepo) UpdateUsername(ctx context.Context, id int64, username string) error {
	return r.update(id, func(u *users.User) { u.Username = username })
}

func (r *memUserRepo) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	return r.update(id, func(u *users.User) { u.PasswordHash = passwordHash })
}

func (r *memUserRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) WithTx(tx dbx.DBTX) users.Repository { return r }

func (r *memUserRepo) update(id int64, apply func(*users.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	apply(&user)
	r.users[id] = user
	return nil
}

type memSecretRepo struct {
	mu      sync.Mutex
	nextID  int64
	secrets map[int64]secrets.Secret
}

func newMemSecretRepo() *memSecretRepo {
	return &memSecretRepo{nextID: 1, secrets: map[int64]secrets.Secret{}}
}

func (r *memSecretRepo) Create(ctx context.Context, secret *secrets.Secret) (*secrets.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := *secret
	created.ID = r.nextID
	created.CreatedAt = time.Now()
	r.nextID++
	r.secrets[created.ID] = created
	return &created, nil
}

func (r *memSecretRepo) list(userID int64, match func(*secrets.Secret) bool) []secrets.PartialSecret {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []secrets.PartialSecret
	for _, sec := range r.secrets {
		if sec.UserID != userID || !match(&sec) {
			continue
		}
		out = append(out, secrets.PartialSecret{
			ID:             sec.ID,
			Name:           sec.Name,
			Description:    sec.Description,
			TypeID:         sec.TypeID,
			TypeName:       sec.TypeID.String(),
			Tag:            sec.Tag,
			ExpirationDate: sec.ExpirationDate,
		})
	}
	return out
}

func (r *memSecretRepo) ListActive(ctx context.Context, userID int64) ([]secrets.PartialSecret, error) {
	now := time.Now()
	return r.list(userID, func(s *secrets.Secret) bool {
		return !s.Revoked && (s.ExpirationDate == nil || s.ExpirationDate.After(now))
	}), nil
}

func (r *memSecretRepo) ListRevoked(ctx context.Context, userID int64) ([]secrets.PartialSecret, error) {
	return r.list(userID, func(s *secrets.Secret) bool { return s.Revoked }), nil
}

func (r *memSecretRepo) ListExpired(ctx context.Context, userID int64) ([]secrets.PartialSecret, error) {
	now := time.Now()
	return r.list(userID, func(s *secrets.Secret) bool {
		return !s.Revoked && s.ExpirationDate != nil && s.ExpirationDate.Before(now)
	}), nil
}

func (r *memSecretRepo) ListByOwner(ctx context.Context, userID int64) ([]secrets.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []secrets.Secret
	for _, sec := range r.secrets {
		if sec.UserID == userID {
			out = append(out, sec)
		}
	}
	return out, nil
}

func (r *memSecretRepo) SetExpiration(ctx context.Context, id, userID int64, expiration time.Time) error {
	return r.updateOwned(id, userID, func(s *secrets.Secret) { s.ExpirationDate = &expiration })
}

func (r *memSecretRepo) SetRevoked(ctx context.Context, id, userID int64, revoked bool) error {
	return r.updateOwned(id, userID, func(s *secrets.Secret) { s.Revoked = revoked })
}

func (r *memSecretRepo) Delete(ctx context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sec, ok := r.secrets[id]
	if !ok || sec.UserID != userID {
		return common.ErrNotFound
	}
	delete(r.secrets, id)
	return nil
}

func (r *memSecretRepo) ReplaceCiphertext(ctx context.Context, id int64, enc *cryptox.EncryptedData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sec, ok := r.secrets[id]
	if !ok {
		return common.ErrNotFound
	}
	sec.Ciphertext = enc.Ciphertext
	sec.Salt = enc.Salt
	sec.Nonce = enc.Nonce
	r.secrets[id] = sec
	return nil
}

func (r *memSecretRepo) ListExpiringWithOwner(ctx context.Context, since time.Time) ([]secrets.ExpiringSecret, error) {
	return nil, nil
}

func (r *memSecretRepo) WithTx(tx dbx.DBTX) secrets.Repository { return r }

func (r *memSecretRepo) updateOwned(id, userID int64, apply func(*secrets.Secret)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sec, ok := r.secrets[id]
	if !ok || sec.UserID != userID {
		return common.ErrNotFound
	}
	apply(&sec)
	r.secrets[id] = sec
	return nil
}

type memNotificationRepo struct {
	mu     sync.Mutex
	nextID int64
	items  []notifications.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{nextID: 1}
}

func (r *memNotificationRepo) Create(ctx context.Context, userID int64, notificationType, message string) (*notifications.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := notifications.Notification{
		ID: r.nextID, UserID: userID, Type: notificationType,
		Message: message, CreatedAt: time.Now(),
	}
	r.nextID++
	r.items = append(r.items, n)
	return &n, nil
}

func (r *memNotificationRepo) ListForUser(ctx context.Context, userID int64) ([]notifications.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notifications.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID == userID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

type memResetTokenRepo struct {
	mu     sync.Mutex
	nextID int64
	tokens map[string]resettokens.ResetToken
}

func newMemResetTokenRepo() *memResetTokenRepo {
	return &memResetTokenRepo{nextID: 1, tokens: map[string]resettokens.ResetToken{}}
}

func (r *memResetTokenRepo) Create(ctx context.Context, userID int64, token string, expiration time.Time) (*resettokens.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := resettokens.ResetToken{
		ID: r.nextID, UserID: userID, Token: token,
		ExpirationDate: expiration, CreatedAt: time.Now(),
	}
	r.nextID++
	r.tokens[token] = created
	return &created, nil
}

func (r *memResetTokenRepo) GetByToken(ctx context.Context, token string) (*resettokens.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &t, nil
}

func (r *memResetTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return common.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *memResetTokenRepo) DeleteAllForUser(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, token)
		}
	}
	return nil
}

func (r *memResetTokenRepo) WithTx(tx dbx.DBTX) resettokens.Repository { return r }

// openTestDB returns an in-memory database for the transaction plumbing the
// fakes ignore.
func openTestDB() (*sql.DB, error) {
	return sql.Open("sqlite", ":memory:")
}
