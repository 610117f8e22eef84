package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/avasilkov/keyvault/internal/common"
	"github.com/avasilkov/keyvault/internal/cryptox"
	"github.com/avasilkov/keyvault/internal/dbx"
	"github.com/avasilkov/keyvault/internal/server/keymaterial"
)

func parseTypeID(id int) (keymaterial.KeyType, error) {
	t, err := keymaterial.ParseKeyType(id)
	if err != nil {
		return 0, fmt.Errorf("unexpected key type in storage: %w", err)
	}
	return t, nil
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) WithTx(tx dbx.DBTX) Repository {
	return &PostgresRepository{db: tx}
}

func (r *PostgresRepository) Create(ctx context.Context, secret *Secret) (*Secret, error) {
	query :=
		`INSERT INTO keys (user_id, key_name, key_description, key_type_id, key_tag,
		                   key_value, salt, nonce, key_pair_value, expiration_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		secret.UserID, secret.Name, secret.Description, int(secret.TypeID), secret.Tag,
		secret.Ciphertext, secret.Salt, secret.Nonce, secret.PublicKey, secret.ExpirationDate,
	).Scan(&secret.ID, &secret.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return secret, nil
}

const partialSelect = `
	SELECT keys.id, key_name, key_description, key_type_id, key_type, key_tag, expiration_date
	FROM keys
	JOIN key_types ON key_types.id = keys.key_type_id
	WHERE user_id = $1`

func (r *PostgresRepository) ListActive(ctx context.Context, userID int64) ([]PartialSecret, error) {
	query := partialSelect + `
	  AND (expiration_date IS NULL OR expiration_date > CURRENT_TIMESTAMP)
	  AND is_revoked = false`
	return r.listPartial(ctx, query, userID)
}

func (r *PostgresRepository) ListRevoked(ctx context.Context, userID int64) ([]PartialSecret, error) {
	query := partialSelect + `
	  AND is_revoked = true`
	return r.listPartial(ctx, query, userID)
}

func (r *PostgresRepository) ListExpired(ctx context.Context, userID int64) ([]PartialSecret, error) {
	query := partialSelect + `
	  AND expiration_date < CURRENT_TIMESTAMP
	  AND is_revoked = false`
	return r.listPartial(ctx, query, userID)
}

func (r *PostgresRepository) listPartial(ctx context.Context, query string, userID int64) ([]PartialSecret, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var result []PartialSecret
	for rows.Next() {
		var s PartialSecret
		var typeID int
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &typeID, &s.TypeName, &s.Tag, &s.ExpirationDate); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		s.TypeID, err = parseTypeID(typeID)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID int64) ([]Secret, error) {
	query :=
		`SELECT id, user_id, key_name, key_description, key_type_id, key_tag,
		        key_value, salt, nonce, key_pair_value, expiration_date, is_revoked, created_at
		 FROM keys
		 WHERE user_id = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var result []Secret
	for rows.Next() {
		var s Secret
		var typeID int
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &typeID, &s.Tag,
			&s.Ciphertext, &s.Salt, &s.Nonce, &s.PublicKey, &s.ExpirationDate, &s.Revoked, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		s.TypeID, err = parseTypeID(typeID)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) SetExpiration(ctx context.Context, id, userID int64, expiration time.Time) error {
	query := `UPDATE keys SET expiration_date = $1 WHERE id = $2 AND user_id = $3`
	return r.execOwned(ctx, query, expiration, id, userID)
}

func (r *PostgresRepository) SetRevoked(ctx context.Context, id, userID int64, revoked bool) error {
	query := `UPDATE keys SET is_revoked = $1 WHERE id = $2 AND user_id = $3`
	return r.execOwned(ctx, query, revoked, id, userID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM keys WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return requireAffected(res.RowsAffected())
}

func (r *PostgresRepository) execOwned(ctx context.Context, query string, value any, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, query, value, id, userID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return requireAffected(res.RowsAffected())
}

func (r *PostgresRepository) ReplaceCiphertext(ctx context.Context, id int64, enc *cryptox.EncryptedData) error {
	query := `UPDATE keys SET key_value = $1, salt = $2, nonce = $3 WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, enc.Ciphertext, enc.Salt, enc.Nonce, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return requireAffected(res.RowsAffected())
}

func (r *PostgresRepository) ListExpiringWithOwner(ctx context.Context, since time.Time) ([]ExpiringSecret, error) {
	query :=
		`SELECT users.id AS user_id, users.email, keys.key_name, key_types.key_type,
		        keys.key_description, keys.created_at, keys.expiration_date
		 FROM keys
		 JOIN users ON keys.user_id = users.id
		 JOIN key_types ON key_types.id = keys.key_type_id
		 WHERE keys.expiration_date >= $1
		   AND keys.is_revoked = false
		 `

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var result []ExpiringSecret
	for rows.Next() {
		var s ExpiringSecret
		if err := rows.Scan(&s.UserID, &s.Email, &s.Name, &s.TypeName,
			&s.Description, &s.CreatedAt, &s.ExpirationDate); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

func requireAffected(affected int64, err error) error {
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
