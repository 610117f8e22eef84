package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avasilkov/keyvault/internal/common"
	"github.com/avasilkov/keyvault/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) WithTx(tx dbx.DBTX) Repository {
	return &PostgresRepository{db: tx}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, token string, expiration time.Time) (*ResetToken, error) {
	query :=
		`INSERT INTO password_reset_tokens (user_id, reset_token, expiration_date)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	rt := &ResetToken{UserID: userID, Token: token, ExpirationDate: expiration}
	err := r.db.QueryRowContext(ctx, query, userID, token, expiration).Scan(&rt.ID, &rt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return rt, nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*ResetToken, error) {
	query :=
		`SELECT id, user_id, reset_token, expiration_date, created_at
		 FROM password_reset_tokens
		 WHERE reset_token = $1
		 `

	rt := &ResetToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&rt.ID, &rt.UserID, &rt.Token, &rt.ExpirationDate, &rt.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return rt, nil
}

func (r *PostgresRepository) DeleteByToken(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE reset_token = $1`, token)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}
