package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avasilkov/keyvault/internal/server/migrations"
	"github.com/avasilkov/keyvault/internal/server/notifications"
	"github.com/avasilkov/keyvault/internal/server/resettokens"
	"github.com/avasilkov/keyvault/internal/server/secrets"
	"github.com/avasilkov/keyvault/internal/server/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
)

type PostgresRepositoryManager struct {
	db            *sql.DB
	users         users.Repository
	secrets       secrets.Repository
	resetTokens   resettokens.Repository
	notifications notifications.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) Secrets() secrets.Repository {
	return m.secrets
}

func (m *PostgresRepositoryManager) ResetTokens() resettokens.Repository {
	return m.resetTokens
}

func (m *PostgresRepositoryManager) Notifications() notifications.Repository {
	return m.notifications
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresRepositoryManager(ctx context.Context, dsn string) (RepositoryManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	// The database container may come up after the server does; retry the
	// first contact before giving up.
	backoff := retry.WithMaxRetries(5, retry.NewExponential(1*time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:            db,
		users:         users.NewPostgresRepository(db),
		secrets:       secrets.NewPostgresRepository(db),
		resetTokens:   resettokens.NewPostgresRepository(db),
		notifications: notifications.NewPostgresRepository(db),
	}

	if err := m.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
