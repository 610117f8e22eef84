package db

import (
	"context"
	"database/sql"

	"github.com/avasilkov/keyvault/internal/server/notifications"
	"github.com/avasilkov/keyvault/internal/server/resettokens"
	"github.com/avasilkov/keyvault/internal/server/secrets"
	"github.com/avasilkov/keyvault/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Secrets() secrets.Repository
	ResetTokens() resettokens.Repository
	Notifications() notifications.Repository
	Close() error
}
