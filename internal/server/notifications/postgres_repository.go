package notifications

import (
	"context"
	"fmt"

	"github.com/avasilkov/keyvault/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, notificationType, message string) (*Notification, error) {
	query :=
		`INSERT INTO notifications (user_id, notification_type, message)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	n := &Notification{UserID: userID, Type: notificationType, Message: message}
	err := r.db.QueryRowContext(ctx, query, userID, notificationType, message).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64) ([]Notification, error) {
	query :=
		`SELECT id, user_id, notification_type, message, created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}
