package notifications

import "context"

type Repository interface {
	Create(ctx context.Context, userID int64, notificationType, message string) (*Notification, error)
	ListForUser(ctx context.Context, userID int64) ([]Notification, error)
}
