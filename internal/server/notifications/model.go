package notifications

import "time"

// TypeKeyExpiration is the audit record type written by the expiry scan.
const TypeKeyExpiration = "key_expiration"

// Notification is a persisted audit record of a message sent (or attempted)
// to a user. Delivery itself is best-effort and tracked separately.
type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Message   string
	CreatedAt time.Time
}
