package resettokens

import "time"

// ResetToken is a single-use password reset credential. At most one live
// token exists per user: creating a new one deletes all prior tokens.
type ResetToken struct {
	ID             int64
	UserID         int64
	Token          string
	ExpirationDate time.Time
	CreatedAt      time.Time
}

// Expired reports whether the token is past its expiration date at now.
func (t *ResetToken) Expired(now time.Time) bool {
	return t.ExpirationDate.Before(now)
}
