package users

import "time"

// User is a registered principal. PasswordHash never crosses the API
// boundary; it also doubles as the KDF input for the owner's secrets, so
// changing it requires re-encrypting everything the user owns.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
