package users

import (
	"fmt"
	"net/mail"

	"github.com/avasilkov/keyvault/internal/common"
)

// Account-level validation policy, applied at registration and profile
// change. The secret-value password policy lives in keymaterial.
const (
	minPasswordLength = 8
	maxPasswordLength = 128
	minUsernameLength = 2
	maxUsernameLength = 32
)

func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be between %d and %d characters",
			common.ErrValidation, minPasswordLength, maxPasswordLength)
	}
	return nil
}

func ValidateUsername(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return fmt.Errorf("%w: username must be between %d and %d characters",
			common.ErrValidation, minUsernameLength, maxUsernameLength)
	}
	return nil
}
