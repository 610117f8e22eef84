package keymaterial

import (
	"fmt"

	"github.com/avasilkov/keyvault/internal/common"
	"golang.org/x/crypto/ssh"
)

// Secret-value password policy, distinct from account password strength
// rules enforced at registration.
const (
	minSecretPasswordLength = 8
	maxSecretPasswordLength = 128
)

// ValidatePassword enforces the policy for password-type secret values.
func ValidatePassword(value string) error {
	if len(value) < minSecretPasswordLength || len(value) > maxSecretPasswordLength {
		return fmt.Errorf("%w: password must be between %d and %d characters",
			common.ErrValidation, minSecretPasswordLength, maxSecretPasswordLength)
	}
	return nil
}

// ValidateOpenSSHPrivateKey reports whether text parses as an unencrypted
// OpenSSH-format private key.
func ValidateOpenSSHPrivateKey(text string) bool {
	_, err := ssh.ParseRawPrivateKey([]byte(text))
	return err == nil
}

// ValidateOpenSSHPublicKey reports whether text parses as an authorized_keys
// public key line.
func ValidateOpenSSHPublicKey(text string) bool {
	_, _, _, _, err := ssh.ParseAuthorizedKey([]byte(text))
	return err == nil
}
