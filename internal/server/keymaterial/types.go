// Package keymaterial provides type-specific secret generation and import
// validation: random passwords, random tokens (hex/base64), SSH key pair
// generation and OpenSSH format validation for imported keys.
package keymaterial

import (
	"fmt"

	"github.com/avasilkov/keyvault/internal/common"
)

// KeyType is the closed set of secret kinds. Values match the key_types
// lookup table so they round-trip through the API unchanged.
type KeyType int

const (
	Password KeyType = 1
	Token    KeyType = 2
	APIKey   KeyType = 3
	SSHKey   KeyType = 4
)

// Encoding selects the textual form of generated token material.
type Encoding int

const (
	EncodingHex Encoding = iota
	EncodingBase64
)

// ParseKeyType validates a wire-level type id. Anything outside the closed
// set is a validation error, so no unhandled numeric type slips through.
func ParseKeyType(id int) (KeyType, error) {
	switch KeyType(id) {
	case Password, Token, APIKey, SSHKey:
		return KeyType(id), nil
	default:
		return 0, fmt.Errorf("%w: unknown key type id %d", common.ErrValidation, id)
	}
}

func (t KeyType) String() string {
	switch t {
	case Password:
		return "password"
	case Token:
		return "token"
	case APIKey:
		return "api_key"
	case SSHKey:
		return "ssh_key"
	default:
		return fmt.Sprintf("key_type(%d)", int(t))
	}
}
