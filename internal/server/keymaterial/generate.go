package keymaterial

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"math/big"

	"github.com/avasilkov/keyvault/internal/common"
	"golang.org/x/crypto/ssh"
)

// tokenByteLength is the amount of random material behind a generated
// token or API key, before encoding.
const tokenByteLength = 32

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars     = "0123456789"
	symbolChars    = "!?@#$%^&|*_-+/=<>(){}[]"
)

// PasswordPolicy selects the character classes included in a generated
// password.
type PasswordPolicy struct {
	Length         int
	IncludeLower   bool
	IncludeUpper   bool
	IncludeNumbers bool
	IncludeSymbols bool
}

// GeneratePassword builds a random password from the requested character
// classes using a cryptographically secure source. An empty charset yields
// an empty string.
func GeneratePassword(p PasswordPolicy) (string, error) {
	var charset string
	if p.IncludeLower {
		charset += lowercaseChars
	}
	if p.IncludeUpper {
		charset += uppercaseChars
	}
	if p.IncludeNumbers {
		charset += digitChars
	}
	if p.IncludeSymbols {
		charset += symbolChars
	}
	if charset == "" {
		return "", nil
	}

	out := make([]byte, p.Length)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
		out[i] = charset[n.Int64()]
	}

	return string(out), nil
}

// GenerateToken produces random secret material for Token and APIKey types.
// Tokens are base64-encoded, API keys hex-encoded.
func GenerateToken(t KeyType, enc Encoding) (string, error) {
	switch t {
	case Token, APIKey:
	default:
		return "", fmt.Errorf("%w: cannot generate material for %s", common.ErrValidation, t)
	}

	switch enc {
	case EncodingBase64:
		return common.MakeRandBase64String(tokenByteLength)
	case EncodingHex:
		return common.MakeRandHexString(tokenByteLength)
	default:
		return "", fmt.Errorf("%w: unknown encoding", common.ErrValidation)
	}
}

// SSHKeyPair holds a freshly generated pair. The private half is what gets
// envelope-encrypted; the public half is stored unencrypted alongside it.
type SSHKeyPair struct {
	PrivateKey string // OpenSSH PEM
	PublicKey  string // authorized_keys line
}

// GenerateSSHKeyPair creates an ed25519 key pair, the private half in
// OpenSSH PEM format and the public half as an authorized_keys line.
func GenerateSSHKeyPair() (*SSHKeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating ed25519 keypair: %w", err)
	}

	pemBlock, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		return nil, fmt.Errorf("marshaling private key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("converting public key: %w", err)
	}

	return &SSHKeyPair{
		PrivateKey: string(pem.EncodeToMemory(pemBlock)),
		PublicKey:  string(ssh.MarshalAuthorizedKey(sshPub)),
	}, nil
}
