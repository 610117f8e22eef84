// Package cryptox implements the envelope-encryption scheme that protects
// stored secret material. Every record is sealed under its own symmetric key,
// derived from the owner's password hash plus a fresh random salt, so no two
// records share exposure. AES-GCM authenticates the ciphertext; tampering
// makes decryption fail closed.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/avasilkov/keyvault/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	// SaltSize is the per-record KDF salt width in bytes.
	SaltSize = 16
	// keySize selects AES-256.
	keySize = 32
)

// EncryptedData is the (ciphertext, salt, nonce) triple persisted for each
// secret. Losing any one of the three makes the record unrecoverable; there
// is no secondary key escrow.
type EncryptedData struct {
	Ciphertext []byte
	Salt       []byte
	Nonce      []byte
}

// DeriveRecordKey derives a 32-byte AES key from the owner's password hash
// and a record salt using argon2id. Same inputs always produce the same key.
func DeriveRecordKey(ownerPasswordHash string, salt []byte) []byte {
	return argon2.IDKey([]byte(ownerPasswordHash), salt, 1, 64*1024, 4, keySize)
}

// Encrypt seals plaintext under a key derived from ownerPasswordHash and a
// fresh random salt. A fresh random nonce is generated per call and never
// reused for a given derived key, so encrypting identical plaintext twice
// yields different triples.
func Encrypt(plaintext []byte, ownerPasswordHash string) (*EncryptedData, error) {
	salt := common.GenerateRandByteArray(SaltSize)
	key := DeriveRecordKey(ownerPasswordHash, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	return &EncryptedData{Ciphertext: ciphertext, Salt: salt, Nonce: nonce}, nil
}

// Decrypt reverses Encrypt given the stored triple and the same password
// hash. Any tampering with the ciphertext, or a wrong hash/salt/nonce,
// yields common.ErrCrypto, never garbage plaintext.
func Decrypt(ciphertext, salt, nonce []byte, ownerPasswordHash string) ([]byte, error) {
	key := DeriveRecordKey(ownerPasswordHash, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrCrypto
	}

	return plaintext, nil
}
