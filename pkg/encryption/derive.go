package encryption

import (
	"crypto/sha256"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/hkdf"
)

// HKDF salt bounds for DeriveSymmetricKey
const (
	MinHKDFSaltLength = 16
	MaxHKDFSaltLength = 64
)

// DeriveSymmetricKey derives a subkey of the given size from master using
// HKDF-SHA256. The same master, salt and info always yield the same key, so
// peers holding a shared conversation key can derive per-purpose keys (for
// example one per channel) without exchanging more material.
func (m *KeyManager) DeriveSymmetricKey(master *SymmetricKey, salt, info []byte, bits int) (*SymmetricKey, error) {
	const op = "DeriveSymmetricKey"

	switch bits {
	case 128, 192, 256:
	default:
		return nil, NewError(op, ErrInvalidArgument, "unsupported AES key size %d bits (supported: 128, 192, 256)", bits)
	}
	if master == nil || master.Destroyed() || master.Len() == 0 {
		return nil, NewError(op, ErrInvalidKey, "master key is missing or destroyed")
	}
	if len(salt) < MinHKDFSaltLength || len(salt) > MaxHKDFSaltLength {
		return nil, NewError(op, ErrInvalidArgument, "salt length must be %d..%d bytes, got %d",
			MinHKDFSaltLength, MaxHKDFSaltLength, len(salt))
	}
	if len(info) == 0 {
		return nil, NewError(op, ErrInvalidArgument, "info cannot be empty")
	}

	ikm := master.Encoded()
	defer SecureZero(ikm)

	derived := make([]byte, bits/8)
	defer SecureZero(derived)

	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, info), derived); err != nil {
		return nil, WrapError(op, ErrEncryptionFailure, err, "HKDF key derivation failed")
	}

	key := NewSymmetricKey(AlgorithmAES, derived)
	m.logger.WithFields(logrus.Fields{
		"bits":               bits,
		"master_fingerprint": Fingerprint(master),
		"key_fingerprint":    Fingerprint(key),
	}).Debug("Derived symmetric key")

	return key, nil
}

// GenerateSalt returns a random salt suitable for DeriveSymmetricKey.
func (m *KeyManager) GenerateSalt(length int) ([]byte, error) {
	if length < MinHKDFSaltLength || length > MaxHKDFSaltLength {
		return nil, NewError("GenerateSalt", ErrInvalidArgument, "salt length must be %d..%d bytes, got %d",
			MinHKDFSaltLength, MaxHKDFSaltLength, length)
	}

	salt := make([]byte, length)
	if _, err := io.ReadFull(m.random, salt); err != nil {
		return nil, WrapError("GenerateSalt", ErrEncryptionFailure, err, "failed to generate salt")
	}
	return salt, nil
}
