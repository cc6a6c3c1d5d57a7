package encryption

import (
	"crypto/rand"
	"crypto/rsa"
	"io"

	"github.com/sirupsen/logrus"
)

// MinRSAKeyBits is the smallest RSA modulus accepted anywhere in this module.
const MinRSAKeyBits = 2048

// KeyManager generates key material from a cryptographically secure source.
type KeyManager struct {
	random io.Reader
	logger *logrus.Entry
}

// KeyManagerOption configures a KeyManager
type KeyManagerOption func(*KeyManager)

// WithKeyRandom replaces the random source. Intended for tests; the default
// crypto/rand.Reader is safe for concurrent use.
func WithKeyRandom(r io.Reader) KeyManagerOption {
	return func(m *KeyManager) {
		m.random = r
	}
}

// NewKeyManager creates a key manager backed by crypto/rand.
func NewKeyManager(opts ...KeyManagerOption) *KeyManager {
	m := &KeyManager{
		random: rand.Reader,
		logger: logrus.WithField("component", "key-manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GenerateSymmetricKey returns a fresh AES key of 128, 192 or 256 bits.
func (m *KeyManager) GenerateSymmetricKey(bits int) (*SymmetricKey, error) {
	const op = "GenerateSymmetricKey"

	switch bits {
	case 128, 192, 256:
	default:
		return nil, NewError(op, ErrInvalidArgument, "unsupported AES key size %d bits (supported: 128, 192, 256)", bits)
	}

	material := make([]byte, bits/8)
	defer SecureZero(material)

	if _, err := io.ReadFull(m.random, material); err != nil {
		return nil, WrapError(op, ErrEncryptionFailure, err, "failed to read random key material")
	}

	key := NewSymmetricKey(AlgorithmAES, material)
	m.logger.WithFields(logrus.Fields{
		"bits":            bits,
		"key_fingerprint": Fingerprint(key),
	}).Debug("Generated symmetric key")

	return key, nil
}

// GenerateAsymmetricKeyPair returns a fresh RSA key pair with the given
// modulus size.
func (m *KeyManager) GenerateAsymmetricKeyPair(bits int) (*RSAPublicKey, *RSAPrivateKey, error) {
	const op = "GenerateAsymmetricKeyPair"

	if bits < MinRSAKeyBits {
		return nil, nil, NewError(op, ErrInvalidArgument, "RSA key size must be at least %d bits, got %d", MinRSAKeyBits, bits)
	}
	if bits%8 != 0 {
		return nil, nil, NewError(op, ErrInvalidArgument, "RSA key size must be a multiple of 8, got %d", bits)
	}

	privateKey, err := rsa.GenerateKey(m.random, bits)
	if err != nil {
		return nil, nil, WrapError(op, ErrEncryptionFailure, err, "failed to generate RSA key pair")
	}

	priv := NewRSAPrivateKey(privateKey)
	pub := priv.Public()

	m.logger.WithFields(logrus.Fields{
		"bits":            bits,
		"key_fingerprint": Fingerprint(pub),
	}).Debug("Generated asymmetric key pair")

	return pub, priv, nil
}
