package keyencryption

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/guided-traffic/chatcrypt/pkg/encryption"
)

// oaepHashSize is the SHA-256 digest length used by OAEP
const oaepHashSize = sha256.Size

// RSAEngine implements RSA-OAEP with SHA-256. It carries no IV or tag and
// does not split long plaintexts: callers that need more than
// MaxPlaintextSize bytes use hybrid encryption.
type RSAEngine struct {
	random io.Reader
	logger *logrus.Entry
}

// Option configures an RSAEngine
type Option func(*RSAEngine)

// WithRandom replaces the OAEP padding source. The default is crypto/rand.Reader.
func WithRandom(r io.Reader) Option {
	return func(e *RSAEngine) {
		e.random = r
	}
}

// NewRSAEngine creates a new RSA-OAEP engine
func NewRSAEngine(opts ...Option) *RSAEngine {
	e := &RSAEngine{
		random: rand.Reader,
		logger: logrus.WithField("component", "rsa-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Algorithm returns the algorithm description
func (e *RSAEngine) Algorithm() encryption.AlgorithmSpec {
	return encryption.RSA4096()
}

// MaxPlaintextSize returns the OAEP/SHA-256 plaintext bound for pub.
func MaxPlaintextSize(pub *rsa.PublicKey) int {
	return pub.Size() - 2*oaepHashSize - 2
}

// ValidateKey checks the algorithm tag and encoding without caring which
// half the key is.
func (e *RSAEngine) ValidateKey(key encryption.Key) error {
	const op = "rsa.ValidateKey"

	if key == nil {
		return encryption.NewError(op, encryption.ErrInvalidKey, "key cannot be nil")
	}
	if key.Algorithm() != encryption.AlgorithmRSA {
		return encryption.NewError(op, encryption.ErrInvalidKey, "expected %s key, got %q", encryption.AlgorithmRSA, key.Algorithm())
	}
	encoded := key.Encoded()
	defer encryption.SecureZero(encoded)
	if len(encoded) == 0 {
		return encryption.NewError(op, encryption.ErrInvalidKey, "key has an empty encoding")
	}
	return nil
}

// publicKey resolves the key used for encryption. A private key handle is
// accepted and its public half used.
func (e *RSAEngine) publicKey(key encryption.Key) (*rsa.PublicKey, error) {
	const op = "rsa.Encrypt"

	if err := e.ValidateKey(key); err != nil {
		return nil, err
	}

	var pub *rsa.PublicKey
	switch k := key.(type) {
	case *encryption.RSAPublicKey:
		pub = k.PublicKey()
	case *encryption.RSAPrivateKey:
		if priv := k.PrivateKey(); priv != nil {
			pub = &priv.PublicKey
		}
	default:
		return nil, encryption.NewError(op, encryption.ErrInvalidKey, "unsupported RSA key type %T", key)
	}
	if pub == nil {
		return nil, encryption.NewError(op, encryption.ErrInvalidKey, "key has been destroyed")
	}
	if bits := pub.N.BitLen(); bits < encryption.MinRSAKeyBits {
		return nil, encryption.NewError(op, encryption.ErrInvalidKey, "RSA key size must be at least %d bits, got %d", encryption.MinRSAKeyBits, bits)
	}
	return pub, nil
}

// privateKey resolves the key used for decryption.
func (e *RSAEngine) privateKey(key encryption.Key) (*rsa.PrivateKey, error) {
	const op = "rsa.Decrypt"

	if err := e.ValidateKey(key); err != nil {
		return nil, err
	}

	k, ok := key.(*encryption.RSAPrivateKey)
	if !ok {
		return nil, encryption.NewError(op, encryption.ErrInvalidKey, "decryption requires an RSA private key, got %T", key)
	}
	priv := k.PrivateKey()
	if priv == nil {
		return nil, encryption.NewError(op, encryption.ErrInvalidKey, "key has been destroyed")
	}
	if bits := priv.N.BitLen(); bits < encryption.MinRSAKeyBits {
		return nil, encryption.NewError(op, encryption.ErrInvalidKey, "RSA key size must be at least %d bits, got %d", encryption.MinRSAKeyBits, bits)
	}
	return priv, nil
}

// ValidateDecryptKey checks that key is a live RSA private key.
func (e *RSAEngine) ValidateDecryptKey(key encryption.Key) error {
	_, err := e.privateKey(key)
	return err
}

// ValidateEncryptInput checks the key and the plaintext length bound.
func (e *RSAEngine) ValidateEncryptInput(plaintext []byte, key encryption.Key) error {
	_, err := e.checkEncrypt(plaintext, key)
	return err
}

func (e *RSAEngine) checkEncrypt(plaintext []byte, key encryption.Key) (*rsa.PublicKey, error) {
	const op = "rsa.Encrypt"

	pub, err := e.publicKey(key)
	if err != nil {
		return nil, err
	}
	if len(plaintext) == 0 {
		return nil, encryption.NewError(op, encryption.ErrInvalidArgument, "plaintext cannot be empty")
	}
	if limit := MaxPlaintextSize(pub); len(plaintext) > limit {
		return nil, encryption.NewError(op, encryption.ErrInvalidArgument, "plaintext too long for RSA-OAEP: max %d bytes, got %d", limit, len(plaintext))
	}
	return pub, nil
}

// Encrypt encrypts plaintext to the public half of key.
func (e *RSAEngine) Encrypt(plaintext []byte, key encryption.Key) (*encryption.EncryptionResult, error) {
	const op = "rsa.Encrypt"

	pub, err := e.checkEncrypt(plaintext, key)
	if err != nil {
		return nil, err
	}

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), e.random, pub, plaintext, nil)
	if err != nil {
		return nil, encryption.WrapError(op, encryption.ErrEncryptionFailure, err, "failed to encrypt with RSA")
	}

	return &encryption.EncryptionResult{
		Ciphertext: ciphertext,
		IV:         []byte{},
		Tag:        []byte{},
	}, nil
}

// Decrypt decrypts ciphertext with the private key. iv and tag are ignored.
func (e *RSAEngine) Decrypt(ciphertext, _, _ []byte, key encryption.Key) ([]byte, error) {
	const op = "rsa.Decrypt"

	priv, err := e.privateKey(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := rsa.DecryptOAEP(sha256.New(), nil, priv, ciphertext, nil)
	if err != nil {
		e.logger.WithField("key_fingerprint", encryption.Fingerprint(key)).Warn("RSA-OAEP decryption failed")
		return nil, encryption.WrapError(op, encryption.ErrDecryptionFailure, err, "failed to decrypt with RSA")
	}
	return plaintext, nil
}
