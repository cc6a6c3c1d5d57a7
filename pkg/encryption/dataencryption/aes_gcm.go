package dataencryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/guided-traffic/chatcrypt/pkg/encryption"
)

// AESGCMEngine implements AES-256-GCM over byte buffers. It holds no key
// state: every call is a pure function of its arguments plus the random
// source, so one engine may be shared by any number of goroutines.
type AESGCMEngine struct {
	random io.Reader
	logger *logrus.Entry
}

// Option configures an AESGCMEngine
type Option func(*AESGCMEngine)

// WithRandom replaces the nonce source. The default is crypto/rand.Reader.
func WithRandom(r io.Reader) Option {
	return func(e *AESGCMEngine) {
		e.random = r
	}
}

// NewAESGCMEngine creates a new AES-256-GCM engine
func NewAESGCMEngine(opts ...Option) *AESGCMEngine {
	e := &AESGCMEngine{
		random: rand.Reader,
		logger: logrus.WithField("component", "aes-gcm-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Algorithm returns the algorithm description
func (e *AESGCMEngine) Algorithm() encryption.AlgorithmSpec {
	return encryption.AES256GCM()
}

// ValidateKey returns ErrInvalidKey unless key is a live AES key of exactly
// 32 bytes.
func (e *AESGCMEngine) ValidateKey(key encryption.Key) error {
	const op = "aes-gcm.ValidateKey"

	if key == nil {
		return encryption.NewError(op, encryption.ErrInvalidKey, "key cannot be nil")
	}
	if key.Algorithm() != encryption.AlgorithmAES {
		return encryption.NewError(op, encryption.ErrInvalidKey, "expected %s key, got %q", encryption.AlgorithmAES, key.Algorithm())
	}
	if key.Destroyed() {
		return encryption.NewError(op, encryption.ErrInvalidKey, "key has been destroyed")
	}

	var size int
	if sk, ok := key.(*encryption.SymmetricKey); ok {
		size = sk.Len()
	} else {
		encoded := key.Encoded()
		size = len(encoded)
		encryption.SecureZero(encoded)
	}
	if size != encryption.AESKeySize {
		return encryption.NewError(op, encryption.ErrInvalidKey, "key must be exactly %d bytes for AES-256, got %d bytes", encryption.AESKeySize, size)
	}
	return nil
}

// ValidateDecryptInput checks the IV and tag lengths.
func (e *AESGCMEngine) ValidateDecryptInput(iv, tag []byte) error {
	const op = "aes-gcm.Decrypt"

	if len(iv) != encryption.GCMNonceSize {
		return encryption.NewError(op, encryption.ErrInvalidArgument, "IV must be %d bytes, got %d", encryption.GCMNonceSize, len(iv))
	}
	if len(tag) != encryption.GCMTagSize {
		return encryption.NewError(op, encryption.ErrInvalidArgument, "tag must be %d bytes, got %d", encryption.GCMTagSize, len(tag))
	}
	return nil
}

// newGCM builds the AEAD for key. The caller's copy of the key material is
// wiped before returning.
func (e *AESGCMEngine) newGCM(op string, key encryption.Key, kind error) (cipher.AEAD, error) {
	material := key.Encoded()
	defer encryption.SecureZero(material)

	// Create AES cipher
	block, err := aes.NewCipher(material)
	if err != nil {
		return nil, encryption.WrapError(op, kind, err, "failed to create AES cipher")
	}

	// Create GCM mode
	gcm, err := cipher.NewGCMWithTagSize(block, encryption.GCMTagSize)
	if err != nil {
		return nil, encryption.WrapError(op, kind, err, "failed to create GCM mode")
	}
	return gcm, nil
}

// Encrypt seals plaintext under key with a fresh random nonce.
func (e *AESGCMEngine) Encrypt(plaintext []byte, key encryption.Key) (*encryption.EncryptionResult, error) {
	const op = "aes-gcm.Encrypt"

	if err := e.ValidateKey(key); err != nil {
		return nil, err
	}
	if len(plaintext) == 0 {
		return nil, encryption.NewError(op, encryption.ErrInvalidArgument, "plaintext cannot be empty")
	}

	gcm, err := e.newGCM(op, key, encryption.ErrEncryptionFailure)
	if err != nil {
		return nil, err
	}

	// A fresh nonce per call; never a counter
	nonce := make([]byte, encryption.GCMNonceSize)
	if _, err := io.ReadFull(e.random, nonce); err != nil {
		return nil, encryption.WrapError(op, encryption.ErrEncryptionFailure, err, "failed to generate nonce")
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	n := len(sealed) - encryption.GCMTagSize

	tag := make([]byte, encryption.GCMTagSize)
	copy(tag, sealed[n:])

	return &encryption.EncryptionResult{
		Ciphertext: sealed[:n:n],
		IV:         nonce,
		Tag:        tag,
	}, nil
}

// Decrypt authenticates ciphertext and tag under key and returns the
// plaintext. No plaintext is returned when authentication fails.
func (e *AESGCMEngine) Decrypt(ciphertext, iv, tag []byte, key encryption.Key) ([]byte, error) {
	const op = "aes-gcm.Decrypt"

	if err := e.ValidateKey(key); err != nil {
		return nil, err
	}
	if err := e.ValidateDecryptInput(iv, tag); err != nil {
		return nil, err
	}

	gcm, err := e.newGCM(op, key, encryption.ErrDecryptionFailure)
	if err != nil {
		return nil, err
	}

	input := make([]byte, 0, len(ciphertext)+len(tag))
	input = append(input, ciphertext...)
	input = append(input, tag...)

	plaintext, err := gcm.Open(nil, iv, input, nil)
	if err != nil {
		e.logger.WithField("key_fingerprint", encryption.Fingerprint(key)).Warn("AES-GCM authentication failed")
		return nil, encryption.WrapError(op, encryption.ErrAuthenticationFailure, err, "message authentication failed")
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// EncryptCombined encrypts plaintext and returns IV ++ TAG ++ CIPHERTEXT.
func (e *AESGCMEngine) EncryptCombined(plaintext []byte, key encryption.Key) ([]byte, error) {
	result, err := e.Encrypt(plaintext, key)
	if err != nil {
		return nil, err
	}
	return result.Combine(), nil
}

// DecryptCombined splits an IV ++ TAG ++ CIPHERTEXT blob and decrypts it.
func (e *AESGCMEngine) DecryptCombined(combined []byte, key encryption.Key) ([]byte, error) {
	if err := e.ValidateKey(key); err != nil {
		return nil, err
	}

	result, err := encryption.SplitCombined(combined, encryption.GCMNonceSize, encryption.GCMTagSize)
	if err != nil {
		return nil, err
	}
	return e.Decrypt(result.Ciphertext, result.IV, result.Tag, key)
}

// EncryptString encrypts the UTF-8 bytes of s and returns the combined blob.
func (e *AESGCMEngine) EncryptString(s string, key encryption.Key) ([]byte, error) {
	return e.EncryptCombined([]byte(s), key)
}

// DecryptString decrypts a combined blob produced by EncryptString.
func (e *AESGCMEngine) DecryptString(combined []byte, key encryption.Key) (string, error) {
	plaintext, err := e.DecryptCombined(combined, key)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
