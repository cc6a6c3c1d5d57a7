package encryption

import (
	"context"
)

// Plugin is the uniform contract every cipher variant implements.
//
// Encrypt, Decrypt and GenerateKey validate their arguments synchronously and
// return an already-failed Future when validation fails; otherwise the cipher
// work runs on its own goroutine. Calls are independent of one another and
// may complete in any order.
type Plugin interface {
	// Name returns the registry name, e.g. "aes-gcm"
	Name() string

	// Version returns the plugin implementation version
	Version() string

	// Algorithm returns the algorithm this plugin is parameterized by
	Algorithm() AlgorithmSpec

	// Encrypt encrypts plaintext under key
	Encrypt(ctx context.Context, plaintext []byte, key Key) *Future[*EncryptionResult]

	// Decrypt authenticates and decrypts ciphertext. Modes without an IV or
	// tag ignore those parameters.
	Decrypt(ctx context.Context, ciphertext, iv, tag []byte, key Key) *Future[[]byte]

	// GenerateKey returns a fresh key usable with Encrypt. Asymmetric
	// plugins return the public half.
	GenerateKey(ctx context.Context) *Future[Key]

	// IsKeyValid reports whether key can be used with this plugin. It never
	// blocks and has no side effects.
	IsKeyValid(key Key) bool
}

// AsymmetricPlugin is implemented by plugins whose keys come in pairs.
type AsymmetricPlugin interface {
	Plugin

	// GenerateKeyPair returns both halves of a fresh key pair
	GenerateKeyPair(ctx context.Context) *Future[*KeyPair]
}
