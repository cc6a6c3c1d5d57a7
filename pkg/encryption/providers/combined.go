package providers

import (
	"context"

	"github.com/guided-traffic/chatcrypt/pkg/encryption"
)

// EncryptCombined encrypts plaintext with p and returns the wire blob
// IV ++ TAG ++ CIPHERTEXT (bare ciphertext for modes without IV or tag).
func EncryptCombined(ctx context.Context, p encryption.Plugin, plaintext []byte, key encryption.Key) ([]byte, error) {
	result, err := p.Encrypt(ctx, plaintext, key).Await(ctx)
	if err != nil {
		return nil, err
	}
	return result.Combine(), nil
}

// DecryptCombined splits a wire blob using the sizes of p's algorithm and
// decrypts it.
func DecryptCombined(ctx context.Context, p encryption.Plugin, combined []byte, key encryption.Key) ([]byte, error) {
	spec := p.Algorithm()

	result, err := encryption.SplitCombined(combined, spec.IVSizeBytes(), spec.TagSizeBytes())
	if err != nil {
		return nil, err
	}
	return p.Decrypt(ctx, result.Ciphertext, result.IV, result.Tag, key).Await(ctx)
}
