package providers

import (
	"context"
	"errors"
	"time"

	"github.com/guided-traffic/chatcrypt/internal/monitoring"
	"github.com/guided-traffic/chatcrypt/pkg/encryption"
)

// Operation labels used in metrics
const (
	OperationEncrypt         = "encrypt"
	OperationDecrypt         = "decrypt"
	OperationGenerateKey     = "generate_key"
	OperationGenerateKeyPair = "generate_key_pair"
)

// StatusOf maps an operation error to its metrics status label
func StatusOf(err error) string {
	switch {
	case err == nil:
		return monitoring.StatusSuccess
	case errors.Is(err, encryption.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, encryption.ErrInvalidKey):
		return "invalid_key"
	case errors.Is(err, encryption.ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, encryption.ErrAuthenticationFailure):
		return "authentication_failure"
	case errors.Is(err, encryption.ErrEncryptionFailure):
		return "encryption_failure"
	case errors.Is(err, encryption.ErrDecryptionFailure):
		return "decryption_failure"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// observe records the outcome of f once it completes without blocking the caller
func observe[T any](operation, plugin string, inputBytes int, start time.Time, f *encryption.Future[T]) *encryption.Future[T] {
	go func() {
		_, err := f.Get()
		monitoring.RecordOperation(operation, plugin, StatusOf(err), time.Since(start), inputBytes)
	}()
	return f
}

type instrumentedPlugin struct {
	encryption.Plugin
}

type instrumentedAsymmetricPlugin struct {
	instrumentedPlugin
	asym encryption.AsymmetricPlugin
}

// Instrument wraps p so every operation is recorded in Prometheus metrics.
// Asymmetric plugins stay asymmetric.
func Instrument(p encryption.Plugin) encryption.Plugin {
	base := instrumentedPlugin{Plugin: p}
	if ap, ok := p.(encryption.AsymmetricPlugin); ok {
		return &instrumentedAsymmetricPlugin{instrumentedPlugin: base, asym: ap}
	}
	return &base
}

func (p *instrumentedPlugin) Encrypt(ctx context.Context, plaintext []byte, key encryption.Key) *encryption.Future[*encryption.EncryptionResult] {
	return observe(OperationEncrypt, p.Name(), len(plaintext), time.Now(), p.Plugin.Encrypt(ctx, plaintext, key))
}

func (p *instrumentedPlugin) Decrypt(ctx context.Context, ciphertext, iv, tag []byte, key encryption.Key) *encryption.Future[[]byte] {
	return observe(OperationDecrypt, p.Name(), len(ciphertext), time.Now(), p.Plugin.Decrypt(ctx, ciphertext, iv, tag, key))
}

func (p *instrumentedPlugin) GenerateKey(ctx context.Context) *encryption.Future[encryption.Key] {
	return observe(OperationGenerateKey, p.Name(), 0, time.Now(), p.Plugin.GenerateKey(ctx))
}

func (p *instrumentedAsymmetricPlugin) GenerateKeyPair(ctx context.Context) *encryption.Future[*encryption.KeyPair] {
	return observe(OperationGenerateKeyPair, p.Name(), 0, time.Now(), p.asym.GenerateKeyPair(ctx))
}
