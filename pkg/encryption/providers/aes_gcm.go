package providers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/guided-traffic/chatcrypt/pkg/encryption"
	"github.com/guided-traffic/chatcrypt/pkg/encryption/dataencryption"
)

// AESGCMPlugin exposes the AES-256-GCM engine through the plugin contract
type AESGCMPlugin struct {
	engine *dataencryption.AESGCMEngine
	keys   *encryption.KeyManager
	logger *logrus.Entry
}

// NewAESGCMPlugin creates a new AES-GCM plugin
func NewAESGCMPlugin(opts ...PluginOption) *AESGCMPlugin {
	cfg := newPluginConfig(opts)
	return &AESGCMPlugin{
		engine: cfg.aesEngine,
		keys:   cfg.keys,
		logger: logrus.WithField("plugin", PluginAESGCM),
	}
}

func (p *AESGCMPlugin) Name() string                        { return PluginAESGCM }
func (p *AESGCMPlugin) Version() string                     { return pluginVersion }
func (p *AESGCMPlugin) Algorithm() encryption.AlgorithmSpec { return p.engine.Algorithm() }

// Encrypt validates key and plaintext, then seals on a separate goroutine.
func (p *AESGCMPlugin) Encrypt(ctx context.Context, plaintext []byte, key encryption.Key) *encryption.Future[*encryption.EncryptionResult] {
	if err := p.engine.ValidateKey(key); err != nil {
		return rejected[*encryption.EncryptionResult](p.logger, "encrypt", err)
	}
	if len(plaintext) == 0 {
		return rejected[*encryption.EncryptionResult](p.logger, "encrypt",
			encryption.NewError("aes-gcm.Encrypt", encryption.ErrInvalidArgument, "plaintext cannot be empty"))
	}

	buf := cloneBytes(plaintext)
	return encryption.Go(ctx, "aes-gcm.encrypt", func() (*encryption.EncryptionResult, error) {
		defer encryption.SecureZero(buf)
		return p.engine.Encrypt(buf, key)
	})
}

// Decrypt validates key, IV and tag lengths, then opens on a separate goroutine.
func (p *AESGCMPlugin) Decrypt(ctx context.Context, ciphertext, iv, tag []byte, key encryption.Key) *encryption.Future[[]byte] {
	if err := p.engine.ValidateKey(key); err != nil {
		return rejected[[]byte](p.logger, "decrypt", err)
	}
	if err := p.engine.ValidateDecryptInput(iv, tag); err != nil {
		return rejected[[]byte](p.logger, "decrypt", err)
	}

	ct, ivCopy, tagCopy := cloneBytes(ciphertext), cloneBytes(iv), cloneBytes(tag)
	return encryption.Go(ctx, "aes-gcm.decrypt", func() ([]byte, error) {
		return p.engine.Decrypt(ct, ivCopy, tagCopy, key)
	})
}

// GenerateKey returns a fresh 256-bit AES key
func (p *AESGCMPlugin) GenerateKey(ctx context.Context) *encryption.Future[encryption.Key] {
	bits := p.Algorithm().KeySizeBits()
	return encryption.Go(ctx, "aes-gcm.generate-key", func() (encryption.Key, error) {
		key, err := p.keys.GenerateSymmetricKey(bits)
		if err != nil {
			return nil, err
		}
		return key, nil
	})
}

// IsKeyValid reports whether key is a live 32-byte AES key
func (p *AESGCMPlugin) IsKeyValid(key encryption.Key) bool {
	return p.engine.ValidateKey(key) == nil
}
