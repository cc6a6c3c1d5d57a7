package providers

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/guided-traffic/chatcrypt/pkg/encryption"
	"github.com/guided-traffic/chatcrypt/pkg/encryption/keyencryption"
)

// RSAPlugin exposes the RSA-OAEP engine through the plugin contract
type RSAPlugin struct {
	engine  *keyencryption.RSAEngine
	keys    *encryption.KeyManager
	keyBits int
	spec    encryption.AlgorithmSpec
	logger  *logrus.Entry
}

// NewRSAPlugin creates a new RSA plugin. The key size defaults to 4096 bits.
func NewRSAPlugin(opts ...PluginOption) (*RSAPlugin, error) {
	cfg := newPluginConfig(opts)

	if cfg.rsaKeyBits < encryption.MinRSAKeyBits || cfg.rsaKeyBits%8 != 0 {
		return nil, encryption.NewError("NewRSAPlugin", encryption.ErrInvalidArgument,
			"RSA key size must be a multiple of 8 and at least %d bits, got %d", encryption.MinRSAKeyBits, cfg.rsaKeyBits)
	}

	spec := encryption.RSA4096()
	if cfg.rsaKeyBits != spec.KeySizeBits() {
		var err error
		spec, err = encryption.NewAlgorithmSpec(
			fmt.Sprintf("RSA-%d-OAEP-SHA256", cfg.rsaKeyBits),
			spec.TransformID(),
			cfg.rsaKeyBits,
			spec.IVSizeBytes(),
			spec.TagSizeBytes(),
			spec.KeyType(),
		)
		if err != nil {
			return nil, err
		}
	}

	return &RSAPlugin{
		engine:  cfg.rsaEngine,
		keys:    cfg.keys,
		keyBits: cfg.rsaKeyBits,
		spec:    spec,
		logger:  logrus.WithField("plugin", PluginRSA),
	}, nil
}

func (p *RSAPlugin) Name() string                        { return PluginRSA }
func (p *RSAPlugin) Version() string                     { return pluginVersion }
func (p *RSAPlugin) Algorithm() encryption.AlgorithmSpec { return p.spec }

// Encrypt validates key and plaintext bound, then encrypts on a separate goroutine.
func (p *RSAPlugin) Encrypt(ctx context.Context, plaintext []byte, key encryption.Key) *encryption.Future[*encryption.EncryptionResult] {
	if err := p.engine.ValidateEncryptInput(plaintext, key); err != nil {
		return rejected[*encryption.EncryptionResult](p.logger, "encrypt", err)
	}

	buf := cloneBytes(plaintext)
	return encryption.Go(ctx, "rsa.encrypt", func() (*encryption.EncryptionResult, error) {
		defer encryption.SecureZero(buf)
		return p.engine.Encrypt(buf, key)
	})
}

// Decrypt ignores iv and tag; they exist only to satisfy the plugin contract.
func (p *RSAPlugin) Decrypt(ctx context.Context, ciphertext, _, _ []byte, key encryption.Key) *encryption.Future[[]byte] {
	if err := p.engine.ValidateDecryptKey(key); err != nil {
		return rejected[[]byte](p.logger, "decrypt", err)
	}

	ct := cloneBytes(ciphertext)
	return encryption.Go(ctx, "rsa.decrypt", func() ([]byte, error) {
		return p.engine.Decrypt(ct, nil, nil, key)
	})
}

// GenerateKey returns the public half of a fresh key pair. The private half
// is destroyed; use GenerateKeyPair to keep it.
func (p *RSAPlugin) GenerateKey(ctx context.Context) *encryption.Future[encryption.Key] {
	return encryption.Go(ctx, "rsa.generate-key", func() (encryption.Key, error) {
		pub, priv, err := p.keys.GenerateAsymmetricKeyPair(p.keyBits)
		if err != nil {
			return nil, err
		}
		priv.Destroy()
		return pub, nil
	})
}

// GenerateKeyPair returns both halves of a fresh key pair
func (p *RSAPlugin) GenerateKeyPair(ctx context.Context) *encryption.Future[*encryption.KeyPair] {
	return encryption.Go(ctx, "rsa.generate-key-pair", func() (*encryption.KeyPair, error) {
		pub, priv, err := p.keys.GenerateAsymmetricKeyPair(p.keyBits)
		if err != nil {
			return nil, err
		}
		return &encryption.KeyPair{Public: pub, Private: priv}, nil
	})
}

// IsKeyValid reports whether key carries the RSA tag and a non-empty encoding
func (p *RSAPlugin) IsKeyValid(key encryption.Key) bool {
	return p.engine.ValidateKey(key) == nil
}
