package providers

import (
	"github.com/sirupsen/logrus"

	"github.com/guided-traffic/chatcrypt/pkg/encryption"
	"github.com/guided-traffic/chatcrypt/pkg/encryption/dataencryption"
	"github.com/guided-traffic/chatcrypt/pkg/encryption/keyencryption"
)

// pluginVersion is reported by every built-in plugin
const pluginVersion = "1.0"

type pluginConfig struct {
	keys       *encryption.KeyManager
	aesEngine  *dataencryption.AESGCMEngine
	rsaEngine  *keyencryption.RSAEngine
	rsaKeyBits int
}

// PluginOption configures the built-in plugins
type PluginOption func(*pluginConfig)

// WithKeyManager sets the key manager used by GenerateKey
func WithKeyManager(km *encryption.KeyManager) PluginOption {
	return func(c *pluginConfig) {
		c.keys = km
	}
}

// WithAESGCMEngine replaces the AES-GCM engine
func WithAESGCMEngine(engine *dataencryption.AESGCMEngine) PluginOption {
	return func(c *pluginConfig) {
		c.aesEngine = engine
	}
}

// WithRSAEngine replaces the RSA engine
func WithRSAEngine(engine *keyencryption.RSAEngine) PluginOption {
	return func(c *pluginConfig) {
		c.rsaEngine = engine
	}
}

// WithRSAKeyBits sets the modulus size of generated RSA keys (default 4096)
func WithRSAKeyBits(bits int) PluginOption {
	return func(c *pluginConfig) {
		c.rsaKeyBits = bits
	}
}

func newPluginConfig(opts []PluginOption) *pluginConfig {
	c := &pluginConfig{
		rsaKeyBits: encryption.RSA4096().KeySizeBits(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.keys == nil {
		c.keys = encryption.NewKeyManager()
	}
	if c.aesEngine == nil {
		c.aesEngine = dataencryption.NewAESGCMEngine()
	}
	if c.rsaEngine == nil {
		c.rsaEngine = keyencryption.NewRSAEngine()
	}
	return c
}

// cloneBytes gives the scheduled task its own copy of a caller buffer.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// rejected logs a synchronous validation failure and returns it as a
// completed future.
func rejected[T any](logger *logrus.Entry, op string, err error) *encryption.Future[T] {
	logger.WithError(err).WithField("op", op).Debug("Rejected request")
	return encryption.Failed[T](err)
}
