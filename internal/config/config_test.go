package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guided-traffic/chatcrypt/pkg/encryption/providers"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	setDefaults()

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, providers.PluginAESGCM, cfg.Encryption.DefaultPlugin)
	assert.Equal(t, 4096, cfg.Encryption.RSAKeyBits)
	assert.False(t, cfg.Monitoring.Enabled)
}

func TestLoad_CustomValues(t *testing.T) {
	viper.Reset()
	setDefaults()

	viper.Set("log_level", "debug")
	viper.Set("log_format", "json")
	viper.Set("encryption.default_plugin", " RSA ")
	viper.Set("encryption.rsa_key_bits", 2048)
	viper.Set("monitoring.enabled", true)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, providers.PluginRSA, cfg.Encryption.DefaultPlugin)
	assert.Equal(t, 2048, cfg.Encryption.RSAKeyBits)
	assert.True(t, cfg.Monitoring.Enabled)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		value       interface{}
		errContains string
	}{
		{"unknown log level", "log_level", "loud", "invalid log_level"},
		{"unknown log format", "log_format", "xml", "invalid log_format"},
		{"unknown plugin", "encryption.default_plugin", "chacha20", "unknown encryption.default_plugin"},
		{"rsa bits too small", "encryption.rsa_key_bits", 1024, "at least 2048"},
		{"rsa bits not byte aligned", "encryption.rsa_key_bits", 2049, "multiple of 8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			setDefaults()
			viper.Set(tt.key, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestInitConfig_ConfigFile(t *testing.T) {
	viper.Reset()

	path := filepath.Join(t.TempDir(), "chatcrypt.yaml")
	content := `
log_level: warn
encryption:
  default_plugin: rsa
  rsa_key_bits: 3072
monitoring:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	InitConfig(path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, providers.PluginRSA, cfg.Encryption.DefaultPlugin)
	assert.Equal(t, 3072, cfg.Encryption.RSAKeyBits)
	assert.True(t, cfg.Monitoring.Enabled)
}

func TestInitConfig_Environment(t *testing.T) {
	viper.Reset()
	t.Setenv("CHATCRYPT_ENCRYPTION_RSA_KEY_BITS", "2048")

	InitConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.Encryption.RSAKeyBits)
}

func TestConfig_ConfigureLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.GetLevel())
	defer logrus.SetFormatter(logrus.StandardLogger().Formatter)

	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	cfg.ConfigureLogging()

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)
}

func TestConfig_RegistryOptions(t *testing.T) {
	cfg := &Config{
		Encryption: EncryptionConfig{DefaultPlugin: providers.PluginRSA, RSAKeyBits: 2048},
	}

	registry, err := providers.NewRegistry(cfg.RegistryOptions()...)
	require.NoError(t, err)
	assert.Equal(t, providers.PluginRSA, registry.DefaultName())
	assert.Equal(t, 2048, registry.Default().Algorithm().KeySizeBits())
}
