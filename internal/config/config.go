package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/guided-traffic/chatcrypt/pkg/encryption"
	"github.com/guided-traffic/chatcrypt/pkg/encryption/providers"
)

// EncryptionConfig holds plugin selection and key generation settings
type EncryptionConfig struct {
	DefaultPlugin string `mapstructure:"default_plugin"` // "aes-gcm" or "rsa"
	RSAKeyBits    int    `mapstructure:"rsa_key_bits"`   // Modulus size for generated RSA key pairs
}

// MonitoringConfig holds monitoring configuration
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"` // Record Prometheus metrics for every plugin operation
}

// Config holds the application configuration
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // "text" (default) or "json"

	Encryption EncryptionConfig `mapstructure:"encryption"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// InitConfig initializes the configuration system
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		// Search config in home directory with name ".chatcrypt" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".chatcrypt")
	}

	viper.SetEnvPrefix("CHATCRYPT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// Load loads the configuration from viper
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Encryption.DefaultPlugin = providers.NormalizeName(cfg.Encryption.DefaultPlugin)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")

	viper.SetDefault("encryption.default_plugin", providers.PluginAESGCM)
	viper.SetDefault("encryption.rsa_key_bits", 4096)

	viper.SetDefault("monitoring.enabled", false)
}

// validate validates the configuration
func validate(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if err := validateEncryption(&cfg.Encryption); err != nil {
		return err
	}

	return nil
}

func validateEncryption(enc *EncryptionConfig) error {
	known := false
	for _, name := range providers.SupportedPlugins() {
		if enc.DefaultPlugin == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown encryption.default_plugin %q (supported: %s)",
			enc.DefaultPlugin, strings.Join(providers.SupportedPlugins(), ", "))
	}

	if enc.RSAKeyBits < encryption.MinRSAKeyBits {
		return fmt.Errorf("encryption.rsa_key_bits must be at least %d, got %d", encryption.MinRSAKeyBits, enc.RSAKeyBits)
	}
	if enc.RSAKeyBits%8 != 0 {
		return fmt.Errorf("encryption.rsa_key_bits must be a multiple of 8, got %d", enc.RSAKeyBits)
	}

	return nil
}

// ConfigureLogging applies the configured level and format to the standard logrus logger
func (c *Config) ConfigureLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.ToLower(c.LogFormat) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// RegistryOptions translates the configuration into plugin registry options
func (c *Config) RegistryOptions() []providers.RegistryOption {
	opts := []providers.RegistryOption{
		providers.WithDefault(c.Encryption.DefaultPlugin),
		providers.WithPluginOptions(providers.WithRSAKeyBits(c.Encryption.RSAKeyBits)),
	}
	if c.Monitoring.Enabled {
		opts = append(opts, providers.WithMetrics())
	}
	return opts
}
