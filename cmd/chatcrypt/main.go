package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/guided-traffic/chatcrypt/internal/config"
	"github.com/guided-traffic/chatcrypt/pkg/encryption/providers"
)

var (
	// Build information injected at build time
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// app carries the state shared by all subcommands once configuration is loaded
type app struct {
	cfgFile  string
	cfg      *config.Config
	registry *providers.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "chatcrypt",
		Short: "chatcrypt encrypts and decrypts chat messages with pluggable ciphers",
		Long: `chatcrypt exposes the chat encryption plugins on the command line.

Plugins:
- aes-gcm: AES-256-GCM authenticated encryption (default)
- rsa:     RSA-OAEP with SHA-256, for small payloads such as wrapped keys

Ciphertexts are printed as base64 of the combined blob IV ++ TAG ++ CIPHERTEXT.
The seal and open commands combine both plugins for messages of any size.`,
		Version:           fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "path to configuration file (YAML format)")

	rootCmd.AddCommand(
		a.newPluginsCmd(),
		a.newKeygenCmd(),
		a.newEncryptCmd(),
		a.newDecryptCmd(),
		a.newSealCmd(),
		a.newOpenCmd(),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	config.InitConfig(a.cfgFile)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.ConfigureLogging()

	registry, err := providers.NewRegistry(cfg.RegistryOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create plugin registry: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"version":        version,
		"default_plugin": registry.DefaultName(),
		"metrics":        cfg.Monitoring.Enabled,
	}).Debug("chatcrypt initialized")

	a.cfg = cfg
	a.registry = registry
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
