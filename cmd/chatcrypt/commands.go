package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/guided-traffic/chatcrypt/pkg/encryption"
	"github.com/guided-traffic/chatcrypt/pkg/encryption/envelope"
	"github.com/guided-traffic/chatcrypt/pkg/encryption/keyencryption"
	"github.com/guided-traffic/chatcrypt/pkg/encryption/providers"
)

func (a *app) newPluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List the available encryption plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tALGORITHM\tKEY BITS\tIV\tTAG\tVERSION\tDEFAULT")
			for _, name := range a.registry.Names() {
				p, err := a.registry.Get(name)
				if err != nil {
					return err
				}
				spec := p.Algorithm()
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%t\n",
					name, spec.Name(), spec.KeySizeBits(), spec.IVSizeBytes(), spec.TagSizeBytes(),
					p.Version(), name == a.registry.DefaultName())
			}
			return w.Flush()
		},
	}
}

func (a *app) newKeygenCmd() *cobra.Command {
	var pluginName, out string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key for a plugin",
		Long: `Generate a fresh key. AES keys are printed as base64, RSA key pairs as PEM.
With --out the key is written to that file instead; for RSA the public half
goes to <out>.pub.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.plugin(pluginName)
			if err != nil {
				return err
			}

			if ap, ok := p.(encryption.AsymmetricPlugin); ok {
				return a.writeKeyPair(cmd, ap, out)
			}

			key, err := p.GenerateKey(cmd.Context()).Await(cmd.Context())
			if err != nil {
				return err
			}
			defer key.Destroy()

			material := key.Encoded()
			defer encryption.SecureZero(material)
			encoded := base64.StdEncoding.EncodeToString(material)

			if out != "" {
				return writeSecret(out, encoded+"\n")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return err
		},
	}

	cmd.Flags().StringVarP(&pluginName, "plugin", "p", "", "plugin to generate a key for (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the key to this file")
	return cmd
}

func (a *app) writeKeyPair(cmd *cobra.Command, p encryption.AsymmetricPlugin, out string) error {
	pair, err := p.GenerateKeyPair(cmd.Context()).Await(cmd.Context())
	if err != nil {
		return err
	}
	defer pair.Destroy()

	privPEM, err := keyencryption.PrivateKeyToPEM(pair.Private)
	if err != nil {
		return err
	}
	pubPEM, err := keyencryption.PublicKeyToPEM(pair.Public)
	if err != nil {
		return err
	}

	if out == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), privPEM, pubPEM)
		return err
	}

	if err := writeSecret(out, privPEM); err != nil {
		return err
	}
	if err := os.WriteFile(out+".pub", []byte(pubPEM), 0o644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"private_key": out,
		"public_key":  out + ".pub",
		"fingerprint": encryption.Fingerprint(pair.Public),
	}).Info("Generated key pair")
	return nil
}

func (a *app) newEncryptCmd() *cobra.Command {
	var pluginName, text string
	var keys keyFlags

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a message and print the base64 combined blob",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, key, err := a.pluginAndKey(pluginName, &keys, false)
			if err != nil {
				return err
			}
			defer key.Destroy()

			plaintext, err := readInput(cmd, text)
			if err != nil {
				return err
			}

			blob, err := providers.EncryptCombined(cmd.Context(), p, plaintext, key)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(blob))
			return err
		},
	}

	addMessageFlags(cmd, &pluginName, &text, &keys)
	return cmd
}

func (a *app) newDecryptCmd() *cobra.Command {
	var pluginName, text string
	var keys keyFlags

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a base64 combined blob",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, key, err := a.pluginAndKey(pluginName, &keys, true)
			if err != nil {
				return err
			}
			defer key.Destroy()

			blob, err := readBase64Input(cmd, text)
			if err != nil {
				return err
			}

			plaintext, err := providers.DecryptCombined(cmd.Context(), p, blob, key)
			if err != nil {
				return err
			}
			defer encryption.SecureZero(plaintext)

			_, err = cmd.OutOrStdout().Write(plaintext)
			return err
		},
	}

	addMessageFlags(cmd, &pluginName, &text, &keys)
	return cmd
}

func (a *app) newSealCmd() *cobra.Command {
	var text string
	var keys keyFlags

	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Encrypt a message of any size to an RSA public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sealer, err := a.sealer()
			if err != nil {
				return err
			}
			raw, err := keys.material()
			if err != nil {
				return err
			}
			recipient, err := loadKey(encryption.RSA4096(), raw, false)
			if err != nil {
				return err
			}
			defer recipient.Destroy()

			plaintext, err := readInput(cmd, text)
			if err != nil {
				return err
			}

			env, err := sealer.Seal(cmd.Context(), plaintext, recipient)
			if err != nil {
				return err
			}
			data, err := env.Marshal()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(data))
			return err
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "message to seal (default: read stdin)")
	cmd.Flags().StringVarP(&keys.inline, "key", "k", "", "recipient public key (PEM)")
	cmd.Flags().StringVar(&keys.file, "key-file", "", "file holding the recipient public key")
	return cmd
}

func (a *app) newOpenCmd() *cobra.Command {
	var text string
	var keys keyFlags

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Decrypt a sealed message with an RSA private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sealer, err := a.sealer()
			if err != nil {
				return err
			}
			raw, err := keys.material()
			if err != nil {
				return err
			}
			recipient, err := loadKey(encryption.RSA4096(), raw, true)
			if err != nil {
				return err
			}
			defer recipient.Destroy()

			data, err := readBase64Input(cmd, text)
			if err != nil {
				return err
			}
			env, err := envelope.Unmarshal(data)
			if err != nil {
				return err
			}

			plaintext, err := sealer.Open(cmd.Context(), env, recipient)
			if err != nil {
				return err
			}
			defer encryption.SecureZero(plaintext)

			_, err = cmd.OutOrStdout().Write(plaintext)
			return err
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "base64 sealed message (default: read stdin)")
	cmd.Flags().StringVarP(&keys.inline, "key", "k", "", "recipient private key (PEM)")
	cmd.Flags().StringVar(&keys.file, "key-file", "", "file holding the recipient private key")
	return cmd
}

func addMessageFlags(cmd *cobra.Command, pluginName, text *string, keys *keyFlags) {
	cmd.Flags().StringVarP(pluginName, "plugin", "p", "", "plugin to use (default from config)")
	cmd.Flags().StringVarP(text, "text", "t", "", "input message (default: read stdin)")
	cmd.Flags().StringVarP(&keys.inline, "key", "k", "", "key material: base64 for aes-gcm, PEM for rsa")
	cmd.Flags().StringVar(&keys.file, "key-file", "", "file holding the key material")
}

func (a *app) plugin(name string) (encryption.Plugin, error) {
	if name == "" {
		return a.registry.Default(), nil
	}
	return a.registry.Get(name)
}

func (a *app) pluginAndKey(name string, keys *keyFlags, private bool) (encryption.Plugin, encryption.Key, error) {
	p, err := a.plugin(name)
	if err != nil {
		return nil, nil, err
	}
	raw, err := keys.material()
	if err != nil {
		return nil, nil, err
	}
	key, err := loadKey(p.Algorithm(), raw, private)
	if err != nil {
		return nil, nil, err
	}
	if !p.IsKeyValid(key) {
		key.Destroy()
		return nil, nil, encryption.NewError("chatcrypt", encryption.ErrInvalidKey, "key is not usable with plugin %s", p.Name())
	}
	return p, key, nil
}

func (a *app) sealer() (*envelope.Sealer, error) {
	keyPlugin, err := a.registry.Asymmetric(providers.PluginRSA)
	if err != nil {
		return nil, err
	}
	dataPlugin, err := a.registry.Get(providers.PluginAESGCM)
	if err != nil {
		return nil, err
	}
	return envelope.NewSealer(keyPlugin, dataPlugin)
}

func readInput(cmd *cobra.Command, text string) ([]byte, error) {
	if text != "" {
		return []byte(text), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func readBase64Input(cmd *cobra.Command, text string) ([]byte, error) {
	raw, err := readInput(cmd, text)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("input is not valid base64: %w", err)
	}
	return data, nil
}

func writeSecret(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}
