package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/guided-traffic/chatcrypt/pkg/encryption"
	"github.com/guided-traffic/chatcrypt/pkg/encryption/keyencryption"
)

// keyFlags holds the two ways of passing key material on the command line
type keyFlags struct {
	inline string
	file   string
}

func (f *keyFlags) material() (string, error) {
	switch {
	case f.inline != "" && f.file != "":
		return "", fmt.Errorf("--key and --key-file are mutually exclusive")
	case f.inline != "":
		return f.inline, nil
	case f.file != "":
		data, err := os.ReadFile(f.file)
		if err != nil {
			return "", fmt.Errorf("failed to read key file: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("a key is required (--key or --key-file)")
	}
}

// loadKey parses key material for the given plugin algorithm. Symmetric keys
// are base64, RSA keys are PEM. When private is set an RSA private key is
// required, otherwise either half is accepted.
func loadKey(spec encryption.AlgorithmSpec, raw string, private bool) (encryption.Key, error) {
	raw = strings.TrimSpace(raw)

	if spec.KeyType() == encryption.KeyTypeSymmetric {
		material, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 key: %w", err)
		}
		defer encryption.SecureZero(material)
		return encryption.NewSymmetricKey(encryption.AlgorithmAES, material), nil
	}

	if private || strings.Contains(raw, "PRIVATE KEY") {
		key, err := keyencryption.ParsePrivateKeyPEM(raw)
		if err != nil {
			return nil, err
		}
		return key, nil
	}

	key, err := keyencryption.ParsePublicKeyPEM(raw)
	if err != nil {
		return nil, err
	}
	return key, nil
}
