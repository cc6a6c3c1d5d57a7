package keyencryption

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/guided-traffic/chatcrypt/pkg/encryption"
)

// PrivateKeyToPEM converts an RSA private key to PKCS#8 PEM
func PrivateKeyToPEM(key *encryption.RSAPrivateKey) (string, error) {
	der := key.Encoded()
	if len(der) == 0 {
		return "", fmt.Errorf("private key is empty or destroyed")
	}
	defer encryption.SecureZero(der)

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: der,
	})
	return string(privateKeyPEM), nil
}

// PublicKeyToPEM converts an RSA public key to PKIX PEM
func PublicKeyToPEM(key *encryption.RSAPublicKey) (string, error) {
	der := key.Encoded()
	if len(der) == 0 {
		return "", fmt.Errorf("public key is empty or destroyed")
	}

	publicKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	})
	return string(publicKeyPEM), nil
}

// ParsePublicKeyPEM parses a PKIX or PKCS#1 RSA public key
func ParsePublicKeyPEM(pemData string) (*encryption.RSAPublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	switch block.Type {
	case "PUBLIC KEY":
		pubKeyInterface, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKIX public key: %w", err)
		}
		publicKey, ok := pubKeyInterface.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("not an RSA public key")
		}
		return encryption.NewRSAPublicKey(publicKey), nil
	case "RSA PUBLIC KEY":
		publicKey, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS1 public key: %w", err)
		}
		return encryption.NewRSAPublicKey(publicKey), nil
	default:
		return nil, fmt.Errorf("invalid PEM block type: %s", block.Type)
	}
}

// ParsePrivateKeyPEM parses a PKCS#8 or PKCS#1 RSA private key
func ParsePrivateKeyPEM(pemData string) (*encryption.RSAPrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}
	defer encryption.SecureZero(block.Bytes)

	switch block.Type {
	case "PRIVATE KEY":
		privKeyInterface, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS8 private key: %w", err)
		}
		privateKey, ok := privKeyInterface.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("not an RSA private key")
		}
		return encryption.NewRSAPrivateKey(privateKey), nil
	case "RSA PRIVATE KEY":
		privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS1 private key: %w", err)
		}
		return encryption.NewRSAPrivateKey(privateKey), nil
	default:
		return nil, fmt.Errorf("invalid PEM block type: %s", block.Type)
	}
}
