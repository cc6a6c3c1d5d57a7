package encryption

import (
	"strings"
)

// KeyType distinguishes symmetric from asymmetric algorithms.
type KeyType string

const (
	// KeyTypeSymmetric uses one shared secret for both directions
	KeyTypeSymmetric KeyType = "symmetric"

	// KeyTypeAsymmetric encrypts to a public key and decrypts with its private half
	KeyTypeAsymmetric KeyType = "asymmetric"
)

// Algorithm tags carried by keys
const (
	AlgorithmAES = "AES"
	AlgorithmRSA = "RSA"
)

// AES-256-GCM sizes
const (
	AESKeySize   = 32 // 256 bits
	GCMNonceSize = 12
	GCMTagSize   = 16
)

// AlgorithmSpec describes one cipher variant. Values are immutable once
// built and compare equal with == when their fields match.
type AlgorithmSpec struct {
	name         string
	transformID  string
	keySizeBits  int
	ivSizeBytes  int
	tagSizeBytes int
	keyType      KeyType
}

// NewAlgorithmSpec validates and builds an AlgorithmSpec.
func NewAlgorithmSpec(name, transformID string, keySizeBits, ivSizeBytes, tagSizeBytes int, keyType KeyType) (AlgorithmSpec, error) {
	const op = "NewAlgorithmSpec"

	if strings.TrimSpace(name) == "" {
		return AlgorithmSpec{}, NewError(op, ErrInvalidArgument, "name cannot be blank")
	}
	if strings.TrimSpace(transformID) == "" {
		return AlgorithmSpec{}, NewError(op, ErrInvalidArgument, "transform id cannot be blank")
	}
	if keySizeBits <= 0 {
		return AlgorithmSpec{}, NewError(op, ErrInvalidArgument, "key size must be positive, got %d bits", keySizeBits)
	}
	if ivSizeBytes < 0 {
		return AlgorithmSpec{}, NewError(op, ErrInvalidArgument, "IV size cannot be negative, got %d", ivSizeBytes)
	}
	if tagSizeBytes < 0 {
		return AlgorithmSpec{}, NewError(op, ErrInvalidArgument, "tag size cannot be negative, got %d", tagSizeBytes)
	}
	switch keyType {
	case KeyTypeSymmetric, KeyTypeAsymmetric:
	case "":
		return AlgorithmSpec{}, NewError(op, ErrInvalidArgument, "key type is required")
	default:
		return AlgorithmSpec{}, NewError(op, ErrInvalidArgument, "unsupported key type %q", keyType)
	}

	return AlgorithmSpec{
		name:         name,
		transformID:  transformID,
		keySizeBits:  keySizeBits,
		ivSizeBytes:  ivSizeBytes,
		tagSizeBytes: tagSizeBytes,
		keyType:      keyType,
	}, nil
}

// mustAlgorithmSpec is only used for the package constants below.
func mustAlgorithmSpec(name, transformID string, keySizeBits, ivSizeBytes, tagSizeBytes int, keyType KeyType) AlgorithmSpec {
	spec, err := NewAlgorithmSpec(name, transformID, keySizeBits, ivSizeBytes, tagSizeBytes, keyType)
	if err != nil {
		panic(err)
	}
	return spec
}

var (
	aes256GCM = mustAlgorithmSpec("AES-256-GCM", "aes-256-gcm", 256, GCMNonceSize, GCMTagSize, KeyTypeSymmetric)
	rsa4096   = mustAlgorithmSpec("RSA-4096-OAEP-SHA256", "rsa-oaep-sha256", 4096, 0, 0, KeyTypeAsymmetric)
)

// AES256GCM returns the AES-256-GCM algorithm description.
func AES256GCM() AlgorithmSpec { return aes256GCM }

// RSA4096 returns the RSA-4096 OAEP/SHA-256 algorithm description.
func RSA4096() AlgorithmSpec { return rsa4096 }

func (s AlgorithmSpec) Name() string        { return s.name }
func (s AlgorithmSpec) TransformID() string { return s.transformID }
func (s AlgorithmSpec) KeySizeBits() int    { return s.keySizeBits }
func (s AlgorithmSpec) IVSizeBytes() int    { return s.ivSizeBytes }
func (s AlgorithmSpec) TagSizeBytes() int   { return s.tagSizeBytes }
func (s AlgorithmSpec) KeyType() KeyType    { return s.keyType }

// Equal reports whether both specs describe the same algorithm.
func (s AlgorithmSpec) Equal(other AlgorithmSpec) bool {
	return s == other
}

// IsZero reports whether s was never built through NewAlgorithmSpec.
func (s AlgorithmSpec) IsZero() bool {
	return s == AlgorithmSpec{}
}

// String returns the display name.
func (s AlgorithmSpec) String() string {
	return s.name
}
