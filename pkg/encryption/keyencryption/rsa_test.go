package keyencryption

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guided-traffic/chatcrypt/pkg/encryption"
)

var (
	testKeysOnce sync.Once
	testPub      *encryption.RSAPublicKey
	testPriv     *encryption.RSAPrivateKey
	testKeysErr  error
)

// Test helper returning a shared 2048-bit key pair; generating RSA keys per
// test is slow.
func testKeyPair(t *testing.T) (*encryption.RSAPublicKey, *encryption.RSAPrivateKey) {
	t.Helper()
	testKeysOnce.Do(func() {
		testPub, testPriv, testKeysErr = encryption.NewKeyManager().GenerateAsymmetricKeyPair(2048)
	})
	require.NoError(t, testKeysErr)
	return testPub, testPriv
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("no entropy")
}

func TestRSAEngine_EncryptDecrypt(t *testing.T) {
	engine := NewRSAEngine()
	pub, priv := testKeyPair(t)

	testDEK := []byte("12345678901234567890123456789012")

	result, err := engine.Encrypt(testDEK, pub)
	require.NoError(t, err)
	assert.Empty(t, result.IV)
	assert.Empty(t, result.Tag)
	assert.Len(t, result.Ciphertext, 256)
	assert.Equal(t, result.Ciphertext, result.Combine(), "RSA blob is the bare ciphertext")

	decrypted, err := engine.Decrypt(result.Ciphertext, nil, nil, priv)
	require.NoError(t, err)
	assert.Equal(t, testDEK, decrypted)
}

func TestRSAEngine_DecryptIgnoresIVAndTag(t *testing.T) {
	engine := NewRSAEngine()
	pub, priv := testKeyPair(t)

	result, err := engine.Encrypt([]byte("msg"), pub)
	require.NoError(t, err)

	decrypted, err := engine.Decrypt(result.Ciphertext, []byte("junk iv"), []byte("junk tag"), priv)
	require.NoError(t, err)
	assert.Equal(t, []byte("msg"), decrypted)
}

func TestRSAEngine_EncryptWithPrivateKeyUsesPublicHalf(t *testing.T) {
	engine := NewRSAEngine()
	_, priv := testKeyPair(t)

	result, err := engine.Encrypt([]byte("to myself"), priv)
	require.NoError(t, err)

	decrypted, err := engine.Decrypt(result.Ciphertext, nil, nil, priv)
	require.NoError(t, err)
	assert.Equal(t, []byte("to myself"), decrypted)
}

func TestRSAEngine_PlaintextBound(t *testing.T) {
	engine := NewRSAEngine()
	pub, priv := testKeyPair(t)

	limit := MaxPlaintextSize(pub.PublicKey())
	assert.Equal(t, 256-2*32-2, limit)

	atLimit := bytes.Repeat([]byte{0x42}, limit)
	result, err := engine.Encrypt(atLimit, pub)
	require.NoError(t, err)
	decrypted, err := engine.Decrypt(result.Ciphertext, nil, nil, priv)
	require.NoError(t, err)
	assert.Equal(t, atLimit, decrypted)

	_, err = engine.Encrypt(append(atLimit, 0x42), pub)
	assert.ErrorIs(t, err, encryption.ErrInvalidArgument)

	_, err = engine.Encrypt(nil, pub)
	assert.ErrorIs(t, err, encryption.ErrInvalidArgument)
}

func TestRSAEngine_KeyValidation(t *testing.T) {
	engine := NewRSAEngine()
	pub, _ := testKeyPair(t)

	tests := []struct {
		name string
		key  encryption.Key
	}{
		{"nil key", nil},
		{"wrong algorithm tag", encryption.NewSymmetricKey(encryption.AlgorithmAES, make([]byte, 32))},
		{"rsa tag on symmetric material", encryption.NewSymmetricKey(encryption.AlgorithmRSA, make([]byte, 32))},
		{"empty public key", encryption.NewRSAPublicKey(nil)},
		{"empty private key", encryption.NewRSAPrivateKey(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Encrypt([]byte("data"), tt.key)
			assert.ErrorIs(t, err, encryption.ErrInvalidKey)

			_, err = engine.Decrypt(make([]byte, 256), nil, nil, tt.key)
			assert.ErrorIs(t, err, encryption.ErrInvalidKey)
		})
	}

	// A public key cannot decrypt
	_, err := engine.Decrypt(make([]byte, 256), nil, nil, pub)
	assert.ErrorIs(t, err, encryption.ErrInvalidKey)
}

func TestRSAEngine_DecryptWithWrongKey(t *testing.T) {
	engine := NewRSAEngine()
	pub, _ := testKeyPair(t)
	_, otherPriv, err := encryption.NewKeyManager().GenerateAsymmetricKeyPair(2048)
	require.NoError(t, err)

	result, err := engine.Encrypt([]byte("secret"), pub)
	require.NoError(t, err)

	plaintext, err := engine.Decrypt(result.Ciphertext, nil, nil, otherPriv)
	assert.Nil(t, plaintext)
	assert.ErrorIs(t, err, encryption.ErrDecryptionFailure)
}

func TestRSAEngine_DecryptTampered(t *testing.T) {
	engine := NewRSAEngine()
	pub, priv := testKeyPair(t)

	result, err := engine.Encrypt([]byte("secret"), pub)
	require.NoError(t, err)
	result.Ciphertext[10] ^= 0x01

	_, err = engine.Decrypt(result.Ciphertext, nil, nil, priv)
	assert.ErrorIs(t, err, encryption.ErrDecryptionFailure)
}

func TestRSAEngine_RandomFailure(t *testing.T) {
	engine := NewRSAEngine(WithRandom(failingReader{}))
	pub, _ := testKeyPair(t)

	_, err := engine.Encrypt([]byte("data"), pub)
	assert.ErrorIs(t, err, encryption.ErrEncryptionFailure)
}

func TestRSAEngine_RSA4096(t *testing.T) {
	if testing.Short() {
		t.Skip("4096-bit key generation is slow")
	}

	engine := NewRSAEngine()
	spec := engine.Algorithm()
	pub, priv, err := encryption.NewKeyManager().GenerateAsymmetricKeyPair(spec.KeySizeBits())
	require.NoError(t, err)

	assert.Equal(t, 446, MaxPlaintextSize(pub.PublicKey()))

	result, err := engine.Encrypt([]byte("hello"), pub)
	require.NoError(t, err)
	assert.Len(t, result.Ciphertext, 512)

	decrypted, err := engine.Decrypt(result.Ciphertext, nil, nil, priv)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), decrypted)
}
