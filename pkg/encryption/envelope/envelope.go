package envelope

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/guided-traffic/chatcrypt/pkg/encryption"
)

// headerSize is the length prefix in front of the wrapped key
const headerSize = 2

// Envelope is a hybrid-encrypted message: a fresh symmetric key wrapped by
// the recipient's asymmetric key, and the payload as a combined blob under
// that symmetric key.
type Envelope struct {
	WrappedKey []byte
	Payload    []byte
}

// Marshal frames the envelope as [uint16 len][wrapped key][payload].
func (e *Envelope) Marshal() ([]byte, error) {
	if len(e.WrappedKey) == 0 || len(e.WrappedKey) > math.MaxUint16 {
		return nil, encryption.NewError("envelope.Marshal", encryption.ErrInvalidArgument,
			"wrapped key must be 1..%d bytes, got %d", math.MaxUint16, len(e.WrappedKey))
	}

	out := make([]byte, headerSize, headerSize+len(e.WrappedKey)+len(e.Payload))
	binary.BigEndian.PutUint16(out, uint16(len(e.WrappedKey)))
	out = append(out, e.WrappedKey...)
	out = append(out, e.Payload...)
	return out, nil
}

// Unmarshal parses the framing written by Marshal.
func Unmarshal(data []byte) (*Envelope, error) {
	const op = "envelope.Unmarshal"

	if len(data) < headerSize {
		return nil, encryption.NewError(op, encryption.ErrMalformedPayload, "envelope too short: %d bytes", len(data))
	}
	n := int(binary.BigEndian.Uint16(data))
	if n == 0 || len(data) < headerSize+n {
		return nil, encryption.NewError(op, encryption.ErrMalformedPayload,
			"wrapped key length %d exceeds envelope of %d bytes", n, len(data))
	}

	wrapped := make([]byte, n)
	copy(wrapped, data[headerSize:headerSize+n])
	payload := make([]byte, len(data)-headerSize-n)
	copy(payload, data[headerSize+n:])

	return &Envelope{WrappedKey: wrapped, Payload: payload}, nil
}

// Sealer combines an asymmetric plugin (key wrapping) with a symmetric one
// (payload encryption).
type Sealer struct {
	keyPlugin  encryption.Plugin
	dataPlugin encryption.Plugin
	logger     *logrus.Entry
}

// NewSealer validates the plugin kinds and returns a Sealer.
func NewSealer(keyPlugin, dataPlugin encryption.Plugin) (*Sealer, error) {
	const op = "envelope.NewSealer"

	if keyPlugin == nil || dataPlugin == nil {
		return nil, encryption.NewError(op, encryption.ErrInvalidArgument, "plugins cannot be nil")
	}
	if keyPlugin.Algorithm().KeyType() != encryption.KeyTypeAsymmetric {
		return nil, encryption.NewError(op, encryption.ErrInvalidArgument, "key plugin %q is not asymmetric", keyPlugin.Name())
	}
	if dataPlugin.Algorithm().KeyType() != encryption.KeyTypeSymmetric {
		return nil, encryption.NewError(op, encryption.ErrInvalidArgument, "data plugin %q is not symmetric", dataPlugin.Name())
	}

	return &Sealer{
		keyPlugin:  keyPlugin,
		dataPlugin: dataPlugin,
		logger:     logrus.WithField("component", "envelope"),
	}, nil
}

// Seal encrypts plaintext of any length to recipient.
func (s *Sealer) Seal(ctx context.Context, plaintext []byte, recipient encryption.Key) (*Envelope, error) {
	if !s.keyPlugin.IsKeyValid(recipient) {
		return nil, encryption.NewError("envelope.Seal", encryption.ErrInvalidKey, "recipient key is not valid for %s", s.keyPlugin.Name())
	}

	dek, err := s.dataPlugin.GenerateKey(ctx).Await(ctx)
	if err != nil {
		return nil, err
	}
	defer dek.Destroy()

	payload, err := s.encryptPayload(ctx, plaintext, dek)
	if err != nil {
		return nil, err
	}

	material := dek.Encoded()
	defer encryption.SecureZero(material)

	wrapped, err := s.keyPlugin.Encrypt(ctx, material, recipient).Await(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"recipient_fingerprint": encryption.Fingerprint(recipient),
		"payload_bytes":         len(payload),
	}).Debug("Sealed envelope")

	return &Envelope{
		WrappedKey: wrapped.Combine(),
		Payload:    payload,
	}, nil
}

func (s *Sealer) encryptPayload(ctx context.Context, plaintext []byte, dek encryption.Key) ([]byte, error) {
	result, err := s.dataPlugin.Encrypt(ctx, plaintext, dek).Await(ctx)
	if err != nil {
		return nil, err
	}
	return result.Combine(), nil
}

// Open unwraps the symmetric key with recipient's private key and decrypts
// the payload.
func (s *Sealer) Open(ctx context.Context, env *Envelope, recipient encryption.Key) ([]byte, error) {
	const op = "envelope.Open"

	if env == nil {
		return nil, encryption.NewError(op, encryption.ErrInvalidArgument, "envelope cannot be nil")
	}

	keySpec := s.keyPlugin.Algorithm()
	wrapped, err := encryption.SplitCombined(env.WrappedKey, keySpec.IVSizeBytes(), keySpec.TagSizeBytes())
	if err != nil {
		return nil, err
	}

	material, err := s.keyPlugin.Decrypt(ctx, wrapped.Ciphertext, wrapped.IV, wrapped.Tag, recipient).Await(ctx)
	if err != nil {
		return nil, err
	}
	dek := encryption.NewSymmetricKey(encryption.AlgorithmAES, material)
	encryption.SecureZero(material)
	defer dek.Destroy()

	if !s.dataPlugin.IsKeyValid(dek) {
		return nil, encryption.NewError(op, encryption.ErrInvalidKey, "unwrapped key is not valid for %s", s.dataPlugin.Name())
	}

	dataSpec := s.dataPlugin.Algorithm()
	payload, err := encryption.SplitCombined(env.Payload, dataSpec.IVSizeBytes(), dataSpec.TagSizeBytes())
	if err != nil {
		return nil, err
	}
	return s.dataPlugin.Decrypt(ctx, payload.Ciphertext, payload.IV, payload.Tag, dek).Await(ctx)
}
