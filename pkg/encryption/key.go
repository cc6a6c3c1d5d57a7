package encryption

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"math/big"
	"runtime"
	"sync"
)

// Key is an opaque handle to key material. Implementations are safe for
// concurrent reads; Destroy must not race with an operation that is still
// using the key.
type Key interface {
	// Algorithm returns the algorithm tag, e.g. "AES" or "RSA"
	Algorithm() string

	// Encoded returns a copy of the key's encoding. It is empty once the key
	// has been destroyed.
	Encoded() []byte

	// Destroy zeroes the backing key material
	Destroy()

	// Destroyed reports whether Destroy has been called
	Destroyed() bool
}

// SymmetricKey holds raw secret key material.
type SymmetricKey struct {
	mu        sync.RWMutex
	algorithm string
	material  []byte
}

// NewSymmetricKey copies material into a new key handle.
func NewSymmetricKey(algorithm string, material []byte) *SymmetricKey {
	m := make([]byte, len(material))
	copy(m, material)
	return &SymmetricKey{
		algorithm: algorithm,
		material:  m,
	}
}

func (k *SymmetricKey) Algorithm() string { return k.algorithm }

func (k *SymmetricKey) Encoded() []byte {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.material == nil {
		return nil
	}
	out := make([]byte, len(k.material))
	copy(out, k.material)
	return out
}

// Len returns the material length in bytes without copying it.
func (k *SymmetricKey) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.material)
}

func (k *SymmetricKey) Destroy() {
	k.mu.Lock()
	defer k.mu.Unlock()

	SecureZero(k.material)
	k.material = nil
}

func (k *SymmetricKey) Destroyed() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.material == nil
}

// RSAPublicKey wraps an RSA public key.
type RSAPublicKey struct {
	mu  sync.RWMutex
	key *rsa.PublicKey
}

// NewRSAPublicKey wraps pub. A nil pub yields a key with an empty encoding.
func NewRSAPublicKey(pub *rsa.PublicKey) *RSAPublicKey {
	return &RSAPublicKey{key: pub}
}

func (k *RSAPublicKey) Algorithm() string { return AlgorithmRSA }

// Encoded returns the PKIX DER encoding.
func (k *RSAPublicKey) Encoded() []byte {
	pub := k.PublicKey()
	if pub == nil || pub.N == nil {
		return nil
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil
	}
	return der
}

// PublicKey returns the wrapped key, or nil once destroyed.
func (k *RSAPublicKey) PublicKey() *rsa.PublicKey {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.key
}

// Destroy drops the reference; public material is not secret.
func (k *RSAPublicKey) Destroy() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.key = nil
}

func (k *RSAPublicKey) Destroyed() bool {
	return k.PublicKey() == nil
}

// RSAPrivateKey wraps an RSA private key.
type RSAPrivateKey struct {
	mu  sync.RWMutex
	key *rsa.PrivateKey
}

// NewRSAPrivateKey wraps priv. A nil priv yields a key with an empty encoding.
func NewRSAPrivateKey(priv *rsa.PrivateKey) *RSAPrivateKey {
	return &RSAPrivateKey{key: priv}
}

func (k *RSAPrivateKey) Algorithm() string { return AlgorithmRSA }

// Encoded returns the PKCS#8 DER encoding.
func (k *RSAPrivateKey) Encoded() []byte {
	priv := k.PrivateKey()
	if priv == nil || priv.N == nil {
		return nil
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil
	}
	return der
}

// PrivateKey returns the wrapped key, or nil once destroyed.
func (k *RSAPrivateKey) PrivateKey() *rsa.PrivateKey {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.key
}

// Public returns the matching public key handle.
func (k *RSAPrivateKey) Public() *RSAPublicKey {
	priv := k.PrivateKey()
	if priv == nil {
		return NewRSAPublicKey(nil)
	}
	pub := priv.PublicKey
	return NewRSAPublicKey(&pub)
}

// Destroy zeroes the private exponent, the primes and the CRT values. The
// copy crypto/rsa keeps inside its unexported precomputed state is out of
// reach and is left to the garbage collector.
func (k *RSAPrivateKey) Destroy() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.key == nil {
		return
	}
	wipeInt(k.key.D)
	for _, p := range k.key.Primes {
		wipeInt(p)
	}
	wipeInt(k.key.Precomputed.Dp)
	wipeInt(k.key.Precomputed.Dq)
	wipeInt(k.key.Precomputed.Qinv)
	for _, crt := range k.key.Precomputed.CRTValues {
		wipeInt(crt.Exp)
		wipeInt(crt.Coeff)
		wipeInt(crt.R)
	}
	k.key = nil
}

// wipeInt zeroes every word of x's backing array, including words beyond
// its current length, then sets x to zero.
func wipeInt(x *big.Int) {
	if x == nil {
		return
	}
	words := x.Bits()
	words = words[:cap(words)]
	for i := range words {
		words[i] = 0
	}
	runtime.KeepAlive(words)
	x.SetInt64(0)
}

func (k *RSAPrivateKey) Destroyed() bool {
	return k.PrivateKey() == nil
}

// KeyPair holds both halves of an asymmetric key.
type KeyPair struct {
	Public  *RSAPublicKey
	Private *RSAPrivateKey
}

// Destroy destroys both halves.
func (p *KeyPair) Destroy() {
	if p.Public != nil {
		p.Public.Destroy()
	}
	if p.Private != nil {
		p.Private.Destroy()
	}
}

// Fingerprint returns a short, non-reversible identifier for key suitable for
// log fields. Both halves of an RSA key pair share a fingerprint.
func Fingerprint(key Key) string {
	if key == nil {
		return ""
	}

	var encoded []byte
	if priv, ok := key.(*RSAPrivateKey); ok {
		encoded = priv.Public().Encoded()
	} else {
		encoded = key.Encoded()
	}
	if len(encoded) == 0 {
		return ""
	}
	defer SecureZero(encoded)

	hash := sha256.Sum256(encoded)
	return hex.EncodeToString(hash[:8])
}
