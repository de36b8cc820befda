package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
)

type (
	// Signer signs raw data.
	Signer interface {
		SignBytes(data []byte) ([]byte, error)
		Verifier() (Verifier, error)
	}

	// Verifier verifies signatures produced by the corresponding Signer.
	Verifier interface {
		VerifyBytes(sig []byte, data []byte) error
		MarshalPublicKey() ([]byte, error)
	}

	// InMemoryEd25519Signer keeps the private key in process memory.
	InMemoryEd25519Signer struct {
		key ed25519.PrivateKey
	}

	ed25519Verifier struct {
		pubKey ed25519.PublicKey
	}
)

var ErrSignatureVerificationFailed = errors.New("signature verification failed")

// NewInMemoryEd25519Signer generates a new key pair.
func NewInMemoryEd25519Signer() (*InMemoryEd25519Signer, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating ed25519 key: %w", err)
	}
	return &InMemoryEd25519Signer{key: privateKey}, nil
}

// NewInMemoryEd25519SignerFromSeed creates a signer from private key seed bytes.
func NewInMemoryEd25519SignerFromSeed(seed []byte) *InMemoryEd25519Signer {
	return &InMemoryEd25519Signer{key: ed25519.NewKeyFromSeed(seed)}
}

func (s *InMemoryEd25519Signer) SignBytes(data []byte) ([]byte, error) {
	if s == nil || len(s.key) == 0 {
		return nil, errors.New("signer is not initialized")
	}
	return ed25519.Sign(s.key, data), nil
}

func (s *InMemoryEd25519Signer) Verifier() (Verifier, error) {
	if s == nil || len(s.key) == 0 {
		return nil, errors.New("signer is not initialized")
	}
	return NewVerifierEd25519(s.key.Public().(ed25519.PublicKey))
}

// NewVerifierEd25519 creates a verifier from ed25519 public key bytes.
func NewVerifierEd25519(pubKey []byte) (Verifier, error) {
	if len(pubKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid ed25519 public key size: %d", len(pubKey))
	}
	return &ed25519Verifier{pubKey: ed25519.PublicKey(pubKey)}, nil
}

func (v *ed25519Verifier) VerifyBytes(sig []byte, data []byte) error {
	if !ed25519.Verify(v.pubKey, data, sig) {
		return ErrSignatureVerificationFailed
	}
	return nil
}

func (v *ed25519Verifier) MarshalPublicKey() ([]byte, error) {
	return []byte(v.pubKey), nil
}
