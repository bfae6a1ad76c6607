package go_rpsession

import (
	"crypto/sha256"
	"fmt"
	"io"

	"go.step.sm/crypto/x25519"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// ECDH is the handshake key exchange context created right before the
// stream phase. The local key pair lives for one session only.
type ECDH struct {
	privateKey x25519.PrivateKey
	publicKey  x25519.PublicKey
}

// NewECDH generates a fresh X25519 key pair.
func NewECDH() (*ECDH, error) {
	var seed [32]byte
	if err := randomBytesCrypt(seed[:]); err != nil {
		return nil, fmt.Errorf("failed to generate ECDH private key: %w", err)
	}

	privKey := x25519.PrivateKey(seed[:])
	pubKeyInterface := privKey.Public()
	pubKey, ok := pubKeyInterface.(x25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to derive public key from private key")
	}

	return &ECDH{
		privateKey: privKey,
		publicKey:  pubKey,
	}, nil
}

// LocalPublicKey returns the 32-byte public key to send to the console.
func (e *ECDH) LocalPublicKey() []byte {
	out := make([]byte, len(e.publicKey))
	copy(out, e.publicKey)
	return out
}

// DeriveSecret computes the stream cipher secret from the console's
// public key and the session handshake key. The handshake key salts the
// derivation so a replayed exchange yields a different secret.
func (e *ECDH) DeriveSecret(remotePublicKey, handshakeKey []byte) ([]byte, error) {
	if len(remotePublicKey) != curve25519.PointSize {
		return nil, fmt.Errorf("%w: remote public key has size %d", ErrInvalidData, len(remotePublicKey))
	}

	shared, err := curve25519.X25519(e.privateKey, remotePublicKey)
	if err != nil {
		return nil, fmt.Errorf("ECDH key exchange failed: %w", err)
	}

	kdf := hkdf.New(sha256.New, shared, handshakeKey, []byte("rpsession stream"))
	secret := make([]byte, 32)
	if _, err := io.ReadFull(kdf, secret); err != nil {
		return nil, err
	}
	return secret, nil
}
