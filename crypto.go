// Package go_rpsession provides Remote Play session-layer cryptographic
// operations.
//
// The Crypto type serves as a protocol adapter, NOT a cryptographic
// implementation. Key derivation delegates to golang.org/x/crypto/hkdf,
// the stream cipher to the standard library's AES-CTR, and the handshake
// key exchange to go.step.sm/crypto/x25519 plus
// golang.org/x/crypto/curve25519 (see ecdh.go and rpcrypt.go).
package go_rpsession

import (
	"crypto/rand"
	"encoding/binary"
)

// NewCrypto creates a new Crypto instance
func NewCrypto() *Crypto {
	return &Crypto{
		rng: rand.Reader,
	}
}

// randomBytesCrypt fills buf with cryptographically secure random bytes.
// Used for the device id and the stream handshake key.
func randomBytesCrypt(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}

// Random32 generates a cryptographically secure random uint32.
// Used for Senkusha probe tags.
func (c *Crypto) Random32() uint32 {
	var bytes [4]byte
	_, err := c.rng.Read(bytes[:])
	if err != nil {
		// crypto/rand failing is unrecoverable for key material
		Fatal("Failed to generate random uint32: %v", err)
		return 0
	}
	return binary.BigEndian.Uint32(bytes[:])
}
