package go_rpsession

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// RPCrypt is the session-layer symmetric crypto context. It is keyed by
// (target, nonce, morning) after a successful session request and is
// shared by the ctrl channel and the stream connection.
//
// Key positions address an AES-CTR keystream; each direction of the ctrl
// channel advances its own position so both ends stay in step.
type RPCrypt struct {
	target Target

	// bright is the AES key, ambassador the IV MAC key. The names
	// follow the console's own key schedule terminology.
	bright     [RPCRYPT_KEY_SIZE]byte
	ambassador [RPCRYPT_KEY_SIZE]byte

	initialized bool
}

// InitAuth derives the cipher and IV keys from the server nonce and the
// pre-shared morning secret. The target participates in the derivation
// so firmware families with different key schedules stay separated.
func (c *RPCrypt) InitAuth(target Target, nonce [RPCRYPT_KEY_SIZE]byte, morning [MORNING_SIZE]byte) {
	c.target = target

	info := []byte("rpcrypt auth " + target.VersionString())
	kdf := hkdf.New(sha256.New, morning[:], nonce[:], info)
	var keys [RPCRYPT_KEY_SIZE * 2]byte
	if _, err := io.ReadFull(kdf, keys[:]); err != nil {
		// hkdf over sha256 cannot fail before keystream exhaustion
		Fatal("RPCrypt key derivation failed: %v", err)
		return
	}
	copy(c.bright[:], keys[:RPCRYPT_KEY_SIZE])
	copy(c.ambassador[:], keys[RPCRYPT_KEY_SIZE:])
	c.initialized = true
}

// Initialized reports whether InitAuth has run.
func (c *RPCrypt) Initialized() bool {
	return c.initialized
}

// genIV derives the counter block for the given keystream block index.
func (c *RPCrypt) genIV(blockIndex uint64) [aes.BlockSize]byte {
	mac := hmac.New(sha256.New, c.ambassador[:])
	mac.Write(c.bright[:])
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], blockIndex)
	mac.Write(idx[:])
	var iv [aes.BlockSize]byte
	copy(iv[:], mac.Sum(nil))
	return iv
}

// Crypt applies the keystream at keyPos to buf in place. Encryption and
// decryption are the same operation. keyPos may be unaligned; the
// keystream prefix inside the first block is discarded.
func (c *RPCrypt) Crypt(keyPos uint64, buf []byte) error {
	if !c.initialized {
		return fmt.Errorf("%w: rpcrypt not initialized", ErrInvalidData)
	}
	block, err := aes.NewCipher(c.bright[:])
	if err != nil {
		return err
	}
	iv := c.genIV(keyPos / aes.BlockSize)
	stream := cipher.NewCTR(block, iv[:])

	skip := int(keyPos % aes.BlockSize)
	if skip > 0 {
		var discard [aes.BlockSize]byte
		stream.XORKeyStream(discard[:skip], discard[:skip])
	}
	stream.XORKeyStream(buf, buf)
	return nil
}

// Encrypt copies data and applies the keystream at keyPos to the copy.
func (c *RPCrypt) Encrypt(keyPos uint64, data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	if err := c.Crypt(keyPos, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decrypt copies data and strips the keystream at keyPos from the copy.
func (c *RPCrypt) Decrypt(keyPos uint64, data []byte) ([]byte, error) {
	return c.Encrypt(keyPos, data)
}
