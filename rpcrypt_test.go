package go_rpsession

import (
	"bytes"
	"testing"
)

func testAuthInputs() ([RPCRYPT_KEY_SIZE]byte, [MORNING_SIZE]byte) {
	var nonce [RPCRYPT_KEY_SIZE]byte
	var morning [MORNING_SIZE]byte
	for i := range nonce {
		nonce[i] = byte(i)
	}
	copy(morning[:], "morning_secret16")
	return nonce, morning
}

func TestRPCryptDeterministic(t *testing.T) {
	nonce, morning := testAuthInputs()

	var a, b RPCrypt
	a.InitAuth(TARGET_PS4_10, nonce, morning)
	b.InitAuth(TARGET_PS4_10, nonce, morning)

	plain := []byte("framed ctrl payload")
	ea, err := a.Encrypt(0, plain)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	eb, err := b.Encrypt(0, plain)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !bytes.Equal(ea, eb) {
		t.Error("same auth inputs should produce the same keystream")
	}
	if bytes.Equal(ea, plain) {
		t.Error("ciphertext equals plaintext")
	}
}

func TestRPCryptRoundTrip(t *testing.T) {
	nonce, morning := testAuthInputs()

	var c RPCrypt
	c.InitAuth(TARGET_PS5_1, nonce, morning)

	plain := []byte("some message across several aes blocks of payload data")
	for _, keyPos := range []uint64{0, 1, 15, 16, 17, 4096} {
		encrypted, err := c.Encrypt(keyPos, plain)
		if err != nil {
			t.Fatalf("Encrypt at %d failed: %v", keyPos, err)
		}
		decrypted, err := c.Decrypt(keyPos, encrypted)
		if err != nil {
			t.Fatalf("Decrypt at %d failed: %v", keyPos, err)
		}
		if !bytes.Equal(decrypted, plain) {
			t.Errorf("round trip at key position %d lost data", keyPos)
		}
	}
}

func TestRPCryptTargetSeparation(t *testing.T) {
	nonce, morning := testAuthInputs()

	var ps4, ps5 RPCrypt
	ps4.InitAuth(TARGET_PS4_10, nonce, morning)
	ps5.InitAuth(TARGET_PS5_1, nonce, morning)

	plain := make([]byte, 32)
	a, _ := ps4.Encrypt(0, plain)
	b, _ := ps5.Encrypt(0, plain)
	if bytes.Equal(a, b) {
		t.Error("different targets should derive different keys")
	}
}

func TestRPCryptUninitialized(t *testing.T) {
	var c RPCrypt
	if _, err := c.Encrypt(0, []byte("x")); err == nil {
		t.Error("Encrypt on uninitialized context should fail")
	}
	if c.Initialized() {
		t.Error("zero-value context reports initialized")
	}
}
