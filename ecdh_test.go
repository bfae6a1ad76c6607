package go_rpsession

import (
	"bytes"
	"testing"
)

func TestECDHSharedSecretAgreement(t *testing.T) {
	local, err := NewECDH()
	if err != nil {
		t.Fatalf("NewECDH failed: %v", err)
	}
	remote, err := NewECDH()
	if err != nil {
		t.Fatalf("NewECDH failed: %v", err)
	}

	handshakeKey := make([]byte, HANDSHAKE_KEY_SIZE)
	copy(handshakeKey, "hs_key_0123456789")

	a, err := local.DeriveSecret(remote.LocalPublicKey(), handshakeKey)
	if err != nil {
		t.Fatalf("DeriveSecret failed: %v", err)
	}
	b, err := remote.DeriveSecret(local.LocalPublicKey(), handshakeKey)
	if err != nil {
		t.Fatalf("DeriveSecret failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("both sides should derive the same secret")
	}
	if len(a) != 32 {
		t.Errorf("secret length = %d, want 32", len(a))
	}
}

func TestECDHHandshakeKeySalts(t *testing.T) {
	local, _ := NewECDH()
	remote, _ := NewECDH()

	a, err := local.DeriveSecret(remote.LocalPublicKey(), []byte("handshake-key-01"))
	if err != nil {
		t.Fatalf("DeriveSecret failed: %v", err)
	}
	b, err := local.DeriveSecret(remote.LocalPublicKey(), []byte("handshake-key-02"))
	if err != nil {
		t.Fatalf("DeriveSecret failed: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("different handshake keys should derive different secrets")
	}
}

func TestECDHPublicKeySize(t *testing.T) {
	ecdh, err := NewECDH()
	if err != nil {
		t.Fatalf("NewECDH failed: %v", err)
	}
	if got := len(ecdh.LocalPublicKey()); got != 32 {
		t.Errorf("public key length = %d, want 32", got)
	}
}

func TestECDHRejectsBadRemoteKey(t *testing.T) {
	ecdh, _ := NewECDH()
	if _, err := ecdh.DeriveSecret([]byte("short"), make([]byte, HANDSHAKE_KEY_SIZE)); err == nil {
		t.Error("DeriveSecret should reject a short remote key")
	}
}
