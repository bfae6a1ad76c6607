package go_rpsession

import (
	"context"
	"fmt"
	"net"
)

// ConnectInfo is the caller-supplied configuration for a session. It is
// copied at NewSession; the caller keeps ownership of its value.
type ConnectInfo struct {
	// PS5 selects the console generation and the initial target.
	PS5 bool

	// Host is the console's hostname or numeric address. Resolution
	// happens during NewSession and failure aborts initialization.
	Host string

	// RegistKey identifies this registered client. Zero-terminated or
	// using the full 16 bytes.
	RegistKey [REGIST_KEY_SIZE]byte

	// Morning is the pre-shared secret established during registration.
	// It never goes on the wire; it keys RPCrypt.
	Morning [MORNING_SIZE]byte

	VideoProfile              ConnectVideoProfile
	VideoProfileAutoDowngrade bool
	EnableKeyboard            bool
}

// sessionConnectInfo is the session's owned copy of the configuration,
// extended with the resolved address list and per-attempt state.
type sessionConnectInfo struct {
	ps5 bool

	// hostAddrs is the owned result of name resolution.
	hostAddrs []net.IPAddr

	// hostAddrSelected is set after the first successful TCP connect.
	hostAddrSelected *net.IPAddr

	// hostname is the numeric form of the address currently being tried.
	hostname string

	// port is SESSION_PORT outside of tests.
	port int

	registKey [REGIST_KEY_SIZE]byte
	morning   [MORNING_SIZE]byte

	// did is the synthesized device id: a fixed 10-byte prefix, 16
	// random bytes and a 6-byte zero suffix.
	did [DEVICE_ID_SIZE]byte

	videoProfile              ConnectVideoProfile
	videoProfileAutoDowngrade bool
	enableKeyboard            bool
}

var didPrefix = [10]byte{0x00, 0x18, 0x00, 0x00, 0x00, 0x07, 0x00, 0x40, 0x00, 0x80}

const didSuffixSize = 6

// resolveHost resolves the console host into an owned address list.
func resolveHost(host string) ([]net.IPAddr, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(context.Background(), host)
	if err != nil || len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %q: %v", ErrParseAddr, host, err)
	}
	return addrs, nil
}

// synthesizeDeviceID fills did with prefix, random middle and zero suffix.
func synthesizeDeviceID(did *[DEVICE_ID_SIZE]byte) error {
	copy(did[:], didPrefix[:])
	if err := randomBytesCrypt(did[len(didPrefix) : DEVICE_ID_SIZE-didSuffixSize]); err != nil {
		return err
	}
	for i := DEVICE_ID_SIZE - didSuffixSize; i < DEVICE_ID_SIZE; i++ {
		did[i] = 0
	}
	return nil
}

// registKeyHex renders the regist key as hex, truncated at the first NUL,
// exactly as the RP-Registkey header wants it.
func registKeyHex(registKey [REGIST_KEY_SIZE]byte) string {
	length := len(registKey)
	for i, b := range registKey {
		if b == 0 {
			length = i
			break
		}
	}
	return formatHex(registKey[:length])
}
