package go_rpsession

import "time"

// Remote Play Protocol Constants
//
// This file contains constants used by the Remote Play session protocol
// between a client and a PS4/PS5 console. The session orchestrator talks
// HTTP over TCP port 9295 for the session request and the ctrl channel,
// and UDP port 9297 for the Senkusha MTU/RTT probe.

// Session Constants
const (
	SESSION_PORT  = 9295
	SENKUSHA_PORT = 9297

	// SESSION_EXPECT_TIMEOUT governs the session-request header receive,
	// the ctrl startup wait and the post-PIN session-id wait.
	SESSION_EXPECT_TIMEOUT = 5000 * time.Millisecond

	// SESSION_USER_AGENT is the fixed User-Agent the console expects.
	SESSION_USER_AGENT = "remoteplay Windows"

	RPCRYPT_KEY_SIZE   = 16
	HANDSHAKE_KEY_SIZE = 16

	REGIST_KEY_SIZE = 16
	MORNING_SIZE    = 16
	DEVICE_ID_SIZE  = 32
)

// Session request paths per console target family.
const (
	SESSION_REQUEST_PATH_PS4_PRE10 = "/sce/rp/session"
	SESSION_REQUEST_PATH_PS4       = "/sie/ps4/rp/sess/init"
	SESSION_REQUEST_PATH_PS5       = "/sie/ps5/rp/sess/init"
)

// Ctrl channel paths per console target family.
const (
	CTRL_PATH_PS4_PRE10 = "/sce/rp/session/ctrl"
	CTRL_PATH_PS4       = "/sie/ps4/rp/sess/ctrl"
	CTRL_PATH_PS5       = "/sie/ps5/rp/sess/ctrl"
)

// RP-Application-Reason codes reported by the console in the session
// request response header, hex-encoded.
const (
	RP_APPLICATION_REASON_REGIST_FAILED  uint32 = 0x80108b01
	RP_APPLICATION_REASON_INVALID_PSN_ID uint32 = 0x80108b02
	RP_APPLICATION_REASON_RP_VERSION     uint32 = 0x80108b09
	RP_APPLICATION_REASON_IN_USE         uint32 = 0x80108b10
	RP_APPLICATION_REASON_CRASH          uint32 = 0x80108b15
	RP_APPLICATION_REASON_UNKNOWN        uint32 = 0x80108bff
)

// Ctrl Message Type Constants
const (
	CTRL_MSG_TYPE_SESSION_ID      uint16 = 0x33
	CTRL_MSG_TYPE_LOGIN_PIN_REQ   uint16 = 0x04
	CTRL_MSG_TYPE_LOGIN_PIN       uint16 = 0x8d
	CTRL_MSG_TYPE_LOGIN           uint16 = 0x05
	CTRL_MSG_TYPE_HEARTBEAT_REQ   uint16 = 0xfe
	CTRL_MSG_TYPE_HEARTBEAT_REP   uint16 = 0x1fe
	CTRL_MSG_TYPE_GOTO_BED        uint16 = 0x50
	CTRL_MSG_TYPE_KEYBOARD_OPEN   uint16 = 0x21
	CTRL_MSG_TYPE_KEYBOARD_TEXT   uint16 = 0x23
	CTRL_MSG_TYPE_KEYBOARD_ACCEPT uint16 = 0x24
	CTRL_MSG_TYPE_KEYBOARD_REJECT uint16 = 0x25
)

// Senkusha fallback values used when the probe fails non-fatally.
const (
	SENKUSHA_FALLBACK_MTU    uint32 = 1454
	SENKUSHA_FALLBACK_RTT_US uint64 = 1000
)

// Log Level Constants
const (
	DEBUG = iota
	INFO
	WARNING
	ERROR
	FATAL
)
