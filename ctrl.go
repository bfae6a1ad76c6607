package go_rpsession

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
)

// CtrlRunner is the control channel to the console. It runs alongside
// the session worker; connection state changes surface through the
// session's condition flags, not through Start's return value.
type CtrlRunner interface {
	Start() error
	Stop()
	Join() error
	SetLoginPin(pin []byte)
	GotoBed() error
	KeyboardSetText(text string) error
	KeyboardAccept() error
	KeyboardReject() error
}

// Ctrl is the default control channel worker. It performs the
// RP-Auth'd HTTP upgrade on port 9295 and then exchanges framed,
// RPCrypt-encrypted messages until stopped.
type Ctrl struct {
	session  *Session
	stopPipe *StopPipe
	tcp      *Tcp
	wg       sync.WaitGroup
	started  bool

	sendMutex    sync.Mutex
	keyPosLocal  uint64
	keyPosRemote uint64

	sessionID []byte
}

// NewCtrl creates the control channel worker for a session.
func NewCtrl(session *Session) *Ctrl {
	stopPipe := NewStopPipe()
	return &Ctrl{
		session:  session,
		stopPipe: stopPipe,
		tcp:      NewTcp(stopPipe),
	}
}

// Start spawns the ctrl worker goroutine. Must be called at most once.
func (c *Ctrl) Start() error {
	if c.started {
		return ErrSessionAlreadyStarted
	}
	c.started = true
	c.wg.Add(1)
	go c.threadFunc()
	return nil
}

// Stop pokes the ctrl stop pipe. Idempotent.
func (c *Ctrl) Stop() {
	c.stopPipe.Stop()
}

// Join blocks until the ctrl worker exits and releases the socket.
func (c *Ctrl) Join() error {
	c.wg.Wait()
	c.tcp.Disconnect()
	return nil
}

func (c *Ctrl) threadFunc() {
	defer c.wg.Done()

	if err := c.connect(); err != nil {
		return
	}
	Info("Ctrl connected")
	c.messageLoop()
}

// ctrlPath selects the ctrl endpoint for the negotiated target.
func ctrlPath(target Target) string {
	if target == TARGET_PS4_8 || target == TARGET_PS4_9 {
		return CTRL_PATH_PS4_PRE10
	}
	if target.IsPS5() {
		return CTRL_PATH_PS5
	}
	return CTRL_PATH_PS4
}

// connect establishes the TCP connection and performs the HTTP auth
// exchange. Failures raise ctrl_failed on the session with the matching
// quit reason; cancellation raises nothing.
func (c *Ctrl) connect() error {
	session := c.session
	addr := session.connectInfo.hostAddrSelected
	if addr == nil {
		session.ctrlSetFailed(QUIT_REASON_CTRL_CONNECT_FAILED)
		return ErrInvalidData
	}
	address := net.JoinHostPort(addr.IP.String(), strconv.Itoa(session.connectInfo.port))

	err := c.tcp.Connect(address, SESSION_EXPECT_TIMEOUT)
	if errors.Is(err, ErrCanceled) {
		return err
	} else if errors.Is(err, ErrConnectionRefused) {
		Error("Ctrl connect refused")
		session.ctrlSetFailed(QUIT_REASON_CTRL_CONNECTION_REFUSED)
		return err
	} else if err != nil {
		Error("Ctrl connect failed: %v", err)
		session.ctrlSetFailed(QUIT_REASON_CTRL_CONNECT_FAILED)
		return err
	}

	auth, err := session.rpcrypt.Encrypt(0, session.connectInfo.registKey[:])
	if err != nil {
		session.ctrlSetFailed(QUIT_REASON_CTRL_UNKNOWN)
		return err
	}
	did, err := session.rpcrypt.Encrypt(0, session.connectInfo.did[:])
	if err != nil {
		session.ctrlSetFailed(QUIT_REASON_CTRL_UNKNOWN)
		return err
	}

	request := fmt.Sprintf(
		"GET %s HTTP/1.1\r\n"+
			"Host: %s:%d\r\n"+
			"User-Agent: %s\r\n"+
			"Connection: keep-alive\r\n"+
			"Content-Length: 0\r\n"+
			"RP-Auth: %s\r\n"+
			"RP-Version: %s\r\n"+
			"RP-Did: %s\r\n"+
			"RP-ControllerType: 3\r\n"+
			"RP-ClientType: 11\r\n"+
			"RP-OSType: Win10.0.0\r\n"+
			"RP-ConnType: 1\r\n"+
			"\r\n",
		ctrlPath(session.target),
		session.connectInfo.hostname, session.connectInfo.port,
		SESSION_USER_AGENT,
		base64.StdEncoding.EncodeToString(auth),
		session.target.VersionString(),
		base64.StdEncoding.EncodeToString(did))

	if _, err := c.tcp.Send([]byte(request)); err != nil {
		Error("Ctrl failed to send auth request: %v", err)
		session.ctrlSetFailed(QUIT_REASON_CTRL_CONNECT_FAILED)
		return ErrNetwork
	}

	header, err := recvHTTPHeader(c.tcp.Conn(), c.stopPipe, SESSION_EXPECT_TIMEOUT)
	if errors.Is(err, ErrCanceled) {
		return err
	} else if err != nil {
		Error("Ctrl failed to receive auth response: %v", err)
		session.ctrlSetFailed(QUIT_REASON_CTRL_CONNECT_FAILED)
		return err
	}

	response, err := parseHTTPResponse(header)
	if err != nil || response.Code != 200 {
		if err == nil {
			Error("Ctrl auth response has status %d", response.Code)
			err = ErrConnectionRefused
		}
		session.ctrlSetFailed(QUIT_REASON_CTRL_CONNECT_FAILED)
		return err
	}
	return nil
}

// ctrlMessageHeaderSize is 4 bytes payload size plus 2 bytes type.
const ctrlMessageHeaderSize = 6

const ctrlMessagePayloadSizeMax = 0x10000

func (c *Ctrl) messageLoop() {
	header := make([]byte, ctrlMessageHeaderSize)
	for {
		if err := c.recvFull(header); err != nil {
			if !errors.Is(err, ErrCanceled) {
				Error("Ctrl receive failed: %v", err)
				c.session.ctrlSetFailed(QUIT_REASON_CTRL_UNKNOWN)
			}
			return
		}
		hs := NewStream(header)
		payloadSize, _ := hs.ReadUint32()
		msgType, _ := hs.ReadUint16()
		if payloadSize > ctrlMessagePayloadSizeMax {
			Error("Ctrl message payload size %d out of range", payloadSize)
			c.session.ctrlSetFailed(QUIT_REASON_CTRL_UNKNOWN)
			return
		}

		payload := make([]byte, payloadSize)
		if payloadSize > 0 {
			if err := c.recvFull(payload); err != nil {
				if !errors.Is(err, ErrCanceled) {
					Error("Ctrl receive failed mid-message: %v", err)
					c.session.ctrlSetFailed(QUIT_REASON_CTRL_UNKNOWN)
				}
				return
			}
			if err := c.session.rpcrypt.Crypt(c.keyPosRemote, payload); err != nil {
				Error("Ctrl failed to decrypt message: %v", err)
				c.session.ctrlSetFailed(QUIT_REASON_CTRL_UNKNOWN)
				return
			}
			c.keyPosRemote += uint64(payloadSize)
		}

		c.handleMessage(msgType, payload)
	}
}

func (c *Ctrl) recvFull(buf []byte) error {
	off := 0
	for off < len(buf) {
		n, err := c.tcp.Receive(buf[off:], 0)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNetwork
		}
		off += n
	}
	return nil
}

func (c *Ctrl) handleMessage(msgType uint16, payload []byte) {
	Debug("Ctrl received %s (%#x), %d bytes", ctrlMessageTypeName(msgType), msgType, len(payload))
	switch msgType {
	case CTRL_MSG_TYPE_SESSION_ID:
		c.sessionID = payload
		c.session.ctrlSetSessionIDReceived()
	case CTRL_MSG_TYPE_LOGIN_PIN_REQ:
		c.session.ctrlSetLoginPinRequested()
	case CTRL_MSG_TYPE_LOGIN:
		if len(payload) > 0 && payload[0] != 0 {
			Info("Ctrl login rejected by console")
			c.session.ctrlSetLoginPinRequested()
		}
	case CTRL_MSG_TYPE_HEARTBEAT_REQ:
		if err := c.sendMessage(CTRL_MSG_TYPE_HEARTBEAT_REP, nil); err != nil {
			Error("Ctrl failed to answer heartbeat: %v", err)
		}
	case CTRL_MSG_TYPE_KEYBOARD_OPEN:
		c.session.sendEvent(&Event{Type: EVENT_KEYBOARD, Keyboard: KeyboardEvent{Open: true}})
	case CTRL_MSG_TYPE_KEYBOARD_TEXT:
		c.session.sendEvent(&Event{Type: EVENT_KEYBOARD, Keyboard: KeyboardEvent{Open: true, Text: string(payload)}})
	}
}

// sendMessage frames, encrypts and sends one ctrl message.
func (c *Ctrl) sendMessage(msgType uint16, payload []byte) error {
	if !c.tcp.IsConnected() {
		return ErrNetwork
	}

	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	encrypted := payload
	if len(payload) > 0 {
		var err error
		encrypted, err = c.session.rpcrypt.Encrypt(c.keyPosLocal, payload)
		if err != nil {
			return err
		}
		c.keyPosLocal += uint64(len(payload))
	}

	msg := NewStream(make([]byte, 0, ctrlMessageHeaderSize+len(encrypted)))
	msg.WriteUint32(uint32(len(encrypted)))
	msg.WriteUint16(msgType)
	msg.Write(encrypted)
	_, err := c.tcp.Send(msg.Bytes())
	return err
}

// SetLoginPin forwards an entered login PIN to the console.
func (c *Ctrl) SetLoginPin(pin []byte) {
	if err := c.sendMessage(CTRL_MSG_TYPE_LOGIN_PIN, pin); err != nil {
		Error("Ctrl failed to send login PIN: %v", err)
	}
}

// GotoBed asks the console to enter rest mode.
func (c *Ctrl) GotoBed() error {
	return c.sendMessage(CTRL_MSG_TYPE_GOTO_BED, nil)
}

// KeyboardSetText replaces the text of the on-console keyboard.
func (c *Ctrl) KeyboardSetText(text string) error {
	return c.sendMessage(CTRL_MSG_TYPE_KEYBOARD_TEXT, []byte(text))
}

// KeyboardAccept confirms the current on-console keyboard text.
func (c *Ctrl) KeyboardAccept() error {
	return c.sendMessage(CTRL_MSG_TYPE_KEYBOARD_ACCEPT, nil)
}

// KeyboardReject dismisses the on-console keyboard.
func (c *Ctrl) KeyboardReject() error {
	return c.sendMessage(CTRL_MSG_TYPE_KEYBOARD_REJECT, nil)
}
