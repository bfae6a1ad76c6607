// Session struct definition
package go_rpsession

import "sync"

// Session is the control-plane state machine of one Remote Play
// connection. It composes the session request exchange, the ctrl
// channel, the Senkusha prober and the stream connection under a single
// stop pipe and reports exactly one terminal QUIT event.
//
// stateMutex guards every field read or written by more than one
// goroutine. The worker holds it except while performing network I/O
// and while running the stream connection. Controller state is guarded
// by the stream connection's own sub-mutex instead.
type Session struct {
	target      Target
	connectInfo sessionConnectInfo

	ctrl             CtrlRunner
	streamConnection *StreamConnection
	senkusha         SenkushaRunner

	stateMutex sync.Mutex
	stateCond  *sync.Cond
	stopPipe   *StopPipe

	shouldStop            bool
	ctrlFailed            bool
	ctrlSessionIDReceived bool
	ctrlLoginPinRequested bool
	loginPinEntered       bool
	loginPin              []byte

	nonce        [RPCRYPT_KEY_SIZE]byte
	rpcrypt      RPCrypt
	ecdh         *ECDH
	handshakeKey [HANDSHAKE_KEY_SIZE]byte

	// Senkusha outputs, with fallbacks applied on probe failure.
	mtuIn  uint32
	mtuOut uint32
	rttUS  uint64

	controllerState ControllerState

	quitReason    QuitReason
	quitReasonStr string

	eventCb EventCallback

	wg      sync.WaitGroup
	started bool
}
