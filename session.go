package go_rpsession

import (
	"errors"
	"sync"
	"time"
)

// settleWait is how long the session pauses after a successful request
// before starting ctrl. The PS4 doesn't always react right away.
const settleWait = 10 * time.Millisecond

// NewSession resolves the console host and prepares a session from the
// given configuration. No callback is invoked from within NewSession;
// the session does nothing until Start.
func NewSession(connectInfo *ConnectInfo) (*Session, error) {
	session := &Session{
		quitReason: QUIT_REASON_NONE,
	}
	if connectInfo.PS5 {
		session.target = TARGET_PS5_1
	} else {
		session.target = TARGET_PS4_10
	}
	session.stateCond = sync.NewCond(&session.stateMutex)
	session.stopPipe = NewStopPipe()

	addrs, err := resolveHost(connectInfo.Host)
	if err != nil {
		return nil, err
	}
	session.connectInfo.hostAddrs = addrs
	session.connectInfo.port = SESSION_PORT
	session.connectInfo.ps5 = connectInfo.PS5
	session.connectInfo.registKey = connectInfo.RegistKey
	session.connectInfo.morning = connectInfo.Morning
	session.connectInfo.videoProfile = connectInfo.VideoProfile
	session.connectInfo.videoProfileAutoDowngrade = connectInfo.VideoProfileAutoDowngrade
	session.connectInfo.enableKeyboard = connectInfo.EnableKeyboard

	if err := synthesizeDeviceID(&session.connectInfo.did); err != nil {
		return nil, err
	}

	session.controllerState.SetIdle()

	session.ctrl = NewCtrl(session)
	session.streamConnection = NewStreamConnection(session)
	session.senkusha = NewSenkusha(session)

	return session, nil
}

// ensureInitialized guards against zero-value Session usage.
func (session *Session) ensureInitialized() error {
	if session.stopPipe == nil || session.stateCond == nil {
		return ErrSessionNotInitialized
	}
	return nil
}

// SetEventCallback registers the event receiver. Must be called before
// Start; events are delivered from the session worker goroutine.
func (session *Session) SetEventCallback(cb EventCallback) {
	session.eventCb = cb
}

// StreamConnection exposes the stream phase owner, e.g. to inject an
// A/V runner before Start.
func (session *Session) StreamConnection() *StreamConnection {
	return session.streamConnection
}

// SetSenkusha replaces the network prober. Must be called before Start.
func (session *Session) SetSenkusha(senkusha SenkushaRunner) {
	session.senkusha = senkusha
}

// SetCtrl replaces the control channel worker. Must be called before
// Start.
func (session *Session) SetCtrl(ctrl CtrlRunner) {
	session.ctrl = ctrl
}

// Start spawns the session worker. Must be called at most once.
func (session *Session) Start() error {
	if err := session.ensureInitialized(); err != nil {
		return err
	}
	session.stateMutex.Lock()
	defer session.stateMutex.Unlock()
	if session.started {
		return ErrSessionAlreadyStarted
	}
	session.started = true
	session.wg.Add(1)
	go session.threadFunc()
	return nil
}

// Stop requests session teardown: it raises should_stop, pokes the stop
// pipe, wakes the worker and forwards the stop to the stream connection.
// Idempotent.
func (session *Session) Stop() {
	session.stateMutex.Lock()
	session.shouldStop = true
	session.stopPipe.Stop()
	session.stateCond.Broadcast()
	session.streamConnection.Stop()
	session.stateMutex.Unlock()
}

// Join blocks until the session worker has exited.
func (session *Session) Join() {
	session.wg.Wait()
}

// Fini releases the session's owned resources: the pending login PIN,
// the quit reason string, the resolved address list and the event
// callback. Call after Join; safe on a nil session. No event callback
// is invoked after Fini returns.
func (session *Session) Fini() {
	if session == nil {
		return
	}
	session.stateMutex.Lock()
	session.loginPin = nil
	session.loginPinEntered = false
	session.quitReasonStr = ""
	session.connectInfo.hostAddrs = nil
	session.connectInfo.hostAddrSelected = nil
	session.eventCb = nil
	session.stateMutex.Unlock()
}

// SetControllerState copies state under the stream connection's
// feedback sub-mutex; if the feedback sender is active the state is
// forwarded immediately.
func (session *Session) SetControllerState(state *ControllerState) {
	session.streamConnection.SetControllerState(state)
}

// SetLoginPin hands an entered login PIN to the session. Any PIN still
// pending is replaced.
func (session *Session) SetLoginPin(pin []byte) {
	buf := make([]byte, len(pin))
	copy(buf, pin)
	session.stateMutex.Lock()
	session.loginPin = buf
	session.loginPinEntered = true
	session.stateMutex.Unlock()
	session.stateCond.Broadcast()
}

// GotoBed asks the console to enter rest mode.
func (session *Session) GotoBed() error {
	return session.ctrl.GotoBed()
}

// KeyboardSetText replaces the text of the on-console keyboard.
func (session *Session) KeyboardSetText(text string) error {
	return session.ctrl.KeyboardSetText(text)
}

// KeyboardAccept confirms the current on-console keyboard text.
func (session *Session) KeyboardAccept() error {
	return session.ctrl.KeyboardAccept()
}

// KeyboardReject dismisses the on-console keyboard.
func (session *Session) KeyboardReject() error {
	return session.ctrl.KeyboardReject()
}

func (session *Session) sendEvent(event *Event) {
	if session.eventCb == nil {
		return
	}
	session.eventCb(event)
}

// Ctrl-to-session notifications. The ctrl worker raises these flags;
// the session worker consumes them under stateMutex.

func (session *Session) ctrlSetFailed(reason QuitReason) {
	session.stateMutex.Lock()
	session.ctrlFailed = true
	if session.quitReason == QUIT_REASON_NONE {
		session.quitReason = reason
	}
	session.stateMutex.Unlock()
	session.stateCond.Broadcast()
}

func (session *Session) ctrlSetSessionIDReceived() {
	session.stateMutex.Lock()
	session.ctrlSessionIDReceived = true
	session.stateMutex.Unlock()
	session.stateCond.Broadcast()
}

func (session *Session) ctrlSetLoginPinRequested() {
	session.stateMutex.Lock()
	session.ctrlLoginPinRequested = true
	session.stateMutex.Unlock()
	session.stateCond.Broadcast()
}

// State predicates. All waits are guarded by one of these and re-check
// after every wakeup.

func (session *Session) checkStatePred() bool {
	return session.shouldStop || session.ctrlFailed
}

func (session *Session) checkStatePredCtrlStart() bool {
	return session.shouldStop ||
		session.ctrlFailed ||
		session.ctrlSessionIDReceived ||
		session.ctrlLoginPinRequested
}

func (session *Session) checkStatePredPin() bool {
	return session.shouldStop ||
		session.ctrlFailed ||
		session.loginPinEntered
}

// waitPred waits on the state condition until pred holds or timeout
// elapses. A negative timeout waits indefinitely. stateMutex must be
// held.
func (session *Session) waitPred(timeout time.Duration, pred func() bool) {
	if timeout < 0 {
		for !pred() {
			session.stateCond.Wait()
		}
		return
	}
	deadline := time.Now().Add(timeout)
	timer := time.AfterFunc(timeout, func() {
		session.stateMutex.Lock()
		session.stateMutex.Unlock()
		session.stateCond.Broadcast()
	})
	defer timer.Stop()
	for !pred() && time.Now().Before(deadline) {
		session.stateCond.Wait()
	}
}

// checkStop applies the cancellation discipline: with stateMutex held,
// report whether the session should quit now and set the reason to
// STOPPED unless one is already recorded.
func (session *Session) checkStop() bool {
	if !session.shouldStop {
		return false
	}
	if session.quitReason == QUIT_REASON_NONE {
		session.quitReason = QUIT_REASON_STOPPED
	}
	return true
}

func (session *Session) threadFunc() {
	defer session.wg.Done()

	session.stateMutex.Lock()
	ctrlUp := session.runStateMachine()
	if ctrlUp {
		session.ctrl.Stop()
		session.ctrl.Join()
		Info("Ctrl stopped")
	}

	session.stateMutex.Lock()
	quitEvent := Event{
		Type: EVENT_QUIT,
		Quit: QuitEvent{
			Reason:    session.quitReason,
			ReasonStr: session.quitReasonStr,
		},
	}
	session.stateMutex.Unlock()

	Info("Session has quit")
	session.sendEvent(&quitEvent)
}

// runStateMachine drives the four session phases. It is entered with
// stateMutex held and returns with it released. The return value
// reports whether ctrl was started and must be stopped and joined.
func (session *Session) runStateMachine() (ctrlUp bool) {
	defer session.stateMutex.Unlock()

	if session.checkStop() {
		return false
	}

	if session.connectInfo.ps5 {
		Info("Starting session request for PS5")
	} else {
		Info("Starting session request for PS4")
	}

	serverTarget := TARGET_PS4_UNKNOWN
	err := session.requestSession(&serverTarget)

	if errors.Is(err, ErrVersionMismatch) && !serverTarget.IsUnknown() {
		Info("Attempting to re-request session with Server's RP-Version")
		session.target = serverTarget
		err = session.requestSession(&serverTarget)
	} else if err != nil {
		return false
	}

	if errors.Is(err, ErrVersionMismatch) && !serverTarget.IsUnknown() {
		Info("Attempting to re-request session even harder with Server's RP-Version!!!")
		session.target = serverTarget
		err = session.requestSession(nil)
	} else if err != nil {
		return false
	}

	if err != nil {
		return false
	}

	Info("Session request successful")

	session.rpcrypt.InitAuth(session.target, session.nonce, session.connectInfo.morning)

	// PS4 doesn't always react right away, sleep a bit
	session.waitPred(settleWait, session.checkStatePred)

	Info("Starting ctrl")

	if err := session.ctrl.Start(); err != nil {
		Error("Ctrl start failed: %v", err)
		if session.quitReason == QUIT_REASON_NONE {
			session.quitReason = QUIT_REASON_CTRL_CONNECT_FAILED
		}
		return false
	}
	ctrlUp = true

	session.waitPred(SESSION_EXPECT_TIMEOUT, session.checkStatePredCtrlStart)
	if session.checkStop() {
		return ctrlUp
	}

	if session.ctrlFailed {
		Error("Ctrl has failed while waiting for ctrl startup")
		return session.quitCtrlFailed()
	}

	pinIncorrect := false
	for session.ctrlLoginPinRequested {
		session.ctrlLoginPinRequested = false
		if pinIncorrect {
			Info("Login PIN was incorrect, requested again by Ctrl")
		} else {
			Info("Ctrl requested Login PIN")
		}
		event := Event{
			Type:            EVENT_LOGIN_PIN_REQUEST,
			LoginPinRequest: LoginPinRequestEvent{PinIncorrect: pinIncorrect},
		}
		session.stateMutex.Unlock()
		session.sendEvent(&event)
		session.stateMutex.Lock()
		pinIncorrect = true

		session.waitPred(-1, session.checkStatePredPin)
		if session.checkStop() {
			return ctrlUp
		}
		if session.ctrlFailed {
			Error("Ctrl has failed while waiting for PIN entry")
			return session.quitCtrlFailed()
		}

		Info("Session received entered Login PIN, forwarding to Ctrl")
		pin := session.loginPin
		session.loginPin = nil
		session.loginPinEntered = false
		session.ctrl.SetLoginPin(pin)

		// wait for session id again
		session.waitPred(SESSION_EXPECT_TIMEOUT, session.checkStatePredCtrlStart)
		if session.checkStop() {
			return ctrlUp
		}
	}

	if !session.ctrlSessionIDReceived {
		Error("Ctrl did not receive session id")
		return session.quitCtrlFailed()
	}

	Info("Starting Senkusha")

	session.stateMutex.Unlock()
	mtuIn, mtuOut, rttUS, err := session.senkusha.Run()
	session.stateMutex.Lock()

	if err == nil {
		Info("Senkusha completed successfully")
		session.mtuIn = mtuIn
		session.mtuOut = mtuOut
		session.rttUS = rttUS
	} else if errors.Is(err, ErrCanceled) {
		if session.quitReason == QUIT_REASON_NONE {
			session.quitReason = QUIT_REASON_STOPPED
		}
		return ctrlUp
	} else {
		Error("Senkusha failed, but we still try to connect with fallback values")
		session.mtuIn = SENKUSHA_FALLBACK_MTU
		session.mtuOut = SENKUSHA_FALLBACK_MTU
		session.rttUS = SENKUSHA_FALLBACK_RTT_US
	}

	if err := randomBytesCrypt(session.handshakeKey[:]); err != nil {
		Error("Session failed to generate handshake key")
		if session.quitReason == QUIT_REASON_NONE {
			session.quitReason = QUIT_REASON_CTRL_UNKNOWN
		}
		return ctrlUp
	}

	session.ecdh, err = NewECDH()
	if err != nil {
		Error("Session failed to initialize ECDH")
		if session.quitReason == QUIT_REASON_NONE {
			session.quitReason = QUIT_REASON_CTRL_UNKNOWN
		}
		return ctrlUp
	}

	session.stateMutex.Unlock()
	err = session.streamConnection.Run()
	session.stateMutex.Lock()

	if errors.Is(err, ErrDisconnected) {
		Error("Remote disconnected from StreamConnection")
		session.quitReason = QUIT_REASON_STREAM_CONNECTION_REMOTE_DISCONNECTED
		session.quitReasonStr = session.streamConnection.RemoteDisconnectReason()
	} else if err != nil && !errors.Is(err, ErrCanceled) {
		Error("StreamConnection run failed")
		session.quitReason = QUIT_REASON_STREAM_CONNECTION_UNKNOWN
	} else {
		Info("StreamConnection completed successfully")
		session.quitReason = QUIT_REASON_STOPPED
	}

	session.ecdh = nil
	return ctrlUp
}

// quitCtrlFailed applies the default ctrl failure reason and routes to
// the quit-ctrl teardown. stateMutex must be held.
func (session *Session) quitCtrlFailed() bool {
	Error("Ctrl has failed, shutting down")
	if session.quitReason == QUIT_REASON_NONE {
		session.quitReason = QUIT_REASON_CTRL_UNKNOWN
	}
	return true
}

// MTU returns the negotiated inbound and outbound path MTU.
func (session *Session) MTU() (in uint32, out uint32) {
	session.stateMutex.Lock()
	defer session.stateMutex.Unlock()
	return session.mtuIn, session.mtuOut
}

// RTT returns the measured round-trip time in microseconds.
func (session *Session) RTT() uint64 {
	session.stateMutex.Lock()
	defer session.stateMutex.Unlock()
	return session.rttUS
}

// Target returns the currently negotiated console target.
func (session *Session) Target() Target {
	session.stateMutex.Lock()
	defer session.stateMutex.Unlock()
	return session.target
}
