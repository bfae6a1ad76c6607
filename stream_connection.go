package go_rpsession

import (
	"errors"
	"sync"
)

// StreamRunner is the A/V streaming runtime. When Run returns, the
// session is over. Run must observe Stop promptly and return ErrCanceled
// when stopped, a DisconnectError when the console ends the session, or
// nil on clean completion.
type StreamRunner interface {
	Run() error
	Stop()
}

// FeedbackSender delivers controller state frames to the console while
// the stream connection is live.
type FeedbackSender struct {
	mu    sync.Mutex
	state ControllerState
	sent  uint64
}

// SetControllerState records the state for the next outbound frame.
func (fs *FeedbackSender) SetControllerState(state *ControllerState) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.state.Equals(state) {
		return
	}
	fs.state = *state
	fs.sent++
}

// ControllerState returns the most recently recorded state.
func (fs *FeedbackSender) ControllerState() ControllerState {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.state
}

// StreamConnection owns the stream phase of the session: the injectable
// A/V runner, the feedback sender gate and the remote disconnect reason.
// Controller state has its own mutex so input updates never contend with
// session orchestration.
type StreamConnection struct {
	session *Session
	runner  StreamRunner

	feedbackSenderMutex  sync.Mutex
	feedbackSenderActive bool
	feedbackSender       FeedbackSender

	remoteDisconnectReason string
}

// NewStreamConnection creates the stream phase owner for a session.
func NewStreamConnection(session *Session) *StreamConnection {
	return &StreamConnection{session: session}
}

// SetRunner injects the A/V runtime. Must be called before the session
// reaches the stream phase; without a runner the stream phase idles
// until stopped.
func (sc *StreamConnection) SetRunner(runner StreamRunner) {
	sc.runner = runner
}

// Run executes the stream phase. Without an injected runner it idles
// until the session's stop pipe is poked, so a control-plane-only client
// still keeps the session alive.
func (sc *StreamConnection) Run() error {
	sc.setFeedbackSenderActive(true)
	defer sc.setFeedbackSenderActive(false)

	if sc.runner == nil {
		<-sc.session.stopPipe.C()
		return ErrCanceled
	}
	err := sc.runner.Run()
	var de *DisconnectError
	if errors.As(err, &de) {
		sc.remoteDisconnectReason = de.Reason
	}
	return err
}

// Stop forwards a stop request to the runner. Idempotent.
func (sc *StreamConnection) Stop() {
	if sc.runner != nil {
		sc.runner.Stop()
	}
}

// RemoteDisconnectReason returns the server-supplied disconnect string,
// if any.
func (sc *StreamConnection) RemoteDisconnectReason() string {
	return sc.remoteDisconnectReason
}

func (sc *StreamConnection) setFeedbackSenderActive(active bool) {
	sc.feedbackSenderMutex.Lock()
	sc.feedbackSenderActive = active
	sc.feedbackSenderMutex.Unlock()
}

// SetControllerState copies state under the feedback sub-mutex and
// forwards it immediately when the feedback sender is active.
func (sc *StreamConnection) SetControllerState(state *ControllerState) {
	sc.feedbackSenderMutex.Lock()
	defer sc.feedbackSenderMutex.Unlock()
	sc.session.controllerState = *state
	if sc.feedbackSenderActive {
		sc.feedbackSender.SetControllerState(&sc.session.controllerState)
	}
}
