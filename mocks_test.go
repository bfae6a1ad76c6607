package go_rpsession

// mocks_test.go - Shared test helpers, fakes and stubs used across
// multiple test files.

import (
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

// testNonceB64 decodes to the 16 bytes 0x00..0x0f.
const testNonceB64 = "AAECAwQFBgcICQoLDA0ODw=="

func okSessionResponse() string {
	return "HTTP/1.1 200 OK\r\nRP-Nonce: " + testNonceB64 + "\r\n\r\n"
}

// fakeConsole is an in-process console answering session requests with
// scripted raw HTTP responses, one accepted connection per response.
type fakeConsole struct {
	t  *testing.T
	ln net.Listener

	mu       sync.Mutex
	requests []string

	responses []string
}

func newFakeConsole(t *testing.T, responses ...string) *fakeConsole {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	console := &fakeConsole{t: t, ln: ln, responses: responses}
	go console.serve()
	t.Cleanup(console.close)
	return console
}

func (f *fakeConsole) serve() {
	for _, response := range f.responses {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		request := readHTTPRequest(conn)
		f.mu.Lock()
		f.requests = append(f.requests, request)
		f.mu.Unlock()
		conn.Write([]byte(response))
		conn.Close()
	}
}

func (f *fakeConsole) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeConsole) close() {
	f.ln.Close()
}

func (f *fakeConsole) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeConsole) request(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.requests) {
		f.t.Fatalf("request %d not received (have %d)", i, len(f.requests))
	}
	return f.requests[i]
}

func readHTTPRequest(conn net.Conn) string {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 0, 512)
	chunk := make([]byte, 512)
	for {
		n, err := conn.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if strings.Contains(string(buf), "\r\n\r\n") || err != nil {
			return string(buf)
		}
	}
}

// fakeCtrl drives the session's ctrl condition flags from scripted
// behavior instead of a live console connection.
type fakeCtrl struct {
	session *Session
	onStart func(c *fakeCtrl)
	onPin   func(c *fakeCtrl, pin []byte, attempt int)

	mu      sync.Mutex
	pins    [][]byte
	stopped bool
	joined  bool
}

func (c *fakeCtrl) Start() error {
	if c.onStart != nil {
		go c.onStart(c)
	}
	return nil
}

func (c *fakeCtrl) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
}

func (c *fakeCtrl) Join() error {
	c.mu.Lock()
	c.joined = true
	c.mu.Unlock()
	return nil
}

func (c *fakeCtrl) SetLoginPin(pin []byte) {
	c.mu.Lock()
	c.pins = append(c.pins, pin)
	attempt := len(c.pins)
	c.mu.Unlock()
	if c.onPin != nil {
		go c.onPin(c, pin, attempt)
	}
}

func (c *fakeCtrl) GotoBed() error               { return nil }
func (c *fakeCtrl) KeyboardSetText(string) error { return nil }
func (c *fakeCtrl) KeyboardAccept() error        { return nil }
func (c *fakeCtrl) KeyboardReject() error        { return nil }

func (c *fakeCtrl) wasStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

func (c *fakeCtrl) wasJoined() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.joined
}

// fakeSenkusha returns scripted probe results, optionally blocking on a
// stop pipe first to simulate a probe in flight.
type fakeSenkusha struct {
	mtuIn    uint32
	mtuOut   uint32
	rttUS    uint64
	err      error
	entered  chan struct{}
	waitStop *StopPipe
}

func (s *fakeSenkusha) Run() (uint32, uint32, uint64, error) {
	if s.entered != nil {
		close(s.entered)
	}
	if s.waitStop != nil {
		<-s.waitStop.C()
		return 0, 0, 0, ErrCanceled
	}
	return s.mtuIn, s.mtuOut, s.rttUS, s.err
}

// fakeStreamRunner completes immediately with err, or blocks until
// stopped when block is set.
type fakeStreamRunner struct {
	err   error
	block bool

	mu       sync.Mutex
	ran      bool
	stopOnce sync.Once
	stopCh   chan struct{}
}

func newFakeStreamRunner(err error, block bool) *fakeStreamRunner {
	return &fakeStreamRunner{err: err, block: block, stopCh: make(chan struct{})}
}

func (r *fakeStreamRunner) Run() error {
	r.mu.Lock()
	r.ran = true
	r.mu.Unlock()
	if r.block {
		<-r.stopCh
		return ErrCanceled
	}
	return r.err
}

func (r *fakeStreamRunner) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

func (r *fakeStreamRunner) didRun() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ran
}

// eventRecorder collects session events and exposes the QUIT gate.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
	quit   chan struct{}
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{quit: make(chan struct{})}
}

func (r *eventRecorder) callback(event *Event) {
	r.mu.Lock()
	r.events = append(r.events, *event)
	r.mu.Unlock()
	if event.Type == EVENT_QUIT {
		close(r.quit)
	}
}

func (r *eventRecorder) waitQuit(t *testing.T) QuitEvent {
	select {
	case <-r.quit:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for QUIT event")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	last := r.events[len(r.events)-1]
	if last.Type != EVENT_QUIT {
		t.Fatalf("last event is type %d, want QUIT", last.Type)
	}
	return last.Quit
}

func (r *eventRecorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// newTestSession builds a session pointed at 127.0.0.1:port without
// going through name resolution.
func newTestSession(t *testing.T, ps5 bool, port int) *Session {
	session := &Session{quitReason: QUIT_REASON_NONE}
	if ps5 {
		session.target = TARGET_PS5_1
	} else {
		session.target = TARGET_PS4_10
	}
	session.stateCond = sync.NewCond(&session.stateMutex)
	session.stopPipe = NewStopPipe()
	session.connectInfo.ps5 = ps5
	session.connectInfo.port = port
	session.connectInfo.hostAddrs = []net.IPAddr{{IP: net.IPv4(127, 0, 0, 1)}}
	copy(session.connectInfo.registKey[:], "testregistkey")
	copy(session.connectInfo.morning[:], "morning_secret16")
	if err := synthesizeDeviceID(&session.connectInfo.did); err != nil {
		t.Fatalf("failed to synthesize device id: %v", err)
	}
	session.controllerState.SetIdle()
	session.streamConnection = NewStreamConnection(session)
	session.ctrl = &fakeCtrl{session: session}
	session.senkusha = &fakeSenkusha{mtuIn: 1454, mtuOut: 1454, rttUS: 1000}
	return session
}

// startSession wires the recorder, starts the worker and registers
// teardown.
func startSession(t *testing.T, session *Session) *eventRecorder {
	recorder := newEventRecorder()
	session.SetEventCallback(recorder.callback)
	if err := session.Start(); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	t.Cleanup(func() {
		session.Stop()
		session.Join()
	})
	return recorder
}
