package go_rpsession

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"
)

// StopPipe is the cancellable wakeup primitive shared across all blocking
// I/O in a session. Stop() pokes it exactly once; subsequent pokes are
// harmless. A poked pipe makes concurrent Connect and guarded reads
// return ErrCanceled.
type StopPipe struct {
	ch   chan struct{}
	done chan struct{}
}

// NewStopPipe creates an unpoked stop pipe.
func NewStopPipe() *StopPipe {
	return &StopPipe{ch: make(chan struct{})}
}

// Stop pokes the pipe. Idempotent.
func (sp *StopPipe) Stop() {
	select {
	case <-sp.ch:
	default:
		close(sp.ch)
	}
}

// Stopped reports whether the pipe has been poked.
func (sp *StopPipe) Stopped() bool {
	select {
	case <-sp.ch:
		return true
	default:
		return false
	}
}

// C returns the channel that is closed when the pipe is poked.
func (sp *StopPipe) C() <-chan struct{} {
	return sp.ch
}

// Connect dials network/address, aborting with ErrCanceled as soon as the
// pipe is poked. A refused connection is reported as ErrConnectionRefused,
// everything else as ErrNetwork. timeout <= 0 means no timeout beyond the
// pipe and the operating system's own.
func (sp *StopPipe) Connect(network, address string, timeout time.Duration) (net.Conn, error) {
	ctx := context.Background()
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-sp.ch:
			cancel()
		case <-watchDone:
		}
	}()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		if sp.Stopped() {
			return nil, ErrCanceled
		}
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, ErrConnectionRefused
		}
		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
		return nil, ErrNetwork
	}
	if sp.Stopped() {
		conn.Close()
		return nil, ErrCanceled
	}
	return conn, nil
}

// aLongTimeAgo is a non-zero deadline in the distant past, used to force
// pending reads to return immediately.
var aLongTimeAgo = time.Unix(1, 0)

// GuardRead arms conn so that a read in progress returns once the pipe is
// poked or timeout elapses. The returned release function must be called
// after the read; classify then maps the read error to ErrCanceled or
// ErrTimeout.
func (sp *StopPipe) GuardRead(conn net.Conn, timeout time.Duration) (release func()) {
	if timeout > 0 {
		conn.SetReadDeadline(time.Now().Add(timeout))
	}
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-sp.ch:
			conn.SetReadDeadline(aLongTimeAgo)
		case <-watchDone:
		}
	}()
	return func() {
		close(watchDone)
		var zero time.Time
		conn.SetReadDeadline(zero)
	}
}

// ClassifyReadError maps a read error produced under GuardRead to the
// session error taxonomy.
func (sp *StopPipe) ClassifyReadError(err error) error {
	if err == nil {
		return nil
	}
	if sp.Stopped() {
		return ErrCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrNetwork
}
