package go_rpsession

import (
	"fmt"
	"net"
	"time"
)

// Tcp is a stop-pipe-aware TCP connection used by the ctrl channel.
// Connect and Receive return ErrCanceled once the associated stop pipe
// is poked; Send is not guarded by the stop pipe.
type Tcp struct {
	conn     net.Conn
	stopPipe *StopPipe
}

// NewTcp wires a connection helper to a stop pipe.
func NewTcp(stopPipe *StopPipe) *Tcp {
	return &Tcp{stopPipe: stopPipe}
}

// Connect dials address, observing the stop pipe.
func (tcp *Tcp) Connect(address string, timeout time.Duration) error {
	conn, err := tcp.stopPipe.Connect("tcp", address, timeout)
	if err != nil {
		return err
	}
	Debug("Established TCP connection to %s", address)
	tcp.conn = conn
	return nil
}

// Adopt takes ownership of an already-connected socket.
func (tcp *Tcp) Adopt(conn net.Conn) {
	tcp.conn = conn
}

// Conn exposes the underlying connection.
func (tcp *Tcp) Conn() net.Conn {
	return tcp.conn
}

func (tcp *Tcp) Send(buf []byte) (int, error) {
	if tcp.conn == nil {
		return 0, fmt.Errorf("connection not established")
	}
	return tcp.conn.Write(buf)
}

// Receive reads into buf, returning ErrCanceled if the stop pipe is
// poked and ErrTimeout if timeout elapses first. timeout <= 0 waits
// until the stop pipe alone.
func (tcp *Tcp) Receive(buf []byte, timeout time.Duration) (int, error) {
	if tcp.conn == nil {
		return 0, fmt.Errorf("connection not established")
	}
	release := tcp.stopPipe.GuardRead(tcp.conn, timeout)
	n, err := tcp.conn.Read(buf)
	release()
	if err != nil {
		return n, tcp.stopPipe.ClassifyReadError(err)
	}
	return n, nil
}

func (tcp *Tcp) Disconnect() {
	if tcp.conn != nil {
		tcp.conn.Close()
		tcp.conn = nil
	}
}

func (tcp *Tcp) IsConnected() bool {
	return tcp.conn != nil
}
