package go_rpsession

import (
	"errors"
	"net"
	"testing"
	"time"
)

func TestStopPipeStopIdempotent(t *testing.T) {
	sp := NewStopPipe()
	if sp.Stopped() {
		t.Fatal("fresh stop pipe reports stopped")
	}
	sp.Stop()
	sp.Stop()
	sp.Stop()
	if !sp.Stopped() {
		t.Fatal("stop pipe not stopped after Stop")
	}
	select {
	case <-sp.C():
	default:
		t.Fatal("stop pipe channel not closed")
	}
}

func TestStopPipeConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	address := ln.Addr().String()
	ln.Close()

	sp := NewStopPipe()
	_, err = sp.Connect("tcp", address, time.Second)
	if !errors.Is(err, ErrConnectionRefused) {
		t.Errorf("Connect to closed port = %v, want ErrConnectionRefused", err)
	}
}

func TestStopPipeConnectAfterStop(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()

	sp := NewStopPipe()
	sp.Stop()
	_, err = sp.Connect("tcp", ln.Addr().String(), time.Second)
	if !errors.Is(err, ErrCanceled) {
		t.Errorf("Connect after stop = %v, want ErrCanceled", err)
	}
}

func TestStopPipeGuardReadCanceled(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sp := NewStopPipe()
	go func() {
		time.Sleep(50 * time.Millisecond)
		sp.Stop()
	}()

	release := sp.GuardRead(client, 5*time.Second)
	buf := make([]byte, 1)
	_, err := client.Read(buf)
	release()
	if got := sp.ClassifyReadError(err); !errors.Is(got, ErrCanceled) {
		t.Errorf("read after stop = %v, want ErrCanceled", got)
	}
}

func TestStopPipeGuardReadTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sp := NewStopPipe()
	release := sp.GuardRead(client, 50*time.Millisecond)
	buf := make([]byte, 1)
	_, err := client.Read(buf)
	release()
	if got := sp.ClassifyReadError(err); !errors.Is(got, ErrTimeout) {
		t.Errorf("read past deadline = %v, want ErrTimeout", got)
	}
}

func TestStopPipeClassifyNil(t *testing.T) {
	sp := NewStopPipe()
	if got := sp.ClassifyReadError(nil); got != nil {
		t.Errorf("ClassifyReadError(nil) = %v, want nil", got)
	}
}
