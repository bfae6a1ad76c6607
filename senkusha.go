package go_rpsession

import (
	"net"
	"strconv"
	"time"
)

// SenkushaRunner measures the network path before the stream phase.
// Run returns the inbound and outbound MTU and the round-trip time in
// microseconds, or ErrCanceled when interrupted by the stop pipe. Any
// other error makes the session continue with fallback values.
type SenkushaRunner interface {
	Run() (mtuIn, mtuOut uint32, rttUS uint64, err error)
}

// Senkusha is the default prober. It sends padded UDP probes of
// descending sizes to the console's probe port and takes the largest
// echoed size as the path MTU and the round-trip time of that size's
// echo as the RTT.
type Senkusha struct {
	session *Session

	// port and probeTimeout take their defaults outside of tests.
	port         int
	probeTimeout time.Duration
}

// NewSenkusha creates the default prober for a session.
func NewSenkusha(session *Session) *Senkusha {
	return &Senkusha{
		session:      session,
		port:         SENKUSHA_PORT,
		probeTimeout: senkushaProbeTimeout,
	}
}

// probeSizes are tried largest first. 1454 is the best case on typical
// residential links, 576 the conservative floor.
var probeSizes = []uint32{1454, 1385, 1072, 576}

const (
	senkushaProbeMagic    uint32 = 0x53454e4b // "SENK"
	senkushaProbeAttempts        = 3
	senkushaProbeTimeout         = 1000 * time.Millisecond
)

func (s *Senkusha) Run() (uint32, uint32, uint64, error) {
	addr := s.session.connectInfo.hostAddrSelected
	if addr == nil {
		return 0, 0, 0, ErrInvalidData
	}

	conn, err := net.Dial("udp", net.JoinHostPort(addr.IP.String(), strconv.Itoa(s.port)))
	if err != nil {
		return 0, 0, 0, ErrNetwork
	}
	defer conn.Close()

	crypto := NewCrypto()
	stopPipe := s.session.stopPipe

	var mtu uint32
	var rttUS uint64
	for _, size := range probeSizes {
		acked, rtt, err := s.probe(conn, crypto, stopPipe, size)
		if err != nil {
			return 0, 0, 0, err
		}
		if acked {
			mtu = size
			rttUS = rtt
			break
		}
		Debug("Senkusha probe of size %d got no echo, trying smaller", size)
	}
	if mtu == 0 {
		Error("Senkusha got no echo for any probe size")
		return 0, 0, 0, ErrTimeout
	}

	Info("Senkusha measured MTU %d, RTT %d us", mtu, rttUS)
	return mtu, mtu, rttUS, nil
}

// probe sends one padded probe size up to senkushaProbeAttempts times
// and waits for its echo. The tag ties an echo to its probe so a stale
// echo of a larger probe cannot satisfy a smaller one.
func (s *Senkusha) probe(conn net.Conn, crypto *Crypto, stopPipe *StopPipe, size uint32) (bool, uint64, error) {
	tag := crypto.Random32()

	packet := NewStream(make([]byte, 0, size))
	packet.WriteUint32(senkushaProbeMagic)
	packet.WriteUint32(tag)
	packet.WriteUint32(size)
	packet.Write(make([]byte, int(size)-packet.Len()))

	echo := make([]byte, size)
	for attempt := 0; attempt < senkushaProbeAttempts; attempt++ {
		if stopPipe.Stopped() {
			return false, 0, ErrCanceled
		}

		start := time.Now()
		if _, err := conn.Write(packet.Bytes()); err != nil {
			return false, 0, ErrNetwork
		}

		release := stopPipe.GuardRead(conn, s.probeTimeout)
		n, err := conn.Read(echo)
		release()
		if err != nil {
			err = stopPipe.ClassifyReadError(err)
			if err == ErrCanceled {
				return false, 0, err
			}
			continue
		}

		reply := NewStream(echo[:n])
		magic, _ := reply.ReadUint32()
		replyTag, _ := reply.ReadUint32()
		if magic != senkushaProbeMagic || replyTag != tag {
			continue
		}
		return true, uint64(time.Since(start).Microseconds()), nil
	}
	return false, 0, nil
}
