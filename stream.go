package go_rpsession

import (
	"bytes"
	"encoding/binary"
)

// Stream provides ctrl-channel message serialization operations.
// It wraps bytes.Buffer and adds methods for the big-endian integers
// used by the framed ctrl and Senkusha messages.
type Stream struct {
	*bytes.Buffer
}

// NewStream creates a new Stream from a byte slice.
// The Stream wraps a bytes.Buffer initialized with the provided data.
func NewStream(buf []byte) *Stream {
	return &Stream{bytes.NewBuffer(buf)}
}

// ReadUint16 reads a big-endian uint16 from the stream.
func (s *Stream) ReadUint16() (uint16, error) {
	bts := make([]byte, 2)
	_, err := s.Read(bts)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(bts), nil
}

// ReadUint32 reads a big-endian uint32 from the stream.
func (s *Stream) ReadUint32() (uint32, error) {
	bts := make([]byte, 4)
	_, err := s.Read(bts)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(bts), nil
}

// WriteUint16 writes a big-endian uint16 to the stream.
func (s *Stream) WriteUint16(i uint16) error {
	bts := make([]byte, 2)
	binary.BigEndian.PutUint16(bts, i)
	_, err := s.Write(bts)
	return err
}

// WriteUint32 writes a big-endian uint32 to the stream.
func (s *Stream) WriteUint32(i uint32) error {
	bts := make([]byte, 4)
	binary.BigEndian.PutUint32(bts, i)
	_, err := s.Write(bts)
	return err
}
