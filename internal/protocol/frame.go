// Package protocol defines the wire framing shared by server and client:
// a 4-byte big-endian length header followed by up to 512 bytes of opaque
// payload. The codec is pure; all I/O lives in the transport layers.
package protocol

import (
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

const (
	// HeaderLength is the size of the length prefix in bytes.
	HeaderLength = 4
	// MaxBodyLength is the largest payload a single frame may carry.
	MaxBodyLength = 512
)

var (
	// ErrBodyTooLong is returned when a declared or actual body length
	// exceeds MaxBodyLength. It is a fatal protocol violation for the
	// connection that produced it.
	ErrBodyTooLong = errors.New("frame body exceeds maximum length")
	// ErrShortHeader is returned when fewer than HeaderLength bytes are
	// offered for header decoding.
	ErrShortHeader = errors.New("frame header too short")
)

// Encode prepends the big-endian length header to payload and returns the
// complete frame. Payloads longer than MaxBodyLength are rejected, never
// truncated.
func Encode(payload []byte) ([]byte, error) {
	if len(payload) > MaxBodyLength {
		return nil, ErrBodyTooLong
	}
	frame := make([]byte, HeaderLength+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[HeaderLength:], payload)
	return frame, nil
}

// DecodeHeader reads the declared body length from a frame header.
// A declared length above MaxBodyLength is a protocol violation, not a
// valid frame.
func DecodeHeader(header []byte) (int, error) {
	if len(header) < HeaderLength {
		return 0, ErrShortHeader
	}
	n := binary.BigEndian.Uint32(header)
	if n > MaxBodyLength {
		return 0, ErrBodyTooLong
	}
	return int(n), nil
}

// ClampText cuts s to MaxBodyLength bytes without splitting a UTF-8 rune.
// Room formatting prefixes can push an in-limit client body past the frame
// limit; broadcasts are clamped explicitly instead of failing mid-fan-out.
func ClampText(s string) string {
	if len(s) <= MaxBodyLength {
		return s
	}
	cut := MaxBodyLength
	for i := 0; i < utf8.UTFMax-1 && cut > 0 && !utf8.RuneStart(s[cut]); i++ {
		cut--
	}
	return s[:cut]
}
