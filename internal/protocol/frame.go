// Package protocol implements the wire-level transforms of the debug server:
// the RFC 6455 frame codec, the opening-handshake key derivation and the
// minimal HTTP plumbing for the discovery endpoint. Everything here is a pure
// function of its input; no sockets, no locks.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Opcode is the 4-bit frame type tag from RFC 6455 §5.2.
type Opcode uint8

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

// IsControl reports whether the opcode is a control frame type.
func (op Opcode) IsControl() bool { return op >= OpClose }

func (op Opcode) String() string {
	switch op {
	case OpContinuation:
		return "continuation"
	case OpText:
		return "text"
	case OpBinary:
		return "binary"
	case OpClose:
		return "close"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	default:
		return fmt.Sprintf("opcode(0x%X)", uint8(op))
	}
}

// Frame is one decoded WebSocket frame. Frames are transient: constructed per
// Decode call, never persisted.
type Frame struct {
	Fin     bool
	Opcode  Opcode
	Masked  bool
	MaskKey [4]byte
	Payload []byte
}

const maxPayloadSize = 16 * 1024 * 1024 // refuse absurd declared lengths

// ErrIncompleteFrame reports that the buffer does not yet hold a complete
// frame; the caller must accumulate more bytes and retry.
var ErrIncompleteFrame = errors.New("incomplete websocket frame")

// ErrFrameTooLarge reports a declared payload length over maxPayloadSize.
var ErrFrameTooLarge = errors.New("websocket frame exceeds maximum payload size")

// EncodeFrame builds a single server-to-client frame: FIN always set, never
// masked (RFC 6455 §5.1 forbids server masking), extended 16/64-bit lengths
// as required.
func EncodeFrame(payload []byte, op Opcode) []byte {
	n := len(payload)

	var header []byte
	switch {
	case n < 126:
		header = []byte{0x80 | byte(op), byte(n)}
	case n <= 0xFFFF:
		header = []byte{0x80 | byte(op), 126, 0, 0}
		binary.BigEndian.PutUint16(header[2:], uint16(n))
	default:
		header = []byte{0x80 | byte(op), 127, 0, 0, 0, 0, 0, 0, 0, 0}
		binary.BigEndian.PutUint64(header[2:], uint64(n))
	}

	frame := make([]byte, 0, len(header)+n)
	frame = append(frame, header...)
	frame = append(frame, payload...)
	return frame
}

// DecodeFrame parses the first frame in buf and returns it together with the
// number of bytes consumed. The payload is unmasked in a fresh copy, so the
// caller may discard buf afterwards.
//
// Returns ErrIncompleteFrame when buf holds only part of a frame; the caller
// should read more data and call again with the grown buffer. No
// continuation-frame reassembly is performed: each frame is returned as a
// self-contained message.
func DecodeFrame(buf []byte) (Frame, int, error) {
	if len(buf) < 2 {
		return Frame{}, 0, ErrIncompleteFrame
	}

	f := Frame{
		Fin:    buf[0]&0x80 != 0,
		Opcode: Opcode(buf[0] & 0x0F),
		Masked: buf[1]&0x80 != 0,
	}

	payloadLen := uint64(buf[1] & 0x7F)
	headerLen := 2

	switch payloadLen {
	case 126:
		if len(buf) < 4 {
			return Frame{}, 0, ErrIncompleteFrame
		}
		payloadLen = uint64(binary.BigEndian.Uint16(buf[2:4]))
		headerLen = 4
	case 127:
		if len(buf) < 10 {
			return Frame{}, 0, ErrIncompleteFrame
		}
		payloadLen = binary.BigEndian.Uint64(buf[2:10])
		headerLen = 10
	}

	if payloadLen > maxPayloadSize {
		return Frame{}, 0, ErrFrameTooLarge
	}

	if f.Masked {
		if len(buf) < headerLen+4 {
			return Frame{}, 0, ErrIncompleteFrame
		}
		copy(f.MaskKey[:], buf[headerLen:headerLen+4])
		headerLen += 4
	}

	total := headerLen + int(payloadLen)
	if len(buf) < total {
		return Frame{}, 0, ErrIncompleteFrame
	}

	f.Payload = make([]byte, payloadLen)
	copy(f.Payload, buf[headerLen:total])

	if f.Masked {
		for i := range f.Payload {
			f.Payload[i] ^= f.MaskKey[i%4]
		}
	}

	return f, total, nil
}

// MaskPayload applies the client-side XOR mask in place. The codec itself only
// unmasks; this helper exists for tests and client implementations that need
// to produce masked frames.
func MaskPayload(payload []byte, key [4]byte) {
	for i := range payload {
		payload[i] ^= key[i%4]
	}
}
