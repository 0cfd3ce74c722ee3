package buffer

import (
	"encoding/binary"
	"math"
)

// HeaderSize is the number of bytes spanning a typed frame header, the
// message type byte followed by the self-inclusive message length.
const HeaderSize = 5

// DefaultMaxMessageSize represents the default maximum message size whenever
// the maximum is not set or a negative value is presented.
const DefaultMaxMessageSize = 1 << 24 // 16777216 bytes

// MessageLength peeks the header of the first typed frame inside the given
// receive buffer and returns the declared message length. The declared length
// counts its own four bytes but not the message type byte; a frame is complete
// once `len(buffer) >= 1 + length`. A header incomplete error is returned when
// fewer than HeaderSize bytes are available.
func MessageLength(buffer []byte) (int, error) {
	if len(buffer) < HeaderSize {
		return 0, NewHeaderIncomplete(len(buffer))
	}

	return int(binary.BigEndian.Uint32(buffer[1:HeaderSize])), nil
}

//go:generate stringer -type=PrepareType

// PrepareType represents a subtype for describe and close messages.
type PrepareType byte

const (
	// PrepareStatement represents a prepared statement.
	PrepareStatement PrepareType = 'S'
	// PreparePortal represents a portal.
	PreparePortal PrepareType = 'P'
)

// MaxPreparedStatementArgs is the maximum number of arguments a prepared
// statement can have when prepared via the Postgres wire protocol. This is not
// documented by Postgres, but is a consequence of the fact that a 16-bit
// integer in the wire format is used to indicate the number of values to bind
// during prepared statement execution.
const MaxPreparedStatementArgs = math.MaxUint16
