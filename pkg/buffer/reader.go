package buffer

import (
	"bytes"
	"encoding/binary"
	"log/slog"

	"github.com/pgkit/frontend/pkg/types"
)

// Reader decodes the fields of a single Postgres wire frame. The reader does
// not perform any I/O, a complete frame is handed to it by the embedder and
// interpreted in place through an index-advancing cursor over the message
// payload.
type Reader struct {
	logger         *slog.Logger
	Msg            []byte
	MaxMessageSize int
}

// NewReader constructs a new Postgres wire frame reader using the given
// maximum message size.
func NewReader(logger *slog.Logger, size int) *Reader {
	if size <= 0 {
		size = DefaultMaxMessageSize
	}

	return &Reader{
		logger:         logger,
		MaxMessageSize: size,
	}
}

// ReadTypedFrame interprets the header of the given typed frame and positions
// the cursor at the start of the message payload. The returned type byte is
// not validated against the table of known backend messages, that is left to
// the caller.
func (reader *Reader) ReadTypedFrame(frame []byte) (types.ServerMessage, error) {
	if len(frame) < HeaderSize {
		return 0, NewInsufficientData(len(frame))
	}

	size := int(binary.BigEndian.Uint32(frame[1:HeaderSize]))
	if size < 4 {
		return 0, NewFrameLengthMismatch(size, len(frame)-1)
	}

	if size-4 > reader.MaxMessageSize {
		return 0, NewMessageSizeExceeded(reader.MaxMessageSize, size-4)
	}

	if len(frame) != size+1 {
		return 0, NewFrameLengthMismatch(size, len(frame)-1)
	}

	reader.Msg = frame[HeaderSize:]
	return types.ServerMessage(frame[0]), nil
}

// GetString reads a null-terminated string.
func (reader *Reader) GetString() (string, error) {
	pos := bytes.IndexByte(reader.Msg, 0)
	if pos == -1 {
		return "", NewMissingNulTerminator()
	}

	s := string(reader.Msg[:pos])
	reader.Msg = reader.Msg[pos+1:]
	return s, nil
}

// GetByte returns the next single byte inside the message payload.
func (reader *Reader) GetByte() (byte, error) {
	if len(reader.Msg) < 1 {
		return 0, NewInsufficientData(len(reader.Msg))
	}

	v := reader.Msg[0]
	reader.Msg = reader.Msg[1:]
	return v, nil
}

// GetBytes returns the next n bytes of the message payload as a []byte. A
// length of -1 indicates a NULL parameter for which no bytes follow.
func (reader *Reader) GetBytes(n int) ([]byte, error) {
	// NULL parameter
	if n == -1 {
		return nil, nil
	}
	if n < 0 || len(reader.Msg) < n {
		return nil, NewInsufficientData(len(reader.Msg))
	}

	v := reader.Msg[:n]
	reader.Msg = reader.Msg[n:]
	return v, nil
}

// GetUint16 returns the buffer's contents as a uint16.
func (reader *Reader) GetUint16() (uint16, error) {
	if len(reader.Msg) < 2 {
		return 0, NewInsufficientData(len(reader.Msg))
	}

	v := binary.BigEndian.Uint16(reader.Msg[:2])
	reader.Msg = reader.Msg[2:]
	return v, nil
}

// GetInt16 returns the buffer's contents as an int16.
func (reader *Reader) GetInt16() (int16, error) {
	v, err := reader.GetUint16()
	return int16(v), err
}

// GetUint32 returns the buffer's contents as a uint32.
func (reader *Reader) GetUint32() (uint32, error) {
	if len(reader.Msg) < 4 {
		return 0, NewInsufficientData(len(reader.Msg))
	}

	v := binary.BigEndian.Uint32(reader.Msg[:4])
	reader.Msg = reader.Msg[4:]
	return v, nil
}

// GetInt32 returns the buffer's contents as an int32.
func (reader *Reader) GetInt32() (int32, error) {
	v, err := reader.GetUint32()
	return int32(v), err
}

// Remaining returns the number of unread bytes left inside the current
// message payload.
func (reader *Reader) Remaining() int {
	return len(reader.Msg)
}
