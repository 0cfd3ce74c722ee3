package buffer

import (
	"bytes"
	"encoding/binary"
	"log/slog"

	"github.com/pgkit/frontend/pkg/types"
)

// Writer provides a convenient way to construct pgwire protocol frames. The
// writer performs no I/O, [Writer.End] returns the finished frame for the
// embedder to hand to its transport.
type Writer struct {
	logger *slog.Logger
	frame  bytes.Buffer
	typed  bool
	err    error
}

// NewWriter constructs a new Postgres frame writer.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{
		logger: logger,
	}
}

// Start resets the writer and starts a new typed frame with the given message
// type. The message type (byte) and reserved message length bytes (int32) are
// written to the underlaying bytes buffer.
func (writer *Writer) Start(t types.ClientMessage) {
	writer.Reset()
	writer.typed = true
	writer.frame.WriteByte(byte(t))
	writer.frame.Write(make([]byte, 4)) // reserved message length
}

// StartUntyped resets the writer and starts a new untyped frame. Untyped
// frames carry no message type byte and may only occur as the very first
// frame send over a connection (StartupMessage, SSLRequest, CancelRequest).
func (writer *Writer) StartUntyped() {
	writer.Reset()
	writer.typed = false
	writer.frame.Write(make([]byte, 4)) // reserved message length
}

// AddByte writes the given byte to the writer frame. Errors thrown while
// writing to the writer could be read by calling writer.Error()
func (writer *Writer) AddByte(b byte) {
	if writer.err != nil {
		return
	}

	writer.err = writer.frame.WriteByte(b)
}

// AddInt16 writes the given int16 to the writer frame in big-endian byte
// order.
func (writer *Writer) AddInt16(i int16) (size int) {
	if writer.err != nil {
		return size
	}

	x := make([]byte, 2)
	binary.BigEndian.PutUint16(x, uint16(i))
	size, writer.err = writer.frame.Write(x)
	return size
}

// AddInt32 writes the given int32 to the writer frame in big-endian byte
// order.
func (writer *Writer) AddInt32(i int32) (size int) {
	if writer.err != nil {
		return size
	}

	x := make([]byte, 4)
	binary.BigEndian.PutUint32(x, uint32(i))
	size, writer.err = writer.frame.Write(x)
	return size
}

// AddUint32 writes the given uint32 to the writer frame in big-endian byte
// order.
func (writer *Writer) AddUint32(i uint32) (size int) {
	if writer.err != nil {
		return size
	}

	x := make([]byte, 4)
	binary.BigEndian.PutUint32(x, i)
	size, writer.err = writer.frame.Write(x)
	return size
}

// AddBytes writes the given bytes to the writer frame.
func (writer *Writer) AddBytes(b []byte) (size int) {
	if writer.err != nil {
		return size
	}

	size, writer.err = writer.frame.Write(b)
	return size
}

// AddString writes the given string to the writer frame. The string is not
// NUL terminated, call [Writer.AddNullTerminate] to terminate it.
func (writer *Writer) AddString(s string) (size int) {
	if writer.err != nil {
		return size
	}

	size, writer.err = writer.frame.WriteString(s)
	return size
}

// AddNullTerminate writes a null terminate symbol to the end of the given data frame
func (writer *Writer) AddNullTerminate() {
	if writer.err != nil {
		return
	}

	writer.err = writer.frame.WriteByte(0)
}

func (writer *Writer) Error() error {
	return writer.err
}

// Reset resets the data frame to be empty
func (writer *Writer) Reset() {
	writer.frame.Reset()
	writer.typed = true
	writer.err = nil
}

// End finalizes the active frame and returns it. The self-inclusive message
// length is patched into the header after the message type byte, or at the
// start of the frame for untyped frames.
func (writer *Writer) End() ([]byte, error) {
	defer writer.Reset()
	if writer.err != nil {
		return nil, writer.err
	}

	frame := writer.frame.Bytes()
	offset := 0
	if writer.typed {
		offset = 1
	}

	// total message length minus the message type byte
	length := uint32(len(frame) - offset)
	binary.BigEndian.PutUint32(frame[offset:offset+4], length)

	out := make([]byte, len(frame))
	copy(out, frame)

	if writer.typed {
		writer.logger.Debug("-> outgoing message", slog.String("type", types.ClientMessage(out[0]).String()))
	}

	return out, nil
}
