package mock

import (
	"testing"

	"github.com/neilotoole/slogt"

	"github.com/pgkit/frontend/pkg/buffer"
	"github.com/pgkit/frontend/pkg/types"
)

// NewWriter constructs a new Postgres wire protocol writer framing messages
// the way the backend does. This implementation is mainly used for
// mocking/testing purposes.
func NewWriter(t *testing.T) *Writer {
	return &Writer{buffer.NewWriter(slogt.New(t))}
}

// Writer represents a low level Postgres backend writer allowing a test to
// frame messages send by the server within the Postgres wire protocol.
type Writer struct {
	*buffer.Writer
}

// Start resets the buffer writer and starts a new message with the given
// backend message type.
func (writer *Writer) Start(t types.ServerMessage) {
	writer.Writer.Start(types.ClientMessage(t))
}

// Frame builds a single complete backend frame of the given message type. The
// build callback populates the message payload and may be nil for messages
// without one.
func Frame(t *testing.T, typed types.ServerMessage, build func(writer *Writer)) []byte {
	t.Helper()

	writer := NewWriter(t)
	writer.Start(typed)

	if build != nil {
		build(writer)
	}

	frame, err := writer.End()
	if err != nil {
		t.Fatalf("failed to build %s frame: %v", typed, err)
	}

	return frame
}
