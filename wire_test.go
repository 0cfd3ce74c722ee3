package wire

import (
	"testing"

	"github.com/neilotoole/slogt"
)

// recorder captures every event raised by a session in firing order.
type recorder struct {
	events []Event
	sent   [][]byte
}

func (r *recorder) record(event Event) {
	r.events = append(r.events, event)
	if event.Kind == EventSendRequest {
		r.sent = append(r.sent, event.Send)
	}
}

// kinds returns the kinds of all captured events in firing order.
func (r *recorder) kinds() []EventKind {
	kinds := make([]EventKind, 0, len(r.events))
	for _, event := range r.events {
		kinds = append(kinds, event.Kind)
	}

	return kinds
}

// lastSent returns the latest frame raised through EventSendRequest.
func (r *recorder) lastSent(t *testing.T) []byte {
	t.Helper()

	if len(r.sent) == 0 {
		t.Fatal("no frames have been send")
	}

	return r.sent[len(r.sent)-1]
}

// newTestSession constructs a session logging to the given test and records
// every raised event.
func newTestSession(t *testing.T, options ...OptionFn) (*Session, *recorder) {
	t.Helper()

	rec := &recorder{}
	options = append([]OptionFn{Logger(slogt.New(t))}, options...)
	session := NewSession(options...)

	for kind := range eventNames {
		session.Attach(kind, rec.record)
	}

	return session, rec
}
