package wire

import (
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgkit/frontend/pkg/buffer"
	"github.com/pgkit/frontend/pkg/types"
)

// ErrSessionTerminated indicates that the given session has been terminated
// and no further frames could be send or received.
var ErrSessionTerminated = errors.New("session terminated")

// SessionState represents the top-level lifecycle state of a session.
type SessionState uint8

const (
	// StateHandshake is the initial state, exited by sending a StartupMessage.
	StateHandshake SessionState = iota
	// StateAuthPending is entered once a StartupMessage has been send and
	// left once the server reports AuthenticationOk.
	StateAuthPending
	// StateAuthenticated is entered on AuthenticationOk while the server
	// streams its parameter statuses and backend key data.
	StateAuthenticated
	// StateReady indicates that the server is able to accept a new query cycle.
	StateReady
	// StateBusy indicates that a query cycle is in flight.
	StateBusy
	// StateCopyIn indicates that the session is inside a copy-in sub-protocol.
	StateCopyIn
	// StateCopyOut indicates that the session is inside a copy-out sub-protocol.
	StateCopyOut
	// StateTerminated indicates that a Terminate message has been send.
	StateTerminated
)

func (s SessionState) String() string {
	switch s {
	case StateHandshake:
		return "handshake"
	case StateAuthPending:
		return "auth_pending"
	case StateAuthenticated:
		return "authenticated"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	case StateCopyIn:
		return "copy_in"
	case StateCopyOut:
		return "copy_out"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// NewSession constructs a new sans-I/O Postgres frontend session using the
// given options. The session performs no socket I/O, outgoing frames are
// raised through EventSendRequest and incoming frames are handed to
// [Session.HandleMessage] or [Session.Receive] by the embedder.
func NewSession(options ...OptionFn) *Session {
	session := &Session{
		logger:   slog.Default(),
		status:   types.ServerIdle,
		handlers: make(map[EventKind][]EventHandler),
	}

	for _, option := range options {
		option(session)
	}

	session.reader = buffer.NewReader(session.logger, session.MaxMessageSize)
	session.writer = buffer.NewWriter(session.logger)

	if session.types == nil {
		session.types = pgtype.NewMap()
	}

	return session
}

// Session drives the frontend half of a single Postgres connection. All
// methods are short, synchronous and free of I/O; if the embedder uses
// multiple goroutines it must externally serialize calls against a session.
type Session struct {
	logger *slog.Logger

	// MaxMessageSize bounds the declared payload length of incoming frames.
	MaxMessageSize int

	user     string
	database string
	options  string
	extra    map[string]string
	password string

	sequence      uint64
	state         SessionState
	authenticated bool
	mode          passwordMode
	salt          [4]byte

	status     types.ServerStatus
	columns    Columns
	parameters map[string]string
	key        BackendKeyData

	pending *Statement

	handlers map[EventKind][]EventHandler
	recv     []byte

	reader *buffer.Reader
	writer *buffer.Writer
	types  *pgtype.Map
}

// IsAuthenticated reports whether the server has reported AuthenticationOk
// for this session.
func (session *Session) IsAuthenticated() bool {
	return session.authenticated
}

// State returns the current top-level session state.
func (session *Session) State() SessionState {
	return session.state
}

// BackendStatus returns the latest backend transaction status as reported by
// the server inside a ReadyForQuery message.
func (session *Session) BackendStatus() types.ServerStatus {
	return session.status
}

// RowDescription returns the columns of the current resultset, or nil when no
// RowDescription has been received yet.
func (session *Session) RowDescription() Columns {
	return session.columns
}

// BackendKey returns the cancellation key data reported by the server. The
// embedder could use these values to construct a CancelRequest frame over a
// separate connection, see [CancelFrame].
func (session *Session) BackendKey() BackendKeyData {
	return session.key
}

// Parameter returns the latest value of the given runtime parameter as
// reported by the server through ParameterStatus messages.
func (session *Session) Parameter(name string) string {
	return session.parameters[name]
}

// send finalizes the frame inside the session writer and raises it through
// EventSendRequest for the embedder to write to its transport. The session
// message counter is incremented on every successfully build frame.
func (session *Session) send() error {
	frame, err := session.writer.End()
	if err != nil {
		return err
	}

	session.sequence++
	session.emit(Event{Kind: EventSendRequest, Send: frame})
	return nil
}

// writable guards client write operations against a failed backend
// transaction. Once the server reports status 'E' all write operations are
// rejected until the failed transaction block has been ended.
func (session *Session) writable() error {
	if session.state == StateTerminated {
		return ErrSessionTerminated
	}

	if session.status == types.ServerTransactionFailed {
		return NewErrInvalidBackendState(session.status)
	}

	return nil
}
