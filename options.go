package wire

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
)

// OptionFn options pattern used to define and set options for the given
// Postgres session.
type OptionFn func(*Session)

// Logger sets the given logger as the logger of the constructed session.
func Logger(logger *slog.Logger) OptionFn {
	return func(session *Session) {
		session.logger = logger
	}
}

// MaxMessageSize sets the maximum declared payload length accepted for a
// single incoming frame.
func MaxMessageSize(size int) OptionFn {
	return func(session *Session) {
		session.MaxMessageSize = size
	}
}

// Password stores the given password inside the session. Whenever the server
// requests password authentication the session derives and sends the matching
// PasswordMessage without embedder involvement. Without a stored password the
// embedder is expected to call [Session.SendPassword] on EventPassword.
func Password(password string) OptionFn {
	return func(session *Session) {
		session.password = password
	}
}

// StartupParameters appends additional run-time parameters to the
// StartupMessage, beyond the user, database and options keys. The parameters
// are written in lexical key order to keep the produced frame deterministic.
func StartupParameters(parameters map[string]string) OptionFn {
	return func(session *Session) {
		session.extra = parameters
	}
}

// TypeMap sets the pgtype map used by [Session.Scan] to decode result cells
// into Go values. Custom types could be registered on the given map before
// constructing the session.
func TypeMap(tm *pgtype.Map) OptionFn {
	return func(session *Session) {
		session.types = tm
	}
}

// Handler attaches the given handler to the given event kind at construction
// time, equivalent to calling [Session.Attach].
func Handler(kind EventKind, handler EventHandler) OptionFn {
	return func(session *Session) {
		session.handlers[kind] = append(session.handlers[kind], handler)
	}
}
