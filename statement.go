package wire

import (
	"github.com/pgkit/frontend/pkg/buffer"
)

// Statement is a thin façade over the Parse, Bind, Describe, Execute and Sync
// sequences of the extended query protocol. A statement holds a non-owning
// back reference to its session, the session owns no statements.
type Statement struct {
	session *Session
	SQL     string
	Name    string
	columns Columns
}

// PrepareOption mutates a statement before its Parse message is build.
type PrepareOption func(*Statement)

// Named assigns the given server-side statement name. Named statements
// persist until explicitly closed, the default unnamed statement is replaced
// by the next unnamed Parse.
func Named(name string) PrepareOption {
	return func(stmt *Statement) {
		stmt.Name = name
	}
}

// Prepare constructs a prepared statement for the given SQL and immediately
// builds its Parse message. The call is rejected while the backend reports a
// failed transaction block.
func (session *Session) Prepare(sql string, options ...PrepareOption) (*Statement, error) {
	err := session.writable()
	if err != nil {
		return nil, err
	}

	if sql == "" {
		return nil, NewErrMissingSQL()
	}

	stmt := &Statement{session: session, SQL: sql}
	for _, option := range options {
		option(stmt)
	}

	err = session.parse(stmt.Name, sql)
	if err != nil {
		return nil, err
	}

	session.state = StateBusy
	return stmt, nil
}

// Bind binds the given parameter values to the statement under the unnamed
// portal. A nil value denotes SQL NULL.
func (stmt *Statement) Bind(values ...[]byte) error {
	err := stmt.session.writable()
	if err != nil {
		return err
	}

	return stmt.session.bind("", stmt.Name, values)
}

// Describe requests the row description of the statement. The description
// reported by the server is remembered on the statement and installed as the
// session row description on every execute.
func (stmt *Statement) Describe() error {
	err := stmt.session.writable()
	if err != nil {
		return err
	}

	stmt.session.pending = stmt
	return stmt.session.describe(buffer.PrepareStatement, stmt.Name)
}

// Execute runs the bound portal. A max rows of zero denotes no limit. The
// remembered row description, if any, is installed on the session so DataRow
// events are shaped correctly even when multiple statements share a session.
func (stmt *Statement) Execute(maxRows int32) error {
	err := stmt.session.writable()
	if err != nil {
		return err
	}

	if stmt.columns != nil {
		stmt.session.columns = stmt.columns
	}

	return stmt.session.execute("", maxRows)
}

// Finish closes the extended query cycle by issuing a Sync message.
func (stmt *Statement) Finish() error {
	return stmt.session.Sync()
}

// Close releases the statement on the server.
func (stmt *Statement) Close() error {
	if stmt.session.state == StateTerminated {
		return ErrSessionTerminated
	}

	return stmt.session.closeTarget(buffer.PrepareStatement, stmt.Name)
}

// Columns returns the row description remembered from the latest describe
// cycle, or nil when the statement has not been described yet.
func (stmt *Statement) Columns() Columns {
	return stmt.columns
}
