package wire

import (
	"encoding/binary"
	"sort"

	"github.com/pgkit/frontend/pkg/buffer"
	"github.com/pgkit/frontend/pkg/types"
)

// Startup builds the StartupMessage opening the session. The startup frame is
// the only untyped frame of the session and has to be the very first frame
// send, any later attempt is rejected. Empty strings mark the matching
// parameter as undefined and are left out of the frame.
func (session *Session) Startup(user, database, options string) error {
	if session.state == StateTerminated {
		return ErrSessionTerminated
	}

	if session.sequence != 0 {
		return NewErrStartupOutOfOrder()
	}

	session.user = user
	session.database = database
	session.options = options

	writer := session.writer
	writer.StartUntyped()
	writer.AddUint32(uint32(types.Version30))

	pairs := [][2]string{
		{"user", user},
		{"database", database},
		{"options", options},
	}

	for _, pair := range pairs {
		if pair[1] == "" {
			continue
		}

		writer.AddString(pair[0])
		writer.AddNullTerminate()
		writer.AddString(pair[1])
		writer.AddNullTerminate()
	}

	// additional run-time parameters are written in lexical key order to keep
	// the produced frame deterministic
	keys := make([]string, 0, len(session.extra))
	for key := range session.extra {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	for _, key := range keys {
		writer.AddString(key)
		writer.AddNullTerminate()
		writer.AddString(session.extra[key])
		writer.AddNullTerminate()
	}

	writer.AddNullTerminate() // terminates the parameter list

	err := session.send()
	if err != nil {
		return err
	}

	session.state = StateAuthPending
	return nil
}

// SimpleQuery issues the given SQL through the simple query protocol. The
// call is rejected while the backend reports a failed transaction block.
func (session *Session) SimpleQuery(sql string) error {
	err := session.writable()
	if err != nil {
		return err
	}

	session.writer.Start(types.ClientSimpleQuery)
	session.writer.AddString(sql)
	session.writer.AddNullTerminate()

	err = session.send()
	if err != nil {
		return err
	}

	session.state = StateBusy
	return nil
}

// parse builds a Parse message for the given statement name and SQL. The
// parameter type count is always zero, parameter types are inferred by the
// server.
func (session *Session) parse(name, sql string) error {
	session.writer.Start(types.ClientParse)
	session.writer.AddString(name)
	session.writer.AddNullTerminate()
	session.writer.AddString(sql)
	session.writer.AddNullTerminate()
	session.writer.AddInt16(0)
	return session.send()
}

// bind builds a Bind message binding the given parameter values to the given
// prepared statement under the given portal. A nil parameter value denotes
// SQL NULL. All parameters and result columns use the text format.
func (session *Session) bind(portal, statement string, parameters [][]byte) error {
	writer := session.writer
	writer.Start(types.ClientBind)
	writer.AddString(portal)
	writer.AddNullTerminate()
	writer.AddString(statement)
	writer.AddNullTerminate()
	writer.AddInt16(0) // parameter format codes, all text
	writer.AddInt16(int16(len(parameters)))

	for _, parameter := range parameters {
		if parameter == nil {
			writer.AddInt32(-1)
			continue
		}

		writer.AddInt32(int32(len(parameter)))
		writer.AddBytes(parameter)
	}

	writer.AddInt16(0) // result column format codes, all text
	return session.send()
}

// execute builds an Execute message for the given portal. A max rows of zero
// denotes no limit.
func (session *Session) execute(portal string, maxRows int32) error {
	session.writer.Start(types.ClientExecute)
	session.writer.AddString(portal)
	session.writer.AddNullTerminate()
	session.writer.AddInt32(maxRows)

	err := session.send()
	if err != nil {
		return err
	}

	session.state = StateBusy
	return nil
}

// describe builds a Describe message requesting the description of the given
// prepared statement or portal.
func (session *Session) describe(t buffer.PrepareType, name string) error {
	session.writer.Start(types.ClientDescribe)
	session.writer.AddByte(byte(t))
	session.writer.AddString(name)
	session.writer.AddNullTerminate()
	return session.send()
}

// closeTarget builds a Close message releasing the given prepared statement
// or portal on the server.
func (session *Session) closeTarget(t buffer.PrepareType, name string) error {
	session.writer.Start(types.ClientClose)
	session.writer.AddByte(byte(t))
	session.writer.AddString(name)
	session.writer.AddNullTerminate()
	return session.send()
}

// DescribePortal requests the row description of the given portal.
func (session *Session) DescribePortal(name string) error {
	err := session.writable()
	if err != nil {
		return err
	}

	return session.describe(buffer.PreparePortal, name)
}

// ClosePortal releases the given portal on the server.
func (session *Session) ClosePortal(name string) error {
	if session.state == StateTerminated {
		return ErrSessionTerminated
	}

	return session.closeTarget(buffer.PreparePortal, name)
}

// Sync builds a Sync message closing the current extended-query cycle. Sync
// is permitted while the backend reports a failed transaction block, it is the
// message ending such a block. It is rejected once the session is terminated.
func (session *Session) Sync() error {
	if session.state == StateTerminated {
		return ErrSessionTerminated
	}

	session.writer.Start(types.ClientSync)
	return session.send()
}

// Flush asks the server to deliver any pending output.
func (session *Session) Flush() error {
	if session.state == StateTerminated {
		return ErrSessionTerminated
	}

	session.writer.Start(types.ClientFlush)
	return session.send()
}

// Terminate announces an orderly shutdown to the server. No further frames
// could be send or received once the session has been terminated, closing the
// transport is left to the embedder.
func (session *Session) Terminate() error {
	if session.state == StateTerminated {
		return ErrSessionTerminated
	}

	session.writer.Start(types.ClientTerminate)
	err := session.send()
	if err != nil {
		return err
	}

	session.state = StateTerminated
	return nil
}

// CancelFrame constructs the CancelRequest frame for the given backend key
// data. The frame has to be send over a new connection, not the session that
// is to be cancelled.
func CancelFrame(key BackendKeyData) []byte {
	frame := make([]byte, 16)
	binary.BigEndian.PutUint32(frame[0:4], 16)
	binary.BigEndian.PutUint32(frame[4:8], uint32(types.VersionCancel))
	binary.BigEndian.PutUint32(frame[8:12], uint32(key.PID))
	binary.BigEndian.PutUint32(frame[12:16], uint32(key.SecretKey))
	return frame
}
