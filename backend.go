package wire

import (
	"errors"
	"log/slog"

	"github.com/lib/pq/oid"

	psqlerr "github.com/pgkit/frontend/errors"
	"github.com/pgkit/frontend/pkg/buffer"
	"github.com/pgkit/frontend/pkg/types"
)

// MessageLength peeks the header of the first typed frame inside the given
// receive buffer and returns the declared message length. A frame is complete
// once `len(data) >= 1 + length`, see [buffer.MessageLength].
func MessageLength(data []byte) (int, error) {
	return buffer.MessageLength(data)
}

// Receive appends the given raw received bytes to the session receive buffer
// and decodes all complete frames inside of it. Partial frames remain
// buffered until more bytes arrive. Events for decoded frames fire before
// Receive returns, in strict wire order.
func (session *Session) Receive(data []byte) error {
	session.recv = append(session.recv, data...)

	for {
		length, err := buffer.MessageLength(session.recv)
		if errors.Is(err, buffer.ErrHeaderIncomplete) {
			return nil
		}

		if err != nil {
			return err
		}

		if len(session.recv) < length+1 {
			return nil
		}

		err = session.HandleMessage(session.recv[:length+1])
		if err != nil {
			return err
		}

		session.recv = session.recv[length+1:]
	}
}

// HandleMessage decodes a single complete backend frame and raises the events
// matching its message type. All events fire before HandleMessage returns.
func (session *Session) HandleMessage(frame []byte) error {
	if session.state == StateTerminated {
		return ErrSessionTerminated
	}

	reader := session.reader
	t, err := reader.ReadTypedFrame(frame)
	if err != nil {
		return err
	}

	if !t.Known() {
		return NewErrUnknownMessageType(t)
	}

	session.logger.Debug("<- incoming message", slog.String("type", t.String()))

	switch t {
	case types.ServerAuth:
		return session.handleAuth(reader)
	case types.ServerBackendKeyData:
		return session.handleBackendKeyData(reader)
	case types.ServerParameterStatus:
		return session.handleParameterStatus(reader)
	case types.ServerParameterDescription:
		return session.handleParameterDescription(reader)
	case types.ServerRowDescription:
		return session.handleRowDescription(reader)
	case types.ServerDataRow:
		return session.handleDataRow(reader)
	case types.ServerCommandComplete:
		return session.handleCommandComplete(reader)
	case types.ServerEmptyQuery:
		session.emit(Event{Kind: EventEmptyQuery})
		session.emit(Event{Kind: EventReadyForQuery, Status: session.status})
		return nil
	case types.ServerErrorResponse:
		return session.handleNotice(reader, EventError)
	case types.ServerNoticeResponse:
		return session.handleNotice(reader, EventNotice)
	case types.ServerNotificationResponse:
		return session.handleNotification(reader)
	case types.ServerReady:
		return session.handleReady(reader)
	case types.ServerParseComplete:
		session.emit(Event{Kind: EventParseComplete})
		return nil
	case types.ServerBindComplete:
		session.emit(Event{Kind: EventBindComplete})
		return nil
	case types.ServerCloseComplete:
		session.emit(Event{Kind: EventCloseComplete})
		return nil
	case types.ServerNoData:
		session.emit(Event{Kind: EventNoData})
		return nil
	case types.ServerPortalSuspended:
		session.emit(Event{Kind: EventPortalSuspended})
		return nil
	case types.ServerCopyInResponse:
		return session.handleCopyResponse(reader, EventCopyInResponse)
	case types.ServerCopyOutResponse:
		return session.handleCopyResponse(reader, EventCopyOutResponse)
	case types.ServerCopyBothResponse:
		return session.handleCopyResponse(reader, EventCopyBothResponse)
	case types.ServerCopyData:
		return session.handleCopyData(reader)
	case types.ServerCopyDone:
		if session.state == StateCopyOut {
			session.state = StateBusy
		}

		session.emit(Event{Kind: EventCopyDone})
		return nil
	case types.ServerFunctionCallResponse:
		return session.handleFunctionCallResponse(reader)
	default:
		return NewErrUnknownMessageType(t)
	}
}

// handleReady interprets a ReadyForQuery message carrying the backend
// transaction status.
func (session *Session) handleReady(reader *buffer.Reader) error {
	value, err := reader.GetByte()
	if err != nil {
		return err
	}

	status := types.ServerStatus(value)
	if !status.Known() {
		return NewErrUnknownServerStatus(value)
	}

	session.status = status

	switch session.state {
	case StateAuthenticated, StateBusy, StateCopyIn, StateCopyOut:
		session.state = StateReady
	}

	session.emit(Event{Kind: EventReadyForQuery, Status: status})
	return nil
}

// handleBackendKeyData stashes the cancellation key data of the backend
// process for possible cancellation by the embedder.
func (session *Session) handleBackendKeyData(reader *buffer.Reader) error {
	pid, err := reader.GetInt32()
	if err != nil {
		return err
	}

	secret, err := reader.GetInt32()
	if err != nil {
		return err
	}

	session.key = BackendKeyData{PID: pid, SecretKey: secret}
	session.emit(Event{Kind: EventBackendKeyData, Key: session.key})
	return nil
}

// handleParameterStatus interprets a single run-time parameter report. Every
// ParameterStatus frame carries exactly one key/value pair.
func (session *Session) handleParameterStatus(reader *buffer.Reader) error {
	name, err := reader.GetString()
	if err != nil {
		return err
	}

	value, err := reader.GetString()
	if err != nil {
		return err
	}

	if session.parameters == nil {
		session.parameters = make(map[string]string)
	}

	session.parameters[name] = value
	session.emit(Event{Kind: EventParameterStatus, Name: name, Value: value})
	return nil
}

// handleParameterDescription interprets the parameter OIDs describing a
// prepared statement.
func (session *Session) handleParameterDescription(reader *buffer.Reader) error {
	count, err := reader.GetInt16()
	if err != nil {
		return err
	}

	oids := make([]oid.Oid, 0, count)
	for i := 0; i < int(count); i++ {
		id, err := reader.GetInt32()
		if err != nil {
			return err
		}

		oids = append(oids, oid.Oid(id))
	}

	session.emit(Event{Kind: EventParameterDescription, Oids: oids})
	return nil
}

// handleRowDescription installs the columns describing the current resultset.
// The active row description is replaced wholesale and shapes every
// subsequent DataRow until a new description arrives.
func (session *Session) handleRowDescription(reader *buffer.Reader) error {
	count, err := reader.GetInt16()
	if err != nil {
		return err
	}

	columns, err := readColumns(reader, int(count))
	if err != nil {
		return err
	}

	session.columns = columns
	if session.pending != nil {
		session.pending.columns = columns
		session.pending = nil
	}

	session.emit(Event{Kind: EventRowDescription, Columns: columns})
	return nil
}

// handleDataRow interprets a single data row. The column count has to match
// the active row description.
func (session *Session) handleDataRow(reader *buffer.Reader) error {
	count, err := reader.GetInt16()
	if err != nil {
		return err
	}

	if int(count) != len(session.columns) {
		return NewErrColumnCountMismatch(len(session.columns), int(count))
	}

	row := make([]Field, 0, count)
	for i := 0; i < int(count); i++ {
		length, err := reader.GetInt32()
		if err != nil {
			return err
		}

		if length == -1 {
			row = append(row, Field{Null: true, Column: session.columns[i]})
			continue
		}

		value, err := reader.GetBytes(int(length))
		if err != nil {
			return err
		}

		// cells outlive the receive buffer
		data := make([]byte, len(value))
		copy(data, value)
		row = append(row, Field{Column: session.columns[i], Data: data})
	}

	session.emit(Event{Kind: EventDataRow, Row: row})
	return nil
}

func (session *Session) handleCommandComplete(reader *buffer.Reader) error {
	tag, err := reader.GetString()
	if err != nil {
		return err
	}

	session.emit(Event{Kind: EventCommandComplete, Tag: tag})
	return nil
}

// handleNotice interprets the field map shared by ErrorResponse and
// NoticeResponse messages. A zero tag terminates the map, unknown tags are a
// protocol violation.
func (session *Session) handleNotice(reader *buffer.Reader, kind EventKind) error {
	notice := &psqlerr.Error{}

	for {
		tag, err := reader.GetByte()
		if err != nil {
			return err
		}

		if tag == 0 {
			break
		}

		value, err := reader.GetString()
		if err != nil {
			return err
		}

		err = assignNoticeField(notice, noticeField(tag), value)
		if err != nil {
			return err
		}
	}

	session.emit(Event{Kind: kind, Notice: notice})
	return nil
}

func (session *Session) handleNotification(reader *buffer.Reader) error {
	pid, err := reader.GetInt32()
	if err != nil {
		return err
	}

	channel, err := reader.GetString()
	if err != nil {
		return err
	}

	payload, err := reader.GetString()
	if err != nil {
		return err
	}

	session.emit(Event{Kind: EventNotification, PID: pid, Channel: channel, Payload: payload})
	return nil
}

// handleCopyResponse interprets the format header shared by CopyInResponse,
// CopyOutResponse and CopyBothResponse messages. CopyInResponse and
// CopyOutResponse enter the matching copy sub-state, CopyBothResponse leaves
// the session state unchanged.
func (session *Session) handleCopyResponse(reader *buffer.Reader, kind EventKind) error {
	format, err := reader.GetByte()
	if err != nil {
		return err
	}

	count, err := reader.GetInt16()
	if err != nil {
		return err
	}

	formats := make([]FormatCode, 0, count)
	for i := 0; i < int(count); i++ {
		code, err := reader.GetInt16()
		if err != nil {
			return err
		}

		formats = append(formats, FormatCode(code))
	}

	switch kind {
	case EventCopyInResponse:
		session.state = StateCopyIn
	case EventCopyOutResponse:
		session.state = StateCopyOut
	}

	session.emit(Event{Kind: kind, Format: FormatCode(format), Formats: formats})
	return nil
}

func (session *Session) handleCopyData(reader *buffer.Reader) error {
	value, err := reader.GetBytes(reader.Remaining())
	if err != nil {
		return err
	}

	data := make([]byte, len(value))
	copy(data, value)

	session.emit(Event{Kind: EventCopyData, Data: data})
	return nil
}

func (session *Session) handleFunctionCallResponse(reader *buffer.Reader) error {
	length, err := reader.GetInt32()
	if err != nil {
		return err
	}

	if length == -1 {
		session.emit(Event{Kind: EventFunctionCallResponse, Null: true})
		return nil
	}

	value, err := reader.GetBytes(int(length))
	if err != nil {
		return err
	}

	data := make([]byte, len(value))
	copy(data, value)

	session.emit(Event{Kind: EventFunctionCallResponse, Data: data})
	return nil
}
