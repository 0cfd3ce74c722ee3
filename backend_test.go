package wire

import (
	"testing"

	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgkit/frontend/codes"
	psqlerr "github.com/pgkit/frontend/errors"
	"github.com/pgkit/frontend/pkg/mock"
	"github.com/pgkit/frontend/pkg/types"
)

// rowDescriptionFrame frames a RowDescription message declaring the given
// columns.
func rowDescriptionFrame(t *testing.T, columns Columns) []byte {
	return mock.Frame(t, types.ServerRowDescription, func(writer *mock.Writer) {
		writer.AddInt16(int16(len(columns)))

		for _, column := range columns {
			writer.AddString(column.Name)
			writer.AddNullTerminate()
			writer.AddInt32(column.Table)
			writer.AddInt16(column.AttrNo)
			writer.AddInt32(int32(column.Oid))
			writer.AddInt16(column.Width)
			writer.AddInt32(column.TypeModifier)
			writer.AddInt16(int16(column.Format))
		}
	})
}

func TestRowDescriptionDataRow(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	columns := Columns{{Name: "n", Oid: oid.T_int4, Width: 4, TypeModifier: -1}}
	require.NoError(t, session.HandleMessage(rowDescriptionFrame(t, columns)))
	assert.Equal(t, columns, session.RowDescription())

	row := mock.Frame(t, types.ServerDataRow, func(writer *mock.Writer) {
		writer.AddInt16(1)
		writer.AddInt32(1)
		writer.AddBytes([]byte{0x31})
	})
	require.NoError(t, session.HandleMessage(row))

	assert.Equal(t, []EventKind{EventRowDescription, EventDataRow}, rec.kinds())

	event := rec.events[1]
	require.Len(t, event.Row, 1)
	assert.False(t, event.Row[0].Null)
	assert.Equal(t, []byte{0x31}, event.Row[0].Data)
	assert.Equal(t, "n", event.Row[0].Column.Name)
}

func TestDataRowNullCell(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	columns := Columns{
		{Name: "a", Oid: oid.T_text},
		{Name: "b", Oid: oid.T_text},
	}
	require.NoError(t, session.HandleMessage(rowDescriptionFrame(t, columns)))

	row := mock.Frame(t, types.ServerDataRow, func(writer *mock.Writer) {
		writer.AddInt16(2)
		writer.AddInt32(-1)
		writer.AddInt32(5)
		writer.AddBytes([]byte("value"))
	})
	require.NoError(t, session.HandleMessage(row))

	event := rec.events[len(rec.events)-1]
	require.Len(t, event.Row, 2)
	assert.True(t, event.Row[0].Null)
	assert.Nil(t, event.Row[0].Data)
	assert.False(t, event.Row[1].Null)
	assert.Equal(t, []byte("value"), event.Row[1].Data)
}

func TestDataRowColumnCountMismatch(t *testing.T) {
	t.Parallel()

	session, _ := newTestSession(t)

	columns := Columns{{Name: "n", Oid: oid.T_int4}}
	require.NoError(t, session.HandleMessage(rowDescriptionFrame(t, columns)))

	row := mock.Frame(t, types.ServerDataRow, func(writer *mock.Writer) {
		writer.AddInt16(2)
		writer.AddInt32(-1)
		writer.AddInt32(-1)
	})

	err := session.HandleMessage(row)
	require.Error(t, err)
	assert.Equal(t, codes.ProtocolViolation, psqlerr.GetCode(err))
	assert.Equal(t, psqlerr.LevelFatal, psqlerr.GetSeverity(err))
}

func TestEmptyQueryResponse(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	require.NoError(t, session.HandleMessage([]byte{0x49, 0x00, 0x00, 0x00, 0x04}))
	assert.Equal(t, []EventKind{EventEmptyQuery, EventReadyForQuery}, rec.kinds())
}

func TestErrorResponseDecode(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	response := mock.Frame(t, types.ServerErrorResponse, func(writer *mock.Writer) {
		writer.AddByte('S')
		writer.AddString("ERROR")
		writer.AddNullTerminate()
		writer.AddByte('C')
		writer.AddString("42P01")
		writer.AddNullTerminate()
		writer.AddByte('M')
		writer.AddString(`relation "x" does not exist`)
		writer.AddNullTerminate()
		writer.AddNullTerminate()
	})
	require.NoError(t, session.HandleMessage(response))

	require.Equal(t, []EventKind{EventError}, rec.kinds())

	notice := rec.events[0].Notice
	require.NotNil(t, notice)
	assert.Equal(t, psqlerr.LevelError, notice.Severity)
	assert.Equal(t, codes.UndefinedTable, notice.Code)
	assert.Equal(t, `relation "x" does not exist`, notice.Message)
}

func TestNoticeResponseAllFields(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	fields := map[byte]string{
		'S': "NOTICE",
		'C': "01000",
		'M': "message",
		'D': "detail",
		'H': "hint",
		'P': "7",
		'p': "3",
		'q': "internal query",
		'W': "where",
		'F': "file.c",
		'L': "42",
		'R': "routine",
	}

	// fixed tag order keeps the frame deterministic
	order := []byte{'S', 'C', 'M', 'D', 'H', 'P', 'p', 'q', 'W', 'F', 'L', 'R'}

	response := mock.Frame(t, types.ServerNoticeResponse, func(writer *mock.Writer) {
		for _, tag := range order {
			writer.AddByte(tag)
			writer.AddString(fields[tag])
			writer.AddNullTerminate()
		}
		writer.AddNullTerminate()
	})
	require.NoError(t, session.HandleMessage(response))

	require.Equal(t, []EventKind{EventNotice}, rec.kinds())

	notice := rec.events[0].Notice
	assert.Equal(t, psqlerr.LevelNotice, notice.Severity)
	assert.Equal(t, codes.Warning, notice.Code)
	assert.Equal(t, "message", notice.Message)
	assert.Equal(t, "detail", notice.Detail)
	assert.Equal(t, "hint", notice.Hint)
	assert.Equal(t, "7", notice.Position)
	assert.Equal(t, "3", notice.InternalPosition)
	assert.Equal(t, "internal query", notice.InternalQuery)
	assert.Equal(t, "where", notice.Where)
	assert.Equal(t, "file.c", notice.File)
	assert.Equal(t, "42", notice.Line)
	assert.Equal(t, "routine", notice.Routine)
}

func TestUnknownNoticeFieldTag(t *testing.T) {
	t.Parallel()

	session, _ := newTestSession(t)

	response := mock.Frame(t, types.ServerErrorResponse, func(writer *mock.Writer) {
		writer.AddByte('Y')
		writer.AddString("unexpected")
		writer.AddNullTerminate()
		writer.AddNullTerminate()
	})

	err := session.HandleMessage(response)
	require.Error(t, err)
	assert.Equal(t, psqlerr.LevelFatal, psqlerr.GetSeverity(err))
}

func TestUnknownMessageType(t *testing.T) {
	t.Parallel()

	session, _ := newTestSession(t)

	err := session.HandleMessage([]byte{'!', 0x00, 0x00, 0x00, 0x04})
	require.Error(t, err)
	assert.Equal(t, codes.ProtocolViolation, psqlerr.GetCode(err))
	assert.Equal(t, psqlerr.LevelFatal, psqlerr.GetSeverity(err))
}

func TestNotificationResponse(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	notification := mock.Frame(t, types.ServerNotificationResponse, func(writer *mock.Writer) {
		writer.AddInt32(4321)
		writer.AddString("jobs")
		writer.AddNullTerminate()
		writer.AddString("job 17 finished")
		writer.AddNullTerminate()
	})
	require.NoError(t, session.HandleMessage(notification))

	require.Equal(t, []EventKind{EventNotification}, rec.kinds())
	assert.Equal(t, int32(4321), rec.events[0].PID)
	assert.Equal(t, "jobs", rec.events[0].Channel)
	assert.Equal(t, "job 17 finished", rec.events[0].Payload)
}

func TestParameterStatusSinglePair(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	status := mock.Frame(t, types.ServerParameterStatus, func(writer *mock.Writer) {
		writer.AddString("client_encoding")
		writer.AddNullTerminate()
		writer.AddString("UTF8")
		writer.AddNullTerminate()
	})
	require.NoError(t, session.HandleMessage(status))

	require.Equal(t, []EventKind{EventParameterStatus}, rec.kinds())
	assert.Equal(t, "client_encoding", rec.events[0].Name)
	assert.Equal(t, "UTF8", rec.events[0].Value)
	assert.Equal(t, "UTF8", session.Parameter("client_encoding"))
}

func TestParameterDescription(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	description := mock.Frame(t, types.ServerParameterDescription, func(writer *mock.Writer) {
		writer.AddInt16(2)
		writer.AddInt32(int32(oid.T_int4))
		writer.AddInt32(int32(oid.T_text))
	})
	require.NoError(t, session.HandleMessage(description))

	require.Equal(t, []EventKind{EventParameterDescription}, rec.kinds())
	assert.Equal(t, []oid.Oid{oid.T_int4, oid.T_text}, rec.events[0].Oids)
}

func TestBackendKeyData(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	keydata := mock.Frame(t, types.ServerBackendKeyData, func(writer *mock.Writer) {
		writer.AddInt32(90)
		writer.AddInt32(5432)
	})
	require.NoError(t, session.HandleMessage(keydata))

	require.Equal(t, []EventKind{EventBackendKeyData}, rec.kinds())
	assert.Equal(t, BackendKeyData{PID: 90, SecretKey: 5432}, session.BackendKey())
}

func TestReadyForQueryStatus(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	ready := mock.Frame(t, types.ServerReady, func(writer *mock.Writer) {
		writer.AddByte('T')
	})
	require.NoError(t, session.HandleMessage(ready))

	require.Equal(t, []EventKind{EventReadyForQuery}, rec.kinds())
	assert.Equal(t, types.ServerTransactionBlock, session.BackendStatus())
	assert.Equal(t, types.ServerTransactionBlock, rec.events[0].Status)
}

func TestReadyForQueryUnknownStatus(t *testing.T) {
	t.Parallel()

	session, _ := newTestSession(t)

	ready := mock.Frame(t, types.ServerReady, func(writer *mock.Writer) {
		writer.AddByte('X')
	})

	err := session.HandleMessage(ready)
	require.Error(t, err)
	assert.Equal(t, codes.ProtocolViolation, psqlerr.GetCode(err))
}

func TestCompletionMessages(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		typed types.ServerMessage
		kind  EventKind
	}{
		"parse complete":   {typed: types.ServerParseComplete, kind: EventParseComplete},
		"bind complete":    {typed: types.ServerBindComplete, kind: EventBindComplete},
		"close complete":   {typed: types.ServerCloseComplete, kind: EventCloseComplete},
		"no data":          {typed: types.ServerNoData, kind: EventNoData},
		"portal suspended": {typed: types.ServerPortalSuspended, kind: EventPortalSuspended},
		"copy done":        {typed: types.ServerCopyDone, kind: EventCopyDone},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			session, rec := newTestSession(t)
			require.NoError(t, session.HandleMessage(mock.Frame(t, test.typed, nil)))
			assert.Equal(t, []EventKind{test.kind}, rec.kinds())
		})
	}
}

func TestCommandComplete(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	complete := mock.Frame(t, types.ServerCommandComplete, func(writer *mock.Writer) {
		writer.AddString("SELECT 1")
		writer.AddNullTerminate()
	})
	require.NoError(t, session.HandleMessage(complete))

	require.Equal(t, []EventKind{EventCommandComplete}, rec.kinds())
	assert.Equal(t, "SELECT 1", rec.events[0].Tag)
}

func TestCopyResponses(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		typed types.ServerMessage
		kind  EventKind
		state SessionState
	}{
		"copy in":   {typed: types.ServerCopyInResponse, kind: EventCopyInResponse, state: StateCopyIn},
		"copy out":  {typed: types.ServerCopyOutResponse, kind: EventCopyOutResponse, state: StateCopyOut},
		"copy both": {typed: types.ServerCopyBothResponse, kind: EventCopyBothResponse, state: StateHandshake},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			session, rec := newTestSession(t)

			response := mock.Frame(t, test.typed, func(writer *mock.Writer) {
				writer.AddByte(0)
				writer.AddInt16(2)
				writer.AddInt16(0)
				writer.AddInt16(1)
			})
			require.NoError(t, session.HandleMessage(response))

			require.Equal(t, []EventKind{test.kind}, rec.kinds())
			assert.Equal(t, TextFormat, rec.events[0].Format)
			assert.Equal(t, []FormatCode{TextFormat, BinaryFormat}, rec.events[0].Formats)
			assert.Equal(t, test.state, session.State())
		})
	}
}

func TestServerCopyData(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	data := mock.Frame(t, types.ServerCopyData, func(writer *mock.Writer) {
		writer.AddBytes([]byte("1\tfoo\n"))
	})
	require.NoError(t, session.HandleMessage(data))

	require.Equal(t, []EventKind{EventCopyData}, rec.kinds())
	assert.Equal(t, []byte("1\tfoo\n"), rec.events[0].Data)
}

func TestFunctionCallResponse(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	response := mock.Frame(t, types.ServerFunctionCallResponse, func(writer *mock.Writer) {
		writer.AddInt32(3)
		writer.AddBytes([]byte{0x01, 0x02, 0x03})
	})
	require.NoError(t, session.HandleMessage(response))

	null := mock.Frame(t, types.ServerFunctionCallResponse, func(writer *mock.Writer) {
		writer.AddInt32(-1)
	})
	require.NoError(t, session.HandleMessage(null))

	require.Equal(t, []EventKind{EventFunctionCallResponse, EventFunctionCallResponse}, rec.kinds())
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, rec.events[0].Data)
	assert.False(t, rec.events[0].Null)
	assert.True(t, rec.events[1].Null)
}

func TestReceivePartialFrames(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	ready := mock.Frame(t, types.ServerReady, func(writer *mock.Writer) {
		writer.AddByte('I')
	})

	require.NoError(t, session.Receive(ready[:2]))
	assert.Empty(t, rec.kinds())

	require.NoError(t, session.Receive(ready[2:4]))
	assert.Empty(t, rec.kinds())

	require.NoError(t, session.Receive(ready[4:]))
	assert.Equal(t, []EventKind{EventReadyForQuery}, rec.kinds())
}

func TestReceiveMultipleFrames(t *testing.T) {
	t.Parallel()

	session, rec := newTestSession(t)

	var stream []byte
	stream = append(stream, mock.Frame(t, types.ServerEmptyQuery, nil)...)
	stream = append(stream, mock.Frame(t, types.ServerReady, func(writer *mock.Writer) {
		writer.AddByte('I')
	})...)

	// a partial frame remains buffered until the remaining bytes arrive
	tail := mock.Frame(t, types.ServerCommandComplete, func(writer *mock.Writer) {
		writer.AddString("SELECT 1")
		writer.AddNullTerminate()
	})
	stream = append(stream, tail[:4]...)

	require.NoError(t, session.Receive(stream))
	assert.Equal(t, []EventKind{EventEmptyQuery, EventReadyForQuery, EventReadyForQuery}, rec.kinds())

	require.NoError(t, session.Receive(tail[4:]))
	assert.Equal(t, EventCommandComplete, rec.events[len(rec.events)-1].Kind)
	assert.Equal(t, "SELECT 1", rec.events[len(rec.events)-1].Tag)
}
