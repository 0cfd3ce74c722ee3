package wire

import (
	"github.com/lib/pq/oid"

	psqlerr "github.com/pgkit/frontend/errors"
	"github.com/pgkit/frontend/pkg/types"
)

// EventKind identifies one of the closed set of events raised by a session.
// Frontend activity raises EventSendRequest carrying the frame to be written
// to the transport, backend frames raise the event matching their message
// type once fully decoded.
type EventKind uint8

const (
	EventSendRequest EventKind = iota
	EventAuthenticated
	EventPassword
	EventRequestReady
	EventReadyForQuery
	EventBackendKeyData
	EventParameterStatus
	EventParameterDescription
	EventRowDescription
	EventDataRow
	EventCommandComplete
	EventEmptyQuery
	EventNoData
	EventParseComplete
	EventBindComplete
	EventCloseComplete
	EventPortalSuspended
	EventCopyInResponse
	EventCopyOutResponse
	EventCopyBothResponse
	EventCopyData
	EventCopyDone
	EventCopyFail
	EventNotification
	EventNotice
	EventError
	EventFunctionCallResponse
)

var eventNames = map[EventKind]string{
	EventSendRequest:          "send_request",
	EventAuthenticated:        "authenticated",
	EventPassword:             "password",
	EventRequestReady:         "request_ready",
	EventReadyForQuery:        "ready_for_query",
	EventBackendKeyData:       "backendkeydata",
	EventParameterStatus:      "parameter_status",
	EventParameterDescription: "parameter_description",
	EventRowDescription:       "row_description",
	EventDataRow:              "data_row",
	EventCommandComplete:      "command_complete",
	EventEmptyQuery:           "empty_query",
	EventNoData:               "no_data",
	EventParseComplete:        "parse_complete",
	EventBindComplete:         "bind_complete",
	EventCloseComplete:        "close_complete",
	EventPortalSuspended:      "portal_suspended",
	EventCopyInResponse:       "copy_in_response",
	EventCopyOutResponse:      "copy_out_response",
	EventCopyBothResponse:     "copy_both_response",
	EventCopyData:             "copy_data",
	EventCopyDone:             "copy_done",
	EventCopyFail:             "copy_fail",
	EventNotification:         "notification",
	EventNotice:               "notice",
	EventError:                "error",
	EventFunctionCallResponse: "function_call_response",
}

func (k EventKind) String() string {
	name, has := eventNames[k]
	if !has {
		return "unknown"
	}

	return name
}

// BackendKeyData holds the cancellation key data of the backend process
// serving the session. The frontend must save these values if it wishes to be
// able to issue CancelRequest messages later.
type BackendKeyData struct {
	PID       int32
	SecretKey int32
}

// Event is the record handed to every attached handler. Kind identifies the
// variant, the remaining fields are populated per variant:
//
//	EventSendRequest            Send
//	EventReadyForQuery          Status
//	EventBackendKeyData         Key
//	EventParameterStatus        Name, Value
//	EventParameterDescription   Oids
//	EventRowDescription         Columns
//	EventDataRow                Row
//	EventCommandComplete        Tag
//	EventCopyInResponse ...     Format, Formats
//	EventCopyData               Data
//	EventCopyFail (outgoing)    Tag
//	EventNotification           PID, Channel, Payload
//	EventNotice / EventError    Notice
//	EventFunctionCallResponse   Data, Null
type Event struct {
	Kind    EventKind
	Send    []byte
	Status  types.ServerStatus
	Key     BackendKeyData
	Name    string
	Value   string
	Oids    []oid.Oid
	Columns Columns
	Row     []Field
	Tag     string
	Format  FormatCode
	Formats []FormatCode
	Data    []byte
	Null    bool
	PID     int32
	Channel string
	Payload string
	Notice  *psqlerr.Error
}

// EventHandler handles a single session event. Handlers fire synchronously in
// strict wire order before the decode call that produced them returns.
type EventHandler func(event Event)

// Attach registers the given handler for the given event kind. Multiple
// handlers may be attached to a single kind, they fire in registration order.
func (session *Session) Attach(kind EventKind, handler EventHandler) {
	session.handlers[kind] = append(session.handlers[kind], handler)
}

// emit dispatches the given event to all handlers attached to its kind.
func (session *Session) emit(event Event) {
	for _, handler := range session.handlers[event.Kind] {
		handler(event)
	}
}
