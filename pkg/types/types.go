package types

// ClientMessage represents a message type send from the frontend to the
// Postgres server.
type ClientMessage byte

// ServerMessage represents a message type send by the Postgres server to the
// frontend.
type ServerMessage byte

// http://www.postgresql.org/docs/current/static/protocol-message-formats.html
const (
	ClientBind         ClientMessage = 'B'
	ClientClose        ClientMessage = 'C'
	ClientCopyData     ClientMessage = 'd'
	ClientCopyDone     ClientMessage = 'c'
	ClientCopyFail     ClientMessage = 'f'
	ClientDescribe     ClientMessage = 'D'
	ClientExecute      ClientMessage = 'E'
	ClientFlush        ClientMessage = 'H'
	ClientFunctionCall ClientMessage = 'F'
	ClientParse        ClientMessage = 'P'
	ClientPassword     ClientMessage = 'p'
	ClientSimpleQuery  ClientMessage = 'Q'
	ClientSync         ClientMessage = 'S'
	ClientTerminate    ClientMessage = 'X'

	ServerAuth                 ServerMessage = 'R'
	ServerBackendKeyData       ServerMessage = 'K'
	ServerBindComplete         ServerMessage = '2'
	ServerCloseComplete        ServerMessage = '3'
	ServerCommandComplete      ServerMessage = 'C'
	ServerCopyBothResponse     ServerMessage = 'W'
	ServerCopyData             ServerMessage = 'd'
	ServerCopyDone             ServerMessage = 'c'
	ServerCopyInResponse       ServerMessage = 'G'
	ServerCopyOutResponse      ServerMessage = 'H'
	ServerDataRow              ServerMessage = 'D'
	ServerEmptyQuery           ServerMessage = 'I'
	ServerErrorResponse        ServerMessage = 'E'
	ServerFunctionCallResponse ServerMessage = 'V'
	ServerNoData               ServerMessage = 'n'
	ServerNoticeResponse       ServerMessage = 'N'
	ServerNotificationResponse ServerMessage = 'A'
	ServerParameterDescription ServerMessage = 't'
	ServerParameterStatus      ServerMessage = 'S'
	ServerParseComplete        ServerMessage = '1'
	ServerPortalSuspended      ServerMessage = 's'
	ServerReady                ServerMessage = 'Z'
	ServerRowDescription       ServerMessage = 'T'
)

// clientMessages is the code → name table for all frontend message types.
var clientMessages = map[ClientMessage]string{
	ClientBind:         "Bind",
	ClientClose:        "Close",
	ClientCopyData:     "CopyData",
	ClientCopyDone:     "CopyDone",
	ClientCopyFail:     "CopyFail",
	ClientDescribe:     "Describe",
	ClientExecute:      "Execute",
	ClientFlush:        "Flush",
	ClientFunctionCall: "FunctionCall",
	ClientParse:        "Parse",
	ClientPassword:     "PasswordMessage",
	ClientSimpleQuery:  "Query",
	ClientSync:         "Sync",
	ClientTerminate:    "Terminate",
}

// serverMessages is the code → name table for all backend message types.
var serverMessages = map[ServerMessage]string{
	ServerAuth:                 "AuthenticationRequest",
	ServerBackendKeyData:       "BackendKeyData",
	ServerBindComplete:         "BindComplete",
	ServerCloseComplete:        "CloseComplete",
	ServerCommandComplete:      "CommandComplete",
	ServerCopyBothResponse:     "CopyBothResponse",
	ServerCopyData:             "CopyData",
	ServerCopyDone:             "CopyDone",
	ServerCopyInResponse:       "CopyInResponse",
	ServerCopyOutResponse:      "CopyOutResponse",
	ServerDataRow:              "DataRow",
	ServerEmptyQuery:           "EmptyQueryResponse",
	ServerErrorResponse:        "ErrorResponse",
	ServerFunctionCallResponse: "FunctionCallResponse",
	ServerNoData:               "NoData",
	ServerNoticeResponse:       "NoticeResponse",
	ServerNotificationResponse: "NotificationResponse",
	ServerParameterDescription: "ParameterDescription",
	ServerParameterStatus:      "ParameterStatus",
	ServerParseComplete:        "ParseComplete",
	ServerPortalSuspended:      "PortalSuspended",
	ServerReady:                "ReadyForQuery",
	ServerRowDescription:       "RowDescription",
}

// ClientMessageCode returns the wire code registered for the given frontend
// message name. The boolean reports whether the name is known.
func ClientMessageCode(name string) (ClientMessage, bool) {
	for code, known := range clientMessages {
		if known == name {
			return code, true
		}
	}

	return 0, false
}

// ServerMessageCode returns the wire code registered for the given backend
// message name. The boolean reports whether the name is known.
func ServerMessageCode(name string) (ServerMessage, bool) {
	for code, known := range serverMessages {
		if known == name {
			return code, true
		}
	}

	return 0, false
}

// Known reports whether the given type byte is a registered frontend message.
func (m ClientMessage) Known() bool {
	_, has := clientMessages[m]
	return has
}

// Known reports whether the given type byte is a registered backend message.
func (m ServerMessage) Known() bool {
	_, has := serverMessages[m]
	return has
}

func (m ClientMessage) String() string {
	name, has := clientMessages[m]
	if !has {
		return "Unknown"
	}

	return name
}

func (m ServerMessage) String() string {
	name, has := serverMessages[m]
	if !has {
		return "Unknown"
	}

	return name
}
