package wire

import (
	"fmt"

	"github.com/pgkit/frontend/codes"
	psqlerr "github.com/pgkit/frontend/errors"
	"github.com/pgkit/frontend/pkg/types"
)

// noticeField represents a single field tag inside ErrorResponse and
// NoticeResponse messages.
// http://www.postgresql.org/docs/current/static/protocol-error-fields.html
type noticeField byte

const (
	fieldSeverity         noticeField = 'S'
	fieldCode             noticeField = 'C'
	fieldMessage          noticeField = 'M'
	fieldDetail           noticeField = 'D'
	fieldHint             noticeField = 'H'
	fieldPosition         noticeField = 'P'
	fieldInternalPosition noticeField = 'p'
	fieldInternalQuery    noticeField = 'q'
	fieldWhere            noticeField = 'W'
	fieldFile             noticeField = 'F'
	fieldLine             noticeField = 'L'
	fieldRoutine          noticeField = 'R'
)

// assignNoticeField stores the given value inside the notice field matching
// the tag. A unknown tag is a protocol violation.
func assignNoticeField(notice *psqlerr.Error, tag noticeField, value string) error {
	switch tag {
	case fieldSeverity:
		notice.Severity = psqlerr.Severity(value)
	case fieldCode:
		notice.Code = codes.Code(value)
	case fieldMessage:
		notice.Message = value
	case fieldDetail:
		notice.Detail = value
	case fieldHint:
		notice.Hint = value
	case fieldPosition:
		notice.Position = value
	case fieldInternalPosition:
		notice.InternalPosition = value
	case fieldInternalQuery:
		notice.InternalQuery = value
	case fieldWhere:
		notice.Where = value
	case fieldFile:
		notice.File = value
	case fieldLine:
		notice.Line = value
	case fieldRoutine:
		notice.Routine = value
	default:
		return NewErrUnknownNoticeField(byte(tag))
	}

	return nil
}

// NewErrUnknownMessageType is thrown whenever a frame with an unregistered
// type byte arrives. The session cannot determine the frame boundaries of
// anything that follows and must not continue.
func NewErrUnknownMessageType(t types.ServerMessage) error {
	err := fmt.Errorf("unknown backend message type: %d", byte(t))
	return psqlerr.WithSeverity(psqlerr.WithCode(err, codes.ProtocolViolation), psqlerr.LevelFatal)
}

// NewErrUnknownNoticeField is thrown whenever a ErrorResponse or
// NoticeResponse message carries an unregistered field tag.
func NewErrUnknownNoticeField(tag byte) error {
	err := fmt.Errorf("unknown notice field tag: %q", tag)
	return psqlerr.WithSeverity(psqlerr.WithCode(err, codes.ProtocolViolation), psqlerr.LevelFatal)
}

// NewErrUnsupportedAuthMethod is thrown whenever the server requests an
// authentication method outside of the supported trust, cleartext and md5
// variants.
func NewErrUnsupportedAuthMethod(method authType) error {
	err := fmt.Errorf("unsupported authentication method: %s", method)
	return psqlerr.WithSeverity(psqlerr.WithCode(err, codes.FeatureNotSupported), psqlerr.LevelFatal)
}

// NewErrColumnCountMismatch is thrown whenever the column count of a DataRow
// message disagrees with the field count of the active row description.
func NewErrColumnCountMismatch(expected, actual int) error {
	err := fmt.Errorf("data row contains %d columns, the active row description defines %d", actual, expected)
	return psqlerr.WithSeverity(psqlerr.WithCode(err, codes.ProtocolViolation), psqlerr.LevelFatal)
}

// NewErrStartupOutOfOrder is thrown whenever a StartupMessage is build after
// the first frame of the session has already been send.
func NewErrStartupOutOfOrder() error {
	err := fmt.Errorf("startup message must be the first message send over a session")
	return psqlerr.WithSeverity(psqlerr.WithCode(err, codes.ProtocolViolation), psqlerr.LevelFatal)
}

// NewErrUnknownServerStatus is thrown whenever a ReadyForQuery message
// carries an unregistered backend transaction status byte.
func NewErrUnknownServerStatus(status byte) error {
	err := fmt.Errorf("unknown backend transaction status: %q", status)
	return psqlerr.WithSeverity(psqlerr.WithCode(err, codes.ProtocolViolation), psqlerr.LevelFatal)
}

// NewErrInvalidBackendState is returned whenever a client write operation is
// issued while the backend reports a failed transaction block. The embedder
// should end the failed block, for example by issuing a rollback or Sync,
// before writing new commands.
func NewErrInvalidBackendState(status types.ServerStatus) error {
	err := fmt.Errorf("invalid backend state: %s", status)
	return psqlerr.WithCode(err, codes.InFailedSQLTransaction)
}

// NewErrMissingSQL is returned whenever an operation requiring a SQL string
// is issued without one.
func NewErrMissingSQL() error {
	err := fmt.Errorf("no SQL provided")
	return psqlerr.WithCode(err, codes.SyntaxError)
}
