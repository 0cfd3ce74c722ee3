package errors

import "github.com/pgkit/frontend/codes"

// Error contains all Postgres wire protocol error and notice fields.
// See https://www.postgresql.org/docs/current/static/protocol-error-fields.html
// for a list of all Postgres error fields, most of which are optional and can
// be used to provide auxiliary error information.
type Error struct {
	Severity         Severity
	Code             codes.Code
	Message          string
	Detail           string
	Hint             string
	Position         string
	InternalPosition string
	InternalQuery    string
	Where            string
	File             string
	Line             string
	Routine          string
}

// Error implements the error interface returning the primary human-readable
// error message.
func (e *Error) Error() string {
	return e.Message
}

// Flatten returns a flattened error which represents the given Go error as a
// Postgres wire error.
func Flatten(err error) Error {
	if err == nil {
		return Error{
			Code:     codes.Internal,
			Message:  "unknown error, an internal process attempted to throw an error",
			Severity: LevelFatal,
		}
	}

	return Error{
		Code:     GetCode(err),
		Message:  err.Error(),
		Severity: DefaultSeverity(GetSeverity(err)),
	}
}
