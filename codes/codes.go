package codes

// Code represents a Postgres SQLSTATE error code
type Code string

// Subset of the SQLSTATE codes defined within the Postgres errcodes appendix
// that are thrown or inspected by this library. The full table is defined at:
// http://www.postgresql.org/docs/current/static/errcodes-appendix.html
var (
	// Section: Class 00 - Successful Completion
	SuccessfulCompletion Code = "00000"
	// Section: Class 01 - Warning
	Warning Code = "01000"
	// Section: Class 03 - SQL Statement Not Yet Complete
	SQLStatementNotYetComplete Code = "03000"
	// Section: Class 08 - Connection Exception
	ConnectionException    Code = "08000"
	ConnectionDoesNotExist Code = "08003"
	ConnectionFailure      Code = "08006"
	ProtocolViolation      Code = "08P01"
	// Section: Class 0A - Feature Not Supported
	FeatureNotSupported Code = "0A000"
	// Section: Class 22 - Data Exception
	DataException      Code = "22000"
	NullValueNotAllowed Code = "22004"
	// Section: Class 25 - Invalid Transaction State
	InvalidTransactionState Code = "25000"
	InFailedSQLTransaction  Code = "25P02"
	// Section: Class 26 - Invalid SQL Statement Name
	InvalidSQLStatementName Code = "26000"
	// Section: Class 28 - Invalid Authorization Specification
	InvalidAuthorizationSpecification Code = "28000"
	InvalidPassword                   Code = "28P01"
	// Section: Class 34 - Invalid Cursor Name
	InvalidCursorName Code = "34000"
	// Section: Class 42 - Syntax Error or Access Rule Violation
	SyntaxErrorOrAccessRuleViolation   Code = "42000"
	SyntaxError                        Code = "42601"
	UndefinedTable                     Code = "42P01"
	InvalidPreparedStatementDefinition Code = "42P14"
	// Section: Class 53 - Insufficient Resources
	InsufficientResources Code = "53000"
	// Section: Class 54 - Program Limit Exceeded
	ProgramLimitExceeded Code = "54000"
	// Section: Class 57 - Operator Intervention
	OperatorIntervention Code = "57000"
	AdminShutdown        Code = "57P01"
	// Section: Class 58 - System Error
	SystemError Code = "58000"
	// Section: Class XX - Internal Error
	Internal      Code = "XX000"
	DataCorrupted Code = "XX001"

	// Uncategorized is used for errors that flow out to a client when there
	// is no specific SQLSTATE to attribute them to.
	Uncategorized Code = "XXUUU"
)
