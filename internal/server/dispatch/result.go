package dispatch

// Code is the machine-readable error code carried by a failed Result.
type Code string

const (
	CodeUnknownOperation    Code = "UNKNOWN_OPERATION"
	CodeMissingParameter    Code = "MISSING_PARAMETER"
	CodeInvalidParameter    Code = "INVALID_PARAMETER"
	CodeUserExists          Code = "USER_EXISTS"
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeInvalidPassword     Code = "INVALID_PASSWORD"
	CodeInvalidCredentials  Code = "INVALID_CREDENTIALS"
	CodeForeignKeyViolation Code = "FOREIGN_KEY_VIOLATION"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeInternalError       Code = "INTERNAL_ERROR"
)

// Error is the failure half of a Result. Diagnostic is set only for
// internal errors and matches the id logged with the cause.
type Error struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Result is the uniform outcome of every dispatch: Success with Data, or
// an Error.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

func ok(data any) Result {
	return Result{Success: true, Data: data}
}

func fail(code Code, message string) Result {
	return Result{Error: &Error{Code: code, Message: message}}
}
