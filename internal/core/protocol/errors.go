package protocol

import (
	"errors"
	"time"
)

var (
	ErrProtocolParse  = errors.New("malformed command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrActuationRange = errors.New("actuation value out of range")
	ErrInternalError  = errors.New("internal error")
)

// ErrorCode is a numeric error code carried in logs.
type ErrorCode int

const (
	ErrorCodeSuccess ErrorCode = 0

	// Command error codes (3000-3999)

	ErrorCodeProtocolParse  ErrorCode = 3001
	ErrorCodeUnknownCommand ErrorCode = 3002
	ErrorCodeActuationRange ErrorCode = 3003

	// Generic error codes (9000-9999)

	ErrorCodeInternalError ErrorCode = 9001
	ErrorCodeUnknown       ErrorCode = 9999
)

// Error is a command error with its code and offending input.
type Error struct {
	Code      ErrorCode
	Message   string
	Cause     error
	Context   map[string]any
	Timestamp int64
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewProtocolError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Context:   make(map[string]any),
		Timestamp: time.Now().Unix(),
	}
}

func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

var errorCodeMap = map[error]ErrorCode{
	ErrProtocolParse:  ErrorCodeProtocolParse,
	ErrUnknownCommand: ErrorCodeUnknownCommand,
	ErrActuationRange: ErrorCodeActuationRange,
	ErrInternalError:  ErrorCodeInternalError,
}

// GetErrorCode resolves the code of err, looking through wrapping.
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ErrorCodeSuccess
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ErrorCodeUnknown
}

func parseError(line string, cause error) *Error {
	return NewProtocolError(errorCodeMap[cause], "cannot parse command", cause).WithContext("line", line)
}
