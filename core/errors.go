package core

import (
	"errors"
	"fmt"
)

// Error codes of layout operations
const (
	NOERROR    int = 0
	EINVALID   int = 123 // input failed validation: style, markup, configuration
	EINTERNAL  int = 125 // internal error
	EINVARIANT int = 126 // layout invariant violated, fragment tree inconsistent
	ELAYOUT    int = 127 // layout input unusable
)

var codeText = map[int]string{
	NOERROR:    "OK",
	EINVALID:   "invalid",
	EINTERNAL:  "internal error",
	EINVARIANT: "invariant violated",
	ELAYOUT:    "layout error",
}

func errorText(ecode int) string {
	if t, ok := codeText[ecode]; ok {
		return t
	}
	return "undefined error"
}

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() int
	UserMessage() string
}

type coreError struct {
	error
	code int
	msg  string
}

func (e coreError) Unwrap() error {
	return e.error
}

func (e coreError) Error() string {
	if e.msg == "" || e.msg == e.error.Error() {
		return fmt.Sprintf("[%d] %v", e.code, e.error)
	}
	return fmt.Sprintf("[%d] %s: %v", e.code, e.msg, e.error)
}

func (e coreError) ErrorCode() int {
	return e.code
}

func (e coreError) UserMessage() string {
	return e.msg
}

var _ AppError = coreError{}

// ErrorWithCode adds an error code to err's error chain.
// A nil err is replaced by an error describing the code.
func ErrorWithCode(err error, code int) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	return coreError{err, code, errorText(code)}
}

// WrapError wraps an error in a core error, featuring an error code and
// a user message.
func WrapError(err error, code int, format string, v ...interface{}) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	return coreError{err, code, fmt.Sprintf(format, v...)}
}

// Error creates an error with an error code and a user-message.
func Error(code int, format string, v ...interface{}) error {
	return coreError{errors.New(errorText(code)), code, fmt.Sprintf(format, v...)}
}

// Code returns the code of the outermost core error in err's chain.
// Errors without a code are EINTERNAL, nil is NOERROR.
func Code(err error) int {
	if err == nil {
		return NOERROR
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// UserMessage returns the user message associated with an error.
// Errors without a message report the text of their code.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.UserMessage()
	}
	return errorText(Code(err))
}

// IsInvariantViolation is true if err reports an inconsistent fragment tree.
func IsInvariantViolation(err error) bool {
	return Code(err) == EINVARIANT
}
