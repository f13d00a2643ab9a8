package ledger

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the category of a ledger failure
type ErrorCode string

const (
	CodeInvalidInput       ErrorCode = "INVALID_INPUT"
	CodeInsufficientFunds  ErrorCode = "INSUFFICIENT_FUNDS"
	CodeInsufficientShares ErrorCode = "INSUFFICIENT_SHARES"
	CodeInvalidState       ErrorCode = "INVALID_STATE"
	CodeMissingNotes       ErrorCode = "MISSING_NOTES"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodePersistence        ErrorCode = "PERSISTENCE_FAILURE"
)

// Error is the typed error returned by all ledger operations. Callers match
// on the code; Unwrap exposes the underlying cause for logging.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two ledger errors by code so errors.Is works with sentinels
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Sentinels for errors.Is checks
var (
	ErrInvalidInput       = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrInsufficientFunds  = &Error{Code: CodeInsufficientFunds, Message: "insufficient funds"}
	ErrInsufficientShares = &Error{Code: CodeInsufficientShares, Message: "insufficient shares"}
	ErrInvalidState       = &Error{Code: CodeInvalidState, Message: "invalid order state"}
	ErrMissingNotes       = &Error{Code: CodeMissingNotes, Message: "rejection notes required"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrPersistence        = &Error{Code: CodePersistence, Message: "persistence failure"}
)

// CodeOf extracts the ledger error code, defaulting to persistence failure
// for errors that did not originate in the ledger.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodePersistence
}
