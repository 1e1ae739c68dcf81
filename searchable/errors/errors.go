// Package errors defines the kind-tagged error returned across searchable packages.
package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorKind string

const (
	ErrConfiguration     ErrorKind = "configuration"
	ErrUnknownColumn     ErrorKind = "unknown_column"
	ErrInvalidIdentifier ErrorKind = "invalid_identifier"
	ErrSQL               ErrorKind = "sql"
	ErrIO                ErrorKind = "io"
	ErrNotFound          ErrorKind = "not_found"
	ErrConfigFile        ErrorKind = "config_file"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Field != "" {
		base = fmt.Sprintf("%s (column=%s)", base, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// ConfigurationError reports a searcher or grid that was used before it was fully set up.
func ConfigurationError(msg string) *Error {
	return &Error{Kind: ErrConfiguration, Message: msg}
}

func UnknownColumnError(column string) *Error {
	return &Error{Kind: ErrUnknownColumn, Message: "no column matches key", Field: column}
}

func InvalidIdentifierError(ident string) *Error {
	return &Error{Kind: ErrInvalidIdentifier, Message: fmt.Sprintf("invalid SQL identifier %q", ident)}
}

func NotFoundError(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
