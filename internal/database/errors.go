package database

import "fmt"

// Kind classifies a database-layer error. The HTTP façade maps each Kind to
// a status code; callers should switch on Kind rather than matching message
// text.
type Kind string

const (
	KindUnknownTable     Kind = "unknown_table"
	KindUnknownColumn    Kind = "unknown_column"
	KindDuplicateTable   Kind = "duplicate_table"
	KindDuplicateColumn  Kind = "duplicate_column"
	KindInvalidType      Kind = "invalid_type"
	KindTypeMismatch     Kind = "type_mismatch"
	KindArity            Kind = "arity"
	KindNotFound         Kind = "not_found"
	KindUnsupportedQuery Kind = "unsupported_query"
	KindBadRequest       Kind = "bad_request"
)

// Error is the one error type every core operation returns — never a bare
// error string, never a panic. Kind is meant to be switched on; Message is
// for humans and logs.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func errUnknownTable(name string) *Error {
	return newError(KindUnknownTable, "table %q does not exist", name)
}

func errUnknownColumn(table, column string) *Error {
	return newError(KindUnknownColumn, "table %q has no column %q", table, column)
}

func errDuplicateTable(name string) *Error {
	return newError(KindDuplicateTable, "table %q already exists", name)
}

func errDuplicateColumn(name string) *Error {
	return newError(KindDuplicateColumn, "duplicate column %q", name)
}

func errInvalidType(s string) *Error {
	return newError(KindInvalidType, "unrecognized column type %q", s)
}

func errTypeMismatch(column string, want, got string) *Error {
	return newError(KindTypeMismatch, "column %q expects %s, got %s", column, want, got)
}

func errArity(want, got int) *Error {
	return newError(KindArity, "expected %d values, got %d", want, got)
}

func errNotFound(id uint64) *Error {
	return newError(KindNotFound, "row %d not found", id)
}

func errUnsupportedQuery(column, plan string) *Error {
	return newError(KindUnsupportedQuery, "column %q does not support %s queries", column, plan)
}

func errBadRequest(format string, args ...interface{}) *Error {
	return newError(KindBadRequest, format, args...)
}

// NewBadRequestError builds a BadRequest error for callers outside this
// package (the HTTP layer, the search coordinator) that need to report a
// malformed request using the same typed error every core operation uses.
func NewBadRequestError(format string, args ...interface{}) *Error {
	return errBadRequest(format, args...)
}
