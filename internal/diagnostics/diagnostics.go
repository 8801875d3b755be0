// Package diagnostics defines the error values produced while reading,
// transpiling and configuring Custard programs.
package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custard-lang/custard-sub000/internal/token"
)

type ErrorKind int

const (
	KindParse ErrorKind = iota
	KindTranspile
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindTranspile:
		return "TranspileError"
	case KindValidation:
		return "ValidationError"
	}
	return "Error"
}

type ErrorCode string

// Reader
const (
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // unterminated string
	ErrP003 ErrorCode = "P003" // unclosed bracket, paren or brace
	ErrP004 ErrorCode = "P004" // trailing input
	ErrP005 ErrorCode = "P005" // invalid number or escape
)

// Transpiler
const (
	ErrT001 ErrorCode = "T001" // unresolved identifier
	ErrT002 ErrorCode = "T002" // already defined
	ErrT003 ErrorCode = "T003" // definition would change an earlier reference
	ErrT004 ErrorCode = "T004" // arity
	ErrT005 ErrorCode = "T005" // wrong argument shape
	ErrT006 ErrorCode = "T006" // statement where an expression is required
	ErrT007 ErrorCode = "T007" // await/yield/return/break/continue out of context
	ErrT008 ErrorCode = "T008" // contextual keyword without its companion
	ErrT009 ErrorCode = "T009" // host-only function outside REPL or macro definition
	ErrT010 ErrorCode = "T010" // macro definition or expansion failed
	ErrT011 ErrorCode = "T011" // module load failed
	ErrT012 ErrorCode = "T012" // not assignable
	ErrT013 ErrorCode = "T013" // only allowed at top level
	ErrT014 ErrorCode = "T014" // not exportable
)

// Configuration
const (
	ErrV001 ErrorCode = "V001"
)

// DiagnosticError is the single error type of the toolchain. Expected and
// Actual are only filled for parse errors.
type DiagnosticError struct {
	Kind     ErrorKind
	Code     ErrorCode
	Location token.Location
	Message  string
	Expected string
	Actual   string
	Cause    error
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	sb.WriteString(" [")
	sb.WriteString(string(e.Code))
	sb.WriteString("]")
	if !e.Location.IsZero() {
		sb.WriteString(" at ")
		sb.WriteString(e.Location.String())
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *DiagnosticError) Unwrap() error { return e.Cause }

func NewParseError(code ErrorCode, loc token.Location, expected, actual string) *DiagnosticError {
	return &DiagnosticError{
		Kind:     KindParse,
		Code:     code,
		Location: loc,
		Message:  fmt.Sprintf("expected %s, but got %s", expected, actual),
		Expected: expected,
		Actual:   actual,
	}
}

func NewError(code ErrorCode, loc token.Location, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Kind:     KindTranspile,
		Code:     code,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Wrap attaches cause to a new transpile error.
func Wrap(code ErrorCode, loc token.Location, cause error, format string, args ...interface{}) *DiagnosticError {
	e := NewError(code, loc, format, args...)
	e.Cause = cause
	return e
}

func NewValidationError(path string, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Kind:     KindValidation,
		Code:     ErrV001,
		Location: token.Location{File: path},
		Message:  fmt.Sprintf(format, args...),
	}
}

// HasCode reports whether err, or anything it wraps, is a DiagnosticError
// with the given code.
func HasCode(err error, code ErrorCode) bool {
	var de *DiagnosticError
	for err != nil {
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Cause
	}
	return false
}

// KindOf returns the kind of the outermost DiagnosticError in err.
func KindOf(err error) (ErrorKind, bool) {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
