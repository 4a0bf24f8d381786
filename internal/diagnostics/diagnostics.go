package diagnostics

import (
	"fmt"

	"github.com/driftlang/drift/internal/token"
)

type ErrorCode string

const (
	// Lexer
	ErrL001 ErrorCode = "L001" // unexpected character
	ErrL002 ErrorCode = "L002" // unterminated string
	ErrL003 ErrorCode = "L003" // invalid number literal

	// Parser
	ErrP001 ErrorCode = "P001" // expected token mismatch
	ErrP002 ErrorCode = "P002" // no prefix parse function
	ErrP003 ErrorCode = "P003" // invalid assignment target
	ErrP004 ErrorCode = "P004" // unexpected token
	ErrP005 ErrorCode = "P005" // await outside async function
	ErrP006 ErrorCode = "P006" // malformed construct
)

var messages = map[ErrorCode]string{
	ErrL001: "unexpected character %q",
	ErrL002: "unterminated string literal",
	ErrL003: "invalid number literal %q",
	ErrP001: "expected %s, got %s",
	ErrP002: "unexpected token %s in expression",
	ErrP003: "invalid assignment target",
	ErrP004: "unexpected token %s",
	ErrP005: "await is only allowed inside async functions",
	ErrP006: "%s",
}

// DiagnosticError is a compile-time diagnostic with a stable code and a
// source position.
type DiagnosticError struct {
	Code    ErrorCode
	File    string
	Line    int
	Column  int
	Message string
}

func (d *DiagnosticError) Error() string {
	if d.File != "" {
		return fmt.Sprintf("%s:%d:%d: [%s] %s", d.File, d.Line, d.Column, d.Code, d.Message)
	}
	return fmt.Sprintf("%d:%d: [%s] %s", d.Line, d.Column, d.Code, d.Message)
}

// NewError builds a diagnostic for the given code at the token's position.
// Args fill the code's message template; unknown codes use args[0] verbatim.
func NewError(code ErrorCode, tok token.Token, args ...interface{}) *DiagnosticError {
	format, ok := messages[code]
	var msg string
	if !ok {
		msg = fmt.Sprint(args...)
	} else {
		msg = fmt.Sprintf(format, args...)
	}
	return &DiagnosticError{
		Code:    code,
		Line:    tok.Line,
		Column:  tok.Column,
		Message: msg,
	}
}
