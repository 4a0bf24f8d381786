package interp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/driftlang/drift/internal/ast"
)

type ObjectType string

const (
	UNDEFINED_OBJ       = "UNDEFINED"
	NULL_OBJ            = "NULL"
	BOOLEAN_OBJ         = "BOOLEAN"
	NUMBER_OBJ          = "NUMBER"
	STRING_OBJ          = "STRING"
	LIST_OBJ            = "LIST"
	RECORD_OBJ          = "RECORD"
	FUNCTION_OBJ        = "FUNCTION"
	BUILTIN_OBJ         = "BUILTIN"
	RETURN_VALUE_OBJ    = "RETURN_VALUE"
	BREAK_SIGNAL_OBJ    = "BREAK_SIGNAL"
	CONTINUE_SIGNAL_OBJ = "CONTINUE_SIGNAL"
	EXCEPTION_OBJ       = "EXCEPTION"
	PROMISE_OBJ         = "PROMISE" // implemented by the async runtime
)

type Object interface {
	Type() ObjectType
	Inspect() string
}

// Undefined is the value of uninitialized variables and void returns.
type Undefined struct{}

func (u *Undefined) Type() ObjectType { return UNDEFINED_OBJ }
func (u *Undefined) Inspect() string  { return "undefined" }

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

// Number is the single numeric type; all arithmetic is float64.
type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = inspectQuoted(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type Record struct {
	Fields map[string]Object
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + inspectQuoted(r.Fields[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Function is a user-defined function or arrow closure.
type Function struct {
	Name       string
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
	Async      bool
	Arrow      bool
	Line       int
	Column     int
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	name := f.Name
	if name == "" {
		name = "<anonymous>"
	}
	if f.Async {
		return "async function " + name
	}
	return "function " + name
}

type BuiltinFunction func(args ...Object) Object

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin " + b.Name }

// ReturnValue wraps a value travelling up from a return statement.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

type BreakSignal struct{}

func (bs *BreakSignal) Type() ObjectType { return BREAK_SIGNAL_OBJ }
func (bs *BreakSignal) Inspect() string  { return "break" }

type ContinueSignal struct{}

func (cs *ContinueSignal) Type() ObjectType { return CONTINUE_SIGNAL_OBJ }
func (cs *ContinueSignal) Inspect() string  { return "continue" }

// Exception wraps a thrown value travelling up to the nearest catch.
// Both user `throw` and runtime faults use this representation.
type Exception struct {
	Value Object
}

func (e *Exception) Type() ObjectType { return EXCEPTION_OBJ }
func (e *Exception) Inspect() string  { return "exception: " + e.Value.Inspect() }

func inspectQuoted(obj Object) string {
	if s, ok := obj.(*String); ok {
		return fmt.Sprintf("%q", s.Value)
	}
	return obj.Inspect()
}
