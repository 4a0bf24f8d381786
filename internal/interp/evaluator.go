package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/config"
)

// AsyncCallHandler is installed by the async runtime. Calling an async
// function never runs its body directly: the handler allocates a
// resumable frame, schedules the first resume step and returns the
// invocation's promise.
type AsyncCallHandler func(fn *Function, this Object, args []Object) Object

type Evaluator struct {
	Out io.Writer

	// CurrentFile being evaluated, for error messages.
	CurrentFile string

	// MaxDepth bounds synchronous call nesting.
	MaxDepth int

	// CallAsync handles invocations of async functions (see AsyncCallHandler).
	// When nil, calling an async function is a runtime fault.
	CallAsync AsyncCallHandler

	evalDepth int
}

func New() *Evaluator {
	return &Evaluator{
		Out:      os.Stdout,
		MaxDepth: config.DefaultMaxCallDepth,
	}
}

func (e *Evaluator) Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	case *ast.Program:
		return e.evalProgram(node, env)
	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, env)
	case *ast.BlockStatement:
		return e.evalBlockStatement(node, env)
	case *ast.LetStatement:
		return e.evalLetStatement(node, env)
	case *ast.FunctionStatement:
		return e.evalFunctionStatement(node, env)
	case *ast.IfStatement:
		return e.evalIfStatement(node, env)
	case *ast.WhileStatement:
		return e.evalWhileStatement(node, env)
	case *ast.DoWhileStatement:
		return e.evalDoWhileStatement(node, env)
	case *ast.ForStatement:
		return e.evalForStatement(node, env)
	case *ast.ForOfStatement:
		return e.evalForOfStatement(node, env)
	case *ast.TryStatement:
		return e.evalTryStatement(node, env)
	case *ast.ThrowStatement:
		return e.evalThrowStatement(node, env)
	case *ast.ReturnStatement:
		return e.evalReturnStatement(node, env)
	case *ast.BreakStatement:
		return &BreakSignal{}
	case *ast.ContinueStatement:
		return &ContinueSignal{}

	case *ast.Identifier:
		return e.evalIdentifier(node, env)
	case *ast.NumberLiteral:
		return &Number{Value: node.Value}
	case *ast.StringLiteral:
		return &String{Value: node.Value}
	case *ast.BooleanLiteral:
		return &Boolean{Value: node.Value}
	case *ast.NullLiteral:
		return &Null{}
	case *ast.UndefinedLiteral:
		return &Undefined{}
	case *ast.ThisExpression:
		return e.evalThisExpression(node, env)
	case *ast.ListLiteral:
		return e.evalListLiteral(node, env)
	case *ast.RecordLiteral:
		return e.evalRecordLiteral(node, env)
	case *ast.PrefixExpression:
		return e.evalPrefixExpression(node, env)
	case *ast.InfixExpression:
		return e.evalInfixExpression(node, env)
	case *ast.ConditionalExpression:
		return e.evalConditionalExpression(node, env)
	case *ast.AssignExpression:
		return e.evalAssignExpression(node, env)
	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	case *ast.MemberExpression:
		return e.evalMemberExpression(node, env)
	case *ast.IndexExpression:
		return e.evalIndexExpression(node, env)
	case *ast.FunctionLiteral:
		return e.evalFunctionLiteral(node, env)
	case *ast.AwaitExpression:
		// The resume driver intercepts every statement containing an
		// await; reaching one here means the caller bypassed lowering.
		return e.Throw("await evaluated outside an async resume step")
	}

	return e.Throw("unhandled AST node %T", node)
}

func (e *Evaluator) evalProgram(program *ast.Program, env *Environment) Object {
	var result Object = &Undefined{}

	// Predeclare top-level functions to support mutual recursion.
	for _, stmt := range program.Statements {
		if fs, ok := stmt.(*ast.FunctionStatement); ok && fs != nil {
			env.Set(fs.Name.Value, e.newFunction(fs.Literal(), env))
		}
	}

	for _, stmt := range program.Statements {
		result = e.Eval(stmt, env)
		if result != nil {
			switch result.Type() {
			case EXCEPTION_OBJ:
				return result
			case RETURN_VALUE_OBJ:
				return result.(*ReturnValue).Value
			case BREAK_SIGNAL_OBJ, CONTINUE_SIGNAL_OBJ:
				return e.Throw("%s outside of a loop", result.Inspect())
			}
		}
	}

	if result == nil {
		return &Undefined{}
	}
	return result
}

// ApplyFunction invokes a callable with an explicit receiver. Async
// functions are routed through CallAsync.
func (e *Evaluator) ApplyFunction(fn Object, this Object, args []Object) Object {
	switch fn := fn.(type) {
	case *Builtin:
		return fn.Fn(args...)
	case *Function:
		if fn.Async {
			if e.CallAsync == nil {
				return e.Throw("async function %s called without an async runtime", fn.Inspect())
			}
			return e.CallAsync(fn, this, args)
		}
		return e.applySyncFunction(fn, this, args)
	default:
		return e.Throw("not a function: %s", fn.Type())
	}
}

func (e *Evaluator) applySyncFunction(fn *Function, this Object, args []Object) Object {
	e.evalDepth++
	defer func() { e.evalDepth-- }()
	if e.evalDepth > e.MaxDepth {
		return e.Throw("maximum call depth exceeded")
	}

	env := BindCallEnvironment(fn, this, args)
	result := e.Eval(fn.Body, env)
	if result == nil {
		return &Undefined{}
	}
	switch result.Type() {
	case RETURN_VALUE_OBJ:
		return result.(*ReturnValue).Value
	case EXCEPTION_OBJ:
		return result
	case BREAK_SIGNAL_OBJ, CONTINUE_SIGNAL_OBJ:
		return e.Throw("%s outside of a loop", result.Inspect())
	}
	return &Undefined{}
}

// BindCallEnvironment builds the callee scope: parameters bound to
// arguments, missing arguments undefined, `this` bound unless the callee
// is an arrow (arrows see the enclosing receiver through their closure).
func BindCallEnvironment(fn *Function, this Object, args []Object) *Environment {
	env := NewEnclosedEnvironment(fn.Env)
	for i, param := range fn.Parameters {
		if i < len(args) {
			env.Set(param.Value, args[i])
		} else {
			env.Set(param.Value, &Undefined{})
		}
	}
	if !fn.Arrow {
		if this == nil {
			this = &Undefined{}
		}
		env.Set("this", this)
	}
	return env
}

func (e *Evaluator) newFunction(lit *ast.FunctionLiteral, env *Environment) *Function {
	return &Function{
		Name:       lit.Name,
		Parameters: lit.Parameters,
		Body:       lit.Body,
		Env:        env,
		Async:      lit.Async,
		Arrow:      lit.Arrow,
		Line:       lit.Token.Line,
		Column:     lit.Token.Column,
	}
}

// Throw builds a runtime fault as a catchable exception with a string value.
func (e *Evaluator) Throw(format string, args ...interface{}) *Exception {
	return &Exception{Value: &String{Value: fmt.Sprintf(format, args...)}}
}

func isException(obj Object) bool {
	return obj != nil && obj.Type() == EXCEPTION_OBJ
}

// IsException reports whether obj is a propagating exception.
func IsException(obj Object) bool { return isException(obj) }

// isControl reports whether obj aborts straight-line statement execution.
func isControl(obj Object) bool {
	if obj == nil {
		return false
	}
	switch obj.Type() {
	case RETURN_VALUE_OBJ, BREAK_SIGNAL_OBJ, CONTINUE_SIGNAL_OBJ, EXCEPTION_OBJ:
		return true
	}
	return false
}

// Truthy implements the language's truthiness: false, null, undefined,
// 0 and "" are falsy, everything else truthy.
func Truthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Boolean:
		return obj.Value
	case *Null, *Undefined:
		return false
	case *Number:
		return obj.Value != 0
	case *String:
		return obj.Value != ""
	default:
		return true
	}
}

func nativeBoolToBooleanObject(v bool) *Boolean {
	return &Boolean{Value: v}
}
