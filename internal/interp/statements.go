package interp

import (
	"github.com/driftlang/drift/internal/ast"
)

func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement, env *Environment) Object {
	var result Object
	blockEnv := NewEnclosedEnvironment(env)

	// Predeclare local functions to support mutual recursion within the block.
	for _, stmt := range block.Statements {
		if fs, ok := stmt.(*ast.FunctionStatement); ok && fs != nil {
			blockEnv.Set(fs.Name.Value, e.newFunction(fs.Literal(), blockEnv))
		}
	}

	for _, stmt := range block.Statements {
		result = e.Eval(stmt, blockEnv)
		if isControl(result) {
			return result
		}
	}

	if result == nil {
		return &Undefined{}
	}
	return result
}

func (e *Evaluator) evalLetStatement(node *ast.LetStatement, env *Environment) Object {
	var val Object = &Undefined{}
	if node.Value != nil {
		val = e.Eval(node.Value, env)
		if isException(val) {
			return val
		}
	}
	env.Set(node.Name.Value, val)
	return &Undefined{}
}

func (e *Evaluator) evalFunctionStatement(node *ast.FunctionStatement, env *Environment) Object {
	// Already predeclared by the enclosing block; redefine to keep
	// statement-order semantics for reassignment.
	if !env.Has(node.Name.Value) {
		env.Set(node.Name.Value, e.newFunction(node.Literal(), env))
	}
	return &Undefined{}
}

func (e *Evaluator) evalReturnStatement(node *ast.ReturnStatement, env *Environment) Object {
	if node.Value == nil {
		return &ReturnValue{Value: &Undefined{}}
	}
	val := e.Eval(node.Value, env)
	if isException(val) {
		return val
	}
	return &ReturnValue{Value: val}
}

func (e *Evaluator) evalThrowStatement(node *ast.ThrowStatement, env *Environment) Object {
	val := e.Eval(node.Value, env)
	if isException(val) {
		return val
	}
	return &Exception{Value: val}
}

func (e *Evaluator) evalIfStatement(node *ast.IfStatement, env *Environment) Object {
	cond := e.Eval(node.Cond, env)
	if isException(cond) {
		return cond
	}
	if Truthy(cond) {
		return e.Eval(node.Consequence, env)
	}
	if node.Alternative != nil {
		return e.Eval(node.Alternative, env)
	}
	return &Undefined{}
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement, env *Environment) Object {
	for {
		cond := e.Eval(node.Cond, env)
		if isException(cond) {
			return cond
		}
		if !Truthy(cond) {
			return &Undefined{}
		}
		result := e.Eval(node.Body, env)
		if result != nil {
			switch result.Type() {
			case BREAK_SIGNAL_OBJ:
				return &Undefined{}
			case CONTINUE_SIGNAL_OBJ:
				continue
			case RETURN_VALUE_OBJ, EXCEPTION_OBJ:
				return result
			}
		}
	}
}

func (e *Evaluator) evalDoWhileStatement(node *ast.DoWhileStatement, env *Environment) Object {
	for {
		result := e.Eval(node.Body, env)
		if result != nil {
			switch result.Type() {
			case BREAK_SIGNAL_OBJ:
				return &Undefined{}
			case CONTINUE_SIGNAL_OBJ:
			case RETURN_VALUE_OBJ, EXCEPTION_OBJ:
				return result
			}
		}
		cond := e.Eval(node.Cond, env)
		if isException(cond) {
			return cond
		}
		if !Truthy(cond) {
			return &Undefined{}
		}
	}
}

func (e *Evaluator) evalForStatement(node *ast.ForStatement, env *Environment) Object {
	loopEnv := NewEnclosedEnvironment(env)

	if node.Init != nil {
		init := e.Eval(node.Init, loopEnv)
		if isException(init) {
			return init
		}
	}

	for {
		if node.Cond != nil {
			cond := e.Eval(node.Cond, loopEnv)
			if isException(cond) {
				return cond
			}
			if !Truthy(cond) {
				return &Undefined{}
			}
		}

		result := e.Eval(node.Body, loopEnv)
		if result != nil {
			switch result.Type() {
			case BREAK_SIGNAL_OBJ:
				return &Undefined{}
			case RETURN_VALUE_OBJ, EXCEPTION_OBJ:
				return result
			}
		}

		if node.Update != nil {
			update := e.Eval(node.Update, loopEnv)
			if isException(update) {
				return update
			}
		}
	}
}

func (e *Evaluator) evalForOfStatement(node *ast.ForOfStatement, env *Environment) Object {
	iterable := e.Eval(node.Iterable, env)
	if isException(iterable) {
		return iterable
	}

	var elements []Object
	switch it := iterable.(type) {
	case *List:
		elements = it.Elements
	case *String:
		for _, r := range it.Value {
			elements = append(elements, &String{Value: string(r)})
		}
	default:
		return e.Throw("%s is not iterable", iterable.Type())
	}

	loopEnv := NewEnclosedEnvironment(env)
	loopEnv.Set(node.Name.Value, &Undefined{})

	for _, elem := range elements {
		loopEnv.Update(node.Name.Value, elem)
		result := e.Eval(node.Body, loopEnv)
		if result != nil {
			switch result.Type() {
			case BREAK_SIGNAL_OBJ:
				return &Undefined{}
			case RETURN_VALUE_OBJ, EXCEPTION_OBJ:
				return result
			}
		}
	}

	return &Undefined{}
}

// evalTryStatement implements synchronous try/catch/finally. The resume
// driver has its own replay-aware version for async bodies; this one
// covers all non-async execution.
func (e *Evaluator) evalTryStatement(node *ast.TryStatement, env *Environment) Object {
	result := e.Eval(node.Body, env)

	if isException(result) && node.Catch != nil {
		catchEnv := NewEnclosedEnvironment(env)
		if node.CatchParam != nil {
			catchEnv.Set(node.CatchParam.Value, result.(*Exception).Value)
		}
		result = e.evalBlockInEnv(node.Catch, catchEnv)
	}

	if node.Finally != nil {
		finallyResult := e.Eval(node.Finally, env)
		// A control transfer out of the finally overrides the pending one.
		if isControl(finallyResult) {
			return finallyResult
		}
	}

	return result
}

// evalBlockInEnv runs a block's statements directly in env, without
// opening another scope. Used for catch blocks whose parameter is bound
// in a dedicated scope.
func (e *Evaluator) evalBlockInEnv(block *ast.BlockStatement, env *Environment) Object {
	var result Object
	for _, stmt := range block.Statements {
		result = e.Eval(stmt, env)
		if isControl(result) {
			return result
		}
	}
	if result == nil {
		return &Undefined{}
	}
	return result
}
