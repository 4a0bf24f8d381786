package interp

import (
	"math"

	"github.com/driftlang/drift/internal/ast"
)

func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	return e.Throw("identifier not found: %s", node.Value)
}

func (e *Evaluator) evalThisExpression(node *ast.ThisExpression, env *Environment) Object {
	if val, ok := env.Get("this"); ok {
		return val
	}
	return &Undefined{}
}

func (e *Evaluator) evalListLiteral(node *ast.ListLiteral, env *Environment) Object {
	elements := make([]Object, 0, len(node.Elements))
	for _, elem := range node.Elements {
		val := e.Eval(elem, env)
		if isException(val) {
			return val
		}
		elements = append(elements, val)
	}
	return &List{Elements: elements}
}

func (e *Evaluator) evalRecordLiteral(node *ast.RecordLiteral, env *Environment) Object {
	fields := make(map[string]Object, len(node.Fields))
	for _, field := range node.Fields {
		val := e.Eval(field.Value, env)
		if isException(val) {
			return val
		}
		fields[field.Key] = val
	}
	return &Record{Fields: fields}
}

func (e *Evaluator) evalFunctionLiteral(node *ast.FunctionLiteral, env *Environment) Object {
	return e.newFunction(node, env)
}

func (e *Evaluator) evalPrefixExpression(node *ast.PrefixExpression, env *Environment) Object {
	right := e.Eval(node.Right, env)
	if isException(right) {
		return right
	}

	switch node.Operator {
	case "!":
		return nativeBoolToBooleanObject(!Truthy(right))
	case "-":
		num, ok := right.(*Number)
		if !ok {
			return e.Throw("unknown operator: -%s", right.Type())
		}
		return &Number{Value: -num.Value}
	}
	return e.Throw("unknown operator: %s%s", node.Operator, right.Type())
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *Environment) Object {
	if node.IsShortCircuit() {
		return e.evalShortCircuit(node, env)
	}

	left := e.Eval(node.Left, env)
	if isException(left) {
		return left
	}
	right := e.Eval(node.Right, env)
	if isException(right) {
		return right
	}

	return e.evalBinaryOp(node.Operator, left, right)
}

func (e *Evaluator) evalShortCircuit(node *ast.InfixExpression, env *Environment) Object {
	left := e.Eval(node.Left, env)
	if isException(left) {
		return left
	}

	switch node.Operator {
	case "&&":
		if !Truthy(left) {
			return left
		}
	case "||":
		if Truthy(left) {
			return left
		}
	case "??":
		if left.Type() != NULL_OBJ && left.Type() != UNDEFINED_OBJ {
			return left
		}
	}
	return e.Eval(node.Right, env)
}

func (e *Evaluator) evalBinaryOp(op string, left, right Object) Object {
	switch {
	case left.Type() == NUMBER_OBJ && right.Type() == NUMBER_OBJ:
		return e.evalNumberInfix(op, left.(*Number), right.(*Number))
	case op == "+" && (left.Type() == STRING_OBJ || right.Type() == STRING_OBJ):
		return &String{Value: toDisplayString(left) + toDisplayString(right)}
	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		return e.evalStringInfix(op, left.(*String), right.(*String))
	case op == "==":
		return nativeBoolToBooleanObject(objectsEqual(left, right))
	case op == "!=":
		return nativeBoolToBooleanObject(!objectsEqual(left, right))
	}
	return e.Throw("unknown operator: %s %s %s", left.Type(), op, right.Type())
}

func (e *Evaluator) evalNumberInfix(op string, left, right *Number) Object {
	switch op {
	case "+":
		return &Number{Value: left.Value + right.Value}
	case "-":
		return &Number{Value: left.Value - right.Value}
	case "*":
		return &Number{Value: left.Value * right.Value}
	case "/":
		return &Number{Value: left.Value / right.Value}
	case "%":
		return &Number{Value: math.Mod(left.Value, right.Value)}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	case "==":
		return nativeBoolToBooleanObject(left.Value == right.Value)
	case "!=":
		return nativeBoolToBooleanObject(left.Value != right.Value)
	}
	return e.Throw("unknown operator: NUMBER %s NUMBER", op)
}

func (e *Evaluator) evalStringInfix(op string, left, right *String) Object {
	switch op {
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	case "==":
		return nativeBoolToBooleanObject(left.Value == right.Value)
	case "!=":
		return nativeBoolToBooleanObject(left.Value != right.Value)
	}
	return e.Throw("unknown operator: STRING %s STRING", op)
}

// objectsEqual is strict equality: different types never compare equal.
func objectsEqual(left, right Object) bool {
	if left.Type() != right.Type() {
		return false
	}
	switch l := left.(type) {
	case *Number:
		return l.Value == right.(*Number).Value
	case *String:
		return l.Value == right.(*String).Value
	case *Boolean:
		return l.Value == right.(*Boolean).Value
	case *Null, *Undefined:
		return true
	default:
		// Reference types compare by identity.
		return left == right
	}
}

func (e *Evaluator) evalConditionalExpression(node *ast.ConditionalExpression, env *Environment) Object {
	cond := e.Eval(node.Cond, env)
	if isException(cond) {
		return cond
	}
	if Truthy(cond) {
		return e.Eval(node.Then, env)
	}
	return e.Eval(node.Else, env)
}

func (e *Evaluator) evalAssignExpression(node *ast.AssignExpression, env *Environment) Object {
	var value Object
	if node.Operator == "=" {
		value = e.Eval(node.Value, env)
		if isException(value) {
			return value
		}
	} else {
		// The target's old value is read before the right side runs.
		current := e.Eval(node.Left, env)
		if isException(current) {
			return current
		}
		right := e.Eval(node.Value, env)
		if isException(right) {
			return right
		}
		op := node.Operator[:1] // "+=" -> "+"
		value = e.evalBinaryOp(op, current, right)
		if isException(value) {
			return value
		}
	}

	switch target := node.Left.(type) {
	case *ast.Identifier:
		if !env.Update(target.Value, value) {
			return e.Throw("assignment to undeclared variable: %s", target.Value)
		}
	case *ast.MemberExpression:
		obj := e.Eval(target.Object, env)
		if isException(obj) {
			return obj
		}
		rec, ok := obj.(*Record)
		if !ok {
			return e.Throw("cannot set property %s on %s", target.Property.Value, obj.Type())
		}
		rec.Fields[target.Property.Value] = value
	case *ast.IndexExpression:
		obj := e.Eval(target.Object, env)
		if isException(obj) {
			return obj
		}
		idx := e.Eval(target.Index, env)
		if isException(idx) {
			return idx
		}
		if exc := e.setIndex(obj, idx, value); exc != nil {
			return exc
		}
	default:
		return e.Throw("invalid assignment target")
	}

	return value
}

func (e *Evaluator) setIndex(obj, idx, value Object) Object {
	switch obj := obj.(type) {
	case *List:
		num, ok := idx.(*Number)
		if !ok {
			return e.Throw("list index must be a number, got %s", idx.Type())
		}
		i := int(num.Value)
		if i < 0 || i >= len(obj.Elements) {
			return e.Throw("list index out of range: %d", i)
		}
		obj.Elements[i] = value
	case *Record:
		key, ok := idx.(*String)
		if !ok {
			return e.Throw("record key must be a string, got %s", idx.Type())
		}
		obj.Fields[key.Value] = value
	default:
		return e.Throw("cannot index %s", obj.Type())
	}
	return nil
}

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	var this Object
	var fn Object

	// o.m(...) binds the receiver; plain calls leave it undefined.
	if member, ok := node.Callee.(*ast.MemberExpression); ok {
		obj := e.Eval(member.Object, env)
		if isException(obj) {
			return obj
		}
		prop := e.getMember(obj, member.Property.Value)
		if isException(prop) {
			return prop
		}
		this = obj
		fn = prop
	} else {
		fn = e.Eval(node.Callee, env)
		if isException(fn) {
			return fn
		}
	}

	args := make([]Object, 0, len(node.Arguments))
	for _, arg := range node.Arguments {
		val := e.Eval(arg, env)
		if isException(val) {
			return val
		}
		args = append(args, val)
	}

	return e.ApplyFunction(fn, this, args)
}

func (e *Evaluator) evalMemberExpression(node *ast.MemberExpression, env *Environment) Object {
	obj := e.Eval(node.Object, env)
	if isException(obj) {
		return obj
	}
	return e.getMember(obj, node.Property.Value)
}

func (e *Evaluator) getMember(obj Object, name string) Object {
	switch obj := obj.(type) {
	case *Record:
		if val, ok := obj.Fields[name]; ok {
			return val
		}
		return &Undefined{}
	case *List:
		if name == "length" {
			return &Number{Value: float64(len(obj.Elements))}
		}
	case *String:
		if name == "length" {
			return &Number{Value: float64(len(obj.Value))}
		}
	}
	return e.Throw("no property %s on %s", name, obj.Type())
}

func (e *Evaluator) evalIndexExpression(node *ast.IndexExpression, env *Environment) Object {
	obj := e.Eval(node.Object, env)
	if isException(obj) {
		return obj
	}
	idx := e.Eval(node.Index, env)
	if isException(idx) {
		return idx
	}

	switch obj := obj.(type) {
	case *List:
		num, ok := idx.(*Number)
		if !ok {
			return e.Throw("list index must be a number, got %s", idx.Type())
		}
		i := int(num.Value)
		if i < 0 || i >= len(obj.Elements) {
			return &Undefined{}
		}
		return obj.Elements[i]
	case *String:
		num, ok := idx.(*Number)
		if !ok {
			return e.Throw("string index must be a number, got %s", idx.Type())
		}
		i := int(num.Value)
		if i < 0 || i >= len(obj.Value) {
			return &Undefined{}
		}
		return &String{Value: string(obj.Value[i])}
	case *Record:
		key, ok := idx.(*String)
		if !ok {
			return e.Throw("record key must be a string, got %s", idx.Type())
		}
		if val, ok := obj.Fields[key.Value]; ok {
			return val
		}
		return &Undefined{}
	}
	return e.Throw("cannot index %s", obj.Type())
}
