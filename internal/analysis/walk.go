package analysis

import (
	"github.com/driftlang/drift/internal/ast"
)

// ContainsAwait reports whether node lexically contains an await
// expression, without descending into nested function bodies (their
// awaits suspend the nested function, not this one).
func ContainsAwait(node ast.Node) bool {
	found := false
	walkShallow(node, func(n ast.Node) bool {
		if found {
			return false
		}
		if _, ok := n.(*ast.AwaitExpression); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

// walkShallow visits node and its children in lexical order, skipping
// nested function bodies. visit returning false prunes the subtree.
func walkShallow(node ast.Node, visit func(ast.Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	switch n := node.(type) {
	case *ast.Program:
		for _, s := range n.Statements {
			walkShallow(s, visit)
		}
	case *ast.BlockStatement:
		for _, s := range n.Statements {
			walkShallow(s, visit)
		}
	case *ast.LetStatement:
		if n.Value != nil {
			walkShallow(n.Value, visit)
		}
		walkShallow(n.Name, visit)
	case *ast.ExpressionStatement:
		walkShallow(n.Expression, visit)
	case *ast.IfStatement:
		walkShallow(n.Cond, visit)
		walkShallow(n.Consequence, visit)
		if n.Alternative != nil {
			walkShallow(n.Alternative, visit)
		}
	case *ast.WhileStatement:
		walkShallow(n.Cond, visit)
		walkShallow(n.Body, visit)
	case *ast.DoWhileStatement:
		walkShallow(n.Body, visit)
		walkShallow(n.Cond, visit)
	case *ast.ForStatement:
		if n.Init != nil {
			walkShallow(n.Init, visit)
		}
		if n.Cond != nil {
			walkShallow(n.Cond, visit)
		}
		if n.Update != nil {
			walkShallow(n.Update, visit)
		}
		walkShallow(n.Body, visit)
	case *ast.ForOfStatement:
		walkShallow(n.Iterable, visit)
		walkShallow(n.Name, visit)
		walkShallow(n.Body, visit)
	case *ast.ReturnStatement:
		if n.Value != nil {
			walkShallow(n.Value, visit)
		}
	case *ast.ThrowStatement:
		walkShallow(n.Value, visit)
	case *ast.TryStatement:
		walkShallow(n.Body, visit)
		if n.Catch != nil {
			if n.CatchParam != nil {
				walkShallow(n.CatchParam, visit)
			}
			walkShallow(n.Catch, visit)
		}
		if n.Finally != nil {
			walkShallow(n.Finally, visit)
		}
	case *ast.FunctionStatement:
		// Body skipped.
	case *ast.FunctionLiteral:
		// Body skipped.
	case *ast.AwaitExpression:
		walkShallow(n.Value, visit)
	case *ast.PrefixExpression:
		walkShallow(n.Right, visit)
	case *ast.InfixExpression:
		walkShallow(n.Left, visit)
		walkShallow(n.Right, visit)
	case *ast.ConditionalExpression:
		walkShallow(n.Cond, visit)
		walkShallow(n.Then, visit)
		walkShallow(n.Else, visit)
	case *ast.AssignExpression:
		walkShallow(n.Left, visit)
		walkShallow(n.Value, visit)
	case *ast.CallExpression:
		walkShallow(n.Callee, visit)
		for _, a := range n.Arguments {
			walkShallow(a, visit)
		}
	case *ast.MemberExpression:
		walkShallow(n.Object, visit)
	case *ast.IndexExpression:
		walkShallow(n.Object, visit)
		walkShallow(n.Index, visit)
	case *ast.ListLiteral:
		for _, el := range n.Elements {
			walkShallow(el, visit)
		}
	case *ast.RecordLiteral:
		for _, f := range n.Fields {
			walkShallow(f.Value, visit)
		}
	}
}

// usesThis reports whether node references `this`, treating arrows as
// transparent (they inherit the receiver) and other functions as opaque.
func usesThis(node ast.Node) bool {
	found := false
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if found || n == nil {
			return
		}
		switch t := n.(type) {
		case *ast.ThisExpression:
			found = true
		case *ast.FunctionLiteral:
			if t.Arrow {
				walk(t.Body)
			}
		case *ast.FunctionStatement:
			// Plain functions rebind the receiver.
		default:
			walkShallow(n, func(c ast.Node) bool {
				if c == n {
					return true
				}
				walk(c)
				return false
			})
		}
	}
	walk(node)
	return found
}

// freeNames collects identifier names a function literal references but
// does not declare itself, including through its own nested functions.
// Member property names and record keys are not references.
func freeNames(lit *ast.FunctionLiteral) map[string]bool {
	declared := map[string]bool{}
	referenced := map[string]bool{}
	for _, p := range lit.Parameters {
		declared[p.Value] = true
	}
	if lit.Name != "" {
		declared[lit.Name] = true
	}
	collectNames(lit.Body, declared, referenced)
	free := map[string]bool{}
	for name := range referenced {
		if !declared[name] {
			free[name] = true
		}
	}
	return free
}

// collectNames walks all code reachable from node, nested functions
// included, accumulating declared and referenced identifier names into
// flat sets. The result is conservative: a referenced name that is only
// declared deeper inside still counts as declared, so a shadowed outer
// binding can be missed as a capture only when every reference to it is
// shadowed too. Over-reporting just hoists an extra variable.
func collectNames(node ast.Node, declared, referenced map[string]bool) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case *ast.Identifier:
		referenced[n.Value] = true
		return
	case *ast.LetStatement:
		if n.Value != nil {
			collectNames(n.Value, declared, referenced)
		}
		declared[n.Name.Value] = true
		return
	case *ast.ForOfStatement:
		collectNames(n.Iterable, declared, referenced)
		declared[n.Name.Value] = true
		collectNames(n.Body, declared, referenced)
		return
	case *ast.TryStatement:
		collectNames(n.Body, declared, referenced)
		if n.Catch != nil {
			if n.CatchParam != nil {
				declared[n.CatchParam.Value] = true
			}
			collectNames(n.Catch, declared, referenced)
		}
		if n.Finally != nil {
			collectNames(n.Finally, declared, referenced)
		}
		return
	case *ast.MemberExpression:
		collectNames(n.Object, declared, referenced)
		return
	case *ast.FunctionStatement:
		declared[n.Name.Value] = true
		for _, p := range n.Parameters {
			declared[p.Value] = true
		}
		collectNames(n.Body, declared, referenced)
		return
	case *ast.FunctionLiteral:
		for _, p := range n.Parameters {
			declared[p.Value] = true
		}
		if n.Name != "" {
			declared[n.Name] = true
		}
		collectNames(n.Body, declared, referenced)
		return
	}
	walkShallow(node, func(c ast.Node) bool {
		if c == node {
			return true
		}
		collectNames(c, declared, referenced)
		return false
	})
}
