package lower

import (
	"strings"

	"github.com/driftlang/drift/internal/analysis"
	"github.com/driftlang/drift/internal/ast"
)

// expr lowers one expression, returning statements that must run first
// and an await-free replacement. Operands evaluated before a suspension
// point are spilled into temps so their values survive it; operands
// evaluated after the last await stay inline.
func (r *rewriter) expr(e ast.Expression) ([]ast.Statement, ast.Expression) {
	if e == nil || !analysis.ContainsAwait(e) {
		lowerNestedExpr(e)
		return nil, e
	}

	switch n := e.(type) {
	case *ast.AwaitExpression:
		pre, op := r.expr(n.Value)
		tmp := r.newTemp(n.Token)
		pre = append(pre, &ast.LetStatement{
			Token: n.Token,
			Name:  tmp,
			Value: &ast.AwaitExpression{Token: n.Token, Value: op},
		})
		return pre, identAt(tmp.Value, n.Token)

	case *ast.PrefixExpression:
		pre, right := r.expr(n.Right)
		return pre, &ast.PrefixExpression{Token: n.Token, Operator: n.Operator, Right: right}

	case *ast.InfixExpression:
		if n.IsShortCircuit() && analysis.ContainsAwait(n.Right) {
			return r.shortCircuit(n)
		}
		pre, left := r.expr(n.Left)
		if analysis.ContainsAwait(n.Right) {
			left = r.spill(left, &pre)
		}
		p, right := r.expr(n.Right)
		pre = append(pre, p...)
		return pre, &ast.InfixExpression{Token: n.Token, Left: left, Operator: n.Operator, Right: right}

	case *ast.ConditionalExpression:
		if !analysis.ContainsAwait(n.Then) && !analysis.ContainsAwait(n.Else) {
			pre, cond := r.expr(n.Cond)
			lowerNestedExpr(n.Then)
			lowerNestedExpr(n.Else)
			return pre, &ast.ConditionalExpression{Token: n.Token, Cond: cond, Then: n.Then, Else: n.Else}
		}
		return r.conditional(n)

	case *ast.AssignExpression:
		return r.assign(n)

	case *ast.CallExpression:
		// Method calls keep their receiver binding: the object operand
		// is lowered in place and the callee stays a member access. The
		// property itself is read at call time, after any suspending
		// arguments settle.
		if member, ok := n.Callee.(*ast.MemberExpression); ok {
			ops := append([]ast.Expression{member.Object}, n.Arguments...)
			pre, outs := r.seq(ops)
			callee := &ast.MemberExpression{Token: member.Token, Object: outs[0], Property: member.Property}
			return pre, &ast.CallExpression{Token: n.Token, Callee: callee, Arguments: outs[1:]}
		}
		ops := append([]ast.Expression{n.Callee}, n.Arguments...)
		pre, outs := r.seq(ops)
		return pre, &ast.CallExpression{Token: n.Token, Callee: outs[0], Arguments: outs[1:]}

	case *ast.MemberExpression:
		pre, obj := r.expr(n.Object)
		return pre, &ast.MemberExpression{Token: n.Token, Object: obj, Property: n.Property}

	case *ast.IndexExpression:
		pre, outs := r.seq([]ast.Expression{n.Object, n.Index})
		return pre, &ast.IndexExpression{Token: n.Token, Object: outs[0], Index: outs[1]}

	case *ast.ListLiteral:
		pre, outs := r.seq(n.Elements)
		return pre, &ast.ListLiteral{Token: n.Token, Elements: outs}

	case *ast.RecordLiteral:
		vals := make([]ast.Expression, len(n.Fields))
		for i, f := range n.Fields {
			vals[i] = f.Value
		}
		pre, outs := r.seq(vals)
		fields := make([]ast.RecordField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ast.RecordField{Key: f.Key, Value: outs[i]}
		}
		return pre, &ast.RecordLiteral{Token: n.Token, Fields: fields}
	}

	return nil, e
}

// seq lowers an ordered operand list. Operands before the last
// suspending one are spilled; the rest evaluate after every await and
// stay inline.
func (r *rewriter) seq(ops []ast.Expression) ([]ast.Statement, []ast.Expression) {
	last := -1
	for i, op := range ops {
		if op != nil && analysis.ContainsAwait(op) {
			last = i
		}
	}

	var pre []ast.Statement
	outs := make([]ast.Expression, len(ops))
	for i, op := range ops {
		switch {
		case i < last:
			p, o := r.expr(op)
			pre = append(pre, p...)
			outs[i] = r.spill(o, &pre)
		case i == last:
			p, o := r.expr(op)
			pre = append(pre, p...)
			outs[i] = o
		default:
			lowerNestedExpr(op)
			outs[i] = op
		}
	}
	return pre, outs
}

// shortCircuit decomposes `a && b`, `a || b` and `a ?? b` whose right
// side suspends:
//
//	let @t = a
//	if (<take-right>(@t)) { @t = b }
//
// so b only evaluates on the branch the operator would have taken.
func (r *rewriter) shortCircuit(n *ast.InfixExpression) ([]ast.Statement, ast.Expression) {
	pre, left := r.expr(n.Left)
	tmp := r.newTemp(n.Token)
	pre = append(pre, &ast.LetStatement{Token: n.Token, Name: tmp, Value: left})

	var cond ast.Expression
	probe := func() ast.Expression { return identAt(tmp.Value, n.Token) }
	switch n.Operator {
	case "&&":
		cond = probe()
	case "||":
		cond = &ast.PrefixExpression{Token: n.Token, Operator: "!", Right: probe()}
	case "??":
		cond = &ast.InfixExpression{
			Token:    n.Token,
			Left:     &ast.InfixExpression{Token: n.Token, Left: probe(), Operator: "==", Right: &ast.NullLiteral{Token: n.Token}},
			Operator: "||",
			Right:    &ast.InfixExpression{Token: n.Token, Left: probe(), Operator: "==", Right: &ast.UndefinedLiteral{Token: n.Token}},
		}
	}

	rightPre, rightOut := r.expr(n.Right)
	body := &ast.BlockStatement{Token: n.Token}
	body.Statements = append(body.Statements, rightPre...)
	body.Statements = append(body.Statements, &ast.ExpressionStatement{
		Token: n.Token,
		Expression: &ast.AssignExpression{
			Token: n.Token, Left: probe(), Operator: "=", Value: rightOut,
		},
	})
	pre = append(pre, &ast.IfStatement{Token: n.Token, Cond: cond, Consequence: body})
	return pre, probe()
}

// conditional decomposes `c ? a : b` with a suspending branch into an
// if/else that assigns a temp.
func (r *rewriter) conditional(n *ast.ConditionalExpression) ([]ast.Statement, ast.Expression) {
	pre, cond := r.expr(n.Cond)
	tmp := r.newTemp(n.Token)
	pre = append(pre, &ast.LetStatement{Token: n.Token, Name: tmp})

	branch := func(e ast.Expression) *ast.BlockStatement {
		p, out := r.expr(e)
		b := &ast.BlockStatement{Token: n.Token}
		b.Statements = append(b.Statements, p...)
		b.Statements = append(b.Statements, &ast.ExpressionStatement{
			Token: n.Token,
			Expression: &ast.AssignExpression{
				Token: n.Token, Left: identAt(tmp.Value, n.Token), Operator: "=", Value: out,
			},
		})
		return b
	}

	pre = append(pre, &ast.IfStatement{
		Token:       n.Token,
		Cond:        cond,
		Consequence: branch(n.Then),
		Alternative: branch(n.Else),
	})
	return pre, identAt(tmp.Value, n.Token)
}

// assign lowers an assignment whose right side (or target operands)
// suspend. For compound assignment the old value is captured before the
// suspension so the read happens at the source position.
func (r *rewriter) assign(n *ast.AssignExpression) ([]ast.Statement, ast.Expression) {
	switch left := n.Left.(type) {
	case *ast.Identifier:
		var pre []ast.Statement
		value := n.Value
		if n.Operator != "=" {
			old := r.spill(identAt(left.Value, left.Token), &pre)
			value = &ast.InfixExpression{
				Token:    n.Token,
				Left:     old,
				Operator: strings.TrimSuffix(n.Operator, "="),
				Right:    n.Value,
			}
		}
		p, out := r.expr(value)
		pre = append(pre, p...)
		return pre, &ast.AssignExpression{Token: n.Token, Left: left, Operator: "=", Value: out}

	case *ast.MemberExpression:
		pre, obj := r.expr(left.Object)
		if analysis.ContainsAwait(n.Value) {
			obj = r.spill(obj, &pre)
		}
		target := &ast.MemberExpression{Token: left.Token, Object: obj, Property: left.Property}
		value := n.Value
		if n.Operator != "=" {
			old := r.spill(&ast.MemberExpression{Token: left.Token, Object: obj, Property: left.Property}, &pre)
			value = &ast.InfixExpression{Token: n.Token, Left: old, Operator: strings.TrimSuffix(n.Operator, "="), Right: n.Value}
		}
		p, out := r.expr(value)
		pre = append(pre, p...)
		return pre, &ast.AssignExpression{Token: n.Token, Left: target, Operator: "=", Value: out}

	case *ast.IndexExpression:
		pre, outs := r.seq([]ast.Expression{left.Object, left.Index})
		obj, idx := outs[0], outs[1]
		if analysis.ContainsAwait(n.Value) {
			obj = r.spill(obj, &pre)
			idx = r.spill(idx, &pre)
		}
		target := &ast.IndexExpression{Token: left.Token, Object: obj, Index: idx}
		value := n.Value
		if n.Operator != "=" {
			old := r.spill(&ast.IndexExpression{Token: left.Token, Object: obj, Index: idx}, &pre)
			value = &ast.InfixExpression{Token: n.Token, Left: old, Operator: strings.TrimSuffix(n.Operator, "="), Right: n.Value}
		}
		p, out := r.expr(value)
		pre = append(pre, p...)
		return pre, &ast.AssignExpression{Token: n.Token, Left: target, Operator: "=", Value: out}
	}

	pre, out := r.expr(n.Value)
	return pre, &ast.AssignExpression{Token: n.Token, Left: n.Left, Operator: n.Operator, Value: out}
}

// spill forces e into a temp so its value survives later awaits.
// Literals and temps are immutable across a suspension and stay inline.
func (r *rewriter) spill(e ast.Expression, pre *[]ast.Statement) ast.Expression {
	if isStable(e) {
		return e
	}
	at := e.GetToken()
	tmp := r.newTemp(at)
	*pre = append(*pre, &ast.LetStatement{Token: tmp.Token, Name: tmp, Value: e})
	return identAt(tmp.Value, at)
}

func isStable(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.BooleanLiteral,
		*ast.NullLiteral, *ast.UndefinedLiteral, *ast.ThisExpression:
		return true
	case *ast.Identifier:
		// Temps are single-assignment.
		return strings.HasPrefix(n.Value, "@")
	}
	return false
}
