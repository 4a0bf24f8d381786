package lower

import (
	"strconv"

	"github.com/driftlang/drift/internal/analysis"
	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/pipeline"
	"github.com/driftlang/drift/internal/token"
)

// The normalization pass rewrites every async function body so that each
// await appears in exactly one of three shapes:
//
//	let x = await e          (e await-free)
//	x = await e              (whole statement, x an identifier)
//	await e                  (whole expression statement)
//
// Values computed before a suspension point are spilled into `@tN` temps
// (the @ prefix cannot be lexed, so temps never collide with user names),
// short-circuit operators and conditionals with awaits on a branch are
// decomposed into ifs that preserve branch semantics, loops with awaits
// in their condition or update legs become while(true) loops, and for-of
// over a suspending body becomes an indexed while. The resume driver only
// ever sees the normalized shapes.

// LowerProcessor is the pipeline stage that normalizes async bodies.
// It runs after parsing and mutates the AST in place.
type LowerProcessor struct{}

func (lp *LowerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.HasErrors() || ctx.AstRoot == nil {
		return ctx
	}
	if prog, ok := ctx.AstRoot.(*ast.Program); ok {
		Program(prog)
	}
	return ctx
}

// Program normalizes every async function body in the program,
// innermost functions first.
func Program(prog *ast.Program) {
	for _, s := range prog.Statements {
		lowerNestedStmt(s)
	}
}

// Function normalizes a single async function body in place.
func Function(body *ast.BlockStatement) {
	r := &rewriter{}
	lowered := r.block(body)
	body.Statements = lowered.Statements
}

// lowerNestedStmt descends through non-async code looking for function
// bodies to normalize.
func lowerNestedStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.LetStatement:
		lowerNestedExpr(n.Value)
	case *ast.ExpressionStatement:
		lowerNestedExpr(n.Expression)
	case *ast.BlockStatement:
		for _, st := range n.Statements {
			lowerNestedStmt(st)
		}
	case *ast.IfStatement:
		lowerNestedExpr(n.Cond)
		lowerNestedStmt(n.Consequence)
		if n.Alternative != nil {
			lowerNestedStmt(n.Alternative)
		}
	case *ast.WhileStatement:
		lowerNestedExpr(n.Cond)
		lowerNestedStmt(n.Body)
	case *ast.DoWhileStatement:
		lowerNestedStmt(n.Body)
		lowerNestedExpr(n.Cond)
	case *ast.ForStatement:
		if n.Init != nil {
			lowerNestedStmt(n.Init)
		}
		lowerNestedExpr(n.Cond)
		lowerNestedExpr(n.Update)
		lowerNestedStmt(n.Body)
	case *ast.ForOfStatement:
		lowerNestedExpr(n.Iterable)
		lowerNestedStmt(n.Body)
	case *ast.ReturnStatement:
		lowerNestedExpr(n.Value)
	case *ast.ThrowStatement:
		lowerNestedExpr(n.Value)
	case *ast.TryStatement:
		lowerNestedStmt(n.Body)
		if n.Catch != nil {
			lowerNestedStmt(n.Catch)
		}
		if n.Finally != nil {
			lowerNestedStmt(n.Finally)
		}
	case *ast.FunctionStatement:
		lowerNestedStmt(n.Body)
		if n.Async {
			Function(n.Body)
		}
	}
}

func lowerNestedExpr(e ast.Expression) {
	switch n := e.(type) {
	case nil:
	case *ast.FunctionLiteral:
		lowerNestedStmt(n.Body)
		if n.Async {
			Function(n.Body)
		}
	case *ast.AwaitExpression:
		lowerNestedExpr(n.Value)
	case *ast.PrefixExpression:
		lowerNestedExpr(n.Right)
	case *ast.InfixExpression:
		lowerNestedExpr(n.Left)
		lowerNestedExpr(n.Right)
	case *ast.ConditionalExpression:
		lowerNestedExpr(n.Cond)
		lowerNestedExpr(n.Then)
		lowerNestedExpr(n.Else)
	case *ast.AssignExpression:
		lowerNestedExpr(n.Left)
		lowerNestedExpr(n.Value)
	case *ast.CallExpression:
		lowerNestedExpr(n.Callee)
		for _, a := range n.Arguments {
			lowerNestedExpr(a)
		}
	case *ast.MemberExpression:
		lowerNestedExpr(n.Object)
	case *ast.IndexExpression:
		lowerNestedExpr(n.Object)
		lowerNestedExpr(n.Index)
	case *ast.ListLiteral:
		for _, el := range n.Elements {
			lowerNestedExpr(el)
		}
	case *ast.RecordLiteral:
		for _, f := range n.Fields {
			lowerNestedExpr(f.Value)
		}
	}
}

// rewriter normalizes one async function body. Temp numbering is
// per-function so every temp maps to its own frame slot.
type rewriter struct {
	temps int
}

func (r *rewriter) newTemp(at token.Token) *ast.Identifier {
	name := tempName(r.temps)
	r.temps++
	return identAt(name, at)
}

func (r *rewriter) block(b *ast.BlockStatement) *ast.BlockStatement {
	out := &ast.BlockStatement{Token: b.Token}
	for _, s := range b.Statements {
		out.Statements = append(out.Statements, r.stmt(s)...)
	}
	return out
}

func (r *rewriter) stmt(s ast.Statement) []ast.Statement {
	switch n := s.(type) {
	case *ast.LetStatement:
		if n.Value == nil || !analysis.ContainsAwait(n.Value) {
			lowerNestedStmt(n)
			return []ast.Statement{n}
		}
		// `let x = await e` is already canonical once e is await-free.
		if aw, ok := n.Value.(*ast.AwaitExpression); ok {
			pre, op := r.expr(aw.Value)
			return append(pre, &ast.LetStatement{
				Token: n.Token,
				Name:  n.Name,
				Const: n.Const,
				Value: &ast.AwaitExpression{Token: aw.Token, Value: op},
			})
		}
		pre, out := r.expr(n.Value)
		return append(pre, &ast.LetStatement{Token: n.Token, Name: n.Name, Const: n.Const, Value: out})

	case *ast.ExpressionStatement:
		return r.exprStmt(n)

	case *ast.BlockStatement:
		return []ast.Statement{r.block(n)}

	case *ast.IfStatement:
		var pre []ast.Statement
		cond := n.Cond
		if analysis.ContainsAwait(cond) {
			pre, cond = r.expr(cond)
		} else {
			lowerNestedExpr(cond)
		}
		out := &ast.IfStatement{Token: n.Token, Cond: cond, Consequence: r.block(n.Consequence)}
		if n.Alternative != nil {
			out.Alternative = r.wrapStmts(n.Alternative.GetToken(), r.stmt(n.Alternative))
		}
		return append(pre, out)

	case *ast.WhileStatement:
		if !analysis.ContainsAwait(n.Cond) {
			lowerNestedExpr(n.Cond)
			return []ast.Statement{&ast.WhileStatement{Token: n.Token, Cond: n.Cond, Body: r.block(n.Body)}}
		}
		// The condition suspends; re-check it at the top of every turn.
		condPre, condOut := r.expr(n.Cond)
		body := &ast.BlockStatement{Token: n.Body.Token}
		body.Statements = append(body.Statements, condPre...)
		body.Statements = append(body.Statements, breakUnless(condOut))
		body.Statements = append(body.Statements, r.block(n.Body).Statements...)
		return []ast.Statement{&ast.WhileStatement{Token: n.Token, Cond: trueLit(n.Token), Body: body}}

	case *ast.DoWhileStatement:
		if !analysis.ContainsAwait(n.Cond) {
			lowerNestedExpr(n.Cond)
			return []ast.Statement{&ast.DoWhileStatement{Token: n.Token, Body: r.block(n.Body), Cond: n.Cond}}
		}
		condPre, condOut := r.expr(n.Cond)
		check := append(append([]ast.Statement{}, condPre...), breakUnless(condOut))
		// continue must still reach the condition check.
		inner := rewriteContinues(r.block(n.Body), check)
		body := &ast.BlockStatement{Token: n.Body.Token}
		body.Statements = append(body.Statements, inner.Statements...)
		body.Statements = append(body.Statements, check...)
		return []ast.Statement{&ast.WhileStatement{Token: n.Token, Cond: trueLit(n.Token), Body: body}}

	case *ast.ForStatement:
		return r.forStmt(n)

	case *ast.ForOfStatement:
		return r.forOfStmt(n)

	case *ast.ReturnStatement:
		if n.Value == nil || !analysis.ContainsAwait(n.Value) {
			lowerNestedExpr(n.Value)
			return []ast.Statement{n}
		}
		pre, out := r.expr(n.Value)
		return append(pre, &ast.ReturnStatement{Token: n.Token, Value: out})

	case *ast.ThrowStatement:
		if !analysis.ContainsAwait(n.Value) {
			lowerNestedExpr(n.Value)
			return []ast.Statement{n}
		}
		pre, out := r.expr(n.Value)
		return append(pre, &ast.ThrowStatement{Token: n.Token, Value: out})

	case *ast.TryStatement:
		out := &ast.TryStatement{
			Token:      n.Token,
			Body:       r.block(n.Body),
			CatchParam: n.CatchParam,
		}
		if n.Catch != nil {
			out.Catch = r.block(n.Catch)
		}
		if n.Finally != nil {
			out.Finally = r.block(n.Finally)
		}
		return []ast.Statement{out}

	case *ast.FunctionStatement:
		lowerNestedStmt(n)
		return []ast.Statement{n}
	}
	return []ast.Statement{s}
}

// exprStmt keeps the canonical statement-level await shapes when the
// source already matches them, so `await p` and `x = await p` do not
// grow a pointless temp.
func (r *rewriter) exprStmt(n *ast.ExpressionStatement) []ast.Statement {
	if !analysis.ContainsAwait(n.Expression) {
		lowerNestedExpr(n.Expression)
		return []ast.Statement{n}
	}

	if aw, ok := n.Expression.(*ast.AwaitExpression); ok {
		pre, op := r.expr(aw.Value)
		return append(pre, &ast.ExpressionStatement{
			Token:      n.Token,
			Expression: &ast.AwaitExpression{Token: aw.Token, Value: op},
		})
	}

	if asg, ok := n.Expression.(*ast.AssignExpression); ok {
		if _, isIdent := asg.Left.(*ast.Identifier); isIdent && asg.Operator == "=" {
			if aw, ok := asg.Value.(*ast.AwaitExpression); ok {
				pre, op := r.expr(aw.Value)
				return append(pre, &ast.ExpressionStatement{
					Token: n.Token,
					Expression: &ast.AssignExpression{
						Token:    asg.Token,
						Left:     asg.Left,
						Operator: "=",
						Value:    &ast.AwaitExpression{Token: aw.Token, Value: op},
					},
				})
			}
		}
	}

	pre, out := r.expr(n.Expression)
	return append(pre, &ast.ExpressionStatement{Token: n.Token, Expression: out})
}

func (r *rewriter) forStmt(n *ast.ForStatement) []ast.Statement {
	legAwaits := (n.Init != nil && analysis.ContainsAwait(n.Init)) ||
		(n.Cond != nil && analysis.ContainsAwait(n.Cond)) ||
		(n.Update != nil && analysis.ContainsAwait(n.Update))

	if !legAwaits {
		if n.Init != nil {
			lowerNestedStmt(n.Init)
		}
		lowerNestedExpr(n.Cond)
		lowerNestedExpr(n.Update)
		return []ast.Statement{&ast.ForStatement{
			Token: n.Token, Init: n.Init, Cond: n.Cond, Update: n.Update, Body: r.block(n.Body),
		}}
	}

	// A leg suspends: unroll into init-block + while(true). The wrapping
	// block keeps the init variable scoped to the loop.
	wrapper := &ast.BlockStatement{Token: n.Token}
	if n.Init != nil {
		wrapper.Statements = append(wrapper.Statements, r.stmt(n.Init)...)
	}

	body := &ast.BlockStatement{Token: n.Body.Token}
	if n.Cond != nil {
		condPre, condOut := r.expr(n.Cond)
		body.Statements = append(body.Statements, condPre...)
		body.Statements = append(body.Statements, breakUnless(condOut))
	}

	var update []ast.Statement
	if n.Update != nil {
		updPre, updOut := r.expr(n.Update)
		update = append(updPre, &ast.ExpressionStatement{Token: n.Token, Expression: updOut})
	}

	inner := r.block(n.Body)
	if len(update) > 0 {
		// continue must still run the update leg.
		inner = rewriteContinues(inner, update)
	}
	body.Statements = append(body.Statements, inner.Statements...)
	body.Statements = append(body.Statements, update...)

	wrapper.Statements = append(wrapper.Statements,
		&ast.WhileStatement{Token: n.Token, Cond: trueLit(n.Token), Body: body})
	return []ast.Statement{wrapper}
}

func (r *rewriter) forOfStmt(n *ast.ForOfStatement) []ast.Statement {
	if !analysis.ContainsAwait(n.Iterable) && !analysis.ContainsAwait(n.Body) {
		lowerNestedExpr(n.Iterable)
		return []ast.Statement{&ast.ForOfStatement{
			Token: n.Token, Name: n.Name, Const: n.Const, Iterable: n.Iterable, Body: r.block(n.Body),
		}}
	}

	// The body (or iterable) suspends, so the iteration index must live
	// in a variable the frame can hoist. Desugar to an indexed while:
	//
	//	let @it = <iterable>
	//	let @i = 0
	//	while (@i < len(@it)) {
	//	    let x = @it[@i]
	//	    @i = @i + 1
	//	    <body>
	//	}
	//
	// The index advances before the body so continue needs no rewrite.
	pre, iterOut := r.expr(n.Iterable)

	it := r.newTemp(n.Token)
	idx := r.newTemp(n.Token)

	wrapper := &ast.BlockStatement{Token: n.Token}
	wrapper.Statements = append(wrapper.Statements, pre...)
	wrapper.Statements = append(wrapper.Statements,
		&ast.LetStatement{Token: n.Token, Name: it, Value: iterOut},
		&ast.LetStatement{Token: n.Token, Name: idx, Value: &ast.NumberLiteral{Token: n.Token, Value: 0}},
	)

	cond := &ast.InfixExpression{
		Token:    n.Token,
		Left:     identAt(idx.Value, n.Token),
		Operator: "<",
		Right: &ast.CallExpression{
			Token:     n.Token,
			Callee:    identAt("len", n.Token),
			Arguments: []ast.Expression{identAt(it.Value, n.Token)},
		},
	}

	body := &ast.BlockStatement{Token: n.Body.Token}
	body.Statements = append(body.Statements,
		&ast.LetStatement{
			Token: n.Token,
			Name:  n.Name,
			Const: n.Const,
			Value: &ast.IndexExpression{
				Token:  n.Token,
				Object: identAt(it.Value, n.Token),
				Index:  identAt(idx.Value, n.Token),
			},
		},
		&ast.ExpressionStatement{Token: n.Token, Expression: &ast.AssignExpression{
			Token:    n.Token,
			Left:     identAt(idx.Value, n.Token),
			Operator: "=",
			Value: &ast.InfixExpression{
				Token:    n.Token,
				Left:     identAt(idx.Value, n.Token),
				Operator: "+",
				Right:    &ast.NumberLiteral{Token: n.Token, Value: 1},
			},
		}},
	)
	body.Statements = append(body.Statements, r.block(n.Body).Statements...)

	wrapper.Statements = append(wrapper.Statements,
		&ast.WhileStatement{Token: n.Token, Cond: cond, Body: body})
	return []ast.Statement{wrapper}
}

// wrapStmts turns a lowered statement list back into a single statement.
func (r *rewriter) wrapStmts(at token.Token, stmts []ast.Statement) ast.Statement {
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &ast.BlockStatement{Token: at, Statements: stmts}
}

// rewriteContinues prefixes every continue belonging to this loop level
// with extra statements (a copy per site). Nested loops and functions
// own their continues and are left alone.
func rewriteContinues(b *ast.BlockStatement, extra []ast.Statement) *ast.BlockStatement {
	out := &ast.BlockStatement{Token: b.Token}
	for _, s := range b.Statements {
		out.Statements = append(out.Statements, rewriteContinuesStmt(s, extra)...)
	}
	return out
}

func rewriteContinuesStmt(s ast.Statement, extra []ast.Statement) []ast.Statement {
	switch n := s.(type) {
	case *ast.ContinueStatement:
		return append(cloneStmts(extra), n)
	case *ast.BlockStatement:
		return []ast.Statement{rewriteContinues(n, extra)}
	case *ast.IfStatement:
		out := &ast.IfStatement{Token: n.Token, Cond: n.Cond, Consequence: rewriteContinues(n.Consequence, extra)}
		if n.Alternative != nil {
			alt := rewriteContinuesStmt(n.Alternative, extra)
			if len(alt) == 1 {
				out.Alternative = alt[0]
			} else {
				out.Alternative = &ast.BlockStatement{Token: n.Alternative.GetToken(), Statements: alt}
			}
		}
		return []ast.Statement{out}
	case *ast.TryStatement:
		out := &ast.TryStatement{
			Token:      n.Token,
			Body:       rewriteContinues(n.Body, extra),
			CatchParam: n.CatchParam,
		}
		if n.Catch != nil {
			out.Catch = rewriteContinues(n.Catch, extra)
		}
		if n.Finally != nil {
			out.Finally = rewriteContinues(n.Finally, extra)
		}
		return []ast.Statement{out}
	}
	// Loops start a new continue scope; everything else has no continues.
	return []ast.Statement{s}
}

func tempName(n int) string {
	// '@' is unlexable, so temps cannot collide with source identifiers.
	return "@t" + strconv.Itoa(n)
}

func identAt(name string, at token.Token) *ast.Identifier {
	return &ast.Identifier{
		Token: token.Token{Type: token.IDENT, Lexeme: name, Line: at.Line, Column: at.Column},
		Value: name,
	}
}

func trueLit(at token.Token) ast.Expression {
	return &ast.BooleanLiteral{
		Token: token.Token{Type: token.TRUE, Lexeme: "true", Line: at.Line, Column: at.Column},
		Value: true,
	}
}

// breakUnless builds `if (!(cond)) { break }`.
func breakUnless(cond ast.Expression) ast.Statement {
	at := cond.GetToken()
	return &ast.IfStatement{
		Token: at,
		Cond:  &ast.PrefixExpression{Token: at, Operator: "!", Right: cond},
		Consequence: &ast.BlockStatement{
			Token:      at,
			Statements: []ast.Statement{&ast.BreakStatement{Token: at}},
		},
	}
}
