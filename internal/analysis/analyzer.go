package analysis

import (
	"github.com/driftlang/drift/internal/ast"
)

// Analyze builds the suspension analysis for one async function. It
// expects the body to already be in normalized form (every await is a
// whole initializer, a whole assignment source, or a whole expression
// statement); it still numbers awaits correctly on arbitrary bodies,
// but the resume driver relies on the normalized shapes.
//
// Hoisting rule: at every await point, every declaration currently in
// scope is hoisted. This covers parameters, loop variables of loops
// containing awaits, catch parameters of catch blocks containing
// awaits, and anything declared before an await it must survive.
// Locals captured by nested closures are hoisted as well, whether the
// closure precedes or follows their declaration.
func Analyze(params []*ast.Identifier, body *ast.BlockStatement) *FunctionAnalysis {
	an := &analyzer{
		a: &FunctionAnalysis{
			Params:   params,
			Body:     body,
			states:   map[*ast.AwaitExpression]int{},
			regionOf: map[*ast.TryStatement]*TryRegion{},
			slots:    map[*ast.Identifier]int{},
			ranges:   map[ast.Node]stateRange{},
			captured: map[*ast.Identifier]bool{},
		},
		capturedFree: map[string]bool{},
	}
	for _, p := range params {
		an.declare(p)
	}
	an.block(body)
	return an.a
}

type analyzer struct {
	a           *FunctionAnalysis
	regionStack []*TryRegion
	scope       []*ast.Identifier

	// Names referenced freely by any nested function literal seen so
	// far. A later declaration of such a name is capture-hoisted, since
	// the closure resolves it through the shared block scope.
	capturedFree map[string]bool
}

func (an *analyzer) declare(ident *ast.Identifier) {
	an.scope = append(an.scope, ident)
	if an.capturedFree[ident.Value] {
		an.capture(ident)
	}
}

func (an *analyzer) capture(ident *ast.Identifier) {
	an.hoist(ident)
	an.a.captured[ident] = true
}

func (an *analyzer) hoist(ident *ast.Identifier) {
	if _, ok := an.a.slots[ident]; ok {
		return
	}
	slot := len(an.a.Hoisted)
	an.a.slots[ident] = slot
	an.a.Hoisted = append(an.a.Hoisted, &HoistedVar{
		Name: ident.Value,
		Slot: slot,
		Decl: ident,
	})
}

func (an *analyzer) currentRegion() int {
	if len(an.regionStack) == 0 {
		return -1
	}
	return an.regionStack[len(an.regionStack)-1].ID
}

// ranged wraps a visit, recording which state numbers were assigned
// inside the node. Nodes containing no awaits get no entry.
func (an *analyzer) ranged(node ast.Node, visit func()) {
	lo := len(an.a.Awaits)
	visit()
	hi := len(an.a.Awaits)
	if hi > lo {
		an.a.ranges[node] = stateRange{lo: lo, hi: hi - 1}
	}
}

func (an *analyzer) block(b *ast.BlockStatement) {
	mark := len(an.scope)
	// Function declarations are visible from the top of the block.
	for _, s := range b.Statements {
		if fs, ok := s.(*ast.FunctionStatement); ok {
			an.declare(fs.Name)
		}
	}
	an.ranged(b, func() {
		for _, s := range b.Statements {
			an.stmt(s)
		}
	})
	an.scope = an.scope[:mark]
}

func (an *analyzer) stmt(s ast.Statement) {
	an.ranged(s, func() {
		switch n := s.(type) {
		case *ast.LetStatement:
			if n.Value != nil {
				an.expr(n.Value)
			}
			an.declare(n.Name)
		case *ast.ExpressionStatement:
			an.expr(n.Expression)
		case *ast.BlockStatement:
			an.block(n)
		case *ast.IfStatement:
			an.expr(n.Cond)
			an.block(n.Consequence)
			if n.Alternative != nil {
				an.stmt(n.Alternative)
			}
		case *ast.WhileStatement:
			an.expr(n.Cond)
			an.block(n.Body)
		case *ast.DoWhileStatement:
			an.block(n.Body)
			an.expr(n.Cond)
		case *ast.ForStatement:
			mark := len(an.scope)
			if n.Init != nil {
				an.stmt(n.Init)
			}
			if n.Cond != nil {
				an.expr(n.Cond)
			}
			if n.Update != nil {
				an.expr(n.Update)
			}
			an.block(n.Body)
			an.scope = an.scope[:mark]
		case *ast.ForOfStatement:
			an.expr(n.Iterable)
			mark := len(an.scope)
			an.declare(n.Name)
			an.block(n.Body)
			an.scope = an.scope[:mark]
		case *ast.ReturnStatement:
			if n.Value != nil {
				an.expr(n.Value)
			}
		case *ast.ThrowStatement:
			an.expr(n.Value)
		case *ast.BreakStatement, *ast.ContinueStatement:
		case *ast.TryStatement:
			an.try(n)
		case *ast.FunctionStatement:
			// Name was declared at block entry.
			an.nested(n.Literal())
		}
	})
}

func (an *analyzer) try(ts *ast.TryStatement) {
	region := &TryRegion{
		ID:     len(an.a.Regions),
		Parent: an.currentRegion(),
		Node:   ts,
	}
	an.a.Regions = append(an.a.Regions, region)
	an.a.regionOf[ts] = region
	an.regionStack = append(an.regionStack, region)

	before := len(an.a.Awaits)
	an.block(ts.Body)
	region.AwaitInTry = len(an.a.Awaits) > before

	if ts.Catch != nil {
		mark := len(an.scope)
		if ts.CatchParam != nil {
			an.declare(ts.CatchParam)
		}
		before = len(an.a.Awaits)
		an.block(ts.Catch)
		region.AwaitInCatch = len(an.a.Awaits) > before
		an.scope = an.scope[:mark]
	}
	if ts.Finally != nil {
		before = len(an.a.Awaits)
		an.block(ts.Finally)
		region.AwaitInFinally = len(an.a.Awaits) > before
	}

	an.regionStack = an.regionStack[:len(an.regionStack)-1]
}

func (an *analyzer) expr(e ast.Expression) {
	switch n := e.(type) {
	case *ast.AwaitExpression:
		// Operand awaits (if any survived normalization) happen first
		// at runtime, so they get lower numbers.
		an.expr(n.Value)
		state := len(an.a.Awaits)
		point := &AwaitPoint{State: state, Region: an.currentRegion(), Node: n}
		an.a.Awaits = append(an.a.Awaits, point)
		an.a.states[n] = state
		// Everything in scope must survive the suspension.
		for _, decl := range an.scope {
			an.hoist(decl)
		}
	case *ast.PrefixExpression:
		an.expr(n.Right)
	case *ast.InfixExpression:
		an.expr(n.Left)
		an.expr(n.Right)
	case *ast.ConditionalExpression:
		an.expr(n.Cond)
		an.expr(n.Then)
		an.expr(n.Else)
	case *ast.AssignExpression:
		switch left := n.Left.(type) {
		case *ast.MemberExpression:
			an.expr(left.Object)
		case *ast.IndexExpression:
			an.expr(left.Object)
			an.expr(left.Index)
		}
		an.expr(n.Value)
	case *ast.CallExpression:
		an.expr(n.Callee)
		for _, a := range n.Arguments {
			an.expr(a)
		}
	case *ast.MemberExpression:
		an.expr(n.Object)
	case *ast.IndexExpression:
		an.expr(n.Object)
		an.expr(n.Index)
	case *ast.ListLiteral:
		for _, el := range n.Elements {
			an.expr(el)
		}
	case *ast.RecordLiteral:
		for _, f := range n.Fields {
			an.expr(f.Value)
		}
	case *ast.ThisExpression:
		an.a.UsesThis = true
	case *ast.FunctionLiteral:
		an.nested(n)
	}
}

// nested handles a function literal declared inside the analyzed body.
// Its own awaits belong to its own analysis; what matters here is what
// it captures and whether it reads `this`. Captured locals may be read
// in a different resume step than the one that ran the closure's
// declaration, so they get durable storage.
func (an *analyzer) nested(lit *ast.FunctionLiteral) {
	if lit.Async {
		an.a.HasNestedAsync = true
	}
	free := freeNames(lit)
	for _, decl := range an.scope {
		if free[decl.Value] {
			an.capture(decl)
		}
	}
	for name := range free {
		an.capturedFree[name] = true
	}
	if lit.Arrow && usesThis(lit.Body) {
		an.a.UsesThis = true
	}
}
