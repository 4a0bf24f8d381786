package async

import (
	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/interp"
)

// The resume driver walks a lowered async body statement by statement.
// Statements that cannot suspend are delegated to the plain evaluator;
// statements containing an await point are executed by the driver so it
// can stop at the await, park the frame, and later descend back to the
// exact statement using the analysis' per-node state ranges.

type ctrl int

const (
	ctrlNormal ctrl = iota
	ctrlSuspend
	ctrlReturn
	ctrlBreak
	ctrlContinue
	ctrlThrow
)

type result struct {
	kind  ctrl
	value interp.Object
}

var normal = result{kind: ctrlNormal}

// resumeState carries the settlement of the awaited promise down to the
// suspended await during resume descent. It is consumed exactly once,
// by the await it targets.
type resumeState struct {
	target  int
	value   interp.Object
	faulted bool
}

// exec is the per-step execution context. rs is non-nil while the step
// is still descending toward the suspended await; once that await
// consumes it, execution continues normally.
type exec struct {
	rt *Runtime
	fr *Frame
	rs *resumeState
}

func (x *exec) descending() bool { return x.rs != nil }

// block opens a scope and runs the statements in it.
func (x *exec) block(b *ast.BlockStatement, env *interp.Environment) result {
	return x.blockIn(b, interp.NewEnclosedEnvironment(env))
}

// blockIn runs a block's statements directly in env. On fresh execution
// it predeclares function statements; on resume descent it instead
// re-binds the declarations preceding the target from the frame's cells
// and jumps to the statement containing the suspended await.
func (x *exec) blockIn(b *ast.BlockStatement, env *interp.Environment) result {
	an := x.fr.Analysis

	start := 0
	if x.descending() {
		target := x.rs.target
		found := false
		for i, s := range b.Statements {
			if an.ContainsState(s, target) {
				start = i
				found = true
				break
			}
			x.rebind(s, env)
		}
		if !found {
			return result{kind: ctrlThrow, value: &interp.String{
				Value: "resume target not found in block",
			}}
		}
		// Function declarations and captured lets after the target are
		// also visible; their cells keep the values from earlier steps.
		for _, s := range b.Statements[start:] {
			switch n := s.(type) {
			case *ast.FunctionStatement:
				x.rebindIdent(n.Name, env)
			case *ast.LetStatement:
				if an.Captured(n.Name) {
					x.rebindIdent(n.Name, env)
				}
			}
		}
	} else {
		for _, s := range b.Statements {
			switch n := s.(type) {
			case *ast.FunctionStatement:
				fn := x.rt.ev.Eval(n.Literal(), env)
				if interp.IsException(fn) {
					return throwOf(fn)
				}
				x.declare(env, n.Name, fn)
			case *ast.LetStatement:
				// A closure created earlier in the block resolves a
				// captured let through its frame cell, even when the
				// declaring statement runs in a later resume step.
				if slot, ok := an.SlotOf(n.Name); ok && an.Captured(n.Name) {
					cell := x.fr.cell(slot)
					cell.Value = &interp.Undefined{}
					env.BindCell(n.Name.Value, cell)
				}
			}
		}
	}

	for _, s := range b.Statements[start:] {
		res := x.stmt(s, env)
		if res.kind != ctrlNormal {
			return res
		}
	}
	return normal
}

// rebind re-establishes the bindings a skipped statement would have
// introduced at this scope level. Anything declared before an await it
// survives is hoisted, so the frame cell always exists.
func (x *exec) rebind(s ast.Statement, env *interp.Environment) {
	switch n := s.(type) {
	case *ast.LetStatement:
		x.rebindIdent(n.Name, env)
	case *ast.FunctionStatement:
		x.rebindIdent(n.Name, env)
	}
}

func (x *exec) rebindIdent(ident *ast.Identifier, env *interp.Environment) {
	if slot, ok := x.fr.Analysis.SlotOf(ident); ok {
		env.BindCell(ident.Value, x.fr.cell(slot))
	}
}

// declare introduces a binding, routing hoisted variables through their
// frame-owned cell so the value survives suspension.
func (x *exec) declare(env *interp.Environment, ident *ast.Identifier, val interp.Object) {
	if slot, ok := x.fr.Analysis.SlotOf(ident); ok {
		cell := x.fr.cell(slot)
		cell.Value = val
		env.BindCell(ident.Value, cell)
		return
	}
	env.Set(ident.Value, val)
}

func (x *exec) stmt(s ast.Statement, env *interp.Environment) result {
	an := x.fr.Analysis

	// Declarations are always handled here, never delegated, so hoisted
	// variables land in their frame cells.
	switch n := s.(type) {
	case *ast.LetStatement:
		return x.letStmt(n, env)
	case *ast.FunctionStatement:
		// Predeclared at block entry.
		return normal
	}

	if !x.descending() && !an.HasAwait(s) {
		return x.delegate(s, env)
	}

	switch n := s.(type) {
	case *ast.ExpressionStatement:
		return x.exprStmt(n, env)
	case *ast.BlockStatement:
		return x.block(n, env)
	case *ast.IfStatement:
		return x.ifStmt(n, env)
	case *ast.WhileStatement:
		return x.whileStmt(n, env)
	case *ast.DoWhileStatement:
		return x.doWhileStmt(n, env)
	case *ast.ForStatement:
		return x.forStmt(n, env)
	case *ast.TryStatement:
		return x.tryStmt(n, env)
	case *ast.ReturnStatement, *ast.ThrowStatement, *ast.ForOfStatement:
		// Lowering leaves these await-free.
		return x.delegate(s, env)
	}
	return x.delegate(s, env)
}

// delegate hands an await-free statement to the plain evaluator and maps
// its signal objects back onto driver control flow.
func (x *exec) delegate(s ast.Statement, env *interp.Environment) result {
	return fromObject(x.rt.ev.Eval(s, env))
}

func fromObject(obj interp.Object) result {
	switch o := obj.(type) {
	case *interp.Exception:
		return result{kind: ctrlThrow, value: o.Value}
	case *interp.ReturnValue:
		return result{kind: ctrlReturn, value: o.Value}
	case *interp.BreakSignal:
		return result{kind: ctrlBreak}
	case *interp.ContinueSignal:
		return result{kind: ctrlContinue}
	}
	return normal
}

func throwOf(exc interp.Object) result {
	return result{kind: ctrlThrow, value: exc.(*interp.Exception).Value}
}

func (x *exec) letStmt(n *ast.LetStatement, env *interp.Environment) result {
	if aw, ok := n.Value.(*ast.AwaitExpression); ok && x.fr.Analysis.HasAwait(n) {
		res := x.await(aw, env)
		if res.kind != ctrlNormal {
			return res
		}
		x.declare(env, n.Name, res.value)
		return normal
	}

	var val interp.Object = &interp.Undefined{}
	if n.Value != nil {
		val = x.rt.ev.Eval(n.Value, env)
		if interp.IsException(val) {
			return throwOf(val)
		}
	}
	x.declare(env, n.Name, val)
	return normal
}

// exprStmt executes the two statement-level await shapes (`await e` and
// `x = await e`); anything else is await-free by construction.
func (x *exec) exprStmt(n *ast.ExpressionStatement, env *interp.Environment) result {
	if aw, ok := n.Expression.(*ast.AwaitExpression); ok {
		res := x.await(aw, env)
		if res.kind == ctrlNormal {
			return normal
		}
		return res
	}

	if asg, ok := n.Expression.(*ast.AssignExpression); ok {
		if target, isIdent := asg.Left.(*ast.Identifier); isIdent {
			if aw, ok := asg.Value.(*ast.AwaitExpression); ok {
				res := x.await(aw, env)
				if res.kind != ctrlNormal {
					return res
				}
				if !env.Update(target.Value, res.value) {
					return result{kind: ctrlThrow, value: &interp.String{
						Value: "assignment to undeclared variable: " + target.Value,
					}}
				}
				return normal
			}
		}
	}

	return x.delegate(n, env)
}

// await executes one suspension point. Fresh execution evaluates the
// operand; a pending promise parks the frame at the await's state number
// and schedules a resume on settlement. An already-settled promise (or a
// plain value) continues in place with no trip through the loop, which
// is what keeps long chains of ready awaits from growing the task queue.
// During resume descent the await is the consumer of the resume state.
func (x *exec) await(aw *ast.AwaitExpression, env *interp.Environment) result {
	if x.descending() {
		rs := x.rs
		x.rs = nil
		if rs.faulted {
			return result{kind: ctrlThrow, value: rs.value}
		}
		return result{kind: ctrlNormal, value: rs.value}
	}

	operand := x.rt.ev.Eval(aw.Value, env)
	if interp.IsException(operand) {
		return throwOf(operand)
	}

	p, ok := operand.(*Promise)
	if !ok {
		// Awaiting a plain value yields the value itself.
		return result{kind: ctrlNormal, value: operand}
	}

	switch p.State() {
	case Fulfilled:
		p.MarkHandled()
		return result{kind: ctrlNormal, value: p.Value()}
	case Rejected:
		p.MarkHandled()
		return result{kind: ctrlThrow, value: p.Value()}
	}

	state, ok := x.fr.Analysis.StateOf(aw)
	if !ok {
		return result{kind: ctrlThrow, value: &interp.String{
			Value: "await outside the analyzed body",
		}}
	}

	fr := x.fr
	fr.State = state
	fr.Suspensions++
	rt := x.rt
	p.OnSettle(func(fulfilled bool, val interp.Object) {
		rt.Resume(fr, val, !fulfilled)
	})
	return result{kind: ctrlSuspend}
}

func (x *exec) ifStmt(n *ast.IfStatement, env *interp.Environment) result {
	if x.descending() {
		target := x.rs.target
		an := x.fr.Analysis
		if an.ContainsState(n.Consequence, target) {
			return x.block(n.Consequence, env)
		}
		if n.Alternative != nil && an.ContainsState(n.Alternative, target) {
			return x.stmt(n.Alternative, env)
		}
		return result{kind: ctrlThrow, value: &interp.String{
			Value: "resume target not found in branch",
		}}
	}

	cond := x.rt.ev.Eval(n.Cond, env)
	if interp.IsException(cond) {
		return throwOf(cond)
	}
	if interp.Truthy(cond) {
		return x.block(n.Consequence, env)
	}
	if n.Alternative != nil {
		return x.stmt(n.Alternative, env)
	}
	return normal
}

// whileStmt loops with the driver in charge of the body. On resume
// descent the condition is skipped: the frame suspended mid-body, so the
// body is re-entered directly and the condition is next checked on the
// following turn.
func (x *exec) whileStmt(n *ast.WhileStatement, env *interp.Environment) result {
	for {
		if !x.descending() {
			cond := x.rt.ev.Eval(n.Cond, env)
			if interp.IsException(cond) {
				return throwOf(cond)
			}
			if !interp.Truthy(cond) {
				return normal
			}
		}
		res := x.block(n.Body, env)
		switch res.kind {
		case ctrlNormal, ctrlContinue:
		case ctrlBreak:
			return normal
		default:
			return res
		}
	}
}

func (x *exec) doWhileStmt(n *ast.DoWhileStatement, env *interp.Environment) result {
	for {
		res := x.block(n.Body, env)
		switch res.kind {
		case ctrlNormal, ctrlContinue:
		case ctrlBreak:
			return normal
		default:
			return res
		}
		cond := x.rt.ev.Eval(n.Cond, env)
		if interp.IsException(cond) {
			return throwOf(cond)
		}
		if !interp.Truthy(cond) {
			return normal
		}
	}
}

// forStmt handles classic for loops whose awaits are confined to the
// body (lowering moves suspending legs into a while rewrite). The init
// variable lives in a frame cell when the body suspends, so loop
// progress survives across resume steps.
func (x *exec) forStmt(n *ast.ForStatement, env *interp.Environment) result {
	loopEnv := interp.NewEnclosedEnvironment(env)

	if x.descending() {
		if let, ok := n.Init.(*ast.LetStatement); ok {
			x.rebindIdent(let.Name, loopEnv)
		}
	} else if n.Init != nil {
		if let, ok := n.Init.(*ast.LetStatement); ok {
			res := x.letStmt(let, loopEnv)
			if res.kind != ctrlNormal {
				return res
			}
		} else {
			res := x.delegate(n.Init, loopEnv)
			if res.kind != ctrlNormal {
				return res
			}
		}
	}

	for {
		if !x.descending() && n.Cond != nil {
			cond := x.rt.ev.Eval(n.Cond, loopEnv)
			if interp.IsException(cond) {
				return throwOf(cond)
			}
			if !interp.Truthy(cond) {
				return normal
			}
		}

		res := x.block(n.Body, loopEnv)
		switch res.kind {
		case ctrlNormal, ctrlContinue:
		case ctrlBreak:
			return normal
		default:
			return res
		}

		if n.Update != nil {
			upd := x.rt.ev.Eval(n.Update, loopEnv)
			if interp.IsException(upd) {
				return throwOf(upd)
			}
		}
	}
}
