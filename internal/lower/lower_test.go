package lower_test

import (
	"strings"
	"testing"

	"github.com/driftlang/drift/internal/analysis"
	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/lexer"
	"github.com/driftlang/drift/internal/lower"
	"github.com/driftlang/drift/internal/parser"
	"github.com/driftlang/drift/internal/pipeline"
	"github.com/driftlang/drift/internal/token"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	ctx := pipeline.NewPipelineContext(src)
	l := lexer.New(src)
	var stream []token.Token
	for {
		tok := l.NextToken()
		stream = append(stream, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	prog := parser.New(stream, ctx).ParseProgram()
	if len(ctx.Errors) > 0 {
		t.Fatalf("parse errors: %v", ctx.Errors)
	}
	return prog
}

// lowerFn parses src, lowers the whole program and returns the body of
// the function statement named name.
func lowerFn(t *testing.T, src, name string) *ast.BlockStatement {
	t.Helper()
	prog := parseProgram(t, src)
	lower.Program(prog)
	fs := findFn(t, prog, name)
	return fs.Body
}

func findFn(t *testing.T, prog *ast.Program, name string) *ast.FunctionStatement {
	t.Helper()
	for _, stmt := range prog.Statements {
		if fs, ok := stmt.(*ast.FunctionStatement); ok && fs.Name.Value == name {
			return fs
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}

// checkCanonical asserts that every await in the block sits in one of the
// three normalized shapes with an await-free operand.
func checkCanonical(t *testing.T, b *ast.BlockStatement) {
	t.Helper()
	for _, s := range b.Statements {
		checkCanonicalStmt(t, s)
	}
}

func checkCanonicalStmt(t *testing.T, s ast.Statement) {
	t.Helper()
	switch n := s.(type) {
	case *ast.LetStatement:
		if aw, ok := n.Value.(*ast.AwaitExpression); ok {
			awaitFree(t, aw.Value)
			return
		}
		awaitFree(t, n.Value)
	case *ast.ExpressionStatement:
		if aw, ok := n.Expression.(*ast.AwaitExpression); ok {
			awaitFree(t, aw.Value)
			return
		}
		if asg, ok := n.Expression.(*ast.AssignExpression); ok {
			if aw, ok := asg.Value.(*ast.AwaitExpression); ok {
				if _, isIdent := asg.Left.(*ast.Identifier); !isIdent || asg.Operator != "=" {
					t.Errorf("await assignment target is %T %q, want plain identifier", asg.Left, asg.Operator)
				}
				awaitFree(t, aw.Value)
				return
			}
		}
		awaitFree(t, n.Expression)
	case *ast.BlockStatement:
		checkCanonical(t, n)
	case *ast.IfStatement:
		awaitFree(t, n.Cond)
		checkCanonical(t, n.Consequence)
		if n.Alternative != nil {
			checkCanonicalStmt(t, n.Alternative)
		}
	case *ast.WhileStatement:
		awaitFree(t, n.Cond)
		checkCanonical(t, n.Body)
	case *ast.DoWhileStatement:
		awaitFree(t, n.Cond)
		checkCanonical(t, n.Body)
	case *ast.ForStatement:
		if n.Init != nil {
			checkCanonicalStmt(t, n.Init)
		}
		awaitFree(t, n.Cond)
		awaitFree(t, n.Update)
		checkCanonical(t, n.Body)
	case *ast.ForOfStatement:
		awaitFree(t, n.Iterable)
		checkCanonical(t, n.Body)
	case *ast.ReturnStatement:
		awaitFree(t, n.Value)
	case *ast.ThrowStatement:
		awaitFree(t, n.Value)
	case *ast.TryStatement:
		checkCanonical(t, n.Body)
		if n.Catch != nil {
			checkCanonical(t, n.Catch)
		}
		if n.Finally != nil {
			checkCanonical(t, n.Finally)
		}
	case *ast.FunctionStatement:
		checkCanonical(t, n.Body)
	}
}

func awaitFree(t *testing.T, e ast.Expression) {
	t.Helper()
	if e != nil && analysis.ContainsAwait(e) {
		t.Errorf("expression still contains a non-canonical await: %#v", e)
	}
}

func isTemp(e ast.Expression) bool {
	ident, ok := e.(*ast.Identifier)
	return ok && strings.HasPrefix(ident.Value, "@t")
}

func TestCanonicalShapesAcrossConstructs(t *testing.T) {
	body := lowerFn(t, `
async function f(items) {
	let a = await one()
	let b = a + await two(a)
	b = await three(b)
	await four()
	if (await check(b)) {
		return await five()
	}
	while (await more()) {
		b = b + await six()
	}
	do {
		await seven()
	} while (await eight())
	for (let i = 0; i < await count(); i = i + await step()) {
		await body(i)
	}
	for (let x of await list()) {
		await use(x)
	}
	try {
		throw await nine()
	} catch (e) {
		await ten(e)
	} finally {
		await eleven()
	}
	let r = { a: await twelve(), b: [await thirteen(), 1] }
	let c = cond() ? await yes() : await no()
	let d = flag() && await maybe()
	obj.field = await fourteen()
	obj[await key()] = await value()
	return b + c
}
`, "f")
	checkCanonical(t, body)
}

func TestLetAwaitStaysSingleStatement(t *testing.T) {
	body := lowerFn(t, `
async function f() {
	let x = await p()
}
`, "f")

	if len(body.Statements) != 1 {
		t.Fatalf("got %d statements, want 1 (no temp needed)", len(body.Statements))
	}
	let := body.Statements[0].(*ast.LetStatement)
	if let.Name.Value != "x" {
		t.Errorf("name = %q, want x", let.Name.Value)
	}
	if _, ok := let.Value.(*ast.AwaitExpression); !ok {
		t.Errorf("value is %T, want await", let.Value)
	}
}

func TestOperandSpilledBeforeAwait(t *testing.T) {
	body := lowerFn(t, `
async function f() {
	let y = first() + await p()
}
`, "f")

	if len(body.Statements) != 3 {
		t.Fatalf("got %d statements, want 3", len(body.Statements))
	}

	// first() must be captured before the suspension.
	spillLet := body.Statements[0].(*ast.LetStatement)
	if !strings.HasPrefix(spillLet.Name.Value, "@t") {
		t.Errorf("spill target = %q, want a temp", spillLet.Name.Value)
	}
	if _, ok := spillLet.Value.(*ast.CallExpression); !ok {
		t.Errorf("spill value is %T, want the call", spillLet.Value)
	}

	awaitLet := body.Statements[1].(*ast.LetStatement)
	if _, ok := awaitLet.Value.(*ast.AwaitExpression); !ok {
		t.Errorf("second statement value is %T, want await", awaitLet.Value)
	}

	final := body.Statements[2].(*ast.LetStatement)
	add, ok := final.Value.(*ast.InfixExpression)
	if !ok || add.Operator != "+" {
		t.Fatalf("final value = %#v, want +", final.Value)
	}
	if !isTemp(add.Left) || !isTemp(add.Right) {
		t.Errorf("operands = %#v %#v, want temps", add.Left, add.Right)
	}
}

func TestStableOperandsAreNotSpilled(t *testing.T) {
	body := lowerFn(t, `
async function f() {
	let y = 1 + await p()
}
`, "f")

	// The literal survives any suspension; only the await needs a temp.
	if len(body.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(body.Statements))
	}
	final := body.Statements[1].(*ast.LetStatement)
	add := final.Value.(*ast.InfixExpression)
	if _, ok := add.Left.(*ast.NumberLiteral); !ok {
		t.Errorf("left = %#v, want inline literal", add.Left)
	}
}

func TestWhileConditionAwaitBecomesHeaderCheck(t *testing.T) {
	body := lowerFn(t, `
async function f() {
	while (await more()) {
		step()
	}
}
`, "f")

	loop := body.Statements[0].(*ast.WhileStatement)
	lit, ok := loop.Cond.(*ast.BooleanLiteral)
	if !ok || !lit.Value {
		t.Fatalf("loop cond = %#v, want literal true", loop.Cond)
	}

	// Body re-checks the condition each turn: await temp, then break-unless.
	first := loop.Body.Statements[0].(*ast.LetStatement)
	if _, ok := first.Value.(*ast.AwaitExpression); !ok {
		t.Errorf("first body statement value is %T, want await", first.Value)
	}
	check, ok := loop.Body.Statements[1].(*ast.IfStatement)
	if !ok {
		t.Fatalf("second body statement is %T, want if", loop.Body.Statements[1])
	}
	if _, ok := check.Consequence.Statements[0].(*ast.BreakStatement); !ok {
		t.Errorf("check consequence is %T, want break", check.Consequence.Statements[0])
	}
	checkCanonical(t, body)
}

func TestForWithAwaitFreeLegsKeepsShape(t *testing.T) {
	body := lowerFn(t, `
async function f() {
	for (let i = 0; i < 3; i = i + 1) {
		await p(i)
	}
}
`, "f")

	if _, ok := body.Statements[0].(*ast.ForStatement); !ok {
		t.Errorf("statement is %T, want for (legs do not suspend)", body.Statements[0])
	}
	checkCanonical(t, body)
}

func TestForWithSuspendingCondUnrolls(t *testing.T) {
	body := lowerFn(t, `
async function f() {
	for (let i = 0; await more(i); i = i + 1) {
		work(i)
	}
}
`, "f")

	wrapper, ok := body.Statements[0].(*ast.BlockStatement)
	if !ok {
		t.Fatalf("statement is %T, want wrapper block", body.Statements[0])
	}
	if _, ok := wrapper.Statements[0].(*ast.LetStatement); !ok {
		t.Fatalf("wrapper[0] is %T, want init let", wrapper.Statements[0])
	}
	loop, ok := wrapper.Statements[1].(*ast.WhileStatement)
	if !ok {
		t.Fatalf("wrapper[1] is %T, want while", wrapper.Statements[1])
	}
	if lit, ok := loop.Cond.(*ast.BooleanLiteral); !ok || !lit.Value {
		t.Errorf("loop cond = %#v, want literal true", loop.Cond)
	}
	checkCanonical(t, body)
}

func TestContinueStillRunsUpdate(t *testing.T) {
	body := lowerFn(t, `
async function f() {
	for (let i = 0; await more(i); i = i + 1) {
		if (skip(i)) {
			continue
		}
		work(i)
	}
}
`, "f")

	wrapper := body.Statements[0].(*ast.BlockStatement)
	loop := wrapper.Statements[1].(*ast.WhileStatement)

	var ifStmt *ast.IfStatement
	for _, s := range loop.Body.Statements {
		if n, ok := s.(*ast.IfStatement); ok {
			if _, isBreak := n.Consequence.Statements[0].(*ast.BreakStatement); !isBreak {
				ifStmt = n
			}
		}
	}
	if ifStmt == nil {
		t.Fatal("skip branch not found in lowered body")
	}

	cons := ifStmt.Consequence.Statements
	if len(cons) != 2 {
		t.Fatalf("continue branch has %d statements, want update + continue", len(cons))
	}
	inserted, ok := cons[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("inserted statement is %T, want the update assignment", cons[0])
	}
	if _, ok := cons[1].(*ast.ContinueStatement); !ok {
		t.Fatalf("branch does not end with continue")
	}

	// The trailing update and the inserted copy must be distinct nodes:
	// state numbering is keyed by node identity.
	trailing := loop.Body.Statements[len(loop.Body.Statements)-1].(*ast.ExpressionStatement)
	if inserted == trailing || inserted.Expression == trailing.Expression {
		t.Error("update statement shared between continue site and loop tail")
	}
}

func TestForOfDesugarsToIndexedWhile(t *testing.T) {
	body := lowerFn(t, `
async function f(items) {
	for (let x of items) {
		await use(x)
	}
}
`, "f")

	wrapper := body.Statements[0].(*ast.BlockStatement)
	itLet := wrapper.Statements[0].(*ast.LetStatement)
	idxLet := wrapper.Statements[1].(*ast.LetStatement)
	if !strings.HasPrefix(itLet.Name.Value, "@t") || !strings.HasPrefix(idxLet.Name.Value, "@t") {
		t.Errorf("iterable/index temps = %q %q", itLet.Name.Value, idxLet.Name.Value)
	}
	if num, ok := idxLet.Value.(*ast.NumberLiteral); !ok || num.Value != 0 {
		t.Errorf("index init = %#v, want 0", idxLet.Value)
	}

	loop := wrapper.Statements[2].(*ast.WhileStatement)
	cond := loop.Cond.(*ast.InfixExpression)
	if cond.Operator != "<" {
		t.Errorf("cond operator = %q, want <", cond.Operator)
	}
	call, ok := cond.Right.(*ast.CallExpression)
	if !ok {
		t.Fatalf("cond right is %T, want len call", cond.Right)
	}
	if callee, ok := call.Callee.(*ast.Identifier); !ok || callee.Value != "len" {
		t.Errorf("cond callee = %#v, want len", call.Callee)
	}

	// Element binding, then the increment, then the user body. The index
	// advances before the body so continue skips nothing.
	elem := loop.Body.Statements[0].(*ast.LetStatement)
	if elem.Name.Value != "x" {
		t.Errorf("element binding = %q, want x", elem.Name.Value)
	}
	if _, ok := elem.Value.(*ast.IndexExpression); !ok {
		t.Errorf("element value is %T, want index expression", elem.Value)
	}
	inc := loop.Body.Statements[1].(*ast.ExpressionStatement)
	if _, ok := inc.Expression.(*ast.AssignExpression); !ok {
		t.Errorf("second statement is %T, want index increment", inc.Expression)
	}
	checkCanonical(t, body)
}

func TestShortCircuitRightStaysOnItsBranch(t *testing.T) {
	body := lowerFn(t, `
async function f(flag) {
	let v = flag && await p()
}
`, "f")

	if len(body.Statements) != 3 {
		t.Fatalf("got %d statements, want temp + if + let", len(body.Statements))
	}
	probe := body.Statements[0].(*ast.LetStatement)
	guard := body.Statements[1].(*ast.IfStatement)
	if cond, ok := guard.Cond.(*ast.Identifier); !ok || cond.Value != probe.Name.Value {
		t.Errorf("guard cond = %#v, want probe %q", guard.Cond, probe.Name.Value)
	}
	final := body.Statements[2].(*ast.LetStatement)
	if !isTemp(final.Value) {
		t.Errorf("result = %#v, want the probe temp", final.Value)
	}
	checkCanonical(t, body)
}

func TestNullishProbeChecksNullAndUndefined(t *testing.T) {
	body := lowerFn(t, `
async function f(v) {
	let r = v ?? await fallback()
}
`, "f")

	guard := body.Statements[1].(*ast.IfStatement)
	or, ok := guard.Cond.(*ast.InfixExpression)
	if !ok || or.Operator != "||" {
		t.Fatalf("guard cond = %#v, want ||", guard.Cond)
	}
	left := or.Left.(*ast.InfixExpression)
	right := or.Right.(*ast.InfixExpression)
	if left.Operator != "==" || right.Operator != "==" {
		t.Errorf("probe operators = %q %q, want ==", left.Operator, right.Operator)
	}
	checkCanonical(t, body)
}

func TestConditionalBranchesAssignTemp(t *testing.T) {
	body := lowerFn(t, `
async function f(c) {
	let v = c ? await a() : b()
}
`, "f")

	decl := body.Statements[0].(*ast.LetStatement)
	if decl.Value != nil {
		t.Errorf("temp declared with value %#v, want none", decl.Value)
	}
	branch := body.Statements[1].(*ast.IfStatement)
	if branch.Alternative == nil {
		t.Fatal("lowered conditional has no else branch")
	}
	final := body.Statements[2].(*ast.LetStatement)
	if !isTemp(final.Value) {
		t.Errorf("result = %#v, want the temp", final.Value)
	}
	checkCanonical(t, body)
}

func TestMethodCallKeepsReceiver(t *testing.T) {
	body := lowerFn(t, `
async function f(obj) {
	let r = obj.get(await key())
}
`, "f")

	final := body.Statements[len(body.Statements)-1].(*ast.LetStatement)
	call, ok := final.Value.(*ast.CallExpression)
	if !ok {
		t.Fatalf("final value is %T, want call", final.Value)
	}
	if _, ok := call.Callee.(*ast.MemberExpression); !ok {
		t.Errorf("callee is %T, the member access must survive lowering", call.Callee)
	}
	checkCanonical(t, body)
}

func TestCompoundAssignCapturesOldValue(t *testing.T) {
	body := lowerFn(t, `
async function f() {
	let x = 1
	x += await p()
}
`, "f")

	// x is read into a temp before the suspension, then written once.
	checkCanonical(t, body)
	var sawSpillOfX bool
	for _, s := range body.Statements {
		if let, ok := s.(*ast.LetStatement); ok && strings.HasPrefix(let.Name.Value, "@t") {
			if ident, ok := let.Value.(*ast.Identifier); ok && ident.Value == "x" {
				sawSpillOfX = true
			}
		}
	}
	if !sawSpillOfX {
		t.Error("old value of x not captured before the await")
	}
}

func TestAsyncClosureInsideSyncFunctionIsLowered(t *testing.T) {
	prog := parseProgram(t, `
function outer() {
	let g = async () => first() + await p()
	return g
}
`)
	lower.Program(prog)

	fs := findFn(t, prog, "outer")
	let := fs.Body.Statements[0].(*ast.LetStatement)
	arrow := let.Value.(*ast.FunctionLiteral)
	checkCanonical(t, arrow.Body)
	if len(arrow.Body.Statements) < 2 {
		t.Errorf("arrow body has %d statements, spill and await expected", len(arrow.Body.Statements))
	}
}

func TestAwaitFreeStatementsAreUntouched(t *testing.T) {
	prog := parseProgram(t, `
async function f() {
	let a = 1
	let b = a + 2
	await p()
}
`)
	fs := findFn(t, prog, "f")
	first := fs.Body.Statements[0]
	second := fs.Body.Statements[1]

	lower.Program(prog)

	if fs.Body.Statements[0] != first || fs.Body.Statements[1] != second {
		t.Error("await-free statements were rewritten")
	}
}
