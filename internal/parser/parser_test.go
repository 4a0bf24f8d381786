package parser

import (
	"testing"

	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/diagnostics"
	"github.com/driftlang/drift/internal/lexer"
	"github.com/driftlang/drift/internal/pipeline"
	"github.com/driftlang/drift/internal/token"
)

func parse(t *testing.T, src string) (*ast.Program, *pipeline.PipelineContext) {
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
	p := New(stream, ctx)
	return p.ParseProgram(), ctx
}

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, ctx := parse(t, src)
	for _, err := range ctx.Errors {
		t.Errorf("unexpected diagnostic: %s", err.Error())
	}
	if t.Failed() {
		t.FailNow()
	}
	return prog
}

func wantDiagnostic(t *testing.T, src string, code diagnostics.ErrorCode) {
	t.Helper()
	_, ctx := parse(t, src)
	for _, err := range ctx.Errors {
		if err.Code == code {
			return
		}
	}
	t.Errorf("no %s diagnostic for %q, got %v", code, src, ctx.Errors)
}

func TestLetStatement(t *testing.T) {
	prog := parseOK(t, "let answer = 42")
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Statements))
	}
	let, ok := prog.Statements[0].(*ast.LetStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.LetStatement", prog.Statements[0])
	}
	if let.Name.Value != "answer" {
		t.Errorf("name = %q, want answer", let.Name.Value)
	}
	num, ok := let.Value.(*ast.NumberLiteral)
	if !ok || num.Value != 42 {
		t.Errorf("value = %#v, want 42", let.Value)
	}
}

func TestLetWithoutInitializer(t *testing.T) {
	prog := parseOK(t, "let x")
	let := prog.Statements[0].(*ast.LetStatement)
	if let.Value != nil {
		t.Errorf("value = %#v, want nil", let.Value)
	}
}

func TestConstRequiresInitializer(t *testing.T) {
	wantDiagnostic(t, "const x", diagnostics.ErrP006)
}

func TestAwaitOutsideAsyncIsRejected(t *testing.T) {
	wantDiagnostic(t, "function f() { let x = await g() }", diagnostics.ErrP005)
	wantDiagnostic(t, "let x = await g()", diagnostics.ErrP005)
}

func TestAwaitInsideAsyncIsAccepted(t *testing.T) {
	parseOK(t, "async function f() { let x = await g() }")
	parseOK(t, "let f = async () => await g()")
	parseOK(t, "let f = async x => await x")
}

func TestAwaitDoesNotLeakIntoNestedSyncFunction(t *testing.T) {
	wantDiagnostic(t, `
async function outer() {
	let inner = () => await p()
}
`, diagnostics.ErrP005)
}

func TestOperatorPrecedence(t *testing.T) {
	prog := parseOK(t, "let r = 1 + 2 * 3")
	let := prog.Statements[0].(*ast.LetStatement)
	add, ok := let.Value.(*ast.InfixExpression)
	if !ok || add.Operator != "+" {
		t.Fatalf("top node = %#v, want +", let.Value)
	}
	mul, ok := add.Right.(*ast.InfixExpression)
	if !ok || mul.Operator != "*" {
		t.Fatalf("right = %#v, want *", add.Right)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	prog := parseOK(t, "a = b = 1")
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	outer, ok := stmt.Expression.(*ast.AssignExpression)
	if !ok {
		t.Fatalf("expression is %T, want assign", stmt.Expression)
	}
	if _, ok := outer.Value.(*ast.AssignExpression); !ok {
		t.Errorf("value is %T, want nested assign", outer.Value)
	}
}

func TestAssignToLiteralIsRejected(t *testing.T) {
	wantDiagnostic(t, "1 = 2", diagnostics.ErrP003)
}

func TestConditionalIsRightAssociative(t *testing.T) {
	prog := parseOK(t, "let r = a ? b : c ? d : e")
	let := prog.Statements[0].(*ast.LetStatement)
	cond := let.Value.(*ast.ConditionalExpression)
	if _, ok := cond.Else.(*ast.ConditionalExpression); !ok {
		t.Errorf("else branch is %T, want nested conditional", cond.Else)
	}
}

func TestIfElseChain(t *testing.T) {
	prog := parseOK(t, `
if (a) {
	x()
} else if (b) {
	y()
} else {
	z()
}
`)
	stmt := prog.Statements[0].(*ast.IfStatement)
	elseIf, ok := stmt.Alternative.(*ast.IfStatement)
	if !ok {
		t.Fatalf("alternative is %T, want nested if", stmt.Alternative)
	}
	if _, ok := elseIf.Alternative.(*ast.BlockStatement); !ok {
		t.Errorf("final alternative is %T, want block", elseIf.Alternative)
	}
}

func TestDoWhileStatement(t *testing.T) {
	prog := parseOK(t, `
do {
	step()
} while (more())
`)
	stmt, ok := prog.Statements[0].(*ast.DoWhileStatement)
	if !ok {
		t.Fatalf("statement is %T, want do-while", prog.Statements[0])
	}
	if stmt.Cond == nil || stmt.Body == nil {
		t.Error("do-while missing cond or body")
	}
}

func TestForStatementLegsAreOptional(t *testing.T) {
	prog := parseOK(t, "for (;;) { break }")
	stmt := prog.Statements[0].(*ast.ForStatement)
	if stmt.Init != nil || stmt.Cond != nil || stmt.Update != nil {
		t.Errorf("legs = %#v %#v %#v, want all nil", stmt.Init, stmt.Cond, stmt.Update)
	}
}

func TestForOfStatement(t *testing.T) {
	prog := parseOK(t, "for (let x of items) { use(x) }")
	stmt, ok := prog.Statements[0].(*ast.ForOfStatement)
	if !ok {
		t.Fatalf("statement is %T, want for-of", prog.Statements[0])
	}
	if stmt.Name.Value != "x" {
		t.Errorf("binding = %q, want x", stmt.Name.Value)
	}
}

func TestTryRequiresCatchOrFinally(t *testing.T) {
	wantDiagnostic(t, "try { f() }", diagnostics.ErrP006)
}

func TestCatchParamIsOptional(t *testing.T) {
	prog := parseOK(t, `
try {
	f()
} catch {
	g()
}
`)
	stmt := prog.Statements[0].(*ast.TryStatement)
	if stmt.CatchParam != nil {
		t.Errorf("catch param = %#v, want nil", stmt.CatchParam)
	}
	if stmt.Catch == nil {
		t.Error("catch block missing")
	}
}

func TestArrowFunctionForms(t *testing.T) {
	tests := []struct {
		src    string
		params int
		async  bool
	}{
		{"let f = x => x + 1", 1, false},
		{"let f = (a, b) => a + b", 2, false},
		{"let f = () => 0", 0, false},
		{"let f = async x => x", 1, true},
		{"let f = async (a, b) => a", 2, true},
	}

	for _, tt := range tests {
		prog := parseOK(t, tt.src)
		let := prog.Statements[0].(*ast.LetStatement)
		fn, ok := let.Value.(*ast.FunctionLiteral)
		if !ok {
			t.Errorf("%q: value is %T, want function literal", tt.src, let.Value)
			continue
		}
		if !fn.Arrow {
			t.Errorf("%q: not marked as arrow", tt.src)
		}
		if len(fn.Parameters) != tt.params {
			t.Errorf("%q: %d params, want %d", tt.src, len(fn.Parameters), tt.params)
		}
		if fn.Async != tt.async {
			t.Errorf("%q: async = %v, want %v", tt.src, fn.Async, tt.async)
		}
	}
}

func TestBareArrowBodyBecomesReturn(t *testing.T) {
	prog := parseOK(t, "let f = x => x * 2")
	let := prog.Statements[0].(*ast.LetStatement)
	fn := let.Value.(*ast.FunctionLiteral)
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("body has %d statements, want 1", len(fn.Body.Statements))
	}
	if _, ok := fn.Body.Statements[0].(*ast.ReturnStatement); !ok {
		t.Errorf("body statement is %T, want implicit return", fn.Body.Statements[0])
	}
}

func TestGroupedExpressionIsNotArrow(t *testing.T) {
	prog := parseOK(t, "let r = (1 + 2) * 3")
	let := prog.Statements[0].(*ast.LetStatement)
	mul, ok := let.Value.(*ast.InfixExpression)
	if !ok || mul.Operator != "*" {
		t.Fatalf("top node = %#v, want *", let.Value)
	}
}

func TestAsyncFunctionStatement(t *testing.T) {
	prog := parseOK(t, "async function f(a, b) { return a }")
	stmt := prog.Statements[0].(*ast.FunctionStatement)
	if !stmt.Async {
		t.Error("function not marked async")
	}
	if stmt.Name.Value != "f" || len(stmt.Parameters) != 2 {
		t.Errorf("parsed %q with %d params", stmt.Name.Value, len(stmt.Parameters))
	}
}

func TestCallMemberAndIndexChain(t *testing.T) {
	prog := parseOK(t, "let r = obj.items[0].get(1, 2)")
	let := prog.Statements[0].(*ast.LetStatement)
	call, ok := let.Value.(*ast.CallExpression)
	if !ok {
		t.Fatalf("value is %T, want call", let.Value)
	}
	if len(call.Arguments) != 2 {
		t.Errorf("got %d args, want 2", len(call.Arguments))
	}
	member, ok := call.Callee.(*ast.MemberExpression)
	if !ok || member.Property.Value != "get" {
		t.Fatalf("callee = %#v, want member .get", call.Callee)
	}
	if _, ok := member.Object.(*ast.IndexExpression); !ok {
		t.Errorf("member object is %T, want index expression", member.Object)
	}
}

func TestRecordLiteral(t *testing.T) {
	prog := parseOK(t, `let r = { name: "x", "n": 1 }`)
	let := prog.Statements[0].(*ast.LetStatement)
	rec, ok := let.Value.(*ast.RecordLiteral)
	if !ok {
		t.Fatalf("value is %T, want record literal", let.Value)
	}
	if len(rec.Fields) != 2 || rec.Fields[0].Key != "name" || rec.Fields[1].Key != "n" {
		t.Errorf("fields = %#v", rec.Fields)
	}
}

func TestErrorRecoveryContinuesParsing(t *testing.T) {
	prog, ctx := parse(t, "let = 1\nlet ok = 2")
	if len(ctx.Errors) == 0 {
		t.Fatal("expected a diagnostic for the malformed let")
	}
	found := false
	for _, stmt := range prog.Statements {
		if let, ok := stmt.(*ast.LetStatement); ok && let.Name.Value == "ok" {
			found = true
		}
	}
	if !found {
		t.Error("parser did not recover to the next statement")
	}
}
