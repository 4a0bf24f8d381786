package analysis_test

import (
	"testing"

	"github.com/driftlang/drift/internal/analysis"
	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/lexer"
	"github.com/driftlang/drift/internal/parser"
	"github.com/driftlang/drift/internal/pipeline"
	"github.com/driftlang/drift/internal/token"
)

// analyzeFn parses src and analyzes the function statement named name.
func analyzeFn(t *testing.T, src, name string) (*analysis.FunctionAnalysis, *ast.FunctionStatement) {
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
	for _, stmt := range prog.Statements {
		if fs, ok := stmt.(*ast.FunctionStatement); ok && fs.Name.Value == name {
			return analysis.Analyze(fs.Parameters, fs.Body), fs
		}
	}
	t.Fatalf("function %s not found", name)
	return nil, nil
}

func hoistedNames(an *analysis.FunctionAnalysis) map[string]bool {
	names := map[string]bool{}
	for _, hv := range an.Hoisted {
		names[hv.Name] = true
	}
	return names
}

func TestAwaitsNumberedInLexicalOrder(t *testing.T) {
	an, fs := analyzeFn(t, `
async function f() {
	await a()
	if (c) {
		await b()
	}
	await d()
}
`, "f")

	if an.NumAwaits() != 3 {
		t.Fatalf("NumAwaits = %d, want 3", an.NumAwaits())
	}
	for i, pt := range an.Awaits {
		if pt.State != i {
			t.Errorf("await %d has state %d", i, pt.State)
		}
		if st, ok := an.StateOf(pt.Node); !ok || st != i {
			t.Errorf("StateOf(await %d) = %d, %v", i, st, ok)
		}
	}

	// First and last statements each contain exactly one state.
	if !an.ContainsState(fs.Body.Statements[0], 0) || an.ContainsState(fs.Body.Statements[0], 1) {
		t.Error("statement 0 should contain state 0 only")
	}
	if !an.ContainsState(fs.Body.Statements[1], 1) {
		t.Error("if statement should contain state 1")
	}
	if !an.ContainsState(fs.Body.Statements[2], 2) {
		t.Error("statement 2 should contain state 2")
	}
}

func TestNestedFunctionAwaitsNotCounted(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f() {
	let g = async () => await x()
	await y()
}
`, "f")

	if an.NumAwaits() != 1 {
		t.Errorf("NumAwaits = %d, want 1 (nested awaits belong to the closure)", an.NumAwaits())
	}
	if !an.HasNestedAsync {
		t.Error("HasNestedAsync not set")
	}
}

func TestZeroAwaitFunctionNeedsNoSlots(t *testing.T) {
	an, fs := analyzeFn(t, `
async function f(a, b) {
	let c = a + b
	return c
}
`, "f")

	if an.NumAwaits() != 0 {
		t.Fatalf("NumAwaits = %d, want 0", an.NumAwaits())
	}
	if an.NumSlots() != 0 {
		t.Errorf("NumSlots = %d, want 0", an.NumSlots())
	}
	if an.HasAwait(fs.Body) {
		t.Error("HasAwait(body) = true for an await-free body")
	}
}

func TestParamsAndPriorLocalsHoistAtAwait(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f(a, b) {
	let before = a
	await p()
	let after = b
}
`, "f")

	names := hoistedNames(an)
	for _, want := range []string{"a", "b", "before"} {
		if !names[want] {
			t.Errorf("%q not hoisted, got %v", want, names)
		}
	}
	if names["after"] {
		t.Error("variable declared after the last await should not be hoisted")
	}
}

func TestLoopVariableHoistsWhenBodyAwaits(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f() {
	for (let i = 0; i < 3; i = i + 1) {
		await p()
	}
}
`, "f")

	if !hoistedNames(an)["i"] {
		t.Error("loop variable not hoisted across suspension")
	}
}

func TestCatchParamHoistsWhenCatchAwaits(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f() {
	try {
		risky()
	} catch (e) {
		await report(e)
	}
}
`, "f")

	if !hoistedNames(an)["e"] {
		t.Error("catch parameter not hoisted")
	}
}

func TestSameNameDistinctScopesGetDistinctSlots(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f() {
	{
		let x = 1
		await p()
	}
	{
		let x = 2
		await q()
	}
}
`, "f")

	count := 0
	for _, hv := range an.Hoisted {
		if hv.Name == "x" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("got %d slots for x, want 2 (one per declaration site)", count)
	}
}

func TestCapturedLocalsHoistForNestedAsyncClosure(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f() {
	let shared = 0
	let local = 1
	let g = async () => shared + 1
}
`, "f")

	names := hoistedNames(an)
	if !names["shared"] {
		t.Error("local captured by async closure not hoisted")
	}
}

func TestClosureCaptureOfLaterDeclarationHoists(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f() {
	let make = () => x
	await p()
	let x = 7
}
`, "f")

	names := hoistedNames(an)
	if !names["x"] {
		t.Errorf("declaration captured by an earlier closure not hoisted, got %v", names)
	}
	var xDecl *ast.Identifier
	for _, hv := range an.Hoisted {
		if hv.Name == "x" {
			xDecl = hv.Decl
		}
	}
	if xDecl == nil || !an.Captured(xDecl) {
		t.Error("captured declaration not marked captured")
	}
}

func TestSyncClosureCapturesAreMarked(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f() {
	let count = 0
	let bump = () => { count = count + 1 }
	await p()
}
`, "f")

	for _, hv := range an.Hoisted {
		if hv.Name == "count" && an.Captured(hv.Decl) {
			return
		}
	}
	t.Error("local captured by sync closure not marked captured")
}

func TestTryRegionFlags(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f() {
	try {
		await a()
	} catch (e) {
		plain()
	} finally {
		await b()
	}
}
`, "f")

	if len(an.Regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(an.Regions))
	}
	r := an.Regions[0]
	if !r.AwaitInTry {
		t.Error("AwaitInTry not set")
	}
	if r.AwaitInCatch {
		t.Error("AwaitInCatch set for await-free catch")
	}
	if !r.AwaitInFinally {
		t.Error("AwaitInFinally not set")
	}
	if r.Parent != -1 {
		t.Errorf("Parent = %d, want -1", r.Parent)
	}
}

func TestNestedRegionsTrackParent(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f() {
	try {
		try {
			await a()
		} finally {
			cleanup()
		}
	} catch (e) {
		handle(e)
	}
}
`, "f")

	if len(an.Regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(an.Regions))
	}
	outer, inner := an.Regions[0], an.Regions[1]
	if inner.Parent != outer.ID {
		t.Errorf("inner.Parent = %d, want %d", inner.Parent, outer.ID)
	}
	if an.Awaits[0].Region != inner.ID {
		t.Errorf("await region = %d, want inner %d", an.Awaits[0].Region, inner.ID)
	}
}

func TestAwaitOutsideTryHasNoRegion(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f() {
	await p()
}
`, "f")

	if an.Awaits[0].Region != -1 {
		t.Errorf("region = %d, want -1", an.Awaits[0].Region)
	}
}

func TestUsesThisThroughArrow(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f() {
	let g = () => this.count
	await p()
}
`, "f")

	if !an.UsesThis {
		t.Error("UsesThis not set for arrow reading this")
	}
}

func TestNonArrowFunctionHidesThis(t *testing.T) {
	an, _ := analyzeFn(t, `
async function f() {
	let g = function () { return this.count }
	await p()
}
`, "f")

	if an.UsesThis {
		t.Error("UsesThis set; plain functions bind their own receiver")
	}
}
