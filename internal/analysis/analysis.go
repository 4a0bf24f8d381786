package analysis

import (
	"github.com/driftlang/drift/internal/ast"
)

// AwaitPoint is one syntactic await expression. State numbers are dense,
// assigned in lexical order starting at 0, and stable for the lifetime of
// the analysis (they are never re-assigned per call).
type AwaitPoint struct {
	State  int
	Region int // enclosing try region id, -1 when outside any try
	Node   *ast.AwaitExpression
}

// TryRegion is one try/catch/finally construct. The AwaitIn* flags record
// which sub-blocks lexically contain await points (not counting nested
// functions).
type TryRegion struct {
	ID            int
	Parent        int // -1 at top level
	AwaitInTry    bool
	AwaitInCatch  bool
	AwaitInFinally bool
	Node          *ast.TryStatement
}

// HoistedVar is a parameter or local whose storage must outlive a single
// resume step. Slot indexes the frame's cell array; Decl is the declaring
// identifier node, which is unique per declaration site, so same-named
// variables in disjoint scopes get distinct slots.
type HoistedVar struct {
	Name string
	Slot int
	Decl *ast.Identifier
}

type stateRange struct {
	lo, hi int
}

// FunctionAnalysis is the immutable per-function analysis record. It is
// created once per async function body and consulted by the resume driver
// on every step; it is never mutated after Analyze returns.
type FunctionAnalysis struct {
	Params []*ast.Identifier
	Body   *ast.BlockStatement

	Awaits  []*AwaitPoint
	Regions []*TryRegion
	Hoisted []*HoistedVar

	// UsesThis is set when the body (including arrows, which inherit the
	// receiver) references `this`.
	UsesThis bool
	// HasNestedAsync is set when the body declares an async closure.
	// Locals captured by any nested closure, async or not, are hoisted.
	HasNestedAsync bool

	states   map[*ast.AwaitExpression]int
	regionOf map[*ast.TryStatement]*TryRegion
	slots    map[*ast.Identifier]int
	ranges   map[ast.Node]stateRange
	captured map[*ast.Identifier]bool
}

// NumAwaits returns the number of await points.
func (a *FunctionAnalysis) NumAwaits() int { return len(a.Awaits) }

// NumSlots returns the number of hoisted storage slots a frame needs.
func (a *FunctionAnalysis) NumSlots() int { return len(a.Hoisted) }

// StateOf returns the state number assigned to an await expression.
func (a *FunctionAnalysis) StateOf(aw *ast.AwaitExpression) (int, bool) {
	st, ok := a.states[aw]
	return st, ok
}

// RegionFor returns the region record for a try statement.
func (a *FunctionAnalysis) RegionFor(ts *ast.TryStatement) (*TryRegion, bool) {
	r, ok := a.regionOf[ts]
	return r, ok
}

// SlotOf returns the hoisted slot for a declaring identifier, if hoisted.
func (a *FunctionAnalysis) SlotOf(decl *ast.Identifier) (int, bool) {
	slot, ok := a.slots[decl]
	return slot, ok
}

// Captured reports whether a hoisted declaration is referenced by a
// nested function literal. A closure may be created in one resume step
// and run in another, so captured declarations must resolve through
// their frame cell for the whole block, not just from the declaring
// statement onward.
func (a *FunctionAnalysis) Captured(decl *ast.Identifier) bool {
	return a.captured[decl]
}

// HasAwait reports whether the node lexically contains any await point
// (nested functions excluded).
func (a *FunctionAnalysis) HasAwait(node ast.Node) bool {
	_, ok := a.ranges[node]
	return ok
}

// ContainsState reports whether the node lexically contains the await
// point with the given state number. The resume driver uses this to
// descend to the statement a suspended frame must re-enter.
func (a *FunctionAnalysis) ContainsState(node ast.Node, state int) bool {
	r, ok := a.ranges[node]
	return ok && r.lo <= state && state <= r.hi
}
