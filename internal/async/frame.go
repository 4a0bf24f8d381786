package async

import (
	"github.com/google/uuid"

	"github.com/driftlang/drift/internal/analysis"
	"github.com/driftlang/drift/internal/interp"
)

// Frame states. Non-negative states are suspended-at-await-N; the two
// sentinels cover everything else.
const (
	// StateRunning marks a frame that is fresh or mid resume step.
	StateRunning = -1
	// StateDone marks a frame whose completion handle has settled.
	StateDone = -2
)

// Frame is the heap activation record of one async invocation. Hoisted
// variables live in cells owned by the frame so their values survive
// suspension; resume descent re-binds the same cells into fresh scopes
// instead of re-running initializers. Closures created before a
// suspension alias the same cells, so both sides observe each other's
// writes.
type Frame struct {
	ID       string
	Fn       *interp.Function
	Analysis *analysis.FunctionAnalysis

	State   int
	Running bool

	// Suspensions counts how many times the frame actually parked on a
	// pending promise. Awaiting an already-settled promise does not count.
	Suspensions int

	cells   []*interp.Cell
	env     *interp.Environment
	promise *Promise

	// pending parks one deferred control transfer per try region while
	// that region's finally block runs (and possibly suspends).
	pending map[int]result
}

func newFrame(fn *interp.Function, an *analysis.FunctionAnalysis, p *Promise) *Frame {
	cells := make([]*interp.Cell, an.NumSlots())
	for i := range cells {
		cells[i] = &interp.Cell{Value: &interp.Undefined{}}
	}
	return &Frame{
		ID:       uuid.NewString(),
		Fn:       fn,
		Analysis: an,
		State:    StateRunning,
		cells:    cells,
		promise:  p,
		pending:  map[int]result{},
	}
}

// Promise returns the invocation's completion handle.
func (fr *Frame) Promise() *Promise { return fr.promise }

func (fr *Frame) cell(slot int) *interp.Cell { return fr.cells[slot] }

func (fr *Frame) park(region int, res result) {
	fr.pending[region] = res
}

func (fr *Frame) unpark(region int) result {
	res, ok := fr.pending[region]
	if !ok {
		return result{kind: ctrlNormal}
	}
	delete(fr.pending, region)
	return res
}
