package async

import (
	"time"

	"go.uber.org/zap"

	"github.com/driftlang/drift/internal/analysis"
	"github.com/driftlang/drift/internal/ast"
	"github.com/driftlang/drift/internal/config"
	"github.com/driftlang/drift/internal/interp"
)

// Runtime owns async execution: it analyzes async function bodies on
// first call, allocates frames, drives resume steps and registers the
// host builtins that produce promises. It installs itself as the
// evaluator's async call handler.
type Runtime struct {
	loop *Loop
	ev   *interp.Evaluator
	log  *zap.Logger

	// One analysis per lowered body, shared by every invocation of the
	// same function.
	analyses map[*ast.BlockStatement]*analysis.FunctionAnalysis

	// faulted completion handles, checked after the loop drains to
	// report rejections nobody awaited.
	faulted []*Promise
}

type Option func(*Runtime)

// WithLogger enables trace logging of frame transitions.
func WithLogger(log *zap.Logger) Option {
	return func(rt *Runtime) { rt.log = log }
}

func NewRuntime(ev *interp.Evaluator, loop *Loop, opts ...Option) *Runtime {
	rt := &Runtime{
		loop:     loop,
		ev:       ev,
		log:      zap.NewNop(),
		analyses: map[*ast.BlockStatement]*analysis.FunctionAnalysis{},
	}
	for _, opt := range opts {
		opt(rt)
	}
	ev.CallAsync = rt.callAsync
	return rt
}

func (rt *Runtime) Loop() *Loop { return rt.loop }

func (rt *Runtime) analysisFor(fn *interp.Function) *analysis.FunctionAnalysis {
	if an, ok := rt.analyses[fn.Body]; ok {
		return an
	}
	an := analysis.Analyze(fn.Parameters, fn.Body)
	rt.analyses[fn.Body] = an
	return an
}

// callAsync implements the evaluator's async call protocol: allocate a
// frame, run the first resume step synchronously and hand back the
// completion promise. A body with no suspension points completes before
// callAsync returns, in exactly one resume step.
func (rt *Runtime) callAsync(fn *interp.Function, this interp.Object, args []interp.Object) interp.Object {
	an := rt.analysisFor(fn)
	fr := newFrame(fn, an, NewPromise(rt.loop))

	env := interp.BindCallEnvironment(fn, this, args)
	// Hoisted parameters move into frame-owned cells so resume descent
	// can re-establish them.
	for _, param := range fn.Parameters {
		if slot, ok := an.SlotOf(param); ok {
			val, _ := env.Get(param.Value)
			if val == nil {
				val = &interp.Undefined{}
			}
			cell := fr.cell(slot)
			cell.Value = val
			env.BindCell(param.Value, cell)
		}
	}
	fr.env = env

	rt.log.Debug("async call",
		zap.String("frame", fr.ID),
		zap.String("fn", fn.Inspect()),
		zap.Int("awaits", an.NumAwaits()),
		zap.Int("slots", an.NumSlots()))

	rt.step(fr, nil)
	return fr.promise
}

// Resume drives one step of a suspended frame. It never panics into the
// loop and never settles the completion handle more than once; resuming
// a finished frame is a no-op.
func (rt *Runtime) Resume(fr *Frame, value interp.Object, faulted bool) {
	if fr.State == StateDone {
		rt.log.Debug("resume on finished frame ignored", zap.String("frame", fr.ID))
		return
	}
	if fr.Running {
		rt.log.Error("resume on running frame ignored", zap.String("frame", fr.ID))
		return
	}
	if fr.State < 0 {
		rt.log.Error("resume on frame with no suspension", zap.String("frame", fr.ID))
		return
	}
	rs := &resumeState{target: fr.State, value: value, faulted: faulted}
	rt.step(fr, rs)
}

// step runs the frame until it suspends again or finishes, then settles
// the completion handle on finish. All outcomes, including runtime
// faults, funnel into the promise; nothing escapes synchronously.
func (rt *Runtime) step(fr *Frame, rs *resumeState) {
	fr.Running = true
	fr.State = StateRunning

	x := &exec{rt: rt, fr: fr, rs: rs}
	res := x.blockIn(fr.Analysis.Body, interp.NewEnclosedEnvironment(fr.env))

	fr.Running = false

	switch res.kind {
	case ctrlSuspend:
		rt.log.Debug("frame suspended",
			zap.String("frame", fr.ID), zap.Int("state", fr.State))
	case ctrlReturn:
		rt.finish(fr, res.value, false)
	case ctrlThrow:
		rt.finish(fr, res.value, true)
	case ctrlBreak, ctrlContinue:
		rt.finish(fr, &interp.String{Value: "loop control outside of a loop"}, true)
	default:
		rt.finish(fr, &interp.Undefined{}, false)
	}
}

func (rt *Runtime) finish(fr *Frame, value interp.Object, faulted bool) {
	fr.State = StateDone
	rt.log.Debug("frame finished",
		zap.String("frame", fr.ID),
		zap.Bool("faulted", faulted),
		zap.Int("suspensions", fr.Suspensions))
	if faulted {
		fr.promise.Reject(value)
		rt.faulted = append(rt.faulted, fr.promise)
	} else {
		fr.promise.Resolve(value)
	}
}

// UnhandledRejections returns the rejection values of async invocations
// whose faults nobody observed. Meaningful once the loop has drained.
func (rt *Runtime) UnhandledRejections() []interp.Object {
	var out []interp.Object
	for _, p := range rt.faulted {
		if !p.Handled() {
			out = append(out, p.Value())
		}
	}
	return out
}

// RegisterBuiltins installs the promise-producing host builtins.
func (rt *Runtime) RegisterBuiltins(env *interp.Environment) {
	env.Set(config.DelayFuncName, &interp.Builtin{Name: config.DelayFuncName, Fn: func(args ...interp.Object) interp.Object {
		if len(args) < 1 {
			return rt.ev.Throw("delay expects a duration in milliseconds")
		}
		ms, ok := args[0].(*interp.Number)
		if !ok {
			return rt.ev.Throw("delay expects a number, got %s", args[0].Type())
		}
		var val interp.Object = &interp.Undefined{}
		if len(args) > 1 {
			val = args[1]
		}
		p := NewPromise(rt.loop)
		rt.loop.AddPending()
		go func() {
			time.Sleep(time.Duration(ms.Value) * time.Millisecond)
			rt.loop.Post(func() { p.Resolve(val) })
			rt.loop.DonePending()
		}()
		return p
	}})

	env.Set(config.ResolvedFuncName, &interp.Builtin{Name: config.ResolvedFuncName, Fn: func(args ...interp.Object) interp.Object {
		var val interp.Object = &interp.Undefined{}
		if len(args) > 0 {
			val = args[0]
		}
		p := NewPromise(rt.loop)
		p.Resolve(val)
		return p
	}})

	env.Set(config.RejectedFuncName, &interp.Builtin{Name: config.RejectedFuncName, Fn: func(args ...interp.Object) interp.Object {
		var val interp.Object = &interp.Undefined{}
		if len(args) > 0 {
			val = args[0]
		}
		p := NewPromise(rt.loop)
		p.Reject(val)
		return p
	}})
}
