package async

import (
	"github.com/driftlang/drift/internal/interp"
)

type PromiseState int

const (
	Pending PromiseState = iota
	Fulfilled
	Rejected
)

// Promise is the completion handle of an async invocation. It is
// loop-confined: every method must be called from the event loop
// goroutine, which is why no locking appears here. Host operations that
// finish on other goroutines post their settlement through Loop.Post.
type Promise struct {
	loop      *Loop
	state     PromiseState
	value     interp.Object
	handled   bool
	callbacks []func(fulfilled bool, value interp.Object)
}

func NewPromise(loop *Loop) *Promise {
	return &Promise{loop: loop}
}

func (p *Promise) Type() interp.ObjectType { return interp.PROMISE_OBJ }

func (p *Promise) Inspect() string {
	switch p.state {
	case Fulfilled:
		return "Promise { " + p.value.Inspect() + " }"
	case Rejected:
		return "Promise { <rejected> " + p.value.Inspect() + " }"
	}
	return "Promise { <pending> }"
}

func (p *Promise) State() PromiseState { return p.state }

// Value returns the settlement value; only meaningful once settled.
func (p *Promise) Value() interp.Object { return p.value }

// MarkHandled records that some consumer observed the outcome, which
// excludes the promise from unhandled-rejection reporting.
func (p *Promise) MarkHandled() { p.handled = true }

// Handled reports whether any consumer observed the outcome.
func (p *Promise) Handled() bool { return p.handled }

// Resolve settles the promise. Resolving with another promise adopts its
// eventual outcome instead of fulfilling with the promise object itself.
// Settling is idempotent: after the first settlement all later calls are
// ignored.
func (p *Promise) Resolve(val interp.Object) {
	if p.state != Pending {
		return
	}
	if inner, ok := val.(*Promise); ok {
		if inner == p {
			p.settle(false, &interp.String{Value: "promise resolved with itself"})
			return
		}
		inner.OnSettle(func(fulfilled bool, v interp.Object) {
			p.settle(fulfilled, v)
		})
		return
	}
	p.settle(true, val)
}

// Reject settles the promise with a fault. Rejection values are not
// adopted even when they are promises.
func (p *Promise) Reject(val interp.Object) {
	p.settle(false, val)
}

func (p *Promise) settle(fulfilled bool, val interp.Object) {
	if p.state != Pending {
		return
	}
	if fulfilled {
		p.state = Fulfilled
	} else {
		p.state = Rejected
	}
	p.value = val
	cbs := p.callbacks
	p.callbacks = nil
	for _, cb := range cbs {
		cb := cb
		p.loop.Post(func() { cb(fulfilled, val) })
	}
}

// OnSettle registers a settlement callback. It always fires as its own
// loop task, even when the promise is already settled, so observers see
// a consistent ordering. Callers that want to react to an
// already-settled promise without a task boundary check State directly.
func (p *Promise) OnSettle(fn func(fulfilled bool, value interp.Object)) {
	p.handled = true
	if p.state != Pending {
		fulfilled := p.state == Fulfilled
		val := p.value
		p.loop.Post(func() { fn(fulfilled, val) })
		return
	}
	p.callbacks = append(p.callbacks, fn)
}
