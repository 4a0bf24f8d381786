package async

import (
	"context"
	"testing"

	"github.com/driftlang/drift/internal/interp"
)

func TestPromiseSettlesOnce(t *testing.T) {
	loop := NewLoop()
	p := NewPromise(loop)

	p.Resolve(&interp.Number{Value: 1})
	p.Reject(&interp.String{Value: "late"})
	p.Resolve(&interp.Number{Value: 2})

	if p.State() != Fulfilled {
		t.Fatalf("state = %v, want fulfilled", p.State())
	}
	num := p.Value().(*interp.Number)
	if num.Value != 1 {
		t.Errorf("value = %v, want 1", num.Value)
	}
}

func TestResolveAdoptsPromise(t *testing.T) {
	loop := NewLoop()
	inner := NewPromise(loop)
	outer := NewPromise(loop)

	outer.Resolve(inner)
	if outer.State() != Pending {
		t.Fatalf("outer settled before inner")
	}

	inner.Resolve(&interp.String{Value: "done"})
	if err := loop.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if outer.State() != Fulfilled {
		t.Fatalf("outer state = %v, want fulfilled", outer.State())
	}
	if got := outer.Value().Inspect(); got != "done" {
		t.Errorf("outer value = %q, want %q", got, "done")
	}
}

func TestAdoptionPropagatesRejection(t *testing.T) {
	loop := NewLoop()
	inner := NewPromise(loop)
	outer := NewPromise(loop)

	outer.Resolve(inner)
	inner.Reject(&interp.String{Value: "bad"})
	if err := loop.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if outer.State() != Rejected {
		t.Fatalf("outer state = %v, want rejected", outer.State())
	}
}

func TestRejectDoesNotAdopt(t *testing.T) {
	loop := NewLoop()
	inner := NewPromise(loop)
	outer := NewPromise(loop)

	outer.Reject(inner)
	if outer.State() != Rejected {
		t.Fatalf("outer state = %v, want rejected", outer.State())
	}
	if outer.Value() != interp.Object(inner) {
		t.Errorf("rejection value should be the promise object itself")
	}
}

func TestResolveWithSelfRejects(t *testing.T) {
	loop := NewLoop()
	p := NewPromise(loop)
	p.Resolve(p)
	if p.State() != Rejected {
		t.Fatalf("state = %v, want rejected", p.State())
	}
}

func TestOnSettleAlreadySettledFiresAsTask(t *testing.T) {
	loop := NewLoop()
	p := NewPromise(loop)
	p.Resolve(&interp.Number{Value: 5})

	fired := false
	p.OnSettle(func(fulfilled bool, val interp.Object) {
		fired = true
		if !fulfilled {
			t.Errorf("fulfilled = false, want true")
		}
	})
	if fired {
		t.Fatal("callback ran synchronously, want a loop task")
	}
	if err := loop.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !fired {
		t.Fatal("callback never ran")
	}
}

func TestOnSettleCallbackOrder(t *testing.T) {
	loop := NewLoop()
	p := NewPromise(loop)

	var order []int
	p.OnSettle(func(bool, interp.Object) { order = append(order, 1) })
	p.OnSettle(func(bool, interp.Object) { order = append(order, 2) })
	p.Resolve(&interp.Undefined{})
	if err := loop.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("callback order = %v, want [1 2]", order)
	}
}
