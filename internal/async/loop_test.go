package async

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	loop := NewLoop()
	var order []int
	loop.Post(func() { order = append(order, 1) })
	loop.Post(func() { order = append(order, 2) })
	loop.Post(func() { order = append(order, 3) })

	if err := loop.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}

func TestLoopIdleReturnsImmediately(t *testing.T) {
	loop := NewLoop()
	if err := loop.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestTasksMayPostMoreTasks(t *testing.T) {
	loop := NewLoop()
	ran := false
	loop.Post(func() {
		loop.Post(func() { ran = true })
	})
	if err := loop.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("nested task never ran")
	}
}

func TestPendingHostOperationKeepsLoopAlive(t *testing.T) {
	loop := NewLoop()
	done := false
	loop.AddPending()
	go func() {
		time.Sleep(10 * time.Millisecond)
		loop.Post(func() { done = true })
		loop.DonePending()
	}()

	if err := loop.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Error("posted task never ran")
	}
}

func TestContextCancelStopsLoop(t *testing.T) {
	loop := NewLoop()
	loop.AddPending() // never balanced

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := loop.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
