package server

import (
	"context"
	"testing"
)

func TestRunManager_StartAndFinish(t *testing.T) {
	rm := NewRunManager()

	ctx, gen, err := rm.Start(context.Background(), "c1", "r1")
	if err != nil {
		t.Fatal(err)
	}
	if rm.Len() != 1 {
		t.Fatalf("expected 1 run, got %d", rm.Len())
	}

	rm.Finish("c1", "r1", gen)
	if rm.Len() != 0 {
		t.Errorf("expected 0 runs after finish, got %d", rm.Len())
	}
	if ctx.Err() == nil {
		t.Error("finished run context should be released")
	}
}

func TestRunManager_DuplicateID(t *testing.T) {
	rm := NewRunManager()
	defer rm.CancelAll()

	if _, _, err := rm.Start(context.Background(), "c1", "r1"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := rm.Start(context.Background(), "c1", "r1"); err == nil {
		t.Error("expected error for duplicate in-flight id")
	}
	// Same id on another connection is a different run
	if _, _, err := rm.Start(context.Background(), "c2", "r1"); err != nil {
		t.Errorf("same id on another connection: %v", err)
	}
}

func TestRunManager_Cancel(t *testing.T) {
	rm := NewRunManager()

	ctx, _, err := rm.Start(context.Background(), "c1", "r1")
	if err != nil {
		t.Fatal(err)
	}

	if !rm.Cancel("c1", "r1") {
		t.Error("Cancel should report an in-flight run")
	}
	if ctx.Err() != context.Canceled {
		t.Errorf("ctx.Err() = %v, want context.Canceled", ctx.Err())
	}
	if rm.Cancel("c1", "r1") {
		t.Error("second Cancel should report nothing in flight")
	}
}

func TestRunManager_CancelConn(t *testing.T) {
	rm := NewRunManager()
	defer rm.CancelAll()

	a, _, _ := rm.Start(context.Background(), "c1", "r1")
	b, _, _ := rm.Start(context.Background(), "c1", "r2")
	other, _, _ := rm.Start(context.Background(), "c2", "r1")

	rm.CancelConn("c1")

	if a.Err() == nil || b.Err() == nil {
		t.Error("runs of c1 should be cancelled")
	}
	if other.Err() != nil {
		t.Error("runs of c2 should survive")
	}
	if rm.Len() != 1 {
		t.Errorf("expected 1 remaining run, got %d", rm.Len())
	}
}

func TestRunManager_CancelAll(t *testing.T) {
	rm := NewRunManager()

	a, _, _ := rm.Start(context.Background(), "c1", "r1")
	b, _, _ := rm.Start(context.Background(), "c2", "r2")

	rm.CancelAll()

	if a.Err() == nil || b.Err() == nil {
		t.Error("all runs should be cancelled")
	}
	if rm.Len() != 0 {
		t.Errorf("expected 0 runs, got %d", rm.Len())
	}
}

func TestRunManager_ReusedIDAfterCancel(t *testing.T) {
	rm := NewRunManager()
	defer rm.CancelAll()

	first, firstGen, err := rm.Start(context.Background(), "c1", "a")
	if err != nil {
		t.Fatal(err)
	}
	rm.Cancel("c1", "a")

	second, _, err := rm.Start(context.Background(), "c1", "a")
	if err != nil {
		t.Fatalf("restarting a cancelled id: %v", err)
	}

	// The first run unwinds after the id was reused
	rm.Finish("c1", "a", firstGen)

	if first.Err() == nil {
		t.Error("first run should be cancelled")
	}
	if second.Err() != nil {
		t.Errorf("second run cancelled by the first run's Finish: %v", second.Err())
	}
	if rm.Len() != 1 {
		t.Errorf("expected the second run to stay registered, got %d runs", rm.Len())
	}
}
