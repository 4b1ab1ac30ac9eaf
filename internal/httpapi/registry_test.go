package httpapi

import (
	"testing"
	"time"

	"github.com/danshapiro/flowdag/internal/engine"
)

func TestRunRegistryRegisterAndGet(t *testing.T) {
	reg := NewRunRegistry()
	state := &RunState{RunID: "run-1", Broadcaster: NewBroadcaster(), StartedAt: time.Now()}
	if err := reg.Register("run-1", state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := reg.Get("run-1")
	if !ok || got != state {
		t.Fatal("expected to retrieve the registered run state")
	}
}

func TestRunRegistryRejectsDuplicateID(t *testing.T) {
	reg := NewRunRegistry()
	state := &RunState{RunID: "dup", Broadcaster: NewBroadcaster()}
	if err := reg.Register("dup", state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.Register("dup", state); err == nil {
		t.Fatal("expected duplicate registration to error")
	}
}

func TestRunRegistryGetMissing(t *testing.T) {
	reg := NewRunRegistry()
	if _, ok := reg.Get("missing"); ok {
		t.Fatal("expected missing run to report not found")
	}
}

func TestRunStateSetResultAndSnapshot(t *testing.T) {
	state := &RunState{Broadcaster: NewBroadcaster()}
	env := engine.Envelope{RunID: "r1", Success: true}
	state.SetResult(env, nil)

	gotEnv, gotErr, done := state.Snapshot()
	if !done {
		t.Fatal("expected done=true after SetResult")
	}
	if gotErr != nil {
		t.Fatalf("expected no error, got %v", gotErr)
	}
	if gotEnv.RunID != "r1" {
		t.Fatalf("expected envelope preserved, got %+v", gotEnv)
	}
}

func TestRunRegistryList(t *testing.T) {
	reg := NewRunRegistry()
	_ = reg.Register("a", &RunState{Broadcaster: NewBroadcaster()})
	_ = reg.Register("b", &RunState{Broadcaster: NewBroadcaster()})
	ids := reg.List()
	if len(ids) != 2 {
		t.Fatalf("expected 2 run ids, got %d", len(ids))
	}
}
