package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestNodeRunMergesCustomVarsAndPlaceholders(t *testing.T) {
	adapter := Adapter{
		Name:   "greet",
		Params: []string{"greeting"},
		Call: func(ctx context.Context, rt *Runtime, positional []Value, named map[string]Value) (Value, error) {
			return named["greeting"], nil
		},
	}
	node := NewNode("n", "greet", "", map[string]any{"greeting": "${upstream.output}"}, []string{"upstream"}, adapter)

	globalContext := map[string]Value{
		"upstream": map[string]Value{"output": "hello"},
	}

	rec := node.Run(context.Background(), &Runtime{}, nil, nil, globalContext)
	if rec.Status != StatusSuccess {
		t.Fatalf("expected success, got %s: %s", rec.Status, rec.Err)
	}
	if rec.Output != "hello" {
		t.Fatalf("expected resolved placeholder value, got %v", rec.Output)
	}
}

func TestNodeRunCallerNamedOverridesCustomVars(t *testing.T) {
	adapter := Adapter{
		Name:   "greet",
		Params: []string{"greeting"},
		Call: func(ctx context.Context, rt *Runtime, positional []Value, named map[string]Value) (Value, error) {
			return named["greeting"], nil
		},
	}
	node := NewNode("n", "greet", "", map[string]any{"greeting": "static"}, nil, adapter)

	rec := node.Run(context.Background(), &Runtime{}, nil, map[string]Value{"greeting": "runtime wins"}, nil)
	if rec.Output != "runtime wins" {
		t.Fatalf("expected runtime kwarg to win over custom_vars, got %v", rec.Output)
	}
}

func TestNodeRunFiltersUndeclaredCallerArgs(t *testing.T) {
	adapter := Adapter{
		Name:   "greet",
		Params: []string{"greeting"},
		Call: func(ctx context.Context, rt *Runtime, positional []Value, named map[string]Value) (Value, error) {
			if _, ok := named["extraneous"]; ok {
				return nil, errors.New("extraneous key leaked through the filter")
			}
			return "ok", nil
		},
	}
	node := NewNode("n", "greet", "", nil, nil, adapter)
	rec := node.Run(context.Background(), &Runtime{}, nil, map[string]Value{"extraneous": "nope"}, nil)
	if rec.Status != StatusSuccess {
		t.Fatalf("expected success, got error: %s", rec.Err)
	}
}

func TestNodeRunErrorBecomesFailRecord(t *testing.T) {
	adapter := Adapter{
		Name: "boom",
		Call: func(ctx context.Context, rt *Runtime, positional []Value, named map[string]Value) (Value, error) {
			return nil, errors.New("boom")
		},
	}
	node := NewNode("n", "boom", "", nil, nil, adapter)
	rec := node.Run(context.Background(), &Runtime{}, nil, nil, nil)
	if rec.Status != StatusError {
		t.Fatalf("expected error status, got %s", rec.Status)
	}
	if rec.Err != "boom" {
		t.Fatalf("expected error message preserved, got %q", rec.Err)
	}
	if !IsAbsent(rec.Output) {
		t.Fatal("failed node output must be absent")
	}
}

func TestNodeRunPanicRecovered(t *testing.T) {
	adapter := Adapter{
		Name: "panics",
		Call: func(ctx context.Context, rt *Runtime, positional []Value, named map[string]Value) (Value, error) {
			panic("unexpected")
		},
	}
	node := NewNode("n", "panics", "", nil, nil, adapter)
	rec := node.Run(context.Background(), &Runtime{}, nil, nil, nil)
	if rec.Status != StatusError {
		t.Fatalf("expected a panic to become a Fail record, got %s", rec.Status)
	}
}

func TestNodeRunPositionalDependencyOutputs(t *testing.T) {
	adapter := Adapter{
		Name: "combine",
		Call: func(ctx context.Context, rt *Runtime, positional []Value, named map[string]Value) (Value, error) {
			return positional, nil
		},
	}
	node := NewNode("n", "combine", "", nil, []string{"a", "b"}, adapter)
	rec := node.Run(context.Background(), &Runtime{}, []Value{"first", "second"}, nil, nil)
	out, ok := rec.Output.([]Value)
	if !ok || len(out) != 2 || out[0] != "first" || out[1] != "second" {
		t.Fatalf("expected positional outputs passed through in order, got %v", rec.Output)
	}
}

func TestNodeRunDefaultExecType(t *testing.T) {
	adapter := Adapter{Name: "noop", Call: func(ctx context.Context, rt *Runtime, positional []Value, named map[string]Value) (Value, error) {
		return nil, nil
	}}
	node := NewNode("n", "noop", "", nil, nil, adapter)
	if node.ExecType != defaultExecType {
		t.Fatalf("expected default exec type, got %q", node.ExecType)
	}
}

func TestNodeRunNilCallReturnsNotCallableError(t *testing.T) {
	node := NewNode("n", "missing", "", nil, nil, Adapter{Name: "missing"})
	rec := node.Run(context.Background(), &Runtime{}, nil, nil, nil)
	if rec.Status != StatusError {
		t.Fatalf("expected error for nil Call, got %s", rec.Status)
	}
}
