package workflow

import (
	"context"
	"time"
)

// Node is an executor node (spec §4.4 / C4): immutable after compile, bound
// to a registry adapter, holding its static parameters and dependency list.
type Node struct {
	Name       string
	Func       string // registry key, resolved at compile time
	ExecType   string // opaque label, default "default"
	CustomVars map[string]any
	DependsOn  []string

	adapter Adapter // resolved at compile time; must be callable
}

const defaultExecType = "default"

// NewNode constructs a compiled executor node bound to its resolved
// adapter. Only the DSL compiler (internal/dsl) calls this — compile-time
// resolution is what makes Node immutable and safe to run concurrently
// with other nodes once built.
func NewNode(name, fn, execType string, customVars map[string]any, dependsOn []string, adapter Adapter) *Node {
	if execType == "" {
		execType = defaultExecType
	}
	return &Node{
		Name:       name,
		Func:       fn,
		ExecType:   execType,
		CustomVars: customVars,
		DependsOn:  dependsOn,
		adapter:    adapter,
	}
}

// Run assembles arguments per spec §4.4's merge policy and invokes the
// bound adapter, producing a Record. A panic or error from the adapter
// becomes a Fail record rather than propagating — spec §7: "a failure in
// one node never aborts the rest of the graph".
func (n *Node) Run(ctx context.Context, rt *Runtime, positional []Value, callerNamed map[string]Value, globalContext map[string]Value) (rec Record) {
	start := time.Now()

	// Step 1: start with declared custom_vars.
	resolved := make(map[string]Value, len(n.CustomVars)+len(callerNamed))
	for k, v := range n.CustomVars {
		resolved[k] = v
	}

	// Step 2: resolve placeholders against the reserved _global_context.
	for k, v := range resolved {
		resolved[k] = Resolve(v, globalContext)
	}

	// Step 3: overlay caller-supplied named args that match formal params
	// (custom_vars, post-resolve, < runtime kwargs — §9 open question
	// resolved explicitly in SPEC_FULL.md).
	for k, v := range callerNamed {
		if n.adapter.accepts(k) {
			resolved[k] = v
		}
	}

	// Parameter filtering: discard anything the adapter's descriptor doesn't
	// declare (spec §4.4), except for values that came from custom_vars —
	// those are the node's own declared static parameters, not "extraneous
	// context keys", so they always survive the filter. Only caller-supplied
	// keys are filtered; custom_vars already passed a narrower list.
	filtered := make(map[string]Value, len(resolved))
	for k, v := range resolved {
		if _, declared := n.CustomVars[k]; declared || n.adapter.accepts(k) {
			filtered[k] = v
		}
	}

	defer func() {
		end := time.Now()
		if p := recover(); p != nil {
			rec = Fail(n.Name, panicToError(p), copyAny(n.CustomVars), toAny(filtered), start, end)
		}
	}()

	if n.adapter.Call == nil {
		end := time.Now()
		return Fail(n.Name, errNotCallable, copyAny(n.CustomVars), toAny(filtered), start, end)
	}

	out, err := n.adapter.Call(ctx, rt, positional, filtered)
	end := time.Now()
	if err != nil {
		return Fail(n.Name, err, copyAny(n.CustomVars), toAny(filtered), start, end)
	}
	return Ok(n.Name, out, copyAny(n.CustomVars), toAny(filtered), start, end)
}

func toAny(m map[string]Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyAny(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type panicError struct{ value any }

func (e *panicError) Error() string {
	return "panic: " + Stringify(e.value)
}

func panicToError(p any) error {
	if err, ok := p.(error); ok {
		return err
	}
	return &panicError{value: p}
}
