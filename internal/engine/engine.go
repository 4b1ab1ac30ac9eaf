package engine

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/danshapiro/flowdag/internal/dsl"
	"github.com/danshapiro/flowdag/internal/workflow"
)

// Engine is the facade entry point (spec §4.7). It owns the function
// registry and the runtime context object injected into every adapter call.
type Engine struct {
	Registry *workflow.Registry
	Runtime  *workflow.Runtime
}

// New constructs an Engine with the built-in adapter set preloaded (spec
// §4.3: "The registry preloads a set of built-in adapters at engine
// construction").
func New(rt *workflow.Runtime) *Engine {
	r := workflow.NewRegistry()
	workflow.RegisterBuiltins(r)
	if rt == nil {
		rt = &workflow.Runtime{}
	}
	return &Engine{Registry: r, Runtime: rt}
}

// RegisterFunction registers or replaces a function binding at runtime
// (spec §6: register_function).
func (e *Engine) RegisterFunction(name string, a workflow.Adapter) {
	a.Name = name
	e.Registry.Register(a)
}

// ListFunctions returns every registered function name (spec §6: list_functions).
func (e *Engine) ListFunctions() []string {
	return e.Registry.List()
}

// BaseRuntime returns the engine's shared runtime context, for callers that
// need to derive a per-request copy (e.g. to attach a distinct
// OnNodeComplete hook) without mutating the shared one.
func (e *Engine) BaseRuntime() *workflow.Runtime {
	return e.Runtime
}

// Execute compiles document and runs it to completion (spec §4.7 steps 1-5),
// using the engine's shared runtime context.
func (e *Engine) Execute(ctx context.Context, document []byte, inputs map[string]any, hint dsl.SurfaceHint) (Envelope, error) {
	return e.ExecuteWithRuntime(ctx, document, inputs, hint, e.Runtime)
}

// ExecuteWithRuntime is Execute with an explicit runtime context object,
// letting a caller (e.g. the HTTP facade) supply a per-run copy — say, one
// with OnNodeComplete wired to a progress broadcaster — without mutating
// the engine's shared Runtime and racing concurrent requests. The run id is
// minted here.
func (e *Engine) ExecuteWithRuntime(ctx context.Context, document []byte, inputs map[string]any, hint dsl.SurfaceHint, rt *workflow.Runtime) (Envelope, error) {
	return e.ExecuteWithRunID(ctx, document, inputs, hint, rt, NewRunID())
}

// NewRunID mints a sortable, collision-resistant run identifier, exported so
// a caller that must know the id before a run finishes (e.g. the HTTP
// facade, which has to register bookkeeping for a run before it streams any
// events) can mint one up front and pass it to ExecuteWithRunID.
func NewRunID() string {
	return ulid.Make().String()
}

// ExecuteWithRunID is ExecuteWithRuntime with a caller-assigned run id
// instead of one minted internally.
func (e *Engine) ExecuteWithRunID(ctx context.Context, document []byte, inputs map[string]any, hint dsl.SurfaceHint, rt *workflow.Runtime, runID string) (Envelope, error) {
	raw, err := dsl.Parse(document, hint)
	if err != nil {
		ce := &workflow.CompileError{Kind: "compile", Message: "failed to parse document", Cause: err}
		return Envelope{RunID: runID, Success: false, Error: ce.Error()}, ce
	}

	graph, doc, err := dsl.Compile(raw, e.Registry)
	if err != nil {
		return Envelope{
			RunID:   runID,
			Success: false,
			DSL:     raw,
			Inputs:  inputs,
			Error:   err.Error(),
		}, err
	}

	// Merge DSL-declared inputs under runtime inputs: runtime wins on
	// collision (spec §4.7 step 2 / §9 open question resolved explicitly).
	merged := make(map[string]workflow.Value, len(doc.Inputs)+len(inputs))
	for k, v := range doc.Inputs {
		merged[k] = v
	}
	for k, v := range inputs {
		merged[k] = v
	}

	results := graph.Run(ctx, rt, merged)

	env := Envelope{
		RunID:    runID,
		Success:  aggregateSuccess(results),
		DSL:      raw,
		Inputs:   toAnyMap(merged),
		Results:  results,
		Metadata: doc.Metadata,
	}
	if !env.Success {
		env.Error = aggregateError(results)
	}

	if doc.Output != nil {
		snapshot := finalSnapshot(merged, results)
		env.Output = workflow.Resolve(doc.Output, snapshot)
	}

	return env, nil
}

// ExecuteSimple is spec §4.7's convenience operation: a one-node graph
// calling llm_simple_call with userInput as its sole argument.
func (e *Engine) ExecuteSimple(ctx context.Context, userInput string) (Envelope, error) {
	document := []byte(`{"executors":[{"name":"simple","func":"llm_simple_call"}]}`)
	inputs := map[string]any{"user_input": userInput}
	return e.Execute(ctx, document, inputs, dsl.SurfaceJSON)
}

func toAnyMap(m map[string]workflow.Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func finalSnapshot(inputs map[string]workflow.Value, results map[string]workflow.Record) map[string]workflow.Value {
	snap := make(map[string]workflow.Value, len(inputs)+2*len(results))
	for k, v := range inputs {
		snap[k] = v
	}
	for name, rec := range results {
		snap[name] = rec
		if rec.Status == workflow.StatusSuccess {
			snap[name+".output"] = rec.Output
		}
	}
	return snap
}
