package workflow

import "fmt"

// CompileError is the fatal-before-any-node-runs error category (§7 of the
// spec: compile errors abort the graph and are surfaced to the caller).
// UnknownFunctionError and CyclicGraphError are subtypes, matching the
// taxonomy's "subtype of CompileError" relationship via errors.As on the
// embedded kind.
type CompileError struct {
	Kind    string // "compile" | "unknown_function" | "cyclic_graph"
	Message string
	Cause   error
}

func (e *CompileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Cause }

func newCompileError(format string, args ...any) *CompileError {
	return &CompileError{Kind: "compile", Message: fmt.Sprintf(format, args...)}
}

// UnknownFunctionError reports a DSL node referencing a function name that
// was never registered (spec §4.3/§4.6).
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown_function: %q is not registered", e.Name)
}

// AsCompileError lets UnknownFunctionError participate in the CompileError
// family without forcing every caller to type-switch on both.
func (e *UnknownFunctionError) AsCompileError() *CompileError {
	return &CompileError{Kind: "unknown_function", Message: e.Error(), Cause: e}
}

// CyclicGraphError reports a dependency graph that never reaches a fully
// topologically-sorted state (spec §4.6).
type CyclicGraphError struct {
	Remaining []string // node names still blocked after a full pass
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("cyclic_graph: nodes never became ready: %v", e.Remaining)
}

func (e *CyclicGraphError) AsCompileError() *CompileError {
	return &CompileError{Kind: "cyclic_graph", Message: e.Error(), Cause: e}
}
