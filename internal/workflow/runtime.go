package workflow

import "context"

// Provider is the single-method collaborator the core needs from an LLM
// backend. Its internals (HTTP transport, message formatting, streaming)
// are deliberately opaque to the core per spec §1 — the core only needs
// something it can call and inject explicitly.
type Provider interface {
	Complete(ctx context.Context, model string, prompt string) (string, error)
}

// Runtime is the explicit context object threaded through every adapter
// call, replacing the source's module-level global model-provider variable
// (spec §9's design note). Adapters that need the active provider read it
// from here instead of a package-level variable.
type Runtime struct {
	Provider Provider

	// ModelProviders is the lookup table from model name to endpoint
	// descriptor (spec §4.3's "Model provider configuration" collaborator).
	ModelProviders ModelProviderTable

	// DefaultModel is used by the llm_* builtins when the DSL/inputs don't name one.
	DefaultModel string

	// OnNodeComplete, if set, is called by the scheduler on its own
	// goroutine immediately after a node's record is stored — never
	// concurrently with another call, and never before the node's
	// dependents can see it in the context snapshot. Used by the HTTP
	// facade to stream per-node progress events; the core scheduler
	// algorithm does not otherwise depend on it.
	OnNodeComplete func(Record)
}

// ModelProviderTable is the minimal interface the core needs from the model
// configuration collaborator — a lookup by model name. The concrete table
// lives in internal/modelprovider and is injected here, never referenced by
// package name from within workflow (spec §1: "external collaborators").
type ModelProviderTable interface {
	Lookup(model string) (ModelEndpoint, bool)
}

// ModelEndpoint is the endpoint descriptor a provider config table returns.
type ModelEndpoint struct {
	Platform string
	APIURL   string
	MaxTokens int
}
