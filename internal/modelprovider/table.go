// Package modelprovider implements the "model provider configuration"
// collaborator spec §4.3/§9 describes: a lookup table from model name to
// endpoint descriptor, injected into the engine rather than read from a
// package-level global. Grounded on the Python original's
// llm_flow_engine/model_config.py (ModelConfigProvider) and on the
// teacher's providerspec endpoint-descriptor shape, trimmed down to just
// the fields the core's Runtime.ModelProviderTable interface needs.
package modelprovider

import "github.com/danshapiro/flowdag/internal/workflow"

// Table is a mutable model->endpoint lookup, safe for concurrent Lookup
// calls once constructed (adapters only ever read it).
type Table struct {
	entries map[string]workflow.ModelEndpoint
	fallback workflow.ModelEndpoint
}

// Default mirrors the Python original's DEFAULT_MODEL_PROVIDERS table: a
// small set of local Ollama models plus an OpenAI-compatible fallback for
// anything unrecognized.
func Default() *Table {
	t := &Table{
		entries: map[string]workflow.ModelEndpoint{
			"gemma3:4b": {Platform: "ollama", APIURL: "http://localhost:11434/api/chat", MaxTokens: 8192},
			"qwen2.5":   {Platform: "ollama", APIURL: "http://localhost:11434/api/chat", MaxTokens: 8192},
			"gemma2":    {Platform: "ollama", APIURL: "http://localhost:11434/api/chat", MaxTokens: 8192},
			"phi3":      {Platform: "ollama", APIURL: "http://localhost:11434/api/chat", MaxTokens: 4096},
		},
		fallback: workflow.ModelEndpoint{
			Platform:  "openai_compatible",
			APIURL:    "https://api.openai.com/v1/chat/completions",
			MaxTokens: 4096,
		},
	}
	return t
}

// Lookup implements workflow.ModelProviderTable: known models return their
// entry; unknown models fall back to the OpenAI-compatible default rather
// than failing, matching the Python original's get_model_config behavior.
func (t *Table) Lookup(model string) (workflow.ModelEndpoint, bool) {
	if e, ok := t.entries[model]; ok {
		return e, true
	}
	return t.fallback, true
}

// Add registers or replaces a model's endpoint descriptor.
func (t *Table) Add(model string, endpoint workflow.ModelEndpoint) {
	if t.entries == nil {
		t.entries = map[string]workflow.ModelEndpoint{}
	}
	t.entries[model] = endpoint
}

// Remove deletes a model's endpoint descriptor, reverting lookups for it to the fallback.
func (t *Table) Remove(model string) {
	delete(t.entries, model)
}

// Models lists every explicitly configured model name (excludes the fallback).
func (t *Table) Models() []string {
	out := make([]string, 0, len(t.entries))
	for m := range t.entries {
		out = append(out, m)
	}
	return out
}
