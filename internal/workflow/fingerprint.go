package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// fingerprint hashes a node's identity and resolved arguments with blake3,
// the same hashing primitive the teacher uses for CXDB content-addressing
// (internal/attractor/engine/cxdb_sink.go). Here it is purely a diagnostic
// field on the execution record — useful for correlating two runs of the
// same node in logs — and is never consulted by the scheduler or compiler.
func fingerprint(name string, resolvedParams map[string]any, output Value) string {
	h := blake3.New()
	fmt.Fprintf(h, "name=%s\n", name)
	if b, err := json.Marshal(canonicalize(resolvedParams)); err == nil {
		h.Write(b)
	}
	if !IsAbsent(output) {
		if b, err := json.Marshal(canonicalize(output)); err == nil {
			h.Write(b)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// canonicalize converts map[string]Value trees into map[string]any so that
// encoding/json produces a deterministic (sorted-key) byte stream.
func canonicalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = canonicalize(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = canonicalize(vv)
		}
		return out
	default:
		return t
	}
}
