// Package engine implements the top-level facade (spec §4.7 / C7): it wires
// together the DSL compiler, the function registry, and the DAG scheduler,
// and assembles the result envelope returned to callers.
package engine

import "github.com/danshapiro/flowdag/internal/workflow"

// Envelope is the result object returned from Execute (spec §4.7/§6).
type Envelope struct {
	RunID    string                     `json:"run_id" msgpack:"run_id"`
	Success  bool                       `json:"success" msgpack:"success"`
	DSL      map[string]any             `json:"dsl" msgpack:"dsl"`
	Inputs   map[string]any             `json:"inputs" msgpack:"inputs"`
	Results  map[string]workflow.Record `json:"results" msgpack:"results"`
	Metadata map[string]any             `json:"metadata,omitempty" msgpack:"metadata,omitempty"`
	Output   any                        `json:"output,omitempty" msgpack:"output,omitempty"`
	Error    string                     `json:"error,omitempty" msgpack:"error,omitempty"`
}

// aggregateSuccess implements spec §7: "success in the envelope is the
// conjunction over all records."
func aggregateSuccess(results map[string]workflow.Record) bool {
	for _, r := range results {
		if r.Status != workflow.StatusSuccess {
			return false
		}
	}
	return true
}

// aggregateError builds the short aggregated summary spec §6 requires for
// a partial-failure envelope: one "name: error" entry per failed node,
// joined with "; " on a single line.
func aggregateError(results map[string]workflow.Record) string {
	var failed []string
	for name, r := range results {
		if r.Status != workflow.StatusSuccess {
			failed = append(failed, name+": "+r.Err)
		}
	}
	if len(failed) == 0 {
		return ""
	}
	summary := failed[0]
	for _, f := range failed[1:] {
		summary += "; " + f
	}
	return summary
}
