// Package workflow implements the DAG execution core: execution records,
// placeholder resolution, the function registry, executor nodes, and the
// concurrent scheduler.
package workflow

import "fmt"

// Value is the tagged payload carried through the graph. It stands in for
// the source's dynamically-typed Python values: a string, a number, a bool,
// a sequence, a mapping, or an opaque value passed through unexamined.
//
// Value is intentionally just any — Go's interface satisfies the "tagged
// union" role without a closed sum type, since every adapter already speaks
// the same five concrete shapes (string, float64, bool, []Value, map[string]Value)
// plus the escape hatch of "whatever the adapter returned".
type Value = any

// absentValue is the sentinel used for a failed node's output (and so for
// the positional argument a downstream node receives in its place). An
// unsatisfied placeholder lookup does not produce it: the placeholder text
// is left as is. It is never equal to any value a well-behaved adapter
// would return.
type absentValue struct{}

// Absent is the zero value of a node's output when the node failed.
var Absent Value = absentValue{}

// IsAbsent reports whether v is the Absent sentinel.
func IsAbsent(v Value) bool {
	_, ok := v.(absentValue)
	return ok || v == nil
}

// AsMap returns v as a map[string]Value if it is shaped like one.
func AsMap(v Value) (map[string]Value, bool) {
	m, ok := v.(map[string]Value)
	if ok {
		return m, true
	}
	m2, ok := v.(map[string]any)
	if ok {
		return m2, true
	}
	return nil, false
}

// AsSlice returns v as a []Value if it is shaped like one.
func AsSlice(v Value) ([]Value, bool) {
	s, ok := v.([]Value)
	if ok {
		return s, true
	}
	s2, ok := v.([]any)
	if ok {
		return s2, true
	}
	return nil, false
}

// Stringify renders v the way the placeholder resolver splices a resolved
// match into surrounding text.
func Stringify(v Value) string {
	if IsAbsent(v) {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
