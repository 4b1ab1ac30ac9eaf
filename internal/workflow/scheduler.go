package workflow

import "context"

// Graph is the compiled DAG (spec §3 / C5): executor nodes plus the
// dependency map and its derived fan-out (reverse-dependency) map.
type Graph struct {
	Nodes   map[string]*Node
	DepMap  map[string][]string
	reverse map[string][]string
}

// NewGraph builds the reverse-dependency map (fan-out: who waits on me) and
// validates the two invariants spec §3 requires of a compiled graph: dep_map
// keys equal node keys, and every dependency name is itself a node.
func NewGraph(nodes map[string]*Node, depMap map[string][]string) (*Graph, error) {
	for name := range depMap {
		if _, ok := nodes[name]; !ok {
			return nil, newCompileError("dep_map entry %q has no matching node", name)
		}
	}
	for name := range nodes {
		if _, ok := depMap[name]; !ok {
			return nil, newCompileError("node %q missing from dep_map", name)
		}
	}
	reverse := make(map[string][]string, len(nodes))
	for name := range nodes {
		reverse[name] = nil
	}
	for name, deps := range depMap {
		for _, dep := range deps {
			if _, ok := nodes[dep]; !ok {
				return nil, newCompileError("node %q depends on unknown node %q", name, dep)
			}
			reverse[dep] = append(reverse[dep], name)
		}
	}
	return &Graph{Nodes: nodes, DepMap: depMap, reverse: reverse}, nil
}

// CheckAcyclic verifies the graph is acyclic by the same topological
// technique the scheduler itself uses: repeatedly releasing nodes whose
// remaining-dependency count hits zero. Any node left over after a full
// pass can never run (spec §4.6).
func (g *Graph) CheckAcyclic() error {
	remaining := make(map[string]int, len(g.Nodes))
	for name, deps := range g.DepMap {
		remaining[name] = len(deps)
	}
	ready := make([]string, 0, len(g.Nodes))
	for name, c := range remaining {
		if c == 0 {
			ready = append(ready, name)
		}
	}
	visited := make(map[string]bool, len(g.Nodes))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		if visited[next] {
			continue
		}
		visited[next] = true
		for _, downstream := range g.reverse[next] {
			remaining[downstream]--
			if remaining[downstream] == 0 {
				ready = append(ready, downstream)
			}
		}
	}
	if len(visited) != len(g.Nodes) {
		var stuck []string
		for name := range g.Nodes {
			if !visited[name] {
				stuck = append(stuck, name)
			}
		}
		return (&CyclicGraphError{Remaining: stuck}).AsCompileError()
	}
	return nil
}

type nodeResult struct {
	name string
	rec  Record
}

// Run drives concurrent, dependency-ordered execution of the graph (spec
// §4.5 / C5), translating the source's asyncio "wait for any, release
// downstream" loop into goroutines and a results channel: every node body
// runs on its own goroutine, but all bookkeeping (results, remaining
// counts, launching newly-ready nodes) happens on this single calling
// goroutine, giving the same "atomic with respect to scheduler code"
// guarantee spec §5 requires without an explicit mutex.
func (g *Graph) Run(ctx context.Context, rt *Runtime, inputs map[string]Value) map[string]Record {
	results := make(map[string]Record, len(g.Nodes))
	remaining := make(map[string]int, len(g.Nodes))
	for name, deps := range g.DepMap {
		remaining[name] = len(deps)
	}

	ch := make(chan nodeResult, len(g.Nodes))
	running := 0

	launch := func(name string) {
		node := g.Nodes[name]
		deps := g.DepMap[name]

		positional := make([]Value, len(deps))
		for i, dep := range deps {
			positional[i] = results[dep].OutputOrAbsent()
		}

		snapshot := snapshotContext(inputs, results)

		running++
		go func() {
			rec := node.Run(ctx, rt, positional, inputs, snapshot)
			ch <- nodeResult{name: name, rec: rec}
		}()
	}

	for name, c := range remaining {
		if c == 0 {
			launch(name)
		}
	}

	for running > 0 {
		res := <-ch
		running--
		results[res.name] = res.rec
		if rt != nil && rt.OnNodeComplete != nil {
			rt.OnNodeComplete(res.rec)
		}
		for _, downstream := range g.reverse[res.name] {
			remaining[downstream]--
			if remaining[downstream] == 0 {
				launch(downstream)
			}
		}
	}

	return results
}

// snapshotContext builds the running-context snapshot spec §4.5 requires:
// every runtime input, plus finished_name → record and finished_name.output
// → record.output for every node that has completed so far. It is a fresh
// copy each call, so a node's argument assembly never races the scheduler's
// next mutation of results (spec §5: "assembly receives a snapshot copy").
func snapshotContext(inputs map[string]Value, results map[string]Record) map[string]Value {
	ctx := make(map[string]Value, len(inputs)+2*len(results))
	for k, v := range inputs {
		ctx[k] = v
	}
	for name, rec := range results {
		ctx[name] = rec
		if rec.Status == StatusSuccess {
			ctx[name+".output"] = rec.Output
		}
	}
	return ctx
}
