package dsl

import (
	"fmt"

	"github.com/danshapiro/flowdag/internal/workflow"
)

// Compile validates and lowers a parsed DSL document into a workflow.Graph
// (spec §4.6 / C6). registry is consulted to resolve each node's func
// reference to a callable adapter at compile time.
func Compile(raw map[string]any, registry *workflow.Registry) (*workflow.Graph, Document, error) {
	if err := validateSchema(raw); err != nil {
		return nil, Document{}, &workflow.CompileError{Kind: "compile", Message: "document failed schema validation", Cause: err}
	}

	doc, err := extractDocument(raw)
	if err != nil {
		return nil, Document{}, &workflow.CompileError{Kind: "compile", Message: "invalid document", Cause: err}
	}

	if err := validateUniqueNames(doc.Executors); err != nil {
		return nil, doc, err
	}

	nodes := make(map[string]*workflow.Node, len(doc.Executors))
	depMap := make(map[string][]string, len(doc.Executors))
	names := make(map[string]bool, len(doc.Executors))
	for _, spec := range doc.Executors {
		names[spec.Name] = true
	}

	for _, spec := range doc.Executors {
		adapter, lookupErr := registry.Lookup(spec.Func)
		if lookupErr != nil {
			uf := &workflow.UnknownFunctionError{Name: spec.Func}
			return nil, doc, uf.AsCompileError()
		}
		for _, dep := range spec.DependsOn {
			if !names[dep] {
				return nil, doc, &workflow.CompileError{
					Kind:    "compile",
					Message: fmt.Sprintf("node %q depends on unknown node %q", spec.Name, dep),
				}
			}
		}
		nodes[spec.Name] = workflow.NewNode(spec.Name, spec.Func, spec.ExecType, spec.CustomVars, spec.DependsOn, adapter)
		depMap[spec.Name] = spec.DependsOn
	}

	graph, err := workflow.NewGraph(nodes, depMap)
	if err != nil {
		return nil, doc, err
	}
	if err := graph.CheckAcyclic(); err != nil {
		return nil, doc, err
	}
	return graph, doc, nil
}

func validateUniqueNames(specs []NodeSpec) error {
	seen := map[string]bool{}
	for _, spec := range specs {
		if seen[spec.Name] {
			return &workflow.CompileError{Kind: "compile", Message: fmt.Sprintf("duplicate node name %q", spec.Name)}
		}
		seen[spec.Name] = true
	}
	return nil
}
