// Package dsl implements the DSL-to-graph compiler (spec §4.6 / C6): it
// parses the declarative YAML/JSON document, validates it both against a
// JSON Schema and structurally, and lowers it into the workflow package's
// executor nodes and dependency map.
package dsl

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SurfaceHint picks the DSL's textual surface syntax (spec §6).
type SurfaceHint string

const (
	SurfaceAuto SurfaceHint = ""
	SurfaceYAML SurfaceHint = "yaml"
	SurfaceJSON SurfaceHint = "json"
)

// NodeSpec is one entry of the executors sequence (spec §4.6's node-spec table).
type NodeSpec struct {
	Name       string
	Func       string
	ExecType   string
	CustomVars map[string]any
	DependsOn  []string
}

// Document is the parsed, field-extracted DSL (spec §4.6's recognized top-level keys).
type Document struct {
	Metadata  map[string]any
	Inputs    map[string]any
	Executors []NodeSpec
	Output    map[string]any

	// Raw is the original parsed mapping, echoed verbatim in the envelope
	// (spec §4.7: "dsl: original document") and re-used for schema validation.
	Raw map[string]any
}

// Parse decodes raw bytes into a generic mapping, per spec §4.7 step 1:
// try JSON first, then fall back to YAML, unless hint pins one surface.
func Parse(raw []byte, hint SurfaceHint) (map[string]any, error) {
	switch hint {
	case SurfaceJSON:
		return parseJSON(raw)
	case SurfaceYAML:
		return parseYAML(raw)
	default:
		if m, err := parseJSON(raw); err == nil {
			return m, nil
		}
		return parseYAML(raw)
	}
}

func parseJSON(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func parseYAML(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing document as YAML: %w", err)
	}
	return m, nil
}

// extractDocument pulls the recognized top-level keys out of a generic
// mapping that has already passed schema validation.
func extractDocument(raw map[string]any) (Document, error) {
	doc := Document{Raw: raw}

	if v, ok := raw["metadata"]; ok {
		m, ok := asStringMap(v)
		if !ok {
			return doc, fmt.Errorf("metadata must be a mapping")
		}
		doc.Metadata = m
	}
	if v, ok := raw["inputs"]; ok {
		m, ok := asStringMap(v)
		if !ok {
			return doc, fmt.Errorf("inputs must be a mapping")
		}
		doc.Inputs = m
	}
	if v, ok := raw["output"]; ok {
		m, ok := asStringMap(v)
		if !ok {
			return doc, fmt.Errorf("output must be a mapping")
		}
		doc.Output = m
	}

	execs, ok := raw["executors"]
	if !ok {
		return doc, fmt.Errorf("executors is required")
	}
	list, ok := asSlice(execs)
	if !ok {
		return doc, fmt.Errorf("executors must be a sequence")
	}
	for i, item := range list {
		spec, err := extractNodeSpec(item)
		if err != nil {
			return doc, fmt.Errorf("executors[%d]: %w", i, err)
		}
		doc.Executors = append(doc.Executors, spec)
	}
	return doc, nil
}

func extractNodeSpec(item any) (NodeSpec, error) {
	m, ok := asStringMap(item)
	if !ok {
		return NodeSpec{}, fmt.Errorf("node spec must be a mapping")
	}
	spec := NodeSpec{ExecType: "default"}

	name, ok := m["name"].(string)
	if !ok || name == "" {
		return spec, fmt.Errorf("name is required")
	}
	spec.Name = name

	fn, ok := m["func"].(string)
	if !ok || fn == "" {
		return spec, fmt.Errorf("func is required")
	}
	spec.Func = fn

	if et, ok := m["exec_type"].(string); ok && et != "" {
		spec.ExecType = et
	}

	if cv, ok := m["custom_vars"]; ok {
		cvm, ok := asStringMap(cv)
		if !ok {
			return spec, fmt.Errorf("custom_vars must be a mapping")
		}
		spec.CustomVars = cvm
	}

	if dep, ok := m["depends_on"]; ok {
		depList, ok := asSlice(dep)
		if !ok {
			return spec, fmt.Errorf("depends_on must be a sequence")
		}
		for _, d := range depList {
			s, ok := d.(string)
			if !ok {
				return spec, fmt.Errorf("depends_on entries must be strings")
			}
			spec.DependsOn = append(spec.DependsOn, s)
		}
	}
	return spec, nil
}

// asStringMap normalizes the two shapes encoding/json and yaml.v3 use for
// generic mappings (map[string]any in both cases, but tolerate map[any]any
// defensively since hand-built test fixtures sometimes use it).
func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, vv := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = vv
		}
		return out, true
	default:
		return nil, false
	}
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}
