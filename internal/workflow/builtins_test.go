package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRegisterBuiltinsPopulatesRegistry(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)
	for _, name := range []string{
		"http_request_get", "http_request_post", "json_to_string", "string_to_json",
		"text_process", "numeric_eval", "data_merge", "output_combiner",
		"llm_simple_call", "llm_chat_call", "llm_generic_call",
		"glob_read_files", "hash_content",
	} {
		if _, err := r.Lookup(name); err != nil {
			t.Fatalf("expected builtin %q registered: %v", name, err)
		}
	}
}

func TestTextProcessOperations(t *testing.T) {
	cases := []struct {
		op, in, want string
	}{
		{"upper", "hello", "HELLO"},
		{"lower", "HELLO", "hello"},
		{"reverse", "abc", "cba"},
	}
	for _, c := range cases {
		out, err := textProcess(context.Background(), nil, nil, map[string]Value{"operation": c.op, "text": c.in})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.op, err)
		}
		if out != c.want {
			t.Fatalf("%s: expected %q, got %v", c.op, c.want, out)
		}
	}
}

func TestTextProcessUnknownOperation(t *testing.T) {
	_, err := textProcess(context.Background(), nil, nil, map[string]Value{"operation": "nope", "text": "x"})
	if err == nil {
		t.Fatal("expected an error for an unknown operation")
	}
}

func TestNumericEval(t *testing.T) {
	cases := []struct {
		expr string
		want float64
	}{
		{"1 + 2", 3},
		{"2 * (3 + 4)", 14},
		{"10 / 2 - 1", 4},
		{"-3 + 5", 2},
	}
	for _, c := range cases {
		out, err := numericEval(context.Background(), nil, nil, map[string]Value{"expr": c.expr})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.expr, err)
		}
		if out != c.want {
			t.Fatalf("%s: expected %v, got %v", c.expr, c.want, out)
		}
	}
}

func TestNumericEvalDivisionByZero(t *testing.T) {
	_, err := numericEval(context.Background(), nil, nil, map[string]Value{"expr": "1 / 0"})
	if err == nil {
		t.Fatal("expected division-by-zero error")
	}
}

func TestDataMergeLaterWins(t *testing.T) {
	out, err := dataMerge(context.Background(), nil,
		[]Value{map[string]Value{"a": 1, "b": 1}},
		map[string]Value{"overlay": map[string]Value{"b": 2}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := out.(map[string]Value)
	if m["a"] != 1 || m["b"] != 2 {
		t.Fatalf("expected merged map with overlay winning, got %v", m)
	}
}

func TestJSONRoundtrip(t *testing.T) {
	s, err := jsonToString(context.Background(), nil, nil, map[string]Value{"value": map[string]Value{"x": 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := stringToJSON(context.Background(), nil, nil, map[string]Value{"value": s})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := back.(map[string]any)
	if !ok || m["x"] != float64(1) {
		t.Fatalf("expected roundtrip to recover original shape, got %v", back)
	}
}

func TestCallProviderNoProviderConfigured(t *testing.T) {
	_, err := llmSimpleCall(context.Background(), &Runtime{}, nil, map[string]Value{"user_input": "hi"})
	if err == nil {
		t.Fatal("expected an error when no provider is configured")
	}
}

type fakeProvider struct {
	model, prompt string
}

func (f *fakeProvider) Complete(ctx context.Context, model, prompt string) (string, error) {
	f.model = model
	f.prompt = prompt
	return "reply:" + prompt, nil
}

func TestCallProviderUsesDefaultModel(t *testing.T) {
	fp := &fakeProvider{}
	rt := &Runtime{Provider: fp, DefaultModel: "default-model"}
	out, err := llmSimpleCall(context.Background(), rt, nil, map[string]Value{"user_input": "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fp.model != "default-model" {
		t.Fatalf("expected default model used, got %q", fp.model)
	}
	if out != "reply:hi" {
		t.Fatalf("expected reply prefixed, got %v", out)
	}
}

func TestGlobReadFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("contents"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	out, err := globReadFiles(context.Background(), nil, nil, map[string]Value{"pattern": "*.txt", "root": dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := out.(map[string]Value)
	if m["a.txt"] != "contents" {
		t.Fatalf("expected file contents read, got %v", m)
	}
}

func TestHashContentDeterministic(t *testing.T) {
	a, _ := hashContent(context.Background(), nil, nil, map[string]Value{"value": "x"})
	b, _ := hashContent(context.Background(), nil, nil, map[string]Value{"value": "x"})
	if a != b {
		t.Fatalf("expected deterministic hash, got %v vs %v", a, b)
	}
}
