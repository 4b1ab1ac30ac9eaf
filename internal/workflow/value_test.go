package workflow

import "testing"

func TestIsAbsent(t *testing.T) {
	if !IsAbsent(Absent) {
		t.Fatal("Absent must report absent")
	}
	if !IsAbsent(nil) {
		t.Fatal("nil must report absent")
	}
	if IsAbsent("") {
		t.Fatal("empty string is not absent")
	}
	if IsAbsent(0) {
		t.Fatal("zero is not absent")
	}
}

func TestAsMap(t *testing.T) {
	m, ok := AsMap(map[string]any{"a": 1})
	if !ok || m["a"] != 1 {
		t.Fatalf("expected map[string]any to be recognized, got %v %v", m, ok)
	}
	if _, ok := AsMap("not a map"); ok {
		t.Fatal("string should not be a map")
	}
}

func TestAsSlice(t *testing.T) {
	s, ok := AsSlice([]any{1, 2, 3})
	if !ok || len(s) != 3 {
		t.Fatalf("expected slice recognized, got %v %v", s, ok)
	}
}

func TestStringify(t *testing.T) {
	if Stringify(Absent) != "" {
		t.Fatal("absent stringifies to empty")
	}
	if Stringify("hi") != "hi" {
		t.Fatal("string passes through unchanged")
	}
	if Stringify(42) != "42" {
		t.Fatalf("expected 42, got %q", Stringify(42))
	}
}
