package workflow

import (
	"errors"
	"testing"
	"time"
)

func TestOkRecordInvariant(t *testing.T) {
	start := time.Now()
	end := start.Add(10 * time.Millisecond)
	rec := Ok("n1", "result", map[string]any{"x": 1}, map[string]any{"x": 1}, start, end)

	if rec.Status != StatusSuccess {
		t.Fatalf("expected success, got %s", rec.Status)
	}
	if rec.Err != "" {
		t.Fatalf("success record must not carry an error, got %q", rec.Err)
	}
	if rec.Output != "result" {
		t.Fatalf("expected output preserved, got %v", rec.Output)
	}
	if rec.Fingerprint == "" {
		t.Fatal("expected a non-empty fingerprint")
	}
	if rec.ExecTime != end.Sub(start) {
		t.Fatalf("expected exec time %s, got %s", end.Sub(start), rec.ExecTime)
	}
}

func TestFailRecordInvariant(t *testing.T) {
	start := time.Now()
	end := start.Add(time.Millisecond)
	rec := Fail("n2", errors.New("boom"), nil, nil, start, end)

	if rec.Status != StatusError {
		t.Fatalf("expected error status, got %s", rec.Status)
	}
	if rec.Err != "boom" {
		t.Fatalf("expected error message preserved, got %q", rec.Err)
	}
	if !IsAbsent(rec.Output) {
		t.Fatal("failed record output must be absent")
	}
	if !IsAbsent(rec.OutputOrAbsent()) {
		t.Fatal("OutputOrAbsent must be absent on failure")
	}
}

func TestOutputOrAbsentOnSuccess(t *testing.T) {
	now := time.Now()
	rec := Ok("n3", 7, nil, nil, now, now)
	if rec.OutputOrAbsent() != 7 {
		t.Fatalf("expected 7, got %v", rec.OutputOrAbsent())
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	now := time.Now()
	a := Ok("same", "value", map[string]any{"k": "v"}, map[string]any{"k": "v"}, now, now)
	b := Ok("same", "value", map[string]any{"k": "v"}, map[string]any{"k": "v"}, now.Add(time.Hour), now.Add(time.Hour))
	if a.Fingerprint != b.Fingerprint {
		t.Fatalf("fingerprint must not depend on timing, got %q vs %q", a.Fingerprint, b.Fingerprint)
	}

	c := Ok("same", "other value", map[string]any{"k": "v"}, map[string]any{"k": "v"}, now, now)
	if a.Fingerprint == c.Fingerprint {
		t.Fatal("different outputs must fingerprint differently")
	}
}
