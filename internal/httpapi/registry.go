package httpapi

import (
	"fmt"
	"sync"
	"time"

	"github.com/danshapiro/flowdag/internal/engine"
)

// RunState tracks one in-flight or completed Execute call, mirroring the
// teacher's PipelineState (internal/server/registry.go) repointed at an
// engine.Envelope instead of an Attractor result.
type RunState struct {
	RunID       string
	Broadcaster *Broadcaster
	StartedAt   time.Time

	mu   sync.Mutex
	env  engine.Envelope
	err  error
	done bool
}

func (rs *RunState) SetResult(env engine.Envelope, err error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.env = env
	rs.err = err
	rs.done = true
}

// Snapshot returns the current envelope/error/done state.
func (rs *RunState) Snapshot() (engine.Envelope, error, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.env, rs.err, rs.done
}

// RunRegistry tracks every run submitted to this server instance.
type RunRegistry struct {
	mu   sync.RWMutex
	runs map[string]*RunState
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{runs: make(map[string]*RunState)}
}

func (r *RunRegistry) Register(runID string, rs *RunState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[runID]; exists {
		return fmt.Errorf("run %s already exists", runID)
	}
	r.runs[runID] = rs
	return nil
}

func (r *RunRegistry) Get(runID string) (*RunState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.runs[runID]
	return rs, ok
}

func (r *RunRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.runs))
	for id := range r.runs {
		ids = append(ids, id)
	}
	return ids
}
