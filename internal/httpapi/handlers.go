package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/danshapiro/flowdag/internal/dsl"
	"github.com/danshapiro/flowdag/internal/engine"
	"github.com/danshapiro/flowdag/internal/workflow"
)

// EngineLike is the slice of engine.Engine the HTTP facade depends on — kept
// as an interface so handler tests can substitute a fake engine without
// constructing a real registry/runtime.
type EngineLike interface {
	ExecuteWithRunID(ctx context.Context, document []byte, inputs map[string]any, hint dsl.SurfaceHint, rt *workflow.Runtime, runID string) (engine.Envelope, error)
	ListFunctions() []string
	BaseRuntime() *workflow.Runtime
}

type engineHandle struct {
	eng EngineLike
}

type submitRunRequest struct {
	Document string         `json:"document"`
	Inputs   map[string]any `json:"inputs"`
	Surface  string         `json:"surface"`
}

type submitRunResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// handleSubmitRun mints a run id, registers its RunState (broadcaster open,
// no result yet) and responds immediately, then executes the graph on its
// own goroutine — mirroring the teacher's handleSubmitPipeline
// (internal/server/handlers.go): register before launching work so a
// subscriber hitting GET /runs/{id}/events right after submission can
// actually observe the run in flight instead of only its post-hoc replay.
func (s *Server) handleSubmitRun(w http.ResponseWriter, r *http.Request) {
	var req submitRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	runID := engine.NewRunID()
	broadcaster := NewBroadcaster()
	state := &RunState{RunID: runID, Broadcaster: broadcaster, StartedAt: time.Now()}

	if err := s.runs.Register(runID, state); err != nil {
		http.Error(w, "register run: "+err.Error(), http.StatusConflict)
		return
	}

	base := s.eng.eng.BaseRuntime()
	rt := *base
	rt.OnNodeComplete = broadcaster.Send

	go func() {
		defer broadcaster.Close()
		env, err := s.eng.eng.ExecuteWithRunID(context.Background(), []byte(req.Document), req.Inputs, dsl.SurfaceHint(req.Surface), &rt, runID)
		state.SetResult(env, err)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(submitRunResponse{RunID: runID, Status: "accepted"})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state, ok := s.runs.Get(id)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	env, _, done := state.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if !done {
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(submitRunResponse{RunID: id, Status: "running"})
		return
	}
	_ = json.NewEncoder(w).Encode(env)
}

func (s *Server) handleRunEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state, ok := s.runs.Get(id)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	WriteSSE(w, r, state.Broadcaster)
}

func (s *Server) handleListFunctions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.eng.eng.ListFunctions())
}
