// Package httpapi exposes the engine facade over HTTP: POST a DSL document
// plus inputs, stream per-node completion events over SSE, fetch the final
// envelope. The fan-out shape (one Broadcaster per run, replay-then-live
// subscribers, drop a client whose channel is full rather than block the
// run) is adapted from the teacher's internal/server package, but the event
// payload is flowdag's own: a NodeEvent built from the fields of a
// completed workflow.Record, not the teacher's generic pipeline event map.
package httpapi

import (
	"sync"
	"time"

	"github.com/danshapiro/flowdag/internal/workflow"
)

// NodeEvent is one entry in a run's progress stream, built from the
// workflow.Record the scheduler hands to OnNodeComplete for a single
// finished node. Output is carried as a string (via workflow.Stringify)
// rather than the raw workflow.Value so the event always marshals to JSON
// even when a node's output is something encoding/json can't handle on its
// own.
type NodeEvent struct {
	Seq         uint64    `json:"seq"`
	Node        string    `json:"node"`
	Status      string    `json:"status"`
	Output      string    `json:"output,omitempty"`
	Err         string    `json:"error,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	ExecTimeMS  int64     `json:"exec_time_ms"`
	At          time.Time `json:"at"`
}

// NodeEventFromRecord builds the event a Broadcaster sends for a completed
// node. seq is the event's position in the run's stream, assigned by the
// Broadcaster at Send time so subscribers can detect gaps.
func NodeEventFromRecord(rec workflow.Record, seq uint64) NodeEvent {
	return NodeEvent{
		Seq:         seq,
		Node:        rec.Name,
		Status:      string(rec.Status),
		Output:      workflow.Stringify(rec.OutputOrAbsent()),
		Err:         rec.Err,
		Fingerprint: rec.Fingerprint,
		ExecTimeMS:  rec.ExecTime.Milliseconds(),
		At:          rec.EndTime,
	}
}

// Broadcaster fans out node-completion events to any number of SSE
// subscribers for a single run. One Broadcaster per run; thread-safe.
type Broadcaster struct {
	mu      sync.Mutex
	history []NodeEvent
	clients map[uint64]chan NodeEvent
	nextID  uint64
	seq     uint64
	closed  bool
	doneCh  chan struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[uint64]chan NodeEvent),
		doneCh:  make(chan struct{}),
	}
}

// Send records rec as the run's next event and fans it out to current
// subscribers. Called by the engine's OnNodeComplete hook for every
// finished node; assigns the event's Seq itself so callers never track a
// counter of their own.
func (b *Broadcaster) Send(rec workflow.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	ev := NodeEventFromRecord(rec, b.seq)
	b.seq++
	b.history = append(b.history, ev)
	for id, ch := range b.clients {
		select {
		case ch <- ev:
		default:
			close(ch)
			delete(b.clients, id)
		}
	}
}

// Subscribe returns a replay-then-live events channel, a done channel
// closed only when the broadcaster itself closes (run finished), and an
// unsubscribe function.
func (b *Broadcaster) Subscribe() (<-chan NodeEvent, <-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan NodeEvent, len(b.history)+64)
	id := b.nextID
	b.nextID++

	for _, ev := range b.history {
		ch <- ev
	}

	if b.closed {
		close(ch)
		return ch, b.doneCh, func() {}
	}

	b.clients[id] = ch
	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.clients[id]; ok {
			delete(b.clients, id)
			close(ch)
		}
	}
	return ch, b.doneCh, unsub
}

// Close signals no more events will be sent; every client channel is closed.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.doneCh)
	for id, ch := range b.clients {
		close(ch)
		delete(b.clients, id)
	}
}

// History returns a copy of every event sent so far.
func (b *Broadcaster) History() []NodeEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]NodeEvent, len(b.history))
	copy(out, b.history)
	return out
}
