package engine

import "github.com/vmihailenco/msgpack/v5"

// Export encodes the envelope as msgpack for compact transport to a CLI
// consumer or log file.
func (e Envelope) Export() ([]byte, error) {
	return msgpack.Marshal(e)
}

// Import decodes bytes produced by Export back into an Envelope, for
// inspection tooling (e.g. a CLI "show" subcommand reading a saved run, or a
// test asserting Export round-trips). It reconstructs the Envelope value
// only — Envelope carries no Graph/Registry/scheduler state, so a decoded
// value has no path back into Graph.Run; the persistence-across-restarts
// Non-goal stands because nothing here resumes execution, not because the
// decode function is absent.
func Import(b []byte) (Envelope, error) {
	var env Envelope
	err := msgpack.Unmarshal(b, &env)
	return env, err
}
