package workflow

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// AdapterFunc is the callable body of a registered function. positional
// holds the outputs of declared dependencies in depends_on order (spec
// §4.4 step 4); named holds every context/custom_vars/runtime key that
// survived the node's parameter filter.
type AdapterFunc func(ctx context.Context, rt *Runtime, positional []Value, named map[string]Value) (Value, error)

// Adapter binds a registry name to a callable plus the parameter
// descriptor spec §9 uses in place of Python-style reflection: the set of
// formal parameter names the callable accepts, or AcceptsAny for a
// varargs-style adapter that wants everything forwarded.
type Adapter struct {
	Name       string
	Params     []string
	AcceptsAny bool
	Call       AdapterFunc
}

// accepts reports whether named argument key should be forwarded to this
// adapter, implementing spec §4.4's parameter-filtering rule.
func (a Adapter) accepts(key string) bool {
	if a.AcceptsAny {
		return true
	}
	for _, p := range a.Params {
		if p == key {
			return true
		}
	}
	return false
}

// Registry maps function names to adapters (spec §4.3 / C3), modeled after
// the teacher's llm.Client provider map (internal/llm/client.go): a single
// mutex-guarded map with Register/Lookup/List.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry returns an empty registry. Engine construction is responsible
// for preloading the built-in adapters (see builtins.go); the registry
// itself has no opinion about which names are "built in".
func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

// Register adds or replaces a binding (spec §4.3: "adds or replaces").
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.adapters == nil {
		r.adapters = map[string]Adapter{}
	}
	r.adapters[a.Name] = a
}

// Lookup returns the adapter bound to name, or UnknownFunctionError.
func (r *Registry) Lookup(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	if !ok {
		return Adapter{}, &UnknownFunctionError{Name: name}
	}
	return a, nil
}

// List returns every registered function name, sorted for deterministic
// output (spec §6: list_functions() → sequence of registered names; the
// core contract never relies on this order, but a deterministic listing
// makes the CLI usable).
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var errNotCallable = fmt.Errorf("adapter has a nil Call function")
