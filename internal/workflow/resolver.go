package workflow

import (
	"reflect"
	"regexp"
	"strings"
)

// placeholderRe matches ${name.field} exactly as spec §4.2 / §6 requires.
var placeholderRe = regexp.MustCompile(`\$\{(\w+)\.(\w+)\}`)

// Resolve substitutes every ${name.field} placeholder inside value against
// ctx, recursing through maps and slices (spec §4.2 / C2). It never errors:
// an unresolved placeholder is left untouched and logged as a warning (spec
// §7's PlaceholderUnresolved is non-fatal by design).
func Resolve(value Value, ctx map[string]Value) Value {
	switch v := value.(type) {
	case string:
		return resolveString(v, ctx)
	case map[string]Value:
		out := make(map[string]Value, len(v))
		for k, vv := range v {
			out[k] = Resolve(vv, ctx)
		}
		return out
	case []Value:
		out := make([]Value, len(v))
		for i, vv := range v {
			out[i] = Resolve(vv, ctx)
		}
		return out
	default:
		return value
	}
}

func resolveString(s string, ctx map[string]Value) Value {
	matches := placeholderRe.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	// Whole-string placeholder: preserve the resolved value's type (spec §4.2:
	// "If the entire input string equals one placeholder ... return the raw
	// resolved value").
	if len(matches) == 1 {
		m := matches[0]
		if m[0] == 0 && m[1] == len(s) {
			name := s[m[2]:m[3]]
			field := s[m[4]:m[5]]
			resolved, ok := lookup(name, field, ctx)
			if !ok {
				warnf("unresolved placeholder ${%s.%s}", name, field)
				return s
			}
			return resolved
		}
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		name := s[m[2]:m[3]]
		field := s[m[4]:m[5]]
		resolved, ok := lookup(name, field, ctx)
		b.WriteString(s[last:m[0]])
		if !ok {
			warnf("unresolved placeholder ${%s.%s}", name, field)
			b.WriteString(s[m[0]:m[1]])
		} else {
			b.WriteString(Stringify(resolved))
		}
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// lookup resolves a single ${name.field} reference against ctx per spec
// §4.2: mapping lookup by key, else field/attribute access via reflection,
// else fall back to the bound value itself.
func lookup(name, field string, ctx map[string]Value) (Value, bool) {
	bound, ok := ctx[name]
	if !ok {
		return nil, false
	}
	if m, ok := AsMap(bound); ok {
		if v, ok := m[field]; ok {
			return v, true
		}
		return bound, true
	}
	if v, ok := structField(bound, field); ok {
		return v, true
	}
	return bound, true
}

// structField performs the "otherwise use Y as field/attribute access"
// branch of spec §4.2 for non-mapping bound values (e.g. a Record).
func structField(bound Value, field string) (Value, bool) {
	rv := reflect.ValueOf(bound)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	fv := rv.FieldByNameFunc(func(n string) bool {
		return strings.EqualFold(n, field)
	})
	if !fv.IsValid() {
		return nil, false
	}
	return fv.Interface(), true
}
