// Package model holds one typed result schema per data category. Upstream
// payloads are validated and defaulted once, when a source client maps them
// into these types, so rendering code never probes raw JSON.
package model

// Emptier is implemented by results that can be well-formed yet carry
// nothing to show. An empty result is a success, not an error.
type Emptier interface {
	IsEmpty() bool
}

// IsEmpty reports whether v is nil or an Emptier that says it is empty.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if e, ok := v.(Emptier); ok {
		return e.IsEmpty()
	}
	return false
}
