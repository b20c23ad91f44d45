package engine

// Record is a string-keyed mapping to heterogeneous scalar values —
// the Go substitute for the source tool's dict-with-dot-access wrapper.
// Index-style access (Get/Set) and the typed accessors below both read
// and write the same backing map, so there is exactly one place a value
// can live: no separate "attribute" storage to fall out of sync.
type Record struct {
	values map[string]any
}

// NewRecord wraps an existing map without copying it.
func NewRecord(values map[string]any) *Record {
	if values == nil {
		values = make(map[string]any)
	}
	return &Record{values: values}
}

// CopyOf returns a Record backed by a fresh one-level copy of src. Values
// in this data model are always scalars (int, float, bool, string), so a
// shallow copy is a full deep copy for our purposes.
func CopyOf(src map[string]any) *Record {
	cp := make(map[string]any, len(src))
	for k, v := range src {
		cp[k] = v
	}
	return &Record{values: cp}
}

// Get returns the raw value for name and whether it was present.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set writes value under name.
func (r *Record) Set(name string, value any) {
	r.values[name] = value
}

// Has reports whether name is present.
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Map returns the backing map directly — callers that need to hand the
// whole record to cel.Activation or json.Marshal use this rather than a
// copy, by design: Record never keeps private state that could diverge.
func (r *Record) Map() map[string]any {
	return r.values
}

// Snapshot returns a shallow copy of the backing map, safe to hand to a
// caller that must not observe further mutation.
func (r *Record) Snapshot() map[string]any {
	cp := make(map[string]any, len(r.values))
	for k, v := range r.values {
		cp[k] = v
	}
	return cp
}

// Merge writes every key of delta into r (last-writer-wins).
func (r *Record) Merge(delta map[string]any) {
	for k, v := range delta {
		r.values[k] = v
	}
}

// Int, Float64, Bool, and String are typed convenience accessors — the
// idiomatic-Go equivalent of the source's dot-notation reads. They return
// the zero value when name is absent or of a different underlying type.
func (r *Record) Int(name string) int {
	switch v := r.values[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (r *Record) Float64(name string) float64 {
	switch v := r.values[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func (r *Record) Bool(name string) bool {
	v, _ := r.values[name].(bool)
	return v
}

func (r *Record) String(name string) string {
	v, _ := r.values[name].(string)
	return v
}
