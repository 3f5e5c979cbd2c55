package renderer

import "slices"

// Registry is one configuration generation of installed adapters. The
// self-referential record is always first; the plain-HTML fallback is kept
// aside and only used by callers once resolution finds nothing.
type Registry struct {
	records  []Record
	fallback *Record
}

// Len counts the self record plus every user-supplied record. The fallback is
// not included.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}

// Records returns a copy of the ordered records.
func (r *Registry) Records() []Record {
	if r == nil {
		return nil
	}
	out := make([]Record, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.clone()
	}
	return out
}

// Names lists record names in resolution order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		names = append(names, rec.Name)
	}
	return names
}

// Lookup finds a record by name, including the fallback.
func (r *Registry) Lookup(name string) (*Record, bool) {
	if r == nil {
		return nil, false
	}
	idx := slices.IndexFunc(r.records, func(rec Record) bool { return rec.Name == name })
	if idx >= 0 {
		return &r.records[idx], true
	}
	if r.fallback != nil && r.fallback.Name == name {
		return r.fallback, true
	}
	return nil, false
}

// Fallback returns the plain-HTML record for custom elements, if installed.
func (r *Registry) Fallback() (*Record, bool) {
	if r == nil || r.fallback == nil {
		return nil, false
	}
	return r.fallback, true
}

// Sole returns the single user-supplied record when the registry holds exactly
// the self record plus one other.
func (r *Registry) Sole() (*Record, bool) {
	if r.Len() != 2 {
		return nil, false
	}
	return &r.records[1], true
}
