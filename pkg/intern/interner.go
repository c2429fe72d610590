// Package intern maps strings to dense integer ids and back.
//
// Ids are allocated in first-seen order starting at zero and are never
// reassigned or reused, so an id can index a slice for the lifetime of the
// Interner.
package intern

// Interner is a bidirectional string <-> id table. It is not safe for
// concurrent use.
type Interner struct {
	ids   map[string]int
	names []string
}

// New creates an empty interner
func New() *Interner {
	return &Interner{
		ids: make(map[string]int),
	}
}

// Encode returns the id of s, allocating the next id if s has not been seen.
func (in *Interner) Encode(s string) int {
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := len(in.names)
	in.ids[s] = id
	in.names = append(in.names, s)
	return id
}

// Lookup returns the id of s without allocating one.
func (in *Interner) Lookup(s string) (int, bool) {
	id, ok := in.ids[s]
	return id, ok
}

// Decode returns the string for id.
func (in *Interner) Decode(id int) (string, bool) {
	if id < 0 || id >= len(in.names) {
		return "", false
	}
	return in.names[id], true
}

// Len returns the number of interned strings
func (in *Interner) Len() int {
	return len(in.names)
}
