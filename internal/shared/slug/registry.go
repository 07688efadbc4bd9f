package slug

import "fmt"

// Registry is the in-run set of slugs already assigned during one
// batch rewrite. It exists for exactly one migration run and is
// discarded afterwards; the live creation path uses Allocator, which
// asks the store instead.
//
// Collision resolution is sequential on purpose: whether record N
// collides depends on every slug assigned to records 1..N-1, so the
// batch must scan in ascending primary-key order with a single writer.
type Registry struct {
	taken map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{taken: make(map[string]struct{})}
}

// Claim resolves base against the already-assigned set and records the
// result. If base is free it is returned as-is; otherwise "_1", "_2",
// ... are appended until an unused value is found.
func (r *Registry) Claim(base string) string {
	candidate := base
	for i := 1; ; i++ {
		if _, exists := r.taken[candidate]; !exists {
			break
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
	r.taken[candidate] = struct{}{}
	return candidate
}

// Has reports whether s was already claimed in this run.
func (r *Registry) Has(s string) bool {
	_, ok := r.taken[s]
	return ok
}

// Len returns the number of slugs claimed so far.
func (r *Registry) Len() int {
	return len(r.taken)
}
