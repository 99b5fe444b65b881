package bindgroup

import (
	"sync"

	"github.com/gogpu/gputypes"
)

// Registry deduplicates layouts by content: two descriptors with the same
// entries share one *Layout, and so one bind group pool.
type Registry struct {
	slabCount uint16

	mu      sync.Mutex
	layouts map[string]*entry
}

type entry struct {
	layout *Layout
	refs   int
}

func NewRegistry(slabCount uint16) *Registry {
	return &Registry{slabCount: slabCount, layouts: make(map[string]*entry)}
}

// Acquire returns the layout for desc, building it on first use. token
// separates layouts derived from different pipelines; explicit layouts use 0.
// Each Acquire must be paired with a Release.
func (r *Registry) Acquire(desc gputypes.BindGroupLayoutDescriptor, token uint64) (*Layout, error) {
	l, err := newLayout(desc, r.slabCount, token)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.layouts[string(l.key)]; ok {
		e.refs++
		return e.layout, nil
	}
	r.layouts[string(l.key)] = &entry{layout: l, refs: 1}
	return l, nil
}

// Release drops one reference to l. The registry forgets l when the last
// reference goes.
func (r *Registry) Release(l *Layout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.layouts[string(l.key)]
	if !ok || e.layout != l {
		panic("bindgroup: Release of a layout not owned by this registry")
	}
	if e.refs--; e.refs == 0 {
		delete(r.layouts, string(l.key))
	}
}

// Len reports the number of distinct live layouts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.layouts)
}
