package mapping

import "sync/atomic"

// Handle publishes the current Mapping to concurrent readers. A reload
// builds a new Mapping and replaces the pointer; readers holding the old
// one keep a consistent view.
type Handle struct {
	current atomic.Pointer[Mapping]
}

// NewHandle returns a handle publishing m, which may be nil.
func NewHandle(m *Mapping) *Handle {
	h := &Handle{}
	if m != nil {
		h.current.Store(m)
	}
	return h
}

// Load returns the current mapping, or nil if none has been stored.
func (h *Handle) Load() *Mapping {
	return h.current.Load()
}

// Store publishes m.
func (h *Handle) Store(m *Mapping) {
	h.current.Store(m)
}

// Swap publishes m and returns the previous mapping.
func (h *Handle) Swap(m *Mapping) *Mapping {
	return h.current.Swap(m)
}

// Reload builds a replacement with fn and publishes it. The current mapping
// is kept if fn fails.
func (h *Handle) Reload(fn func() (*Mapping, error)) error {
	m, err := fn()
	if err != nil {
		return err
	}
	h.current.Store(m)
	return nil
}
