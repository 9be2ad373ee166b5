package call

// Handle is a non-owning reference to a call stored in an Arena. The zero
// Handle refers to nothing.
type Handle struct {
	id uint64
}

func (h Handle) IsZero() bool { return h.id == 0 }

// Arena owns every call instance of a graph. Slots hold Handles into it, so
// removing a call invalidates all references at once.
type Arena struct {
	next  uint64
	calls map[uint64]Call
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{calls: make(map[uint64]Call)}
}

// Insert stores c and returns its handle.
func (a *Arena) Insert(c Call) Handle {
	a.next++
	a.calls[a.next] = c
	return Handle{id: a.next}
}

// Get resolves a handle. It fails for the zero handle and for removed calls.
func (a *Arena) Get(h Handle) (Call, bool) {
	if a == nil || h.IsZero() {
		return nil, false
	}
	c, ok := a.calls[h.id]
	return c, ok
}

// Remove unbinds and drops the call behind h.
func (a *Arena) Remove(h Handle) (Call, bool) {
	c, ok := a.calls[h.id]
	if !ok {
		return nil, false
	}
	delete(a.calls, h.id)
	Unbind(c)
	return c, true
}

// Len returns the number of live calls.
func (a *Arena) Len() int { return len(a.calls) }
