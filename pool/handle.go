package pool

import "fmt"

// Handle is a stable reference to a pooled object. It does not own the object,
// it is a capability to look it up. Handles cache the slot index and only go
// back to the id table after the pool generation moved on.
//
// Resolving refreshes the cache, so a handle shared between goroutines needs
// the same external lock as the pool.
type Handle[T any] struct {
	pool       *Pool[T]
	id         Id
	index      int
	generation uint64
	epoch      uint64
}

func (h *Handle[T]) Id() Id {
	return h.id
}

// Resolve returns the object. The pointer is valid until the next structural
// call on the pool (Alloc, Release, Defrag, Clear...), resolve again after.
func (h *Handle[T]) Resolve() (*T, error) {
	p := h.pool
	if p == nil {
		return nil, fmt.Errorf("%w: zero handle", ErrAccessViolation)
	}

	if h.epoch != p.epoch {
		return nil, fmt.Errorf("%w: id %d belongs to a cleared pool", ErrAccessViolation, h.id)
	}

	if h.generation == p.generation && h.index < p.slots.len() {
		s := p.slots.at(h.index)
		if owner, used := s.id(); used && owner == h.id {
			return &s.object, nil
		}
	}

	index, err := p.lookup(h.id)
	if err != nil {
		return nil, err
	}
	h.index = index
	h.generation = p.generation

	return &p.slots.at(index).object, nil
}

// Valid tells whether the handle still resolves.
func (h *Handle[T]) Valid() bool {
	if h.pool == nil || h.epoch != h.pool.epoch {
		return false
	}
	return h.pool.Contains(h.id)
}

// Release frees the referenced object.
func (h *Handle[T]) Release() error {
	if h.pool == nil {
		return fmt.Errorf("%w: zero handle", ErrAccessViolation)
	}
	if h.epoch != h.pool.epoch {
		return fmt.Errorf("%w: id %d belongs to a cleared pool", ErrAccessViolation, h.id)
	}
	return h.pool.Release(h.id)
}
