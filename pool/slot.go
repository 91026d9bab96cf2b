package pool

import (
	"math"
	"slices"
)

type slotState uint8

const (
	slotFree slotState = iota // unused and not linked
	slotHole                  // unused and linked in the hole chain
	slotUsed
)

// noHole terminates the hole chain.
const noHole = math.MaxUint64

// slot stores one object. ref is the owning id while the slot is used and the
// index of the next hole while the slot is a hole, never both.
type slot[T any] struct {
	object T
	ref    uint64
	state  slotState
}

func (s *slot[T]) used() bool {
	return s.state == slotUsed
}

// id returns the owner, ok is false if the slot is not used.
func (s *slot[T]) id() (Id, bool) {
	if s.state != slotUsed {
		return 0, false
	}
	return Id(s.ref), true
}

func (s *slot[T]) occupy(id Id) {
	s.state = slotUsed
	s.ref = uint64(id)
}

// link turns the slot into a hole pointing at next (or noHole).
func (s *slot[T]) link(next uint64) {
	s.state = slotHole
	s.ref = next
}

// next returns the following hole, ok is false if the slot is not a hole.
func (s *slot[T]) next() (uint64, bool) {
	if s.state != slotHole {
		return 0, false
	}
	return s.ref, true
}

// vacate drops the object so the GC can collect whatever it points to.
func (s *slot[T]) vacate() {
	var zero T
	s.object = zero
	s.state = slotFree
	s.ref = 0
}

// slotArray is the contiguous backing store.
type slotArray[T any] struct {
	items []slot[T]
}

func newSlotArray[T any](reserve int) slotArray[T] {
	return slotArray[T]{
		items: make([]slot[T], 0, max(reserve, 0)),
	}
}

func (a *slotArray[T]) len() int {
	return len(a.items)
}

func (a *slotArray[T]) cap() int {
	return cap(a.items)
}

func (a *slotArray[T]) at(i int) *slot[T] {
	return &a.items[i]
}

// grow appends a free slot and returns its index.
func (a *slotArray[T]) grow() int {
	a.items = append(a.items, slot[T]{})
	return len(a.items) - 1
}

func (a *slotArray[T]) reserve(n int) {
	if n > cap(a.items) {
		a.items = slices.Grow(a.items, n-len(a.items))
	}
}

// move relocates the slot at src into dst and leaves src free.
func (a *slotArray[T]) move(dst, src int) {
	a.items[dst] = a.items[src]
	a.items[src].vacate()
}

// truncate shrinks the array to n slots and gives the spare capacity back.
func (a *slotArray[T]) truncate(n int) {
	clear(a.items[n:])
	a.items = slices.Clone(a.items[:n])
}

// reset empties the array keeping its capacity.
func (a *slotArray[T]) reset() {
	clear(a.items)
	a.items = a.items[:0]
}
