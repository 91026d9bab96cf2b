package pool

import "fmt"

// holeChain is a LIFO stack of free slot indices stored inside the free slots
// themselves, so it costs no memory besides count and head.
type holeChain[T any] struct {
	slots *slotArray[T]
	count int
	head  uint64
}

func newHoleChain[T any](slots *slotArray[T]) holeChain[T] {
	return holeChain[T]{
		slots: slots,
		head:  noHole,
	}
}

func (h *holeChain[T]) len() int {
	return h.count
}

func (h *holeChain[T]) push(index int) {
	h.slots.at(index).link(h.head)
	h.head = uint64(index)
	h.count++
}

// pop unlinks the most recently pushed hole. The returned slot is left free.
func (h *holeChain[T]) pop() (int, error) {
	if h.count == 0 || h.head == noHole {
		return 0, fmt.Errorf("%w: pop from empty hole chain", ErrInternal)
	}

	index := h.head
	if index >= uint64(h.slots.len()) {
		return 0, fmt.Errorf("%w: hole %d out of range", ErrInternal, index)
	}

	s := h.slots.at(int(index))
	next, ok := s.next()
	if !ok {
		return 0, fmt.Errorf("%w: slot %d in hole chain is not a hole", ErrInternal, index)
	}

	h.head = next
	h.count--
	s.state = slotFree
	s.ref = 0

	return int(index), nil
}

// walk visits every linked index, head first.
func (h *holeChain[T]) walk(f func(index int) bool) error {
	index := h.head
	for i := 0; i < h.count; i++ {
		if index == noHole || index >= uint64(h.slots.len()) {
			return fmt.Errorf("%w: hole chain broken after %d links", ErrInternal, i)
		}
		next, ok := h.slots.at(int(index)).next()
		if !ok {
			return fmt.Errorf("%w: slot %d in hole chain is not a hole", ErrInternal, index)
		}
		if !f(int(index)) {
			return nil
		}
		index = next
	}
	return nil
}

func (h *holeChain[T]) reset() {
	h.count = 0
	h.head = noHole
}
