package pool

import (
	"errors"
	"testing"

	. "github.com/fulldump/biff"
)

func newTestChain(n int) (*slotArray[int], *holeChain[int]) {
	slots := newSlotArray[int](n)
	for i := 0; i < n; i++ {
		slots.grow()
	}
	chain := newHoleChain(&slots)
	return &slots, &chain
}

func TestHoleChain_LIFO(t *testing.T) {

	_, chain := newTestChain(5)

	chain.push(1)
	chain.push(3)
	chain.push(0)
	AssertEqual(chain.len(), 3)

	for _, expected := range []int{0, 3, 1} {
		index, err := chain.pop()
		AssertNil(err)
		AssertEqual(index, expected)
	}
	AssertEqual(chain.len(), 0)
}

func TestHoleChain_PopLeavesSlotFree(t *testing.T) {

	slots, chain := newTestChain(2)

	chain.push(1)
	AssertEqual(slots.at(1).state, slotHole)

	_, err := chain.pop()
	AssertNil(err)
	AssertEqual(slots.at(1).state, slotFree)
}

func TestHoleChain_Walk(t *testing.T) {

	_, chain := newTestChain(6)
	chain.push(2)
	chain.push(5)
	chain.push(4)

	visited := []int{}
	err := chain.walk(func(index int) bool {
		visited = append(visited, index)
		return true
	})
	AssertNil(err)
	AssertEqual(visited, []int{4, 5, 2})
}

func TestHoleChain_Errors(t *testing.T) {

	t.Run("pop from empty chain", func(t *testing.T) {
		_, chain := newTestChain(1)
		_, err := chain.pop()
		AssertTrue(errors.Is(err, ErrInternal))
	})

	t.Run("linked slot reused", func(t *testing.T) {
		slots, chain := newTestChain(3)
		chain.push(1)
		slots.at(1).occupy(9)

		_, err := chain.pop()
		AssertTrue(errors.Is(err, ErrInternal))

		err = chain.walk(func(int) bool { return true })
		AssertTrue(errors.Is(err, ErrInternal))
	})

	t.Run("count longer than chain", func(t *testing.T) {
		_, chain := newTestChain(3)
		chain.push(1)
		chain.count = 2

		err := chain.walk(func(int) bool { return true })
		AssertTrue(errors.Is(err, ErrInternal))
	})
}

func TestSlot_States(t *testing.T) {

	s := slot[string]{}

	_, used := s.id()
	AssertFalse(used)

	s.occupy(7)
	s.object = "x"
	id, used := s.id()
	AssertTrue(used)
	AssertEqual(id, Id(7))
	_, linked := s.next()
	AssertFalse(linked)

	s.vacate()
	AssertEqual(s.object, "")
	AssertEqual(s.state, slotFree)

	s.link(noHole)
	next, linked := s.next()
	AssertTrue(linked)
	AssertEqual(next, uint64(noHole))
	AssertFalse(s.used())
}
