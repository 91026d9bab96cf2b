package pool

import (
	"errors"
	"testing"

	. "github.com/fulldump/biff"
)

type entity struct {
	hp   int
	name string
}

func newManual[T any]() *Pool[T] {
	c := DefaultConfig()
	c.DefragMode = DefragManual
	return New[T](c)
}

func allocN[T any](p *Pool[T], n int) []Handle[T] {
	handles := make([]Handle[T], 0, n)
	for i := 0; i < n; i++ {
		h, err := p.Alloc()
		if err != nil {
			panic(err)
		}
		handles = append(handles, h)
	}
	return handles
}

func TestPool_AllocAssignsIncreasingIds(t *testing.T) {

	p := New[entity](nil)

	for i := 0; i < 5; i++ {
		h, err := p.Alloc()
		AssertNil(err)
		AssertEqual(h.Id(), Id(i))
	}

	AssertEqual(p.Len(), 5)
	AssertEqual(p.Frontier(), 4)
	AssertEqual(p.Holes(), 0)
	AssertNil(p.Check())
}

func TestPool_AllocReturnsZeroValue(t *testing.T) {

	p := New[entity](nil)
	h, _ := p.Alloc()
	obj, _ := h.Resolve()
	obj.hp = 10
	obj.name = "orc"

	AssertNil(h.Release())

	h2, _ := p.Alloc()
	obj2, err := h2.Resolve()
	AssertNil(err)
	AssertEqual(*obj2, entity{})
}

func TestPool_EmptyPool(t *testing.T) {

	p := New[int](nil)

	AssertEqual(p.Len(), 0)
	AssertEqual(p.Frontier(), -1)
	AssertNil(p.Defrag())
	AssertNil(p.ClearUnusedMemory())
	AssertNil(p.Check())

	visited := 0
	AssertNil(p.Iterate(func(obj *int, id Id) { visited++ }))
	AssertEqual(visited, 0)
}

func TestPool_MaxSize(t *testing.T) {

	c := DefaultConfig()
	c.MaxSize = 3
	p := New[entity](c)

	handles := allocN(p, 3)
	AssertEqual(handles[2].Id(), Id(2))

	_, err := p.Alloc()
	AssertTrue(errors.Is(err, ErrCapacityExceeded))
	AssertEqual(p.Len(), 3)

	AssertNil(p.Release(1))

	h, err := p.Alloc()
	AssertNil(err)
	AssertEqual(h.Id(), Id(3))
	AssertEqual(p.Len(), 3)
	AssertEqual(p.Frontier(), 2)

	AssertNil(p.Defrag())
	AssertEqual(p.Holes(), 0)

	visited := 0
	AssertNil(p.Iterate(func(obj *entity, id Id) { visited++ }))
	AssertEqual(visited, 3)
	AssertNil(p.Check())
}

func TestPool_DefragMovesFrontierIntoHole(t *testing.T) {

	p := New[entity](nil)
	handles := allocN(p, 5)
	for i := range handles {
		obj, _ := handles[i].Resolve()
		obj.hp = 100 + i
	}

	AssertNil(p.Release(2))
	AssertEqual(p.Holes(), 1)
	AssertEqual(p.Frontier(), 4)

	// tail release, no hole
	AssertNil(p.Release(4))
	AssertEqual(p.Holes(), 1)
	AssertEqual(p.Frontier(), 3)

	generation := p.Generation()
	AssertNil(p.Defrag())

	AssertEqual(p.Holes(), 0)
	AssertEqual(p.Frontier(), 2)
	AssertEqual(p.Len(), 3)
	AssertEqual(p.Generation(), generation+1)

	obj, err := handles[3].Resolve()
	AssertNil(err)
	AssertEqual(obj.hp, 103)
	AssertEqual(handles[3].index, 2)

	AssertNil(p.Check())
}

func TestPool_ReleaseAtFrontierSkipsBackOverFreeSlots(t *testing.T) {

	p := newManual[int]()
	allocN(p, 4)

	AssertNil(p.Release(1))
	AssertNil(p.Release(2))
	AssertEqual(p.Holes(), 2)

	AssertNil(p.Release(3))
	AssertEqual(p.Frontier(), 0)
	AssertNil(p.Check())

	// holes above the frontier are dropped, the tail slot is reused
	h, err := p.Alloc()
	AssertNil(err)
	AssertEqual(h.Id(), Id(4))
	AssertEqual(h.index, 1)
	AssertEqual(p.Holes(), 0)
	AssertEqual(p.Frontier(), 1)
	AssertNil(p.Check())
}

func TestPool_DefragDropsStaleHoles(t *testing.T) {

	p := newManual[int]()
	allocN(p, 4)

	AssertNil(p.Release(1))
	AssertNil(p.Release(2))
	AssertNil(p.Release(3))

	AssertNil(p.Defrag())
	AssertEqual(p.Holes(), 0)
	AssertEqual(p.Frontier(), 0)
	AssertEqual(p.Stats().Moves, int64(0))
	AssertNil(p.Check())
}

func TestPool_ReleaseUnknownId(t *testing.T) {

	p := New[int](nil)
	allocN(p, 2)

	AssertTrue(errors.Is(p.Release(7), ErrAccessViolation))

	AssertNil(p.Release(0))
	AssertTrue(errors.Is(p.Release(0), ErrAccessViolation))
	AssertEqual(p.Len(), 1)
	AssertNil(p.Check())
}

func TestPool_IdsAreNeverReused(t *testing.T) {

	p := New[int](nil)
	seen := map[Id]bool{}

	for round := 0; round < 10; round++ {
		handles := allocN(p, 10)
		for _, h := range handles {
			AssertFalse(seen[h.Id()])
			seen[h.Id()] = true
		}
		for i := 0; i < len(handles); i += 2 {
			AssertNil(handles[i].Release())
		}
	}

	AssertEqual(len(seen), 100)
	AssertEqual(p.Len(), 50)
}

func TestPool_DefragModes(t *testing.T) {

	t.Run("immediate never leaves holes", func(t *testing.T) {
		c := DefaultConfig()
		c.DefragMode = DefragImmediate
		p := New[int](c)
		allocN(p, 10)

		for _, id := range []Id{0, 5, 3, 8} {
			AssertNil(p.Release(id))
			AssertEqual(p.Holes(), 0)
			AssertNil(p.Check())
		}
		AssertEqual(p.Frontier(), 5)
	})

	t.Run("deferred defrags before a mutable scan", func(t *testing.T) {
		p := New[int](nil)
		allocN(p, 10)

		AssertNil(p.Release(0))
		AssertNil(p.Release(5))
		AssertEqual(p.Holes(), 2)

		// read only scans keep the holes
		visited := 0
		p.IterateConst(func(obj int, id Id) { visited++ })
		AssertEqual(visited, 8)
		AssertEqual(p.Holes(), 2)

		AssertNil(p.Iterate(func(obj *int, id Id) {}))
		AssertEqual(p.Holes(), 0)
		AssertEqual(p.Frontier(), 7)
		AssertNil(p.Check())
	})

	t.Run("deferred alloc reuses the hole without moving", func(t *testing.T) {
		p := New[int](nil)
		allocN(p, 10)

		AssertNil(p.Release(4))
		h, _ := p.Alloc()
		AssertEqual(h.index, 4)
		AssertEqual(p.Stats().Moves, int64(0))
		AssertEqual(p.Generation(), uint64(0))
	})

	t.Run("manual keeps holes until Defrag", func(t *testing.T) {
		p := newManual[int]()
		allocN(p, 10)

		AssertNil(p.Release(2))
		visited := 0
		AssertNil(p.Iterate(func(obj *int, id Id) { visited++ }))
		AssertEqual(visited, 9)
		AssertEqual(p.Holes(), 1)

		AssertNil(p.Defrag())
		AssertEqual(p.Holes(), 0)
		AssertNil(p.Check())
	})
}

func TestPool_ClearUnusedMemory(t *testing.T) {

	p := newManual[int]()
	allocN(p, 100)
	for id := Id(0); id < 50; id++ {
		AssertNil(p.Release(id * 2))
	}

	err := p.ClearUnusedMemory()
	AssertTrue(errors.Is(err, ErrNotDefragged))

	AssertNil(p.Defrag())
	AssertNil(p.ClearUnusedMemory())

	AssertEqual(p.Cap(), 50)
	AssertTrue(p.Stats().Capacity < 100)
	AssertEqual(p.Stats().Trims, int64(1))
	AssertNil(p.Check())
}

func TestPool_AutoTrimAfterDefrag(t *testing.T) {

	c := DefaultConfig()
	c.DefragMode = DefragManual
	c.ShrinkThreshold = 2
	p := New[int](c)
	allocN(p, 10)

	for id := Id(0); id < 6; id++ {
		AssertNil(p.Release(id))
	}

	AssertNil(p.Defrag())

	AssertEqual(p.Len(), 4)
	AssertEqual(p.Cap(), 4)
	AssertEqual(p.Stats().Trims, int64(1))
	AssertNil(p.Check())
}

func TestPool_Reserve(t *testing.T) {

	p := New[int](nil)
	AssertNil(p.Reserve(100))

	AssertEqual(p.Cap(), 0)
	AssertTrue(p.Stats().Capacity >= 100)

	allocN(p, 100)
	AssertTrue(p.Stats().Capacity >= 100)
}

func TestPool_ReserveIsClamped(t *testing.T) {

	p := New[int](&Config{Reserve: 1 << 62, MaxSize: 10})
	AssertEqual(p.Stats().Capacity, 10)

	AssertNil(p.Reserve(1 << 62))
	AssertEqual(p.Stats().Capacity, 10)

	p = New[int](&Config{Reserve: -5})
	AssertEqual(p.Stats().Capacity, 0)
	AssertNil(p.Reserve(-1))
	AssertEqual(p.Stats().Capacity, 0)

	for _, c := range []struct {
		n, maxSize, expected int
	}{
		{n: -1, maxSize: 0, expected: 0},
		{n: 100, maxSize: 0, expected: 100},
		{n: 100, maxSize: 30, expected: 30},
		{n: 1 << 62, maxSize: 0, expected: MaxReserve},
		{n: 1 << 62, maxSize: 1 << 40, expected: MaxReserve},
	} {
		AssertEqual(clampReserve(c.n, c.maxSize), c.expected)
	}
}

func TestPool_Clear(t *testing.T) {

	p := New[int](nil)
	handles := allocN(p, 5)

	AssertNil(p.Clear())
	AssertEqual(p.Len(), 0)
	AssertEqual(p.Frontier(), -1)
	AssertNil(p.Check())

	h, err := p.Alloc()
	AssertNil(err)
	AssertEqual(h.Id(), Id(0))

	// same id, other epoch
	_, err = handles[0].Resolve()
	AssertTrue(errors.Is(err, ErrAccessViolation))
	AssertFalse(handles[0].Valid())
	AssertTrue(errors.Is(handles[0].Release(), ErrAccessViolation))
	AssertTrue(h.Valid())
}

func TestPool_Stats(t *testing.T) {

	c := DefaultConfig()
	c.MaxSize = 8
	p := New[int](c)
	allocN(p, 4)
	AssertNil(p.Release(1))

	s := p.Stats()
	AssertEqual(s.Live, 3)
	AssertEqual(s.Slots, 4)
	AssertEqual(s.Holes, 1)
	AssertEqual(s.Frontier, 3)
	AssertEqual(s.MaxSize, 8)
	AssertEqual(s.NextId, Id(4))
	AssertEqual(s.DefragMode, DefragDeferred)
}

func TestPool_CheckDetectsCorruption(t *testing.T) {

	p := New[int](nil)
	allocN(p, 3)

	p.slots.at(1).vacate()

	AssertTrue(errors.Is(p.Check(), ErrInternal))
}

func TestPool_ReleaseCorrupted(t *testing.T) {

	p := New[int](nil)
	allocN(p, 3)

	p.table.set(0, 2)

	AssertTrue(errors.Is(p.Release(0), ErrInternal))
	_, err := p.Get(0)
	AssertTrue(errors.Is(err, ErrInternal))
}

func TestPool_OrderedIndex(t *testing.T) {

	c := DefaultConfig()
	c.OrderedIndex = true
	p := New[entity](c)
	handles := allocN(p, 10)

	AssertNil(p.Release(3))
	AssertNil(p.Defrag())

	obj, err := handles[9].Resolve()
	AssertNil(err)
	obj.name = "moved"

	got, err := p.Get(9)
	AssertNil(err)
	AssertEqual(got.name, "moved")
	AssertTrue(p.Contains(9))
	AssertFalse(p.Contains(3))
	AssertNil(p.Check())
}

func TestParseDefragMode(t *testing.T) {

	for _, mode := range []DefragMode{DefragImmediate, DefragDeferred, DefragManual} {
		parsed, err := ParseDefragMode(mode.String())
		AssertNil(err)
		AssertEqual(parsed, mode)
	}

	parsed, err := ParseDefragMode(" Manual ")
	AssertNil(err)
	AssertEqual(parsed, DefragManual)

	_, err = ParseDefragMode("sometimes")
	AssertNotNil(err)

	var m DefragMode
	AssertNil(m.UnmarshalText([]byte("immediate")))
	AssertEqual(m, DefragImmediate)

	text, err := DefragDeferred.MarshalText()
	AssertNil(err)
	AssertEqual(string(text), "deferred")

	_, err = DefragMode(9).MarshalText()
	AssertNotNil(err)
	AssertEqual(DefragMode(9).String(), "DefragMode(9)")
}
