// Package pool implements a dynamic, contiguous memory object pool.
//
// Objects live packed in a single slice of slots. Alloc returns a Handle, a
// stable reference that survives the internal moves done by Defrag. Released
// slots below the frontier become holes, chained through the free slots
// themselves, and are either reused by the next Alloc or closed by Defrag,
// which moves the object at the frontier into the hole.
//
// A Pool is not safe for concurrent use. Wrap every call on the same pool
// with a single lock, or give each goroutine its own pool.
package pool

import (
	"fmt"

	"go.uber.org/zap"
)

type Pool[T any] struct {
	slots slotArray[T]
	table idTable
	holes holeChain[T]

	maxSize         int
	shrinkThreshold int
	defragMode      DefragMode

	nextId Id
	live   int

	// top is the frontier plus one: slots at index >= top are not used
	top int

	// generation is bumped every time objects may have moved
	generation uint64

	// epoch is bumped by Clear, ids restart from zero after it
	epoch uint64

	iterating int

	defrags int64
	moves   int64
	trims   int64

	logger *zap.Logger
}

func New[T any](config *Config) *Pool[T] {
	if config == nil {
		config = DefaultConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxSize := max(config.MaxSize, 0)
	reserve := clampReserve(config.Reserve, maxSize)

	p := &Pool[T]{
		slots:           newSlotArray[T](reserve),
		table:           newIdTable(config.OrderedIndex, reserve),
		maxSize:         maxSize,
		shrinkThreshold: max(config.ShrinkThreshold, 0),
		defragMode:      config.DefragMode,
		logger:          logger,
	}
	p.holes = newHoleChain(&p.slots)

	return p
}

// Alloc reserves a slot holding the zero value of T and returns a handle to
// it. The handle cache is already warm.
func (p *Pool[T]) Alloc() (Handle[T], error) {
	if p.iterating > 0 {
		return Handle[T]{}, ErrIterating
	}

	if p.maxSize != 0 && p.live >= p.maxSize {
		return Handle[T]{}, fmt.Errorf("%w: %d objects", ErrCapacityExceeded, p.maxSize)
	}

	index := -1

	// Fill a hole if there is one below the frontier. Holes at or above it
	// were subsumed by frontier shrinking, drop them.
	for p.holes.len() > 0 {
		h, err := p.holes.pop()
		if err != nil {
			return Handle[T]{}, p.internal(err)
		}
		if h < p.top {
			index = h
			break
		}
	}

	if index < 0 {
		if p.top < p.slots.len() {
			// unused tail left by a previous release
			index = p.top
		} else {
			index = p.slots.grow()
		}
	}

	return p.assign(index), nil
}

func (p *Pool[T]) assign(index int) Handle[T] {
	id := p.nextId
	p.nextId++
	p.live++

	if index >= p.top {
		p.top = index + 1
	}

	p.slots.at(index).occupy(id)
	p.table.set(id, index)

	return Handle[T]{
		pool:       p,
		id:         id,
		index:      index,
		generation: p.generation,
		epoch:      p.epoch,
	}
}

// Release frees the object owning id.
func (p *Pool[T]) Release(id Id) error {
	if p.iterating > 0 {
		return ErrIterating
	}

	index, ok := p.table.get(id)
	if !ok {
		return fmt.Errorf("%w: release id %d", ErrAccessViolation, id)
	}

	s := p.slots.at(index)
	if owner, used := s.id(); !used || owner != id {
		return p.internal(fmt.Errorf("%w: id %d maps to slot %d not owned by it", ErrInternal, id, index))
	}

	p.table.remove(id)
	p.live--
	s.vacate()

	// Releasing the last object is the cheap case, nothing to fill later.
	if index == p.top-1 {
		p.shrinkTop()
		return nil
	}

	p.holes.push(index)

	if p.defragMode == DefragImmediate {
		return p.Defrag()
	}

	return nil
}

// shrinkTop walks the frontier back over trailing slots that are not used.
func (p *Pool[T]) shrinkTop() {
	for p.top > 0 && !p.slots.at(p.top-1).used() {
		p.top--
	}
}

// Defrag closes every pending hole by moving the object at the frontier into
// it. Cost is proportional to the number of holes, not to the pool size.
func (p *Pool[T]) Defrag() error {
	if p.iterating > 0 {
		return ErrIterating
	}

	if p.holes.len() == 0 {
		return nil
	}

	p.generation++
	p.defrags++

	holes := p.holes.len()
	moved := 0
	for p.holes.len() > 0 {
		h, err := p.holes.pop()
		if err != nil {
			return p.internal(err)
		}

		// already behind the frontier
		if h >= p.top {
			continue
		}

		last := p.top - 1
		id, ok := p.slots.at(last).id()
		if !ok {
			return p.internal(fmt.Errorf("%w: frontier slot %d is not used", ErrInternal, last))
		}

		p.slots.move(h, last)
		p.table.set(id, h)
		p.shrinkTop()
		moved++
	}
	p.moves += int64(moved)

	p.logger.Debug("defrag",
		zap.Int("holes", holes),
		zap.Int("moved", moved),
		zap.Uint64("generation", p.generation),
		zap.Int("live", p.live),
	)

	if p.slots.len()-p.top > p.shrinkThreshold {
		return p.ClearUnusedMemory()
	}

	return nil
}

// ClearUnusedMemory trims the backing array to the frontier. It fails while
// there are holes to defrag.
func (p *Pool[T]) ClearUnusedMemory() error {
	if p.iterating > 0 {
		return ErrIterating
	}

	if p.holes.len() > 0 {
		return fmt.Errorf("%w: %d holes pending", ErrNotDefragged, p.holes.len())
	}

	before := p.slots.cap()
	p.slots.truncate(p.top)
	p.trims++

	p.logger.Debug("trim",
		zap.Int("capacity_before", before),
		zap.Int("capacity_after", p.slots.cap()),
	)

	return nil
}

// Reserve makes room for at least n slots without further reallocation. n is
// clamped like Config.Reserve.
func (p *Pool[T]) Reserve(n int) error {
	if p.iterating > 0 {
		return ErrIterating
	}
	p.slots.reserve(clampReserve(n, p.maxSize))
	return nil
}

// clampReserve bounds a reserve hint to [0, MaxReserve], and to maxSize when
// the pool is bounded.
func clampReserve(n, maxSize int) int {
	n = min(max(n, 0), MaxReserve)
	if maxSize != 0 {
		n = min(n, maxSize)
	}
	return n
}

// Clear releases every object and restarts ids from zero. Backing capacity is
// kept, call ClearUnusedMemory afterwards to give it back. Handles obtained
// before Clear fail to resolve.
func (p *Pool[T]) Clear() error {
	if p.iterating > 0 {
		return ErrIterating
	}

	p.slots.reset()
	p.table.reset()
	p.holes.reset()
	p.live = 0
	p.top = 0
	p.nextId = 0
	p.generation++
	p.epoch++

	return nil
}

// Len returns the number of live objects.
func (p *Pool[T]) Len() int {
	return p.live
}

// Cap returns the number of slots in the backing array.
func (p *Pool[T]) Cap() int {
	return p.slots.len()
}

// Frontier returns the highest index in use, -1 when the pool is empty.
func (p *Pool[T]) Frontier() int {
	return p.top - 1
}

// Holes returns the number of pending holes.
func (p *Pool[T]) Holes() int {
	return p.holes.len()
}

func (p *Pool[T]) Generation() uint64 {
	return p.generation
}

func (p *Pool[T]) DefragMode() DefragMode {
	return p.defragMode
}

// Contains tells whether id is currently allocated.
func (p *Pool[T]) Contains(id Id) bool {
	_, ok := p.table.get(id)
	return ok
}

// Get returns the object owning id. The pointer is only valid until the next
// structural call on the pool, keep a Handle for longer references.
func (p *Pool[T]) Get(id Id) (*T, error) {
	index, err := p.lookup(id)
	if err != nil {
		return nil, err
	}
	return &p.slots.at(index).object, nil
}

// Handle builds a handle for an allocated id.
func (p *Pool[T]) Handle(id Id) (Handle[T], error) {
	index, err := p.lookup(id)
	if err != nil {
		return Handle[T]{}, err
	}
	return Handle[T]{
		pool:       p,
		id:         id,
		index:      index,
		generation: p.generation,
		epoch:      p.epoch,
	}, nil
}

func (p *Pool[T]) lookup(id Id) (int, error) {
	index, ok := p.table.get(id)
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrAccessViolation, id)
	}
	if owner, used := p.slots.at(index).id(); !used || owner != id {
		return 0, p.internal(fmt.Errorf("%w: id %d maps to slot %d not owned by it", ErrInternal, id, index))
	}
	return index, nil
}

func (p *Pool[T]) internal(err error) error {
	p.logger.Error("pool corrupted", zap.Error(err))
	return err
}
