package pool

import "fmt"

type Stats struct {
	Live       int        `json:"live"`
	Slots      int        `json:"slots"`
	Capacity   int        `json:"capacity"`
	Holes      int        `json:"holes"`
	Frontier   int        `json:"frontier"`
	MaxSize    int        `json:"max_size"`
	NextId     Id         `json:"next_id"`
	Generation uint64     `json:"generation"`
	Epoch      uint64     `json:"epoch"`
	Defrags    int64      `json:"defrags"`
	Moves      int64      `json:"moves"`
	Trims      int64      `json:"trims"`
	DefragMode DefragMode `json:"defrag_mode"`
}

func (p *Pool[T]) Stats() Stats {
	return Stats{
		Live:       p.live,
		Slots:      p.slots.len(),
		Capacity:   p.slots.cap(),
		Holes:      p.holes.len(),
		Frontier:   p.top - 1,
		MaxSize:    p.maxSize,
		NextId:     p.nextId,
		Generation: p.generation,
		Epoch:      p.epoch,
		Defrags:    p.defrags,
		Moves:      p.moves,
		Trims:      p.trims,
		DefragMode: p.defragMode,
	}
}

// Check audits every bookkeeping invariant and returns ErrInternal describing
// the first violation found. It walks the whole pool, use it in tests and
// debugging, not in hot paths.
func (p *Pool[T]) Check() error {
	n := p.slots.len()

	if p.top < 0 || p.top > n {
		return fmt.Errorf("%w: frontier %d outside %d slots", ErrInternal, p.top-1, n)
	}
	if p.top > 0 && !p.slots.at(p.top-1).used() {
		return fmt.Errorf("%w: frontier slot %d is not used", ErrInternal, p.top-1)
	}

	used := 0
	linked := 0
	for i := 0; i < n; i++ {
		s := p.slots.at(i)
		switch s.state {
		case slotUsed:
			if i >= p.top {
				return fmt.Errorf("%w: slot %d used beyond frontier %d", ErrInternal, i, p.top-1)
			}
			id, _ := s.id()
			index, ok := p.table.get(id)
			if !ok || index != i {
				return fmt.Errorf("%w: slot %d owner %d missing in id table", ErrInternal, i, id)
			}
			used++
		case slotHole:
			linked++
		}
	}

	if used != p.live {
		return fmt.Errorf("%w: %d used slots but %d live objects", ErrInternal, used, p.live)
	}
	if p.table.len() != p.live {
		return fmt.Errorf("%w: id table has %d entries for %d live objects", ErrInternal, p.table.len(), p.live)
	}
	if linked != p.holes.len() {
		return fmt.Errorf("%w: %d hole slots but chain length %d", ErrInternal, linked, p.holes.len())
	}

	seen := make(map[int]struct{}, p.holes.len())
	var dup error
	err := p.holes.walk(func(index int) bool {
		if _, exists := seen[index]; exists {
			dup = fmt.Errorf("%w: hole %d linked twice", ErrInternal, index)
			return false
		}
		seen[index] = struct{}{}
		return true
	})
	if err != nil {
		return err
	}
	if dup != nil {
		return dup
	}

	if p.holes.len() == 0 && used != p.top {
		return fmt.Errorf("%w: no holes pending but prefix of %d slots has %d objects", ErrInternal, p.top, used)
	}

	return nil
}
