package pool

import (
	"fmt"
	"iter"

	"go.uber.org/zap"
)

// Visitors must not change the pool structure. Structural calls made from a
// visitor fail with ErrIterating; collect the ids in a ReleaseList and apply
// it once the scan is over.

func (p *Pool[T]) beforeScan() error {
	if p.defragMode == DefragDeferred && p.iterating == 0 {
		return p.Defrag()
	}
	return nil
}

// Iterate visits every live object in index order. In deferred mode it
// defrags first, so the scan runs over a packed prefix.
func (p *Pool[T]) Iterate(f func(obj *T, id Id)) error {
	if err := p.beforeScan(); err != nil {
		return err
	}

	p.iterating++
	defer func() { p.iterating-- }()

	for i := 0; i < p.top; i++ {
		s := p.slots.at(i)
		if id, ok := s.id(); ok {
			f(&s.object, id)
		}
	}

	return nil
}

// IterateEx is Iterate with early termination and access to the pool, handy
// to resolve other handles while visiting.
func (p *Pool[T]) IterateEx(f func(obj *T, id Id, owner *Pool[T]) IterationCode) error {
	if err := p.beforeScan(); err != nil {
		return err
	}

	p.iterating++
	defer func() { p.iterating-- }()

	for i := 0; i < p.top; i++ {
		s := p.slots.at(i)
		if id, ok := s.id(); ok {
			if f(&s.object, id, p) == Break {
				break
			}
		}
	}

	return nil
}

// IterateConst visits a copy of every live object. Read only scans never
// defrag, holes are just skipped.
func (p *Pool[T]) IterateConst(f func(obj T, id Id)) {
	p.iterating++
	defer func() { p.iterating-- }()

	for i := 0; i < p.top; i++ {
		s := p.slots.at(i)
		if id, ok := s.id(); ok {
			f(s.object, id)
		}
	}
}

func (p *Pool[T]) IterateConstEx(f func(obj T, id Id, owner *Pool[T]) IterationCode) {
	p.iterating++
	defer func() { p.iterating-- }()

	for i := 0; i < p.top; i++ {
		s := p.slots.at(i)
		if id, ok := s.id(); ok {
			if f(s.object, id, p) == Break {
				return
			}
		}
	}
}

// IterateOrdered visits live objects by increasing id, that is allocation
// order. It goes through the id table, so it is slower than Iterate and
// never defrags.
func (p *Pool[T]) IterateOrdered(f func(obj *T, id Id) IterationCode) error {
	p.iterating++
	defer func() { p.iterating-- }()

	var err error
	p.table.ascend(func(id Id, index int) bool {
		s := p.slots.at(index)
		if owner, used := s.id(); !used || owner != id {
			err = p.internal(fmt.Errorf("%w: id %d maps to slot %d not owned by it", ErrInternal, id, index))
			return false
		}
		return f(&s.object, id) != Break
	})

	return err
}

// All returns an iterator over live objects in index order, defragging first
// in deferred mode. A failed defrag ends the sequence before the first object
// and is logged at error level, use Iterate to get the error back.
func (p *Pool[T]) All() iter.Seq2[Id, *T] {
	return func(yield func(Id, *T) bool) {
		if err := p.beforeScan(); err != nil {
			p.logger.Error("scan aborted", zap.Error(err))
			return
		}

		p.iterating++
		defer func() { p.iterating-- }()

		for i := 0; i < p.top; i++ {
			s := p.slots.at(i)
			if id, ok := s.id(); ok {
				if !yield(id, &s.object) {
					return
				}
			}
		}
	}
}

// ReleaseList collects ids during a scan to release them after it.
type ReleaseList []Id

func (l *ReleaseList) Add(id Id) {
	*l = append(*l, id)
}

func (l *ReleaseList) Len() int {
	return len(*l)
}

// Apply releases every collected id and empties the list. It stops at the
// first failure, the ids not yet released stay in the list.
func (l *ReleaseList) Apply(p Releaser) error {
	for i, id := range *l {
		if err := p.Release(id); err != nil {
			*l = (*l)[i:]
			return err
		}
	}
	*l = (*l)[:0]
	return nil
}

// Releaser is satisfied by any *Pool.
type Releaser interface {
	Release(id Id) error
}
