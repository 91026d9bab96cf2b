package main

import (
	"container/list"
)

func TestList(c Config) {

	Title("LIST")

	l := list.New()
	r := NewRand(c.Seed)

	FrameLoop(c, func(round *Round) {

		Measure(&round.Alloc, func() {
			e := &entity{}
			e.init(r)
			l.PushBack(e)
			round.Added++
		})

		Measure(&round.Iteration, func() {
			for el := l.Front(); el != nil; el = el.Next() {
				e := el.Value.(*entity)
				e.update(r)
				round.Updates++
			}
		})

		Measure(&round.Remove, func() {
			for el := l.Front(); el != nil; {
				next := el.Next()
				if el.Value.(*entity).dead() {
					l.Remove(el)
					round.Removed++
				}
				el = next
			}
		})

	}, l.Len)
}
