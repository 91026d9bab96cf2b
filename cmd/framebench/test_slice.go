package main

import (
	"slices"
)

func TestSlice(c Config) {

	Title("SLICE")

	items := []entity{}
	r := NewRand(c.Seed)

	FrameLoop(c, func(round *Round) {

		Measure(&round.Alloc, func() {
			e := entity{}
			e.init(r)
			items = append(items, e)
			round.Added++
		})

		Measure(&round.Iteration, func() {
			for i := range items {
				items[i].update(r)
				round.Updates++
			}
		})

		Measure(&round.Remove, func() {
			before := len(items)
			items = slices.DeleteFunc(items, func(e entity) bool {
				return e.dead()
			})
			round.Removed += before - len(items)
		})

	}, func() int { return len(items) })
}
