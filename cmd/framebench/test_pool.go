package main

import (
	"fmt"
	"os"

	"github.com/fulldump/slotpool/pool"
)

func TestPool(c Config) {

	Title("POOL (" + c.DefragMode + ")")

	mode, err := pool.ParseDefragMode(c.DefragMode)
	if err != nil {
		fmt.Println("ERROR:", err.Error())
		os.Exit(2)
	}

	config := pool.DefaultConfig()
	config.DefragMode = mode
	p := pool.New[entity](config)

	r := NewRand(c.Seed)
	toRemove := pool.ReleaseList{}

	FrameLoop(c, func(round *Round) {

		Measure(&round.Alloc, func() {
			h, err := p.Alloc()
			if err != nil {
				fmt.Println("ERROR: alloc:", err.Error())
				os.Exit(3)
			}
			obj, _ := h.Resolve()
			obj.init(r)
			round.Added++
		})

		Measure(&round.Iteration, func() {
			err := p.Iterate(func(obj *entity, id pool.Id) {
				obj.update(r)
				round.Updates++
				if obj.dead() {
					toRemove.Add(id)
				}
			})
			if err != nil {
				fmt.Println("ERROR: iterate:", err.Error())
				os.Exit(4)
			}
		})

		Measure(&round.Remove, func() {
			round.Removed += toRemove.Len()
			if err := toRemove.Apply(p); err != nil {
				fmt.Println("ERROR: release:", err.Error())
				os.Exit(5)
			}
		})

		if mode == pool.DefragManual && p.Holes() > 0 {
			Measure(&round.Remove, func() {
				if err := p.Defrag(); err != nil {
					fmt.Println("ERROR: defrag:", err.Error())
					os.Exit(7)
				}
			})
		}

	}, p.Len)

	if err := p.Check(); err != nil {
		fmt.Println("ERROR: check:", err.Error())
		os.Exit(6)
	}
	fmt.Printf("stats: %+v\n", p.Stats())
}
