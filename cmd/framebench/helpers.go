package main

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// entity is the object every test allocates once per frame.
type entity struct {
	hp int
}

func (e *entity) init(r *rand.Rand) {
	e.hp = r.IntN(25) + 1
}

func (e *entity) update(r *rand.Rand) {
	if r.IntN(1000) <= 1 {
		e.hp--
	}
}

func (e *entity) dead() bool {
	return e.hp < 0
}

// Round accumulates the timings of one round of frames.
type Round struct {
	Updates   int
	Added     int
	Removed   int
	Alloc     time.Duration
	Iteration time.Duration
	Remove    time.Duration
}

func (r *Round) Print(n, frames, size int) {
	fmt.Println("Round:", n)
	fmt.Println("Frames per round:", frames)
	fmt.Println("Current size:", size)
	fmt.Println("Total update calls:", r.Updates)
	fmt.Println("Iterations total time:", r.Iteration)
	fmt.Println("Allocations total time:", r.Alloc)
	fmt.Println("Remove objects total time:", r.Remove)
	fmt.Println("Objects removed this round:", r.Removed)
	fmt.Println("Objects added this round:", r.Added)
	fmt.Println("--------------------------")
}

// Measure adds the time spent in f to d.
func Measure(d *time.Duration, f func()) {
	t0 := time.Now()
	f()
	*d += time.Since(t0)
}

func Title(name string) {
	fmt.Println()
	fmt.Println("==========================")
	fmt.Println("TEST", name)
	fmt.Println("==========================")
	fmt.Println()
}

func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// FrameLoop runs rounds*frames frames and prints a report after every round.
func FrameLoop(c Config, frame func(r *Round), size func() int) {
	round := &Round{}
	for i := 0; i < c.Frames*c.Rounds; i++ {
		frame(round)
		if (i+1)%c.Frames == 0 {
			round.Print(i/c.Frames, c.Frames, size())
			round = &Round{}
		}
	}
}
