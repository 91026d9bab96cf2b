package main

import (
	"fmt"
	"sync/atomic"
	"time"
)

func TestAlloc(c Config) {

	pool := CreatePool(c.Base)
	client := NewClient()

	perWorker := c.N / int64(c.Workers)
	total := int64(0)

	t0 := time.Now()
	Parallel(c.Workers, func() {
		received, err := StreamAlloc(client, c.Base, pool, perWorker, func(i int64) JSON {
			return JSON{"n": i, "hp": i % 25}
		})
		if err != nil {
			fmt.Println("ERROR: alloc:", err.Error())
		}
		atomic.AddInt64(&total, received)
	})

	took := time.Since(t0)
	fmt.Println("allocated:", total)
	fmt.Println("took:", took)
	fmt.Printf("Throughput: %.2f objects/sec\n", float64(total)/took.Seconds())
}
