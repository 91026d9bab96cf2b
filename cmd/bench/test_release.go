package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

func TestRelease(c Config) {

	pool := CreatePool(c.Base)
	client := NewClient()

	fmt.Println("Preload documents...")
	preloaded, err := StreamAlloc(client, c.Base, pool, c.N, func(i int64) JSON {
		return JSON{"n": i, "worker": i % int64(c.Workers)}
	})
	if err != nil {
		fmt.Println("ERROR: preload:", err.Error())
		return
	}

	releaseURL := fmt.Sprintf("%s/v1/pools/%s:release", c.Base, pool)

	t0 := time.Now()
	worker := int64(-1)
	Parallel(c.Workers, func() {
		w := atomic.AddInt64(&worker, 1)

		// Release all documents belonging to this worker
		body := fmt.Sprintf(`{"filter":{"worker":%d}}`, w)
		req, err := http.NewRequest(http.MethodPost, releaseURL, strings.NewReader(body))
		if err != nil {
			fmt.Println("ERROR: new request:", err.Error())
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			fmt.Println("ERROR: do request:", err.Error())
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			fmt.Println("ERROR: bad status:", resp.Status)
		}
	})

	took := time.Since(t0)
	fmt.Println("released:", preloaded)
	fmt.Println("took:", took)
	fmt.Printf("Throughput: %.2f objects/sec\n", float64(preloaded)/took.Seconds())

	resp, err := client.Post(fmt.Sprintf("%s/v1/pools/%s:defrag", c.Base, pool), "application/json", nil)
	if err != nil {
		fmt.Println("ERROR: defrag:", err.Error())
		return
	}
	defer resp.Body.Close()
	io.Copy(os.Stdout, resp.Body)
}
