package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/fulldump/slotpool/bootstrap"
	"github.com/fulldump/slotpool/configuration"
)

type JSON = map[string]any

func Parallel(workers int, f func()) {
	wg := &sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}
	wg.Wait()
}

func CreatePool(base string) string {

	name := "pool-" + strconv.FormatInt(time.Now().UnixNano(), 10)

	payload, _ := json.Marshal(JSON{"name": name})

	// the embedded server answers 503 until the registry is loaded
	var resp *http.Response
	for {
		req, _ := http.NewRequest("POST", base+"/v1/pools", bytes.NewReader(payload))
		var err error
		resp, err = http.DefaultClient.Do(req)
		if err != nil {
			panic(err)
		}
		if resp.StatusCode != http.StatusServiceUnavailable {
			break
		}
		resp.Body.Close()
		time.Sleep(10 * time.Millisecond)
	}
	defer resp.Body.Close()

	io.Copy(os.Stdout, resp.Body)
	fmt.Println()

	return name
}

func CreateServer(c *Config) (start, stop func()) {
	conf := configuration.Default()
	conf.ShowBanner = false
	conf.LogLevel = "warn"
	c.Base = "http://" + conf.HttpAddr

	start, stop = bootstrap.Bootstrap(conf)
	cleanups = append(cleanups, stop)
	return
}

func NewClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     1024,
			MaxIdleConnsPerHost: 1024,
			MaxIdleConns:        1024,
		},
	}
}

// StreamAlloc sends n documents in a single :alloc request and returns the
// number of ids received.
func StreamAlloc(client *http.Client, base, pool string, n int64, document func(i int64) JSON) (int64, error) {

	r, w := io.Pipe()
	wb := bufio.NewWriterSize(w, 1*1024*1024)

	go func() {
		e := json.NewEncoder(wb)
		for i := int64(0); i < n; i++ {
			e.Encode(document(i))
		}
		wb.Flush()
		w.Close()
	}()

	resp, err := client.Post(base+"/v1/pools/"+pool+":alloc", "application/x-ndjson", r)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("bad status: %s", resp.Status)
	}

	received := int64(0)
	s := bufio.NewScanner(resp.Body)
	for s.Scan() {
		received++
	}
	return received, s.Err()
}
