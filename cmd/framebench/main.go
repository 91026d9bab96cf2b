package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fulldump/goconfig"
)

type Config struct {
	Test       string `usage:"name of the test: ALL | POOL | LIST | SLICE"`
	Frames     int    `usage:"frames per round"`
	Rounds     int    `usage:"number of rounds"`
	Seed       uint64 `usage:"random seed, 0 picks one from the clock"`
	DefragMode string `usage:"pool defrag mode [immediate|deferred|manual]"`
}

func main() {

	c := Config{
		Test:       "ALL",
		Frames:     15_000,
		Rounds:     5,
		Seed:       0,
		DefragMode: "deferred",
	}
	goconfig.Read(&c)

	if c.Seed == 0 {
		c.Seed = uint64(time.Now().UnixNano())
	}
	fmt.Println("seed:", c.Seed)

	switch strings.ToUpper(c.Test) {
	case "ALL":
		TestPool(c)
		TestList(c)
		TestSlice(c)
	case "POOL":
		TestPool(c)
	case "LIST":
		TestList(c)
	case "SLICE":
		TestSlice(c)
	default:
		log.Fatalf("Unknown test %s", c.Test)
	}

}
