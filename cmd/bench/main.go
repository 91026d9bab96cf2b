package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/fulldump/goconfig"
)

type Config struct {
	Test    string `usage:"name of the test: ALL | ALLOC | RELEASE"`
	Base    string `usage:"base URL, empty starts an embedded server"`
	N       int64  `usage:"number of documents"`
	Workers int    `usage:"number of workers"`
}

var cleanups []func()

func main() {

	defer func() {
		fmt.Println("Cleaning up...")
		for _, cleanup := range cleanups {
			cleanup()
		}
	}()

	c := Config{
		Test:    "ALL",
		Base:    "",
		N:       1_000_000,
		Workers: 16,
	}
	goconfig.Read(&c)

	if c.Base == "" {
		start, _ := CreateServer(&c)
		go start()
	}

	switch strings.ToUpper(c.Test) {
	case "ALL":
		TestAlloc(c)
		TestRelease(c)
	case "ALLOC":
		TestAlloc(c)
	case "RELEASE":
		TestRelease(c)
	default:
		log.Fatalf("Unknown test %s", c.Test)
	}

}
