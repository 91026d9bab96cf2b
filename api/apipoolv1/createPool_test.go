package apipoolv1

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fulldump/slotpool/pool"
)

func intPtr(i int) *int {
	return &i
}

func TestCreatePoolRequest_Config(t *testing.T) {

	defaults := *pool.DefaultConfig()
	mode := "Manual"

	c, err := (&createPoolRequest{
		MaxSize:    intPtr(10),
		DefragMode: &mode,
	}).config(defaults)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if c.MaxSize != 10 {
		t.Fatalf("unexpected max size: %d", c.MaxSize)
	}
	if c.DefragMode != pool.DefragManual {
		t.Fatalf("unexpected defrag mode: %s", c.DefragMode)
	}
	if c.ShrinkThreshold != defaults.ShrinkThreshold {
		t.Fatalf("defaults not kept: %+v", c)
	}
}

func TestCreatePoolRequest_BadInput(t *testing.T) {

	mode := "often"
	cases := map[string]createPoolRequest{
		"unknown defrag mode":       {DefragMode: &mode},
		"negative max size":         {MaxSize: intPtr(-1)},
		"negative reserve":          {Reserve: intPtr(-1)},
		"negative shrink threshold": {ShrinkThreshold: intPtr(-10)},
	}

	for name, input := range cases {
		_, err := input.config(*pool.DefaultConfig())
		if !errors.Is(err, ErrBadRequest) {
			t.Fatalf("%s: expected bad request, got %v", name, err)
		}
	}
}

func TestCreatePoolRequest_ReserveClampedToMaxSize(t *testing.T) {

	cases := []struct {
		maxSize  int
		reserve  int
		expected int
	}{
		{maxSize: 0, reserve: 500, expected: 500},
		{maxSize: 100, reserve: 500, expected: 100},
		{maxSize: 100, reserve: 20, expected: 20},
		{maxSize: 10, reserve: 1 << 40, expected: 10},
	}

	for _, c := range cases {
		input := createPoolRequest{MaxSize: intPtr(c.maxSize), Reserve: intPtr(c.reserve)}
		config, err := input.config(*pool.DefaultConfig())
		if err != nil {
			t.Fatalf("config: %v", err)
		}
		if config.Reserve != c.expected {
			t.Fatalf("max_size %d reserve %d: expected %d, got %d", c.maxSize, c.reserve, c.expected, config.Reserve)
		}
	}
}

func TestDecodeBody(t *testing.T) {

	input := findRequest{Limit: 1}
	r := httptest.NewRequest("POST", "/", strings.NewReader("  \n"))
	if err := decodeBody(r, &input); err != nil {
		t.Fatalf("empty body: %v", err)
	}
	if input.Limit != 1 {
		t.Fatalf("empty body must keep defaults, got limit %d", input.Limit)
	}

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"limit":5,"ordered":true}`))
	if err := decodeBody(r, &input); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if input.Limit != 5 || !input.Ordered {
		t.Fatalf("unexpected input: %+v", input)
	}

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"limit":`))
	if err := decodeBody(r, &input); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}
