package apipoolv1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fulldump/slotpool/pool"
)

type createPoolRequest struct {
	Name            string  `json:"name"`
	MaxSize         *int    `json:"max_size"`
	Reserve         *int    `json:"reserve"`
	ShrinkThreshold *int    `json:"shrink_threshold"`
	DefragMode      *string `json:"defrag_mode"`
	OrderedIndex    *bool   `json:"ordered_index"`
}

// config applies the request over the service defaults.
func (r *createPoolRequest) config(defaults pool.Config) (*pool.Config, error) {

	c := defaults

	if r.MaxSize != nil {
		if *r.MaxSize < 0 {
			return nil, fmt.Errorf("%w: max_size must not be negative", ErrBadRequest)
		}
		c.MaxSize = *r.MaxSize
	}
	if r.Reserve != nil {
		if *r.Reserve < 0 {
			return nil, fmt.Errorf("%w: reserve must not be negative", ErrBadRequest)
		}
		c.Reserve = *r.Reserve
	}
	if r.ShrinkThreshold != nil {
		if *r.ShrinkThreshold < 0 {
			return nil, fmt.Errorf("%w: shrink_threshold must not be negative", ErrBadRequest)
		}
		c.ShrinkThreshold = *r.ShrinkThreshold
	}
	if r.DefragMode != nil {
		mode, err := pool.ParseDefragMode(*r.DefragMode)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		c.DefragMode = mode
	}
	if r.OrderedIndex != nil {
		c.OrderedIndex = *r.OrderedIndex
	}

	// a bounded pool never needs more slots than it can hold
	if c.MaxSize != 0 {
		c.Reserve = min(c.Reserve, c.MaxSize)
	}

	return &c, nil
}

func createPool(ctx context.Context, w http.ResponseWriter, input *createPoolRequest) (*PoolResponse, error) {

	s := GetServicer(ctx)

	c, err := input.config(s.Defaults())
	if err != nil {
		return nil, err
	}

	p, err := s.CreatePool(input.Name, c)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return newPoolResponse(p), nil
}
