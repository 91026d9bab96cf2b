package apipoolv1

import (
	"context"

	"github.com/fulldump/slotpool/pool"
)

func defrag(ctx context.Context) (*pool.Stats, error) {

	p, err := getPoolFromUrl(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := p.Defrag()
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// trim fails with 409 while the pool has holes, defrag first.
func trim(ctx context.Context) (*pool.Stats, error) {

	p, err := getPoolFromUrl(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := p.Trim()
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func clearPool(ctx context.Context) (*pool.Stats, error) {

	p, err := getPoolFromUrl(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.Clear(); err != nil {
		return nil, err
	}

	stats := p.Stats()
	return &stats, nil
}
