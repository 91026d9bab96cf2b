package apipoolv1

import (
	"context"
)

func getPool(ctx context.Context) (*PoolResponse, error) {

	p, err := getPoolFromUrl(ctx)
	if err != nil {
		return nil, err
	}

	return newPoolResponse(p), nil
}
