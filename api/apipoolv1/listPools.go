package apipoolv1

import (
	"context"
)

func listPools(ctx context.Context) ([]*PoolResponse, error) {

	s := GetServicer(ctx)

	result := []*PoolResponse{}
	for _, p := range s.ListPools() {
		result = append(result, newPoolResponse(p))
	}

	return result, nil
}
