package apipoolv1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/fulldump/slotpool/pool"
)

type releaseRequest struct {
	Ids    []pool.Id      `json:"ids"`
	Filter map[string]any `json:"filter"`
	Limit  int            `json:"limit"`
}

// release frees documents by id or by filter and streams the released ids.
// Matching documents are collected first and released once the scan is over.
// A list of ids is released all or nothing, an unknown id fails with 404
// before anything is written.
func release(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	input := releaseRequest{}
	if err := decodeBody(r, &input); err != nil {
		return err
	}
	if input.Ids == nil && input.Filter == nil {
		return fmt.Errorf("%w: 'ids' or 'filter' is required", ErrBadRequest)
	}

	p, err := getPoolFromUrl(ctx)
	if err != nil {
		return err
	}

	var released []pool.Id
	if input.Ids != nil {
		released, err = p.Release(input.Ids)
	} else {
		released, err = p.ReleaseMatching(input.Filter, input.Limit)
	}
	if err != nil {
		return err
	}

	setNdjson(w)
	encoder := jsontext.NewEncoder(w)
	for _, id := range released {
		if err := json.MarshalEncode(encoder, allocResponse{Id: id}); err != nil {
			return err
		}
	}

	return nil
}
