package apipoolv1

import (
	"context"
	"encoding/json"

	"github.com/fulldump/slotpool/pool"
)

type getRequest struct {
	Id *pool.Id `json:"id"`
}

type documentResponse struct {
	Id       pool.Id         `json:"id"`
	Document json.RawMessage `json:"document"`
}

func get(ctx context.Context, input *getRequest) (*documentResponse, error) {

	if input.Id == nil {
		return nil, ErrBadRequest
	}

	p, err := getPoolFromUrl(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := p.Get(*input.Id)
	if err != nil {
		return nil, err
	}

	return &documentResponse{
		Id:       *input.Id,
		Document: json.RawMessage(doc.Payload),
	}, nil
}
