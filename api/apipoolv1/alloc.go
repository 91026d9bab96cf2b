package apipoolv1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/fulldump/slotpool/pool"
	"github.com/fulldump/slotpool/registry"
	"github.com/fulldump/slotpool/service"
)

type allocResponse struct {
	Id pool.Id `json:"id"`
}

// alloc reads a stream of JSON objects and stores each one, answering one
// {"id":N} line per object. The pool is created with the defaults when it
// does not exist.
//
// curl -X POST -T. http://localhost:8080/v1/pools/players:alloc
func alloc(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	s := GetServicer(ctx)
	poolName := box.GetUrlParameter(ctx, "poolName")
	p, err := s.GetPool(poolName)
	if errors.Is(err, service.ErrorPoolNotFound) {
		p, err = s.CreatePool(poolName, nil)
	}
	if err != nil {
		return err
	}

	setNdjson(w)

	decoder := jsontext.NewDecoder(r.Body)
	encoder := jsontext.NewEncoder(w)

	for i := 0; true; i++ {
		value, err := decoder.ReadValue()
		if errors.Is(err, io.EOF) {
			if i == 0 {
				w.WriteHeader(http.StatusNoContent)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: document %d: %w", registry.ErrBadDocument, i, err)
		}

		id, err := p.Alloc(value)
		if err != nil {
			return err
		}

		if i == 0 {
			w.WriteHeader(http.StatusCreated)
		}
		err = json.MarshalEncode(encoder, allocResponse{Id: id})
		if err != nil {
			return err
		}
	}

	return nil
}
