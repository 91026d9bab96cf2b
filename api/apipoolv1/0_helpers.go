package apipoolv1

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"
	"github.com/go-json-experiment/json"

	"github.com/fulldump/slotpool/registry"
)

var ErrBadRequest = errors.New("bad request")

func getPoolFromUrl(ctx context.Context) (*registry.Pool, error) {
	s := GetServicer(ctx)
	return s.GetPool(box.GetUrlParameter(ctx, "poolName"))
}

// decodeBody fills v from the request body, an empty body keeps v as is.
func decodeBody(r *http.Request, v any) error {

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	err = json.Unmarshal(body, v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	return nil
}

func setNdjson(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
