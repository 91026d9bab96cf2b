package apipoolv1

import (
	"context"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/fulldump/slotpool/pool"
	"github.com/fulldump/slotpool/registry"
)

type findRequest struct {
	Filter  map[string]any `json:"filter"`
	Skip    int            `json:"skip"`
	Limit   int            `json:"limit"`
	Ordered bool           `json:"ordered"`
}

type findItem struct {
	Id       pool.Id        `json:"id"`
	Document jsontext.Value `json:"document"`
}

// find streams the matching documents as {"id","document"} lines. Filters use
// the connor syntax, limit defaults to 1 and 0 means no limit.
func find(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	input := findRequest{
		Filter: map[string]any{},
		Limit:  1,
	}
	if err := decodeBody(r, &input); err != nil {
		return err
	}

	p, err := getPoolFromUrl(ctx)
	if err != nil {
		return err
	}

	setNdjson(w)
	encoder := jsontext.NewEncoder(w)

	return p.Find(registry.FindOptions{
		Filter:  input.Filter,
		Skip:    input.Skip,
		Limit:   input.Limit,
		Ordered: input.Ordered,
	}, func(id pool.Id, doc registry.Document) error {
		return json.MarshalEncode(encoder, findItem{Id: id, Document: doc.Payload})
	})
}
