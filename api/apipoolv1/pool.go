package apipoolv1

import (
	"time"

	"github.com/fulldump/slotpool/pool"
	"github.com/fulldump/slotpool/registry"
)

type PoolResponse struct {
	Name     string      `json:"name"`
	Instance string      `json:"instance"`
	Created  time.Time   `json:"created"`
	Config   pool.Config `json:"config"`
	Stats    pool.Stats  `json:"stats"`
}

func newPoolResponse(p *registry.Pool) *PoolResponse {
	return &PoolResponse{
		Name:     p.Name,
		Instance: p.Instance,
		Created:  p.Created,
		Config:   p.Config,
		Stats:    p.Stats(),
	}
}
