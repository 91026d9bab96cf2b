package apipoolv1

import (
	"context"

	"github.com/fulldump/box"
)

func dropPool(ctx context.Context) error {

	s := GetServicer(ctx)

	return s.DropPool(box.GetUrlParameter(ctx, "poolName"))
}
