package apipoolv1

import (
	"context"

	"github.com/fulldump/slotpool/service"
)

type contextKey string

const ContextServicerKey contextKey = "slotpool-servicer"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	s, _ := ctx.Value(ContextServicerKey).(service.Servicer)
	return s
}
