package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/slotpool/api/apipoolv1"
	"github.com/fulldump/slotpool/pool"
	"github.com/fulldump/slotpool/registry"
	"github.com/fulldump/slotpool/service"
)

type PrettyError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (p PrettyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"error": struct {
			Message     string `json:"message"`
			Description string `json:"description"`
		}{
			p.Message,
			p.Description,
		},
	})
}

func (p PrettyError) MarshalTo(w io.Writer) error {
	return json.NewEncoder(w).Encode(p)
}

type errorStatus struct {
	target      error
	status      int
	description string
}

var errorStatuses = []errorStatus{
	{ErrUnauthorized, http.StatusUnauthorized, "user is not authenticated"},
	{ErrUnavailable, http.StatusServiceUnavailable, "the registry is not operating"},
	{pool.ErrAccessViolation, http.StatusNotFound, "object not found, it was released or never allocated"},
	{pool.ErrCapacityExceeded, http.StatusInsufficientStorage, "pool is full, release objects or raise max_size"},
	{pool.ErrNotDefragged, http.StatusConflict, "pool has holes, call :defrag first"},
	{pool.ErrIterating, http.StatusConflict, "pool is being iterated"},
	{service.ErrorPoolNotFound, http.StatusNotFound, "pool not found"},
	{service.ErrorPoolAlreadyExists, http.StatusConflict, "pool already exists"},
	{registry.ErrBadPoolName, http.StatusBadRequest, "bad pool name"},
	{registry.ErrBadPoolConfig, http.StatusBadRequest, "bad pool config"},
	{registry.ErrBadDocument, http.StatusBadRequest, "documents must be JSON objects"},
	{apipoolv1.ErrBadRequest, http.StatusBadRequest, "bad request"},
	{io.EOF, http.StatusBadRequest, "empty body"},
	{box.ErrResourceNotFound, http.StatusNotFound, "resource not found"},
	{box.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "method not allowed"},
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}
		w := box.GetResponse(ctx)
		w.Header().Set("Content-Type", "application/json")

		status, description := describeError(ctx, err)

		w.WriteHeader(status)
		PrettyError{
			Message:     err.Error(),
			Description: description,
		}.MarshalTo(w)
	}
}

func describeError(ctx context.Context, err error) (int, string) {

	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			description := e.description
			switch e.target {
			case box.ErrResourceNotFound:
				description = fmt.Sprintf("resource '%s' not found", box.GetRequest(ctx).URL.String())
			case box.ErrMethodNotAllowed:
				description = fmt.Sprintf("method '%s' not allowed", box.GetRequest(ctx).Method)
			}
			return e.status, description
		}
	}

	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) {
		return http.StatusBadRequest, "Malformed JSON"
	}
	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		return http.StatusBadRequest, "Malformed JSON"
	}

	return http.StatusInternalServerError, "Unexpected error"
}
