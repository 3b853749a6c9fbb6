package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/formloom/formloom/pkg/domain/mapper"
	"github.com/formloom/formloom/pkg/usecase"
	"github.com/formloom/formloom/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Header already committed; log only
		errutil.Handle(ctx, goerr.Wrap(err, "failed to encode response"), "encode response")
	}
}

// respondError maps domain errors to HTTP statuses: missing resources to
// 404, malformed or broken input to 400, lifecycle conflicts to 409 and
// everything else to 500.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrFormNotFound), errors.Is(err, usecase.ErrEntryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, mapper.ErrInvalidData), errors.Is(err, usecase.ErrInvalidDefinition):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrSourceIsDraft):
		status = http.StatusConflict
	}

	errutil.HandleHTTP(ctx, w, err, status)
}

// decodeBody reads a JSON object request body into a loose map for the
// mapper.
func decodeBody(r *http.Request) (map[string]any, error) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, goerr.Wrap(mapper.ErrInvalidData, "request body is not a JSON object")
	}
	return raw, nil
}
