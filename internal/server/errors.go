package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/applyflow/internal/scoring"
	"github.com/jonathan/applyflow/internal/types"
	"github.com/jonathan/applyflow/internal/workflow"
)

// HTTPStatus returns the HTTP status code for a domain error.
func HTTPStatus(err error) int {
	var (
		notFound     *workflow.NotFoundError
		badState     *workflow.InvalidTransitionError
		conflict     *workflow.ConcurrencyConflictError
		invalid      *types.ValidationError
		insufficient *scoring.DataInsufficientError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &badState):
		return http.StatusConflict
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
