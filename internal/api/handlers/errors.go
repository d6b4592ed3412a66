package handlers

import (
	"errors"
	"net/http"

	"github.com/alchemistake/pokeproxy/backend/internal/services"
)

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	var notFound *services.CardNotFoundError
	var fetchErr *services.FetchError
	switch {
	case errors.Is(err, services.ErrEmptyDecklist):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, services.ErrNoDataSource):
		return http.StatusNotFound
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
