package server

import (
	"errors"
	"net/http"

	"github.com/jaki95/dj-transition/internal/domain"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		validationErr *domain.ValidationError
		fetchErr      *domain.FetchError
		decodeErr     *domain.DecodeError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &decodeErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
