package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/api/handler"
	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/validation"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Passes backend failures through with the backend's detail message.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

// knownErrors maps domain sentinels to statuses. The reply carries the
// sentinel's own message, never the wrapping chain.
var knownErrors = []struct {
	err  error
	code int
}{
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{domain.ErrSessionExpired, http.StatusUnauthorized},
	{domain.ErrSessionNotFound, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrSelfDelete, http.StatusForbidden},
	{domain.ErrActionNotAllowed, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrCartLineNotFound, http.StatusNotFound},
	{domain.ErrSubmitInFlight, http.StatusConflict},
	{domain.ErrEmptyCart, http.StatusUnprocessableEntity},
	{domain.ErrInvalidQuantity, http.StatusUnprocessableEntity},
	{domain.ErrItemUnavailable, http.StatusUnprocessableEntity},
	{domain.ErrNoDialog, http.StatusUnprocessableEntity},
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		return http.StatusUnprocessableEntity, handler.ErrorResponse{Error: "validation failed", Fields: verrs.Fields}
	}

	var re *domain.RemoteError
	if errors.As(err, &re) {
		code := re.Status
		if code >= http.StatusInternalServerError || code < http.StatusBadRequest {
			log.Warn().Err(err).Int("backend_status", re.Status).Str("path", c.Path()).Msg("backend failure")
			code = http.StatusBadGateway
		}
		return code, handler.ErrorResponse{Error: re.Error()}
	}

	for _, known := range knownErrors {
		if errors.Is(err, known.err) {
			return known.code, handler.ErrorResponse{Error: known.err.Error()}
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Error: "internal server error"}
}
