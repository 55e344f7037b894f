package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/yourorg/afford-api/internal/afford"
	"github.com/yourorg/afford-api/rapidapi"
)

// WriteError renders {"error": code, "detail": ...} with status.
func WriteError(w http.ResponseWriter, req *http.Request, status int, code string, detail string) {
	render.Status(req, status)
	render.JSON(w, req, map[string]any{"error": code, "detail": detail})
}

// WriteFailure maps a pipeline or source error to its HTTP status.
func WriteFailure(w http.ResponseWriter, req *http.Request, err error) {
	var ve *afford.ValidationError
	if errors.As(err, &ve) {
		render.Status(req, http.StatusBadRequest)
		render.JSON(w, req, map[string]any{"error": "invalid_input", "field": ve.Field, "detail": ve.Reason})
		return
	}
	status, code := failureStatus(err)
	WriteError(w, req, status, code, err.Error())
}

func failureStatus(err error) (int, string) {
	var se *afford.SourceError
	switch {
	case errors.Is(err, rapidapi.ErrMissingKey):
		return http.StatusUnauthorized, "api_key_required"
	case errors.Is(err, rapidapi.ErrDailyLimitExceeded):
		return http.StatusTooManyRequests, "provider_quota"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "source_timeout"
	case errors.As(err, &se):
		return http.StatusBadGateway, "source_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
