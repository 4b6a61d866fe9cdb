package rest

import (
	"errors"
	"net/http"

	"github.com/agorahq/agora/internal/database/types"
	restTypes "github.com/agorahq/agora/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorMiddleware renders handler errors as {success: false, message}.
func errorMiddleware(logger *zap.Logger) bunrouter.MiddlewareFunc {
	return func(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
		return func(w http.ResponseWriter, req bunrouter.Request) error {
			err := next(w, req)
			if err == nil {
				return nil
			}

			status := statusFor(err)
			message := err.Error()

			if status == http.StatusInternalServerError {
				logger.Error("Request failed",
					zap.Error(err),
					zap.String("method", req.Method),
					zap.String("route", req.Route()))
				message = "Internal server error"
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			return bunrouter.JSON(w, restTypes.ErrorResponse{Success: false, Message: message})
		}
	}
}
