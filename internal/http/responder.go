package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/logging"
)

var (
	errBadRequestBody       = errors.New("invalid request body")
	errInvalidReservationID = errors.New("invalid reservation id")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// writeRejection renders a declined domain decision. Referential misses map
// to 404; every other reason is a well-formed request the rules turned
// down, a 400.
func (r responder) writeRejection(ctx context.Context, w http.ResponseWriter, rejection *booking.Rejection) {
	if rejection == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown rejection"))
		return
	}

	status := http.StatusBadRequest
	switch rejection.Reason {
	case booking.ResourceNotFound, booking.RequesterNotFound, booking.ReservationNotFound:
		status = http.StatusNotFound
	}

	r.writeJSON(ctx, w, status, errorResponse{
		Reason:   string(rejection.Reason),
		Message:  rejection.Message,
		Capacity: rejection.Capacity,
	})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "the requested resource was not found"})
	case errors.Is(err, application.ErrContention):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "the booking system is busy, please retry"})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "a resource with the same identity already exists"})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
				Message: "invalid request parameters",
				Errors:  vErr.FieldErrors,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	Reason   string                  `json:"reason,omitempty"`
	Message  string                  `json:"message"`
	Errors   map[string]string       `json:"errors,omitempty"`
	Capacity *booking.CapacityDetail `json:"capacity,omitempty"`
}
