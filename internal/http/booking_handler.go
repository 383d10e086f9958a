package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

type bookingService interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (persistence.Reservation, *booking.Rejection, error)
	CancelReservation(ctx context.Context, id string) (persistence.Reservation, *booking.Rejection, error)
	ListReservations(ctx context.Context, params application.ListReservationsParams) (application.ReservationPage, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if vErr := validatePayload(req); vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := h.log(r.Context(), "Create", "room_id", req.RoomID)

	res, rejection, err := h.service.CreateReservation(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if rejection != nil {
		logger.InfoContext(r.Context(), "booking rejected", "reason", rejection.Reason)
		h.responder.writeRejection(r.Context(), w, rejection)
		return
	}

	logger.With("reservation_id", res.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toReservationDTO(res)})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.log(r.Context(), "Cancel", "error_kind", "bad_request").ErrorContext(r.Context(), "missing reservation id for cancel")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	logger := h.log(r.Context(), "Cancel", "reservation_id", id)

	res, rejection, err := h.service.CancelReservation(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if rejection != nil {
		logger.InfoContext(r.Context(), "cancellation rejected", "reason", rejection.Reason)
		h.responder.writeRejection(r.Context(), w, rejection)
		return
	}

	logger.InfoContext(r.Context(), "booking cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toReservationDTO(res)})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	params := application.ListReservationsParams{Status: strings.TrimSpace(query.Get("status"))}
	if raw := query.Get("page"); raw != "" {
		params.Page, _ = strconv.Atoi(raw)
	}
	if raw := query.Get("page_size"); raw != "" {
		params.PageSize, _ = strconv.Atoi(raw)
	}

	logger := h.log(r.Context(), "List")

	page, err := h.service.ListReservations(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(page.Items)).InfoContext(r.Context(), "bookings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{
		Bookings: toReservationViewDTOs(page.Items),
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	})
}

type bookingRequest struct {
	RoomID    string `json:"room_id" validate:"required"`
	UserID    string `json:"user_id"`
	TeamID    string `json:"team_id"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

func (r bookingRequest) toInput() application.CreateReservationInput {
	return application.CreateReservationInput{
		RoomID:    strings.TrimSpace(r.RoomID),
		UserID:    strings.TrimSpace(r.UserID),
		TeamID:    strings.TrimSpace(r.TeamID),
		Date:      strings.TrimSpace(r.Date),
		StartTime: strings.TrimSpace(r.StartTime),
		EndTime:   strings.TrimSpace(r.EndTime),
	}
}

type bookingResponse struct {
	Booking reservationDTO `json:"booking"`
}

type listBookingsResponse struct {
	Bookings []reservationViewDTO `json:"bookings"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Total    int                  `json:"total"`
}

type reservationDTO struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	UserID    string `json:"user_id,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Slot      string `json:"slot"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type reservationViewDTO struct {
	reservationDTO
	RoomName      string `json:"room_name"`
	RoomKind      string `json:"room_kind"`
	RequesterType string `json:"requester_type"`
	RequesterName string `json:"requester_name"`
}

func toReservationDTO(res persistence.Reservation) reservationDTO {
	return reservationDTO{
		ID:        res.ID,
		RoomID:    res.RoomID,
		UserID:    res.UserID,
		TeamID:    res.TeamID,
		Date:      string(res.Date),
		StartTime: res.Start.String(),
		EndTime:   res.End.String(),
		Slot:      booking.Slot{Start: res.Start, End: res.End}.String(),
		Status:    string(res.Status),
		CreatedAt: res.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: res.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toReservationViewDTOs(views []persistence.ReservationView) []reservationViewDTO {
	if len(views) == 0 {
		return nil
	}
	out := make([]reservationViewDTO, 0, len(views))
	for _, view := range views {
		out = append(out, reservationViewDTO{
			reservationDTO: toReservationDTO(view.Reservation),
			RoomName:       view.RoomName,
			RoomKind:       string(view.RoomKind),
			RequesterType:  view.RequesterType,
			RequesterName:  view.RequesterName,
		})
	}
	return out
}
