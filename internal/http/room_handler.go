package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

type roomService interface {
	CreateRoom(ctx context.Context, input application.CreateRoomInput) (persistence.Room, error)
	ListRooms(ctx context.Context, kindFilter string) ([]persistence.Room, error)
	AvailableRooms(ctx context.Context, query application.AvailabilityQuery) ([]persistence.Room, *booking.Rejection, error)
}

type RoomHandler struct {
	service   roomService
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(service roomService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req roomRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if vErr := validatePayload(req); vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := h.log(r.Context(), "Create", "name", req.Name)

	room, err := h.service.CreateRoom(r.Context(), application.CreateRoomInput{
		Name:     strings.TrimSpace(req.Name),
		Kind:     strings.TrimSpace(req.Kind),
		Capacity: req.Capacity,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "room creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("room_id", room.ID).InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, roomResponse{Room: toRoomDTO(room)})
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	kind := strings.TrimSpace(r.URL.Query().Get("kind"))
	logger := h.log(r.Context(), "List")

	rooms, err := h.service.ListRooms(r.Context(), kind)
	if err != nil {
		logger.ErrorContext(r.Context(), "room list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(rooms)).InfoContext(r.Context(), "rooms listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoomsResponse{Rooms: toRoomDTOs(rooms)})
}

func (h *RoomHandler) Available(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	availability := application.AvailabilityQuery{
		Date: strings.TrimSpace(query.Get("date")),
		Slot: strings.TrimSpace(query.Get("slot")),
		Kind: strings.TrimSpace(query.Get("kind")),
	}

	logger := h.log(r.Context(), "Available", "slot", availability.Slot)

	rooms, rejection, err := h.service.AvailableRooms(r.Context(), availability)
	if err != nil {
		logger.ErrorContext(r.Context(), "availability query failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if rejection != nil {
		logger.InfoContext(r.Context(), "availability query rejected", "reason", rejection.Reason)
		h.responder.writeRejection(r.Context(), w, rejection)
		return
	}

	response := availableRoomsResponse{Rooms: toRoomDTOs(rooms), Slot: availability.Slot}
	if len(rooms) == 0 {
		// No free rooms is a legitimate answer, not a failure.
		response.Rooms = []roomDTO{}
		response.Message = "no rooms available for the requested slot"
	}

	logger.With("result_count", len(rooms)).InfoContext(r.Context(), "availability computed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

type roomRequest struct {
	Name     string `json:"name" validate:"required"`
	Kind     string `json:"kind" validate:"required,oneof=solo group shared_bench"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

type roomResponse struct {
	Room roomDTO `json:"room"`
}

type listRoomsResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type availableRoomsResponse struct {
	Rooms   []roomDTO `json:"rooms"`
	Slot    string    `json:"slot"`
	Message string    `json:"message,omitempty"`
}

type roomDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Capacity  int    `json:"capacity"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toRoomDTO(room persistence.Room) roomDTO {
	return roomDTO{
		ID:        room.ID,
		Name:      room.Name,
		Kind:      string(room.Kind),
		Capacity:  room.Capacity,
		CreatedAt: room.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: room.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toRoomDTOs(rooms []persistence.Room) []roomDTO {
	if len(rooms) == 0 {
		return nil
	}
	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	return out
}
