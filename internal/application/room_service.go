package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// RoomRepository captures the room catalog operations the service needs.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room persistence.Room) error
	ListRooms(ctx context.Context, kind booking.RoomKind) ([]persistence.Room, error)
}

// OccupancyReader exposes the ledger's read-only availability snapshot.
type OccupancyReader interface {
	SlotOccupancies(ctx context.Context, date booking.Date, start, end booking.TimeOfDay) (map[string]int, error)
}

// RoomService answers catalog and availability queries for rooms.
type RoomService struct {
	rooms       RoomRepository
	occupancies OccupancyReader
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service.
func NewRoomService(rooms RoomRepository, occupancies OccupancyReader, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, occupancies, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a logger.
func NewRoomServiceWithLogger(rooms RoomRepository, occupancies OccupancyReader, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{
		rooms:       rooms,
		occupancies: occupancies,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates and persists a new room. Rooms are provisioned
// administratively; the HTTP surface exposes read access only.
func (s *RoomService) CreateRoom(ctx context.Context, input CreateRoomInput) (room persistence.Room, err error) {
	if s == nil {
		return persistence.Room{}, fmt.Errorf("RoomService is nil")
	}

	logger := s.loggerWith(ctx, "CreateRoom", "name", input.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	kind, kindErr := booking.ParseRoomKind(input.Kind)
	if kindErr != nil {
		vErr := &ValidationError{}
		vErr.add("kind", "kind must be one of: solo, group, shared_bench")
		return persistence.Room{}, vErr
	}

	validated, roomErr := booking.NewRoom(s.idGenerator(), input.Name, kind, input.Capacity)
	if roomErr != nil {
		vErr := &ValidationError{}
		vErr.add("capacity", roomErr.Error())
		return persistence.Room{}, vErr
	}

	createdAt := s.now()
	room = persistence.Room{
		ID:        validated.ID,
		Name:      validated.Name,
		Kind:      validated.Kind,
		Capacity:  validated.Capacity,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if err = s.rooms.CreateRoom(ctx, room); err != nil {
		err = mapLedgerError(err)
		return persistence.Room{}, err
	}
	return room, nil
}

// ListRooms returns the room catalog, optionally filtered by kind.
func (s *RoomService) ListRooms(ctx context.Context, kindFilter string) ([]persistence.Room, error) {
	if s == nil {
		return nil, fmt.Errorf("RoomService is nil")
	}

	var kind booking.RoomKind
	if strings.TrimSpace(kindFilter) != "" {
		parsed, err := booking.ParseRoomKind(kindFilter)
		if err != nil {
			vErr := &ValidationError{}
			vErr.add("kind", "kind must be one of: solo, group, shared_bench")
			return nil, vErr
		}
		kind = parsed
	}

	rooms, err := s.rooms.ListRooms(ctx, kind)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	return rooms, nil
}

// AvailableRooms computes which rooms could currently accept a reservation
// for the queried slot. The result is a snapshot: it may be stale by the
// time the caller books, and the commit path re-validates. An empty result
// is a normal outcome, not an error.
func (s *RoomService) AvailableRooms(ctx context.Context, query AvailabilityQuery) (rooms []persistence.Room, rejection *booking.Rejection, err error) {
	if s == nil {
		return nil, nil, fmt.Errorf("RoomService is nil")
	}

	logger := s.loggerWith(ctx, "AvailableRooms", "slot", query.Slot)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute availability", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	vErr := &ValidationError{}

	slot, slotErr := booking.ParseSlot(query.Slot)
	if query.Slot == "" {
		vErr.add("slot", "slot parameter is required")
	} else if slotErr != nil {
		vErr.add("slot", "slot must use the HH-HH format, e.g. 10-11")
	}

	date := booking.DateOf(s.now())
	if strings.TrimSpace(query.Date) != "" {
		parsed, dateErr := booking.ParseDate(query.Date)
		if dateErr != nil {
			vErr.add("date", "date must use the YYYY-MM-DD format")
		} else {
			date = parsed
		}
	}

	var kind booking.RoomKind
	if strings.TrimSpace(query.Kind) != "" {
		parsed, kindErr := booking.ParseRoomKind(query.Kind)
		if kindErr != nil {
			vErr.add("kind", "kind must be one of: solo, group, shared_bench")
		} else {
			kind = parsed
		}
	}

	if vErr.HasErrors() {
		return nil, nil, vErr
	}

	// The same window preconditions as the booking validator apply before
	// any query runs.
	if rej := booking.ValidateWindow(slot.Start, slot.End); rej != nil {
		return nil, rej, nil
	}

	catalog, err := s.rooms.ListRooms(ctx, kind)
	if err != nil {
		return nil, nil, mapLedgerError(err)
	}

	occupancy, err := s.occupancies.SlotOccupancies(ctx, date, slot.Start, slot.End)
	if err != nil {
		return nil, nil, mapLedgerError(err)
	}

	domainRooms := make([]booking.Room, 0, len(catalog))
	byID := make(map[string]persistence.Room, len(catalog))
	for _, room := range catalog {
		domainRooms = append(domainRooms, booking.Room{
			ID:       room.ID,
			Name:     room.Name,
			Kind:     room.Kind,
			Capacity: room.Capacity,
		})
		byID[room.ID] = room
	}

	available := booking.AvailableRooms(domainRooms, occupancy, kind)
	rooms = make([]persistence.Room, 0, len(available))
	for _, room := range available {
		rooms = append(rooms, byID[room.ID])
	}
	return rooms, nil, nil
}
