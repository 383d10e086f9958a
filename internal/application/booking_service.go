package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// ReservationLedger captures the ledger interactions the service needs.
type ReservationLedger interface {
	Commit(ctx context.Context, candidate booking.Candidate) (persistence.Reservation, *booking.Rejection, error)
	Cancel(ctx context.Context, id string) (persistence.Reservation, *booking.Rejection, error)
	ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.ReservationView, int, error)
}

// BookingService orchestrates reservation creation, cancellation, and
// listing. The admission decision itself lives in the ledger's atomic
// commit; the service handles input parsing and the cheap pre-checks that
// spare the ledger a transaction for obviously malformed requests.
type BookingService struct {
	ledger ReservationLedger
	logger *slog.Logger
}

// NewBookingService constructs a booking service.
func NewBookingService(ledger ReservationLedger) *BookingService {
	return NewBookingServiceWithLogger(ledger, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a logger.
func NewBookingServiceWithLogger(ledger ReservationLedger, logger *slog.Logger) *BookingService {
	return &BookingService{ledger: ledger, logger: defaultLogger(logger)}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateReservation parses the request, runs the storage-free checks, and
// delegates admission to the ledger. The returned rejection is a normal
// outcome; the error return carries malformed input and infrastructure
// failures only.
func (s *BookingService) CreateReservation(ctx context.Context, input CreateReservationInput) (res persistence.Reservation, rejection *booking.Rejection, err error) {
	if s == nil {
		return persistence.Reservation{}, nil, fmt.Errorf("BookingService is nil")
	}

	logger := s.loggerWith(ctx, "CreateReservation", "room_id", input.RoomID)
	defer func() {
		switch {
		case err != nil:
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
		case rejection != nil:
			logger.InfoContext(ctx, "reservation rejected", "reason", rejection.Reason)
		default:
			logger.With("reservation_id", res.ID).InfoContext(ctx, "reservation committed")
		}
	}()

	candidate, vErr := parseCandidate(input)
	if vErr.HasErrors() {
		return persistence.Reservation{}, nil, vErr
	}

	// Shape checks need no committed state; reject here before the ledger
	// opens a transaction. Everything else, the window included, is left
	// to the ledger so the reported reason follows the fixed check order
	// (existence comes before the window).
	if candidate.UserID == "" && candidate.TeamID == "" {
		return persistence.Reservation{}, booking.Rejectf(booking.MissingRequester, "either a user or a team must be provided"), nil
	}
	if candidate.UserID != "" && candidate.TeamID != "" {
		return persistence.Reservation{}, booking.Rejectf(booking.AmbiguousRequester, "cannot book for both a user and a team"), nil
	}

	res, rejection, err = s.ledger.Commit(ctx, candidate)
	if err != nil {
		return persistence.Reservation{}, nil, mapLedgerError(err)
	}
	if rejection != nil {
		return persistence.Reservation{}, rejection, nil
	}
	return res, nil, nil
}

// CancelReservation performs the active-to-cancelled transition.
func (s *BookingService) CancelReservation(ctx context.Context, id string) (res persistence.Reservation, rejection *booking.Rejection, err error) {
	if s == nil {
		return persistence.Reservation{}, nil, fmt.Errorf("BookingService is nil")
	}

	logger := s.loggerWith(ctx, "CancelReservation", "reservation_id", id)
	defer func() {
		switch {
		case err != nil:
			logger.ErrorContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
		case rejection != nil:
			logger.InfoContext(ctx, "cancellation rejected", "reason", rejection.Reason)
		default:
			logger.InfoContext(ctx, "reservation cancelled")
		}
	}()

	if id == "" {
		return persistence.Reservation{}, booking.Rejectf(booking.ReservationNotFound, "reservation id is required"), nil
	}

	res, rejection, err = s.ledger.Cancel(ctx, id)
	if err != nil {
		return persistence.Reservation{}, nil, mapLedgerError(err)
	}
	if rejection != nil {
		return persistence.Reservation{}, rejection, nil
	}
	return res, nil, nil
}

// ListReservations returns one page of reservations, newest first.
func (s *BookingService) ListReservations(ctx context.Context, params ListReservationsParams) (ReservationPage, error) {
	if s == nil {
		return ReservationPage{}, fmt.Errorf("BookingService is nil")
	}

	filter := persistence.ReservationFilter{Page: params.Page, PageSize: params.PageSize}
	if params.Status != "" {
		status, err := booking.ParseStatus(params.Status)
		if err != nil {
			vErr := &ValidationError{}
			vErr.add("status", "status must be one of: active, cancelled")
			return ReservationPage{}, vErr
		}
		filter.Status = status
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	items, total, err := s.ledger.ListReservations(ctx, filter)
	if err != nil {
		return ReservationPage{}, mapLedgerError(err)
	}

	return ReservationPage{
		Items:    items,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
	}, nil
}

func parseCandidate(input CreateReservationInput) (booking.Candidate, *ValidationError) {
	vErr := &ValidationError{}
	candidate := booking.Candidate{
		RoomID: input.RoomID,
		UserID: input.UserID,
		TeamID: input.TeamID,
	}

	if input.RoomID == "" {
		vErr.add("room_id", "room_id is required")
	}

	if input.Date == "" {
		vErr.add("date", "date is required")
	} else if date, err := booking.ParseDate(input.Date); err != nil {
		vErr.add("date", "date must use the YYYY-MM-DD format")
	} else {
		candidate.Date = date
	}

	if input.StartTime == "" {
		vErr.add("start_time", "start_time is required")
	} else if start, err := booking.ParseTimeOfDay(input.StartTime); err != nil {
		vErr.add("start_time", "start_time must use the HH:MM format")
	} else {
		candidate.Start = start
	}

	if input.EndTime == "" {
		vErr.add("end_time", "end_time is required")
	} else if end, err := booking.ParseTimeOfDay(input.EndTime); err != nil {
		vErr.add("end_time", "end_time must use the HH:MM format")
	} else {
		candidate.End = end
	}

	return candidate, vErr
}

func mapLedgerError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrBusy):
		return fmt.Errorf("%w: %v", ErrContention, err)
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	}
	return err
}
