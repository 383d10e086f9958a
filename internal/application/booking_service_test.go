package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

type stubLedger struct {
	commitFunc func(ctx context.Context, candidate booking.Candidate) (persistence.Reservation, *booking.Rejection, error)
	cancelFunc func(ctx context.Context, id string) (persistence.Reservation, *booking.Rejection, error)
	listFunc   func(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.ReservationView, int, error)
}

func (s *stubLedger) Commit(ctx context.Context, candidate booking.Candidate) (persistence.Reservation, *booking.Rejection, error) {
	if s.commitFunc == nil {
		return persistence.Reservation{}, nil, errors.New("unexpected Commit call")
	}
	return s.commitFunc(ctx, candidate)
}

func (s *stubLedger) Cancel(ctx context.Context, id string) (persistence.Reservation, *booking.Rejection, error) {
	if s.cancelFunc == nil {
		return persistence.Reservation{}, nil, errors.New("unexpected Cancel call")
	}
	return s.cancelFunc(ctx, id)
}

func (s *stubLedger) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.ReservationView, int, error) {
	if s.listFunc == nil {
		return nil, 0, errors.New("unexpected ListReservations call")
	}
	return s.listFunc(ctx, filter)
}

func validInput() CreateReservationInput {
	return CreateReservationInput{
		RoomID:    "room-1",
		UserID:    "user-1",
		Date:      "2026-09-01",
		StartTime: "10:00",
		EndTime:   "11:00",
	}
}

func TestBookingServiceCreateReservationCommits(t *testing.T) {
	t.Parallel()

	var got booking.Candidate
	ledger := &stubLedger{
		commitFunc: func(_ context.Context, candidate booking.Candidate) (persistence.Reservation, *booking.Rejection, error) {
			got = candidate
			return persistence.Reservation{ID: "res-1", RoomID: candidate.RoomID}, nil, nil
		},
	}
	svc := NewBookingService(ledger)

	res, rejection, err := svc.CreateReservation(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateReservation returned error: %v", err)
	}
	if rejection != nil {
		t.Fatalf("CreateReservation returned rejection: %v", rejection)
	}
	if res.ID != "res-1" {
		t.Errorf("reservation id = %q, want res-1", res.ID)
	}
	if got.RoomID != "room-1" || got.UserID != "user-1" {
		t.Errorf("candidate = %+v, want room-1/user-1", got)
	}
	if got.Start.Hour() != 10 || got.End.Hour() != 11 {
		t.Errorf("candidate window = %s-%s, want 10:00-11:00", got.Start, got.End)
	}
}

func TestBookingServiceCreateReservationMalformedInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*CreateReservationInput)
		field  string
	}{
		{"missing room", func(in *CreateReservationInput) { in.RoomID = "" }, "room_id"},
		{"missing date", func(in *CreateReservationInput) { in.Date = "" }, "date"},
		{"bad date", func(in *CreateReservationInput) { in.Date = "01-09-2026" }, "date"},
		{"bad start", func(in *CreateReservationInput) { in.StartTime = "ten" }, "start_time"},
		{"missing end", func(in *CreateReservationInput) { in.EndTime = "" }, "end_time"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := NewBookingService(&stubLedger{})
			input := validInput()
			tc.mutate(&input)

			_, _, err := svc.CreateReservation(context.Background(), input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Errorf("FieldErrors = %v, want entry for %q", vErr.FieldErrors, tc.field)
			}
		})
	}
}

func TestBookingServiceCreateReservationShapeRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*CreateReservationInput)
		reason booking.Reason
	}{
		{"no requester", func(in *CreateReservationInput) { in.UserID = "" }, booking.MissingRequester},
		{"both requesters", func(in *CreateReservationInput) { in.TeamID = "team-1" }, booking.AmbiguousRequester},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// The ledger stub fails on any call: these rejections must be
			// decided before storage is touched.
			svc := NewBookingService(&stubLedger{})
			input := validInput()
			tc.mutate(&input)

			_, rejection, err := svc.CreateReservation(context.Background(), input)
			if err != nil {
				t.Fatalf("CreateReservation returned error: %v", err)
			}
			if rejection == nil || rejection.Reason != tc.reason {
				t.Errorf("rejection = %v, want reason %s", rejection, tc.reason)
			}
		})
	}
}

func TestBookingServiceCreateReservationDefersWindowCheckToLedger(t *testing.T) {
	t.Parallel()

	// The window is checked inside the ledger, after the room and requester
	// have been resolved. A request naming an unknown room with an
	// out-of-hours window must therefore report the unknown room, not the
	// window.
	ledger := &stubLedger{
		commitFunc: func(context.Context, booking.Candidate) (persistence.Reservation, *booking.Rejection, error) {
			return persistence.Reservation{}, booking.Rejectf(booking.ResourceNotFound, "room not found"), nil
		},
	}
	svc := NewBookingService(ledger)

	input := validInput()
	input.RoomID = "no-such-room"
	input.StartTime = "08:00"
	input.EndTime = "09:00"

	_, rejection, err := svc.CreateReservation(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateReservation returned error: %v", err)
	}
	if rejection == nil || rejection.Reason != booking.ResourceNotFound {
		t.Errorf("rejection = %v, want resource_not_found", rejection)
	}
}

func TestBookingServiceCreateReservationPassesThroughRejection(t *testing.T) {
	t.Parallel()

	ledger := &stubLedger{
		commitFunc: func(context.Context, booking.Candidate) (persistence.Reservation, *booking.Rejection, error) {
			return persistence.Reservation{}, booking.Rejectf(booking.CapacityExceeded, "room is full"), nil
		},
	}
	svc := NewBookingService(ledger)

	_, rejection, err := svc.CreateReservation(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateReservation returned error: %v", err)
	}
	if rejection == nil || rejection.Reason != booking.CapacityExceeded {
		t.Errorf("rejection = %v, want capacity_exceeded", rejection)
	}
}

func TestBookingServiceCreateReservationMapsContention(t *testing.T) {
	t.Parallel()

	ledger := &stubLedger{
		commitFunc: func(context.Context, booking.Candidate) (persistence.Reservation, *booking.Rejection, error) {
			return persistence.Reservation{}, nil, persistence.ErrBusy
		},
	}
	svc := NewBookingService(ledger)

	_, _, err := svc.CreateReservation(context.Background(), validInput())
	if !errors.Is(err, ErrContention) {
		t.Errorf("error = %v, want ErrContention", err)
	}
}

func TestBookingServiceCancelReservation(t *testing.T) {
	t.Parallel()

	ledger := &stubLedger{
		cancelFunc: func(_ context.Context, id string) (persistence.Reservation, *booking.Rejection, error) {
			if id != "res-1" {
				t.Errorf("Cancel id = %q, want res-1", id)
			}
			return persistence.Reservation{ID: id, Status: booking.StatusCancelled}, nil, nil
		},
	}
	svc := NewBookingService(ledger)

	res, rejection, err := svc.CancelReservation(context.Background(), "res-1")
	if err != nil || rejection != nil {
		t.Fatalf("CancelReservation = (%v, %v), want success", rejection, err)
	}
	if res.Status != booking.StatusCancelled {
		t.Errorf("status = %s, want cancelled", res.Status)
	}
}

func TestBookingServiceCancelReservationEmptyID(t *testing.T) {
	t.Parallel()

	svc := NewBookingService(&stubLedger{})

	_, rejection, err := svc.CancelReservation(context.Background(), "")
	if err != nil {
		t.Fatalf("CancelReservation returned error: %v", err)
	}
	if rejection == nil || rejection.Reason != booking.ReservationNotFound {
		t.Errorf("rejection = %v, want reservation_not_found", rejection)
	}
}

func TestBookingServiceListReservationsDefaultsPaging(t *testing.T) {
	t.Parallel()

	var got persistence.ReservationFilter
	ledger := &stubLedger{
		listFunc: func(_ context.Context, filter persistence.ReservationFilter) ([]persistence.ReservationView, int, error) {
			got = filter
			return []persistence.ReservationView{{}}, 1, nil
		},
	}
	svc := NewBookingService(ledger)

	page, err := svc.ListReservations(context.Background(), ListReservationsParams{Status: "active"})
	if err != nil {
		t.Fatalf("ListReservations returned error: %v", err)
	}
	if got.Page != 1 || got.PageSize != 20 {
		t.Errorf("filter paging = %d/%d, want 1/20", got.Page, got.PageSize)
	}
	if got.Status != booking.StatusActive {
		t.Errorf("filter status = %q, want active", got.Status)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Errorf("page = %+v, want one item", page)
	}
}

func TestBookingServiceListReservationsRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc := NewBookingService(&stubLedger{})

	_, err := svc.ListReservations(context.Background(), ListReservationsParams{Status: "pending"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if _, ok := vErr.FieldErrors["status"]; !ok {
		t.Errorf("FieldErrors = %v, want entry for status", vErr.FieldErrors)
	}
}
