package persistence

import (
	"context"

	"github.com/example/workspace-booking/internal/booking"
)

// RoomRepository exposes catalog operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context, kind booking.RoomKind) ([]Room, error)
}

// UserRepository exposes catalog operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// TeamRepository exposes catalog and roster operations for teams.
type TeamRepository interface {
	CreateTeam(ctx context.Context, team Team) error
	GetTeam(ctx context.Context, id string) (Team, error)
	ListTeams(ctx context.Context) ([]Team, error)
	AddTeamMember(ctx context.Context, teamID, userID string) error
	ListTeamMembers(ctx context.Context, teamID string) ([]User, error)
}

// ReservationFilter narrows and pages reservation listings.
type ReservationFilter struct {
	Status   booking.Status
	Page     int
	PageSize int
}

// ReservationLedger owns the canonical reservation collection. Commit and
// Cancel perform their check-then-act sequences atomically: no interleaved
// call can break the occupancy or double-booking invariants.
type ReservationLedger interface {
	// Commit validates the candidate against committed state and inserts it
	// as a single atomic unit. A declined candidate is reported through the
	// rejection value; the error return carries infrastructure failures only.
	Commit(ctx context.Context, candidate booking.Candidate) (Reservation, *booking.Rejection, error)

	// Cancel transitions a reservation from active to cancelled. Cancelling
	// an already-cancelled reservation yields an AlreadyCancelled rejection
	// and never mutates state.
	Cancel(ctx context.Context, id string) (Reservation, *booking.Rejection, error)

	// ListReservations returns one page of reservations, newest first,
	// together with the total count matching the filter.
	ListReservations(ctx context.Context, filter ReservationFilter) ([]ReservationView, int, error)

	// SlotOccupancies returns the committed seat occupancy per room for one
	// exact slot. Read-only; the snapshot may be stale by the time the
	// caller acts on it, and Commit re-validates.
	SlotOccupancies(ctx context.Context, date booking.Date, start, end booking.TimeOfDay) (map[string]int, error)
}
