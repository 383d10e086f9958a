package application

import (
	"time"

	"github.com/example/workspace-booking/internal/persistence"
)

// CreateReservationInput carries caller supplied reservation fields in wire
// form. Exactly one of UserID/TeamID is expected; the validator reports the
// precise shape violation otherwise.
type CreateReservationInput struct {
	RoomID    string
	UserID    string
	TeamID    string
	Date      string
	StartTime string
	EndTime   string
}

// ListReservationsParams narrows and pages reservation listings.
type ListReservationsParams struct {
	Status   string
	Page     int
	PageSize int
}

// ReservationPage is one page of reservation listings.
type ReservationPage struct {
	Items    []persistence.ReservationView
	Page     int
	PageSize int
	Total    int
}

// AvailabilityQuery identifies the slot availability is computed for. Date
// is optional and defaults to today; Slot uses the "HH-HH" wire format.
type AvailabilityQuery struct {
	Date string
	Slot string
	Kind string
}

// CreateTeamInput carries caller supplied team fields.
type CreateTeamInput struct {
	Name      string
	MemberIDs []string
}

// TeamMemberView is one roster entry with its eligibility flag. Members
// below the eligibility age still count toward room occupancy but not
// toward the effective team size.
type TeamMemberView struct {
	ID       string
	Name     string
	Age      int
	Eligible bool
}

// TeamView is a team enriched with its roster and derived size metrics.
// The metrics are computed from the roster at read time, never stored.
type TeamView struct {
	ID                   string
	Name                 string
	Members              []TeamMemberView
	MemberCount          int
	EffectiveMemberCount int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CreateRoomInput carries caller supplied room fields.
type CreateRoomInput struct {
	Name     string
	Kind     string
	Capacity int
}

// CreateUserInput carries caller supplied user fields.
type CreateUserInput struct {
	Name string
	Age  int
}
