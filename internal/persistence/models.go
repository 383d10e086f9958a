package persistence

import (
	"time"

	"github.com/example/workspace-booking/internal/booking"
)

// Room is a bookable resource catalog entry.
type Room struct {
	ID        string
	Name      string
	Kind      booking.RoomKind
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is an individual account with the profile age consumed by
// eligibility rules.
type User struct {
	ID        string
	Name      string
	Age       int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Team is a named roster of users. Size metrics are derived from the
// roster at read time, never stored.
type Team struct {
	ID        string
	Name      string
	MemberIDs []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reservation is a committed booking row. Exactly one of UserID/TeamID is
// set; the empty string means absent.
type Reservation struct {
	ID        string
	RoomID    string
	UserID    string
	TeamID    string
	Date      booking.Date
	Start     booking.TimeOfDay
	End       booking.TimeOfDay
	Status    booking.Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReservationView is a reservation enriched with display fields for
// listings.
type ReservationView struct {
	Reservation
	RoomName      string
	RoomKind      booking.RoomKind
	RequesterType string
	RequesterName string
}
