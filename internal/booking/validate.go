package booking

import "fmt"

// Reason is a stable machine-readable code describing why a candidate
// reservation (or a cancellation) was turned down.
type Reason string

const (
	MissingRequester       Reason = "missing_requester"
	AmbiguousRequester     Reason = "ambiguous_requester"
	ResourceNotFound       Reason = "resource_not_found"
	RequesterNotFound      Reason = "requester_not_found"
	OutsideOperatingHours  Reason = "outside_operating_hours"
	InvalidInterval        Reason = "invalid_interval"
	NonHourlyDuration      Reason = "non_hourly_duration"
	RequesterTypeMismatch  Reason = "requester_type_mismatch"
	TeamTooSmall           Reason = "team_too_small"
	CapacityExceeded       Reason = "capacity_exceeded"
	RequesterAlreadyBooked Reason = "requester_already_booked"
	ReservationNotFound    Reason = "reservation_not_found"
	AlreadyCancelled       Reason = "already_cancelled"
)

// CapacityDetail carries the numbers behind a CapacityExceeded rejection so
// callers can explain the outcome to an end user.
type CapacityDetail struct {
	Current   int `json:"current"`
	Requested int `json:"requested"`
	Limit     int `json:"limit"`
}

// Rejection is the structured outcome of a declined request. It is an
// ordinary return value, not an exceptional control-flow path; it
// implements error only so it can travel through error-shaped plumbing.
type Rejection struct {
	Reason   Reason
	Message  string
	Capacity *CapacityDetail
}

func (r *Rejection) Error() string {
	if r == nil {
		return ""
	}
	if r.Message == "" {
		return string(r.Reason)
	}
	return r.Message
}

// Rejectf builds a rejection with a formatted message.
func Rejectf(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Candidate is a reservation request before admission. Exactly one of
// UserID/TeamID must be set; Validate reports a shape rejection otherwise.
type Candidate struct {
	RoomID string
	UserID string
	TeamID string
	Date   Date
	Start  TimeOfDay
	End    TimeOfDay
}

// SlotBooking is the occupancy contribution of one existing active
// reservation on the candidate's exact (room, date, slot) key.
type SlotBooking struct {
	ReservationID string
	// Occupancy is the seat count the reservation consumes: 1 for a user,
	// the team's current total roster size for a team.
	Occupancy int
}

// SlotState is the committed state a validation decision is made against.
// The ledger assembles it inside the same transaction that performs the
// insert, so a decision cannot be invalidated by an interleaved commit.
type SlotState struct {
	// Room is the resolved resource; nil when the referenced room does not exist.
	Room *Room
	// User is the resolved individual requester, when the candidate names one.
	User *User
	// Team is the resolved team requester, when the candidate names one.
	Team *Team
	// Existing holds the active reservations already occupying the exact slot.
	Existing []SlotBooking
	// RequesterBusy reports whether the requester already holds an active
	// reservation for the same date and slot on any room.
	RequesterBusy bool
}

// Occupancy returns the seat count the candidate itself would consume.
func (s SlotState) Occupancy() int {
	if s.Team != nil {
		return s.Team.TotalSize()
	}
	return 1
}

// CurrentOccupancy sums the seats consumed by the existing reservations.
func (s SlotState) CurrentOccupancy() int {
	total := 0
	for _, b := range s.Existing {
		total += b.Occupancy
	}
	return total
}

// Validate decides whether a candidate reservation is admissible against
// the supplied committed state. It is a pure function of its inputs.
//
// Checks run cheapest first and short-circuit on the first failure, so the
// reported reason is deterministic when several violations hold: requester
// shape, referential existence, time window, requester/room compatibility,
// team eligibility, capacity, requester double-booking.
func Validate(candidate Candidate, state SlotState) *Rejection {
	if candidate.UserID == "" && candidate.TeamID == "" {
		return Rejectf(MissingRequester, "either a user or a team must be provided")
	}
	if candidate.UserID != "" && candidate.TeamID != "" {
		return Rejectf(AmbiguousRequester, "cannot book for both a user and a team")
	}

	if state.Room == nil {
		return Rejectf(ResourceNotFound, "room %s not found", candidate.RoomID)
	}
	if candidate.UserID != "" && state.User == nil {
		return Rejectf(RequesterNotFound, "user %s not found", candidate.UserID)
	}
	if candidate.TeamID != "" && state.Team == nil {
		return Rejectf(RequesterNotFound, "team %s not found", candidate.TeamID)
	}

	if rej := ValidateWindow(candidate.Start, candidate.End); rej != nil {
		return rej
	}

	room := *state.Room
	if candidate.TeamID != "" && !room.AcceptsTeams() {
		return Rejectf(RequesterTypeMismatch, "solo rooms can only be booked by individual users")
	}
	if candidate.UserID != "" && !room.AcceptsUsers() {
		return Rejectf(RequesterTypeMismatch, "group rooms can only be booked by teams")
	}

	if room.Kind == KindGroup && state.Team.EffectiveSize() < MinEffectiveTeamSize {
		return Rejectf(TeamTooSmall,
			"group rooms require teams with at least %d members aged %d or over",
			MinEffectiveTeamSize, EligibilityAge)
	}

	current := state.CurrentOccupancy()
	requested := state.Occupancy()
	if !room.HasRoomFor(current, requested) {
		rej := Rejectf(CapacityExceeded,
			"room capacity exceeded: current %d, adding %d, max %d",
			current, requested, room.Capacity)
		rej.Capacity = &CapacityDetail{Current: current, Requested: requested, Limit: room.Capacity}
		return rej
	}

	if state.RequesterBusy {
		return Rejectf(RequesterAlreadyBooked, "requester already has an active booking for this time slot")
	}

	return nil
}
