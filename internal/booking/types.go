package booking

import (
	"fmt"
	"strings"
	"time"
)

// RoomKind classifies a bookable resource.
type RoomKind string

const (
	// KindSolo is a one-person room bookable only by individual users.
	KindSolo RoomKind = "solo"
	// KindGroup is a meeting room bookable only by teams.
	KindGroup RoomKind = "group"
	// KindSharedBench is a shared desk bench bookable by users and teams
	// up to its seat capacity.
	KindSharedBench RoomKind = "shared_bench"
)

// ParseRoomKind validates a room kind wire value.
func ParseRoomKind(value string) (RoomKind, error) {
	switch RoomKind(strings.TrimSpace(value)) {
	case KindSolo:
		return KindSolo, nil
	case KindGroup:
		return KindGroup, nil
	case KindSharedBench:
		return KindSharedBench, nil
	default:
		return "", fmt.Errorf("unknown room kind %q", value)
	}
}

// Capacity bounds tied to room kinds.
const (
	SoloCapacity        = 1
	MinGroupCapacity    = 3
	SharedBenchCapacity = 4
	// MinEffectiveTeamSize is the smallest team admitted to a group room,
	// counting only members at or above the eligibility age.
	MinEffectiveTeamSize = 3
	// EligibilityAge is the minimum age counted toward a team's effective size.
	EligibilityAge = 10
)

// Room is a bookable physical resource. Immutable after creation.
type Room struct {
	ID       string
	Name     string
	Kind     RoomKind
	Capacity int
}

// NewRoom constructs a room, enforcing the kind/capacity coherence invariant.
func NewRoom(id, name string, kind RoomKind, capacity int) (Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Room{}, fmt.Errorf("room name is required")
	}
	switch kind {
	case KindSolo:
		if capacity != SoloCapacity {
			return Room{}, fmt.Errorf("solo rooms must have capacity %d", SoloCapacity)
		}
	case KindGroup:
		if capacity < MinGroupCapacity {
			return Room{}, fmt.Errorf("group rooms must have capacity of at least %d", MinGroupCapacity)
		}
	case KindSharedBench:
		if capacity != SharedBenchCapacity {
			return Room{}, fmt.Errorf("shared benches must have capacity %d", SharedBenchCapacity)
		}
	default:
		return Room{}, fmt.Errorf("unknown room kind %q", kind)
	}
	return Room{ID: id, Name: name, Kind: kind, Capacity: capacity}, nil
}

// AcceptsUsers reports whether individual users may book the room.
func (r Room) AcceptsUsers() bool { return r.Kind != KindGroup }

// AcceptsTeams reports whether teams may book the room.
func (r Room) AcceptsTeams() bool { return r.Kind != KindSolo }

// HasRoomFor reports whether a new reservation of the given occupancy fits
// alongside the current occupancy. Solo and group rooms are consumed
// entirely by any single reservation; shared benches fill seat by seat.
func (r Room) HasRoomFor(current, requested int) bool {
	if r.Kind != KindSharedBench {
		return current == 0
	}
	return current+requested <= r.Capacity
}

// User is an individual requester.
type User struct {
	ID   string
	Name string
	Age  int
}

// Team is a named group of users. The roster may change over time; size
// metrics are always derived from the roster supplied here, never stored.
type Team struct {
	ID      string
	Name    string
	Members []User
}

// TotalSize is the full roster count, children included.
func (t Team) TotalSize() int { return len(t.Members) }

// EffectiveSize counts members at or above the eligibility age.
func (t Team) EffectiveSize() int {
	count := 0
	for _, member := range t.Members {
		if member.Age >= EligibilityAge {
			count++
		}
	}
	return count
}

// Status is the lifecycle state of a reservation.
type Status string

const (
	// StatusActive marks a committed reservation that consumes capacity.
	StatusActive Status = "active"
	// StatusCancelled marks a terminally cancelled reservation.
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a status wire value.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.TrimSpace(value)) {
	case StatusActive:
		return StatusActive, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", fmt.Errorf("unknown status %q", value)
	}
}

// Reservation is a committed booking. Created only through the ledger's
// commit path and mutated exactly once, by cancellation.
type Reservation struct {
	ID        string
	RoomID    string
	UserID    string
	TeamID    string
	Date      Date
	Start     TimeOfDay
	End       TimeOfDay
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ForTeam reports whether the reservation was made on behalf of a team.
func (r Reservation) ForTeam() bool { return r.TeamID != "" }
