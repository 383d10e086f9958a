package testfixtures

import (
	"context"
	"testing"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// SeedRoom inserts a room and returns it.
func (h *SQLiteHarness) SeedRoom(tb testing.TB, name string, kind booking.RoomKind, capacity int) persistence.Room {
	tb.Helper()

	now := h.Clock.Now()
	room := persistence.Room{
		ID:        h.IDs.Next(),
		Name:      name,
		Kind:      kind,
		Capacity:  capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Rooms.CreateRoom(context.Background(), room); err != nil {
		tb.Fatalf("failed to seed room %s: %v", name, err)
	}
	return room
}

// SeedUser inserts a user and returns it.
func (h *SQLiteHarness) SeedUser(tb testing.TB, name string, age int) persistence.User {
	tb.Helper()

	now := h.Clock.Now()
	user := persistence.User{
		ID:        h.IDs.Next(),
		Name:      name,
		Age:       age,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Users.CreateUser(context.Background(), user); err != nil {
		tb.Fatalf("failed to seed user %s: %v", name, err)
	}
	return user
}

// SeedTeam inserts a team whose roster is one seeded user per age given.
func (h *SQLiteHarness) SeedTeam(tb testing.TB, name string, ages ...int) persistence.Team {
	tb.Helper()

	memberIDs := make([]string, 0, len(ages))
	for i, age := range ages {
		user := h.SeedUser(tb, name+"-member-"+string(rune('a'+i)), age)
		memberIDs = append(memberIDs, user.ID)
	}

	now := h.Clock.Now()
	team := persistence.Team{
		ID:        h.IDs.Next(),
		Name:      name,
		MemberIDs: memberIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Teams.CreateTeam(context.Background(), team); err != nil {
		tb.Fatalf("failed to seed team %s: %v", name, err)
	}
	return team
}
