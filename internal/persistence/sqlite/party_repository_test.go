package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/testfixtures"
)

func TestUserRepositoryRoundTrip(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	seeded := h.SeedUser(t, "Alice", 34)

	got, err := h.Users.GetUser(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if got.Name != "Alice" || got.Age != 34 {
		t.Errorf("user = %+v, want Alice aged 34", got)
	}

	_, err = h.Users.GetUser(ctx, "missing")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUserRepositoryListSortsByName(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)

	h.SeedUser(t, "Zoe", 20)
	h.SeedUser(t, "Alice", 34)

	users, err := h.Users.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(users) != 2 || users[0].Name != "Alice" || users[1].Name != "Zoe" {
		t.Errorf("users = %+v, want Alice then Zoe", users)
	}
}

func TestTeamRepositoryRoundTrip(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	team := h.SeedTeam(t, "platform", 30, 8, 45)

	got, err := h.Teams.GetTeam(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetTeam returned error: %v", err)
	}
	if got.Name != "platform" || len(got.MemberIDs) != 3 {
		t.Errorf("team = %+v, want platform with 3 members", got)
	}

	members, err := h.Teams.ListTeamMembers(ctx, team.ID)
	if err != nil {
		t.Fatalf("ListTeamMembers returned error: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("len(members) = %d, want 3", len(members))
	}
	ages := map[int]bool{}
	for _, member := range members {
		ages[member.Age] = true
	}
	for _, want := range []int{30, 8, 45} {
		if !ages[want] {
			t.Errorf("roster ages %v missing %d", ages, want)
		}
	}
}

func TestTeamRepositoryCreateRejectsUnknownMember(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)

	err := h.Teams.CreateTeam(context.Background(), persistence.Team{
		ID:        "team-x",
		Name:      "ghosts",
		MemberIDs: []string{"no-such-user"},
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Errorf("error = %v, want ErrConstraintViolation", err)
	}
}

func TestTeamRepositoryAddTeamMember(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	team := h.SeedTeam(t, "platform", 30, 28)
	extra := h.SeedUser(t, "Carol", 41)

	if err := h.Teams.AddTeamMember(ctx, team.ID, extra.ID); err != nil {
		t.Fatalf("AddTeamMember returned error: %v", err)
	}

	members, err := h.Teams.ListTeamMembers(ctx, team.ID)
	if err != nil {
		t.Fatalf("ListTeamMembers returned error: %v", err)
	}
	if len(members) != 3 {
		t.Errorf("len(members) = %d, want 3 after growth", len(members))
	}

	// Re-adding the same member hits the roster primary key.
	err = h.Teams.AddTeamMember(ctx, team.ID, extra.ID)
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("error = %v, want ErrDuplicate", err)
	}
}

func TestTeamRepositoryGrowthAffectsLedgerOccupancy(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	// A team books a bench, then grows. Occupancy follows the roster, so
	// the grown team blocks seats it did not hold at booking time.
	bench := h.SeedRoom(t, "Bench A", booking.KindSharedBench, 4)
	team := h.SeedTeam(t, "platform", 30, 28, 45)

	mustCommit(t, h, forTeam(slotCandidate(bench.ID, 10), team.ID))

	joiner := h.SeedUser(t, "Joiner", 25)
	if err := h.Teams.AddTeamMember(ctx, team.ID, joiner.ID); err != nil {
		t.Fatalf("AddTeamMember returned error: %v", err)
	}

	occupancy, err := h.Ledger.SlotOccupancies(ctx, testDate, 10*60, 11*60)
	if err != nil {
		t.Fatalf("SlotOccupancies returned error: %v", err)
	}
	if occupancy[bench.ID] != 4 {
		t.Errorf("bench occupancy = %d, want 4 after the roster grew", occupancy[bench.ID])
	}

	// The bench is now full for that slot.
	late := h.SeedUser(t, "Late", 33)
	rejection := mustReject(t, h, forUser(slotCandidate(bench.ID, 10), late.ID), booking.CapacityExceeded)
	if rejection.Capacity == nil || rejection.Capacity.Current != 4 {
		t.Errorf("capacity detail = %+v, want current 4", rejection.Capacity)
	}
}
