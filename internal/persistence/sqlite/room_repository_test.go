package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/testfixtures"
)

func TestRoomRepositoryRoundTrip(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	seeded := h.SeedRoom(t, "Bench A", booking.KindSharedBench, 4)

	got, err := h.Rooms.GetRoom(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetRoom returned error: %v", err)
	}
	if got.Name != "Bench A" || got.Kind != booking.KindSharedBench || got.Capacity != 4 {
		t.Errorf("room = %+v, want seeded bench", got)
	}
	if !got.CreatedAt.Equal(seeded.CreatedAt.UTC()) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, seeded.CreatedAt.UTC())
	}
}

func TestRoomRepositoryGetMissing(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)

	_, err := h.Rooms.GetRoom(context.Background(), "missing")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRoomRepositoryRejectsIncoherentRoom(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)

	err := h.Rooms.CreateRoom(context.Background(), persistence.Room{
		ID:       "bad",
		Name:     "Pod",
		Kind:     booking.KindSolo,
		Capacity: 3,
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Errorf("error = %v, want ErrConstraintViolation", err)
	}
}

func TestRoomRepositoryRejectsDuplicateName(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	h.SeedRoom(t, "Bench A", booking.KindSharedBench, 4)

	err := h.Rooms.CreateRoom(ctx, persistence.Room{
		ID:       "other-id",
		Name:     "Bench A",
		Kind:     booking.KindSolo,
		Capacity: 1,
	})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("error = %v, want ErrDuplicate", err)
	}
}

func TestRoomRepositoryListFiltersAndSorts(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	h.SeedRoom(t, "Zulu Pod", booking.KindSolo, 1)
	h.SeedRoom(t, "Alpha Pod", booking.KindSolo, 1)
	h.SeedRoom(t, "Bench A", booking.KindSharedBench, 4)

	all, err := h.Rooms.ListRooms(ctx, "")
	if err != nil {
		t.Fatalf("ListRooms returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].Name != "Alpha Pod" || all[2].Name != "Zulu Pod" {
		t.Errorf("order = %s..%s, want name ascending", all[0].Name, all[2].Name)
	}

	solos, err := h.Rooms.ListRooms(ctx, booking.KindSolo)
	if err != nil {
		t.Fatalf("ListRooms(solo) returned error: %v", err)
	}
	if len(solos) != 2 {
		t.Errorf("len(solos) = %d, want 2", len(solos))
	}
	for _, room := range solos {
		if room.Kind != booking.KindSolo {
			t.Errorf("room %s kind = %s, want solo", room.Name, room.Kind)
		}
	}
}
