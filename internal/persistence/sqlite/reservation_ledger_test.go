package sqlite_test

import (
	"context"
	"sync"
	"testing"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/testfixtures"
)

const testDate = booking.Date("2026-09-01")

func slotCandidate(roomID string, startHour int) booking.Candidate {
	return booking.Candidate{
		RoomID: roomID,
		Date:   testDate,
		Start:  booking.TimeOfDay(startHour * 60),
		End:    booking.TimeOfDay((startHour + 1) * 60),
	}
}

func forUser(candidate booking.Candidate, userID string) booking.Candidate {
	candidate.UserID = userID
	return candidate
}

func forTeam(candidate booking.Candidate, teamID string) booking.Candidate {
	candidate.TeamID = teamID
	return candidate
}

func mustCommit(t *testing.T, h *testfixtures.SQLiteHarness, candidate booking.Candidate) persistence.Reservation {
	t.Helper()
	res, rejection, err := h.Ledger.Commit(context.Background(), candidate)
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if rejection != nil {
		t.Fatalf("Commit rejected: %s: %s", rejection.Reason, rejection.Message)
	}
	return res
}

func mustReject(t *testing.T, h *testfixtures.SQLiteHarness, candidate booking.Candidate, reason booking.Reason) *booking.Rejection {
	t.Helper()
	_, rejection, err := h.Ledger.Commit(context.Background(), candidate)
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if rejection == nil || rejection.Reason != reason {
		t.Fatalf("rejection = %v, want reason %s", rejection, reason)
	}
	return rejection
}

func TestLedgerCommitStoresReservation(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	room := h.SeedRoom(t, "Pod 1", booking.KindSolo, 1)
	user := h.SeedUser(t, "Alice", 34)

	res := mustCommit(t, h, forUser(slotCandidate(room.ID, 10), user.ID))
	if res.ID == "" {
		t.Fatal("committed reservation has no id")
	}
	if res.Status != booking.StatusActive {
		t.Errorf("status = %s, want active", res.Status)
	}

	stored, err := h.Ledger.Get(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stored.RoomID != room.ID || stored.UserID != user.ID || stored.TeamID != "" {
		t.Errorf("stored = %+v, want room/user of the candidate", stored)
	}
	if stored.Date != testDate || stored.Start.Hour() != 10 || stored.End.Hour() != 11 {
		t.Errorf("stored slot = %s %s-%s, want %s 10:00-11:00", stored.Date, stored.Start, stored.End, testDate)
	}
}

func TestLedgerCommitUnknownReferences(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	room := h.SeedRoom(t, "Pod 1", booking.KindSolo, 1)
	user := h.SeedUser(t, "Alice", 34)

	mustReject(t, h, forUser(slotCandidate("no-such-room", 10), user.ID), booking.ResourceNotFound)
	mustReject(t, h, forUser(slotCandidate(room.ID, 10), "no-such-user"), booking.RequesterNotFound)
	mustReject(t, h, forTeam(slotCandidate(room.ID, 10), "no-such-team"), booking.RequesterNotFound)

	// An unknown room trumps a bad window: existence is checked first.
	mustReject(t, h, forUser(slotCandidate("no-such-room", 8), user.ID), booking.ResourceNotFound)
}

func TestLedgerSoloRoomConsumedBySingleBooking(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	room := h.SeedRoom(t, "Pod 1", booking.KindSolo, 1)
	alice := h.SeedUser(t, "Alice", 34)
	bob := h.SeedUser(t, "Bob", 29)

	mustCommit(t, h, forUser(slotCandidate(room.ID, 10), alice.ID))

	rejection := mustReject(t, h, forUser(slotCandidate(room.ID, 10), bob.ID), booking.CapacityExceeded)
	if rejection.Capacity == nil {
		t.Fatal("capacity rejection carries no detail")
	}
	if rejection.Capacity.Current != 1 || rejection.Capacity.Requested != 1 || rejection.Capacity.Limit != 1 {
		t.Errorf("capacity detail = %+v, want 1/1/1", rejection.Capacity)
	}

	// The same room one hour later is untouched.
	mustCommit(t, h, forUser(slotCandidate(room.ID, 11), bob.ID))
}

func TestLedgerGroupRoomRequesterRules(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	room := h.SeedRoom(t, "War Room", booking.KindGroup, 6)
	user := h.SeedUser(t, "Alice", 34)
	smallTeam := h.SeedTeam(t, "duo", 30, 8, 9)
	team := h.SeedTeam(t, "platform", 30, 28, 45)

	mustReject(t, h, forUser(slotCandidate(room.ID, 10), user.ID), booking.RequesterTypeMismatch)

	// Two of three members are below the eligibility age.
	mustReject(t, h, forTeam(slotCandidate(room.ID, 10), smallTeam.ID), booking.TeamTooSmall)

	mustCommit(t, h, forTeam(slotCandidate(room.ID, 10), team.ID))
}

func TestLedgerSoloRoomRejectsTeams(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	room := h.SeedRoom(t, "Pod 1", booking.KindSolo, 1)
	team := h.SeedTeam(t, "platform", 30, 28, 45)

	mustReject(t, h, forTeam(slotCandidate(room.ID, 10), team.ID), booking.RequesterTypeMismatch)
}

func TestLedgerBenchFillsSeatBySeat(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	bench := h.SeedRoom(t, "Bench A", booking.KindSharedBench, 4)
	alice := h.SeedUser(t, "Alice", 34)
	bob := h.SeedUser(t, "Bob", 29)
	trio := h.SeedTeam(t, "trio", 30, 28, 9)
	duo := h.SeedTeam(t, "duo", 30, 28)

	mustCommit(t, h, forUser(slotCandidate(bench.ID, 10), alice.ID))
	mustCommit(t, h, forUser(slotCandidate(bench.ID, 10), bob.ID))

	// The trio needs three seats, children included, and only two remain.
	rejection := mustReject(t, h, forTeam(slotCandidate(bench.ID, 10), trio.ID), booking.CapacityExceeded)
	if rejection.Capacity == nil || rejection.Capacity.Current != 2 || rejection.Capacity.Requested != 3 || rejection.Capacity.Limit != 4 {
		t.Errorf("capacity detail = %+v, want 2/3/4", rejection.Capacity)
	}

	mustCommit(t, h, forTeam(slotCandidate(bench.ID, 10), duo.ID))
}

func TestLedgerRejectsDoubleBookedRequester(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	pod := h.SeedRoom(t, "Pod 1", booking.KindSolo, 1)
	bench := h.SeedRoom(t, "Bench A", booking.KindSharedBench, 4)
	alice := h.SeedUser(t, "Alice", 34)
	team := h.SeedTeam(t, "platform", 30, 28, 45)
	groupA := h.SeedRoom(t, "War Room A", booking.KindGroup, 6)
	groupB := h.SeedRoom(t, "War Room B", booking.KindGroup, 6)

	mustCommit(t, h, forUser(slotCandidate(pod.ID, 10), alice.ID))
	mustReject(t, h, forUser(slotCandidate(bench.ID, 10), alice.ID), booking.RequesterAlreadyBooked)

	mustCommit(t, h, forTeam(slotCandidate(groupA.ID, 10), team.ID))
	mustReject(t, h, forTeam(slotCandidate(groupB.ID, 10), team.ID), booking.RequesterAlreadyBooked)
}

func TestLedgerCancelLifecycle(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	room := h.SeedRoom(t, "Pod 1", booking.KindSolo, 1)
	alice := h.SeedUser(t, "Alice", 34)
	bob := h.SeedUser(t, "Bob", 29)
	ctx := context.Background()

	res := mustCommit(t, h, forUser(slotCandidate(room.ID, 10), alice.ID))

	cancelled, rejection, err := h.Ledger.Cancel(ctx, res.ID)
	if err != nil || rejection != nil {
		t.Fatalf("Cancel = (%v, %v), want success", rejection, err)
	}
	if cancelled.Status != booking.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	_, rejection, err = h.Ledger.Cancel(ctx, res.ID)
	if err != nil {
		t.Fatalf("second Cancel returned error: %v", err)
	}
	if rejection == nil || rejection.Reason != booking.AlreadyCancelled {
		t.Errorf("second Cancel rejection = %v, want already_cancelled", rejection)
	}

	_, rejection, err = h.Ledger.Cancel(ctx, "no-such-reservation")
	if err != nil {
		t.Fatalf("Cancel of unknown id returned error: %v", err)
	}
	if rejection == nil || rejection.Reason != booking.ReservationNotFound {
		t.Errorf("unknown id rejection = %v, want reservation_not_found", rejection)
	}

	// Cancelling released the slot.
	mustCommit(t, h, forUser(slotCandidate(room.ID, 10), bob.ID))
}

func TestLedgerConcurrentCommitsForLastSeat(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	bench := h.SeedRoom(t, "Bench A", booking.KindSharedBench, 4)

	seated := []persistence.User{
		h.SeedUser(t, "Seated 1", 30),
		h.SeedUser(t, "Seated 2", 30),
		h.SeedUser(t, "Seated 3", 30),
	}
	for _, user := range seated {
		mustCommit(t, h, forUser(slotCandidate(bench.ID, 10), user.ID))
	}

	const racers = 8
	contenders := make([]persistence.User, racers)
	for i := range contenders {
		contenders[i] = h.SeedUser(t, "Contender", 30)
	}

	var wg sync.WaitGroup
	results := make([]*booking.Rejection, racers)
	errs := make([]error, racers)
	for i, user := range contenders {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, rejection, err := h.Ledger.Commit(context.Background(), forUser(slotCandidate(bench.ID, 10), userID))
			results[i] = rejection
			errs[i] = err
		}(i, user.ID)
	}
	wg.Wait()

	winners := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("commit %d returned error: %v", i, errs[i])
		}
		if results[i] == nil {
			winners++
			continue
		}
		if results[i].Reason != booking.CapacityExceeded {
			t.Errorf("commit %d rejection = %s, want capacity_exceeded", i, results[i].Reason)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly one commit for the last seat", winners)
	}

	occupancy, err := h.Ledger.SlotOccupancies(context.Background(), testDate, 10*60, 11*60)
	if err != nil {
		t.Fatalf("SlotOccupancies returned error: %v", err)
	}
	if occupancy[bench.ID] != 4 {
		t.Errorf("bench occupancy = %d, want 4", occupancy[bench.ID])
	}
}

func TestLedgerSlotOccupancies(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	pod := h.SeedRoom(t, "Pod 1", booking.KindSolo, 1)
	group := h.SeedRoom(t, "War Room", booking.KindGroup, 6)
	bench := h.SeedRoom(t, "Bench A", booking.KindSharedBench, 4)
	alice := h.SeedUser(t, "Alice", 34)
	bob := h.SeedUser(t, "Bob", 29)
	team := h.SeedTeam(t, "platform", 30, 28, 45, 8)
	ctx := context.Background()

	mustCommit(t, h, forUser(slotCandidate(pod.ID, 10), alice.ID))
	mustCommit(t, h, forTeam(slotCandidate(group.ID, 10), team.ID))
	mustCommit(t, h, forUser(slotCandidate(bench.ID, 10), bob.ID))

	// A different slot must not bleed into the count.
	carol := h.SeedUser(t, "Carol", 41)
	mustCommit(t, h, forUser(slotCandidate(bench.ID, 11), carol.ID))

	occupancy, err := h.Ledger.SlotOccupancies(ctx, testDate, 10*60, 11*60)
	if err != nil {
		t.Fatalf("SlotOccupancies returned error: %v", err)
	}
	if occupancy[pod.ID] != 1 {
		t.Errorf("pod occupancy = %d, want 1", occupancy[pod.ID])
	}
	// Team occupancy counts the full roster, the child included.
	if occupancy[group.ID] != 4 {
		t.Errorf("group occupancy = %d, want 4", occupancy[group.ID])
	}
	if occupancy[bench.ID] != 1 {
		t.Errorf("bench occupancy = %d, want 1", occupancy[bench.ID])
	}
}

func TestLedgerListReservations(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	pod := h.SeedRoom(t, "Pod 1", booking.KindSolo, 1)
	bench := h.SeedRoom(t, "Bench A", booking.KindSharedBench, 4)
	alice := h.SeedUser(t, "Alice", 34)
	team := h.SeedTeam(t, "platform", 30, 28, 45)
	ctx := context.Background()

	first := mustCommit(t, h, forUser(slotCandidate(pod.ID, 10), alice.ID))
	mustCommit(t, h, forTeam(slotCandidate(bench.ID, 10), team.ID))

	if _, rejection, err := h.Ledger.Cancel(ctx, first.ID); err != nil || rejection != nil {
		t.Fatalf("Cancel = (%v, %v), want success", rejection, err)
	}

	views, total, err := h.Ledger.ListReservations(ctx, persistence.ReservationFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("ListReservations returned error: %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Fatalf("total = %d, len = %d, want 2/2", total, len(views))
	}
	for _, view := range views {
		if view.ID == first.ID {
			if view.Status != booking.StatusCancelled || view.RequesterType != "user" || view.RequesterName != "Alice" {
				t.Errorf("user view = %+v, want cancelled Alice booking", view)
			}
			if view.RoomName != "Pod 1" || view.RoomKind != booking.KindSolo {
				t.Errorf("user view room = %s/%s, want Pod 1 solo", view.RoomName, view.RoomKind)
			}
		} else {
			if view.RequesterType != "team" || view.RequesterName != "platform" {
				t.Errorf("team view = %+v, want platform booking", view)
			}
		}
	}

	active, total, err := h.Ledger.ListReservations(ctx, persistence.ReservationFilter{Status: booking.StatusActive, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("ListReservations(active) returned error: %v", err)
	}
	if total != 1 || len(active) != 1 || active[0].Status != booking.StatusActive {
		t.Errorf("active listing = %d items, total %d, want one active reservation", len(active), total)
	}

	paged, total, err := h.Ledger.ListReservations(ctx, persistence.ReservationFilter{Page: 2, PageSize: 1})
	if err != nil {
		t.Fatalf("ListReservations(page 2) returned error: %v", err)
	}
	if total != 2 || len(paged) != 1 {
		t.Errorf("page 2 = %d items, total %d, want 1 item of 2", len(paged), total)
	}
}
