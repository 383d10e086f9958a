package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/workspace-booking/internal/persistence/sqlite"
)

// SQLiteHarness provides repository and ledger access backed by a temporary
// SQLite database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool   *sqlite.ConnectionPool
	Rooms  *sqlite.RoomRepository
	Users  *sqlite.UserRepository
	Teams  *sqlite.TeamRepository
	Ledger *sqlite.ReservationLedger

	Clock *Clock
	IDs   *IDGenerator

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a harness over a migrated temporary database.
// The ledger is wired with the harness clock and id generator so tests get
// deterministic timestamps and identifiers. Cleanup is registered with the
// provided testing.TB; calling Close as well is harmless.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "booking.db")

	pool, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	clock := NewClock(ReferenceTime())
	ids := NewIDGenerator("fixture")

	harness := &SQLiteHarness{
		Pool:   pool,
		Rooms:  sqlite.NewRoomRepository(pool),
		Users:  sqlite.NewUserRepository(pool),
		Teams:  sqlite.NewTeamRepository(pool),
		Ledger: sqlite.NewReservationLedger(pool, ids.NextFunc(), clock.NowFunc()),
		Clock:  clock,
		IDs:    ids,
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
