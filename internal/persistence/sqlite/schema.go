package sqlite

import (
	"context"
	"fmt"
)

// schemaStatements define the storage layout. Constraints mirror the domain
// invariants so that the database rejects writes the validator would have
// rejected, even if a bug bypasses the commit path:
//
//   - exactly one of user_id/team_id per reservation,
//   - at most one active reservation per requester and slot start,
//   - kind and status restricted to their closed sets.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		kind       TEXT NOT NULL CHECK (kind IN ('solo', 'group', 'shared_bench')),
		capacity   INTEGER NOT NULL CHECK (capacity > 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		age        INTEGER NOT NULL CHECK (age >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (team_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id           TEXT PRIMARY KEY,
		room_id      TEXT NOT NULL REFERENCES rooms(id),
		user_id      TEXT REFERENCES users(id),
		team_id      TEXT REFERENCES teams(id),
		date         TEXT NOT NULL,
		start_minute INTEGER NOT NULL,
		end_minute   INTEGER NOT NULL,
		status       TEXT NOT NULL CHECK (status IN ('active', 'cancelled')),
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		CHECK ((user_id IS NULL) <> (team_id IS NULL))
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_active_user
		ON reservations (user_id, date, start_minute)
		WHERE status = 'active' AND user_id IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_active_team
		ON reservations (team_id, date, start_minute)
		WHERE status = 'active' AND team_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_slot
		ON reservations (room_id, date, start_minute, end_minute, status)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_created
		ON reservations (created_at)`,
}

// Migrate applies the schema. Statements are idempotent, so Migrate is safe
// to run on every startup.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", mapStorageError(err))
		}
	}
	return nil
}
