package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository on SQLite.
type RoomRepository struct {
	pool *ConnectionPool
}

// NewRoomRepository creates a SQLite-backed room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// CreateRoom inserts a new room.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}
	// Re-check the kind/capacity coherence invariant at the storage edge.
	if _, err := booking.NewRoom(room.ID, room.Name, room.Kind, room.Capacity); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}

	_, err := r.pool.db.ExecContext(ctx,
		`INSERT INTO rooms (id, name, kind, capacity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		room.ID,
		room.Name,
		string(room.Kind),
		room.Capacity,
		room.CreatedAt.UTC().Format(time.RFC3339),
		room.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapStorageError(err)
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx,
		`SELECT id, name, kind, capacity, created_at, updated_at FROM rooms WHERE id = ?`, id)
	return scanRoom(row)
}

// ListRooms returns rooms ordered by name, optionally filtered by kind.
func (r *RoomRepository) ListRooms(ctx context.Context, kind booking.RoomKind) ([]persistence.Room, error) {
	query := `SELECT id, name, kind, capacity, created_at, updated_at FROM rooms`
	args := make([]any, 0, 1)
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStorageError(err)
	}
	return rooms, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var room persistence.Room
	var kind, createdAt, updatedAt string

	if err := row.Scan(&room.ID, &room.Name, &kind, &room.Capacity, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return persistence.Room{}, persistence.ErrNotFound
		}
		return persistence.Room{}, mapStorageError(err)
	}

	room.Kind = booking.RoomKind(kind)
	var err error
	if room.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Room{}, fmt.Errorf("parse created_at: %w", err)
	}
	if room.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Room{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return room, nil
}
