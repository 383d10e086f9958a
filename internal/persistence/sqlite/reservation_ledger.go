package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// errRejected aborts a ledger transaction after the validator declines a
// candidate. Nothing has been written at that point; the sentinel only
// forces a rollback and is never surfaced to callers.
var errRejected = errors.New("sqlite: candidate rejected")

// ReservationLedger implements persistence.ReservationLedger on SQLite.
//
// Commit and Cancel run their read-decide-write sequence inside a single
// transaction on the pool's sole connection, so concurrent calls serialize
// and the validator's decision still holds when the insert lands. This is
// the property that keeps the occupancy and double-booking invariants true
// under simultaneous requests.
type ReservationLedger struct {
	pool        *ConnectionPool
	retry       *RetryHelper
	idGenerator func() string
	now         func() time.Time
}

// NewReservationLedger wires a ledger with its id and clock sources.
func NewReservationLedger(pool *ConnectionPool, idGenerator func() string, now func() time.Time) *ReservationLedger {
	return NewReservationLedgerWithRetry(pool, idGenerator, now, DefaultRetryConfig())
}

// NewReservationLedgerWithRetry wires a ledger with explicit retry bounds.
func NewReservationLedgerWithRetry(pool *ConnectionPool, idGenerator func() string, now func() time.Time, retry RetryConfig) *ReservationLedger {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationLedger{
		pool:        pool,
		retry:       NewRetryHelper(retry),
		idGenerator: idGenerator,
		now:         now,
	}
}

// Commit validates the candidate against committed state and, when
// accepted, inserts the active reservation — all in one atomic unit.
// Contended transactions are retried with full re-validation; a slot that
// is genuinely gone after a lost race reports the validator's rejection,
// not a transient error.
func (l *ReservationLedger) Commit(ctx context.Context, candidate booking.Candidate) (persistence.Reservation, *booking.Rejection, error) {
	var committed persistence.Reservation
	var rejection *booking.Rejection

	err := l.retry.WithRetry(ctx, func() error {
		rejection = nil
		return l.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			state, err := l.loadSlotState(ctx, tx, candidate)
			if err != nil {
				return err
			}

			if rej := booking.Validate(candidate, state); rej != nil {
				rejection = rej
				return errRejected
			}

			now := l.now().UTC()
			committed = persistence.Reservation{
				ID:        l.idGenerator(),
				RoomID:    candidate.RoomID,
				UserID:    candidate.UserID,
				TeamID:    candidate.TeamID,
				Date:      candidate.Date,
				Start:     candidate.Start,
				End:       candidate.End,
				Status:    booking.StatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			}
			return l.insert(ctx, tx, committed)
		})
	})

	if rejection != nil {
		return persistence.Reservation{}, rejection, nil
	}
	if err != nil {
		return persistence.Reservation{}, nil, err
	}
	return committed, nil, nil
}

// Cancel atomically transitions a reservation from active to cancelled.
func (l *ReservationLedger) Cancel(ctx context.Context, id string) (persistence.Reservation, *booking.Rejection, error) {
	var cancelled persistence.Reservation
	var rejection *booking.Rejection

	err := l.retry.WithRetry(ctx, func() error {
		rejection = nil
		return l.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			existing, err := l.getTx(ctx, tx, id)
			if errors.Is(err, persistence.ErrNotFound) {
				rejection = booking.Rejectf(booking.ReservationNotFound, "reservation %s not found", id)
				return errRejected
			}
			if err != nil {
				return err
			}
			if existing.Status == booking.StatusCancelled {
				rejection = booking.Rejectf(booking.AlreadyCancelled, "reservation %s is already cancelled", id)
				return errRejected
			}

			existing.Status = booking.StatusCancelled
			existing.UpdatedAt = l.now().UTC()
			if _, err := tx.ExecContext(ctx,
				`UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?`,
				string(existing.Status),
				existing.UpdatedAt.Format(time.RFC3339),
				existing.ID,
			); err != nil {
				return mapStorageError(err)
			}

			cancelled = existing
			return nil
		})
	})

	if rejection != nil {
		return persistence.Reservation{}, rejection, nil
	}
	if err != nil {
		return persistence.Reservation{}, nil, err
	}
	return cancelled, nil, nil
}

// ListReservations returns one page of reservations enriched with display
// fields, newest first, plus the total count for the filter.
func (l *ReservationLedger) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.ReservationView, int, error) {
	where := ""
	args := make([]any, 0, 3)
	if filter.Status != "" {
		where = ` WHERE r.status = ?`
		args = append(args, string(filter.Status))
	}

	var total int
	countArgs := append([]any(nil), args...)
	if err := l.pool.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations r`+where, countArgs...,
	).Scan(&total); err != nil {
		return nil, 0, mapStorageError(err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := l.pool.db.QueryContext(ctx,
		`SELECT r.id, r.room_id, r.user_id, r.team_id, r.date, r.start_minute, r.end_minute,
		        r.status, r.created_at, r.updated_at,
		        rm.name, rm.kind,
		        COALESCE(u.name, ''), COALESCE(t.name, '')
		 FROM reservations r
		 JOIN rooms rm ON rm.id = r.room_id
		 LEFT JOIN users u ON u.id = r.user_id
		 LEFT JOIN teams t ON t.id = r.team_id`+where+`
		 ORDER BY r.created_at DESC, r.id DESC
		 LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, mapStorageError(err)
	}
	defer rows.Close()

	var views []persistence.ReservationView
	for rows.Next() {
		var view persistence.ReservationView
		var userID, teamID sql.NullString
		var date, status, createdAt, updatedAt, roomKind, userName, teamName string
		var start, end int

		if err := rows.Scan(
			&view.ID, &view.RoomID, &userID, &teamID, &date, &start, &end,
			&status, &createdAt, &updatedAt,
			&view.RoomName, &roomKind, &userName, &teamName,
		); err != nil {
			return nil, 0, mapStorageError(err)
		}

		view.UserID = userID.String
		view.TeamID = teamID.String
		view.Date = booking.Date(date)
		view.Start = booking.TimeOfDay(start)
		view.End = booking.TimeOfDay(end)
		view.Status = booking.Status(status)
		view.RoomKind = booking.RoomKind(roomKind)
		if view.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, 0, fmt.Errorf("parse created_at: %w", err)
		}
		if view.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, 0, fmt.Errorf("parse updated_at: %w", err)
		}
		if view.TeamID != "" {
			view.RequesterType = "team"
			view.RequesterName = teamName
		} else {
			view.RequesterType = "user"
			view.RequesterName = userName
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapStorageError(err)
	}
	return views, total, nil
}

// SlotOccupancies returns the committed seat occupancy per room for one
// exact slot, counting active reservations only. Team occupancy reflects
// the team's current roster size.
func (l *ReservationLedger) SlotOccupancies(ctx context.Context, date booking.Date, start, end booking.TimeOfDay) (map[string]int, error) {
	rows, err := l.pool.db.QueryContext(ctx,
		`SELECT r.room_id,
		        SUM(CASE WHEN r.user_id IS NOT NULL THEN 1
		                 ELSE (SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = r.team_id)
		            END)
		 FROM reservations r
		 WHERE r.date = ? AND r.start_minute = ? AND r.end_minute = ? AND r.status = 'active'
		 GROUP BY r.room_id`,
		string(date), int(start), int(end))
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	occupancy := make(map[string]int)
	for rows.Next() {
		var roomID string
		var seats int
		if err := rows.Scan(&roomID, &seats); err != nil {
			return nil, mapStorageError(err)
		}
		occupancy[roomID] = seats
	}
	return occupancy, rows.Err()
}

// Get retrieves a single reservation by ID.
func (l *ReservationLedger) Get(ctx context.Context, id string) (persistence.Reservation, error) {
	var out persistence.Reservation
	err := l.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = l.getTx(ctx, tx, id)
		return err
	})
	return out, err
}

// loadSlotState assembles, within the commit transaction, everything the
// validator needs: the resolved room and requester, the occupancies already
// holding the exact slot, and whether the requester is booked elsewhere at
// the same time.
func (l *ReservationLedger) loadSlotState(ctx context.Context, tx *sql.Tx, candidate booking.Candidate) (booking.SlotState, error) {
	var state booking.SlotState

	var room booking.Room
	var kind string
	err := tx.QueryRowContext(ctx,
		`SELECT id, name, kind, capacity FROM rooms WHERE id = ?`, candidate.RoomID,
	).Scan(&room.ID, &room.Name, &kind, &room.Capacity)
	switch {
	case err == sql.ErrNoRows:
		// Leave Room nil; the validator reports ResourceNotFound.
	case err != nil:
		return state, mapStorageError(err)
	default:
		room.Kind = booking.RoomKind(kind)
		state.Room = &room
	}

	if candidate.UserID != "" {
		var user booking.User
		err := tx.QueryRowContext(ctx,
			`SELECT id, name, age FROM users WHERE id = ?`, candidate.UserID,
		).Scan(&user.ID, &user.Name, &user.Age)
		switch {
		case err == sql.ErrNoRows:
		case err != nil:
			return state, mapStorageError(err)
		default:
			state.User = &user
		}
	}

	if candidate.TeamID != "" {
		var team booking.Team
		err := tx.QueryRowContext(ctx,
			`SELECT id, name FROM teams WHERE id = ?`, candidate.TeamID,
		).Scan(&team.ID, &team.Name)
		switch {
		case err == sql.ErrNoRows:
		case err != nil:
			return state, mapStorageError(err)
		default:
			rows, err := tx.QueryContext(ctx,
				`SELECT u.id, u.name, u.age
				 FROM team_members tm JOIN users u ON u.id = tm.user_id
				 WHERE tm.team_id = ?`, team.ID)
			if err != nil {
				return state, mapStorageError(err)
			}
			for rows.Next() {
				var member booking.User
				if err := rows.Scan(&member.ID, &member.Name, &member.Age); err != nil {
					rows.Close()
					return state, mapStorageError(err)
				}
				team.Members = append(team.Members, member)
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return state, mapStorageError(err)
			}
			rows.Close()
			state.Team = &team
		}
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT r.id,
		        CASE WHEN r.user_id IS NOT NULL THEN 1
		             ELSE (SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = r.team_id)
		        END
		 FROM reservations r
		 WHERE r.room_id = ? AND r.date = ? AND r.start_minute = ? AND r.end_minute = ?
		   AND r.status = 'active'`,
		candidate.RoomID, string(candidate.Date), int(candidate.Start), int(candidate.End))
	if err != nil {
		return state, mapStorageError(err)
	}
	for rows.Next() {
		var slot booking.SlotBooking
		if err := rows.Scan(&slot.ReservationID, &slot.Occupancy); err != nil {
			rows.Close()
			return state, mapStorageError(err)
		}
		state.Existing = append(state.Existing, slot)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return state, mapStorageError(err)
	}
	rows.Close()

	requesterColumn, requesterID := "user_id", candidate.UserID
	if candidate.TeamID != "" {
		requesterColumn, requesterID = "team_id", candidate.TeamID
	}
	if requesterID != "" {
		var busy int
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM reservations
				WHERE `+requesterColumn+` = ? AND date = ? AND start_minute = ? AND end_minute = ?
				  AND status = 'active')`,
			requesterID, string(candidate.Date), int(candidate.Start), int(candidate.End),
		).Scan(&busy); err != nil {
			return state, mapStorageError(err)
		}
		state.RequesterBusy = busy == 1
	}

	return state, nil
}

func (l *ReservationLedger) insert(ctx context.Context, tx *sql.Tx, res persistence.Reservation) error {
	userID := sql.NullString{String: res.UserID, Valid: res.UserID != ""}
	teamID := sql.NullString{String: res.TeamID, Valid: res.TeamID != ""}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO reservations
		   (id, room_id, user_id, team_id, date, start_minute, end_minute, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID,
		res.RoomID,
		userID,
		teamID,
		string(res.Date),
		int(res.Start),
		int(res.End),
		string(res.Status),
		res.CreatedAt.Format(time.RFC3339),
		res.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return mapStorageError(err)
	}
	return nil
}

func (l *ReservationLedger) getTx(ctx context.Context, tx *sql.Tx, id string) (persistence.Reservation, error) {
	var res persistence.Reservation
	var userID, teamID sql.NullString
	var date, status, createdAt, updatedAt string
	var start, end int

	err := tx.QueryRowContext(ctx,
		`SELECT id, room_id, user_id, team_id, date, start_minute, end_minute, status, created_at, updated_at
		 FROM reservations WHERE id = ?`, id,
	).Scan(&res.ID, &res.RoomID, &userID, &teamID, &date, &start, &end, &status, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Reservation{}, persistence.ErrNotFound
		}
		return persistence.Reservation{}, mapStorageError(err)
	}

	res.UserID = userID.String
	res.TeamID = teamID.String
	res.Date = booking.Date(date)
	res.Start = booking.TimeOfDay(start)
	res.End = booking.TimeOfDay(end)
	res.Status = booking.Status(status)
	if res.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Reservation{}, fmt.Errorf("parse created_at: %w", err)
	}
	if res.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Reservation{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return res, nil
}
