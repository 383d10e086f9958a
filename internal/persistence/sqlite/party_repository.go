package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/workspace-booking/internal/persistence"
)

// UserRepository implements persistence.UserRepository on SQLite.
type UserRepository struct {
	pool *ConnectionPool
}

// NewUserRepository creates a SQLite-backed user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx,
		`INSERT INTO users (id, name, age, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Age,
		user.CreatedAt.UTC().Format(time.RFC3339),
		user.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapStorageError(err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx,
		`SELECT id, name, age, created_at, updated_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// ListUsers returns all users ordered by name then ID.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT id, name, age, created_at, updated_at FROM users ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStorageError(err)
	}
	return users, nil
}

func scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var createdAt, updatedAt string

	if err := row.Scan(&user.ID, &user.Name, &user.Age, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, mapStorageError(err)
	}

	var err error
	if user.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.User{}, fmt.Errorf("parse created_at: %w", err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.User{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return user, nil
}

// TeamRepository implements persistence.TeamRepository on SQLite.
type TeamRepository struct {
	pool *ConnectionPool
}

// NewTeamRepository creates a SQLite-backed team repository.
func NewTeamRepository(pool *ConnectionPool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

// CreateTeam inserts a team and its initial roster in one transaction.
func (r *TeamRepository) CreateTeam(ctx context.Context, team persistence.Team) error {
	if team.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO teams (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			team.ID,
			team.Name,
			team.CreatedAt.UTC().Format(time.RFC3339),
			team.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return mapStorageError(err)
		}

		for _, userID := range team.MemberIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO team_members (team_id, user_id) VALUES (?, ?)`,
				team.ID, userID,
			); err != nil {
				return mapStorageError(err)
			}
		}
		return nil
	})
}

// GetTeam retrieves a team and its roster by ID.
func (r *TeamRepository) GetTeam(ctx context.Context, id string) (persistence.Team, error) {
	if id == "" {
		return persistence.Team{}, persistence.ErrNotFound
	}

	var team persistence.Team
	var createdAt, updatedAt string
	err := r.pool.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM teams WHERE id = ?`, id,
	).Scan(&team.ID, &team.Name, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Team{}, persistence.ErrNotFound
		}
		return persistence.Team{}, mapStorageError(err)
	}

	if team.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Team{}, fmt.Errorf("parse created_at: %w", err)
	}
	if team.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Team{}, fmt.Errorf("parse updated_at: %w", err)
	}

	team.MemberIDs, err = r.memberIDs(ctx, id)
	if err != nil {
		return persistence.Team{}, err
	}
	return team, nil
}

// ListTeams returns all teams with their rosters, ordered by name.
func (r *TeamRepository) ListTeams(ctx context.Context) ([]persistence.Team, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM teams ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	var teams []persistence.Team
	for rows.Next() {
		var team persistence.Team
		var createdAt, updatedAt string
		if err := rows.Scan(&team.ID, &team.Name, &createdAt, &updatedAt); err != nil {
			return nil, mapStorageError(err)
		}
		if team.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if team.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStorageError(err)
	}

	for i := range teams {
		if teams[i].MemberIDs, err = r.memberIDs(ctx, teams[i].ID); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

// AddTeamMember attaches a user to a team's roster. Adding an existing
// member reports ErrDuplicate.
func (r *TeamRepository) AddTeamMember(ctx context.Context, teamID, userID string) error {
	if teamID == "" || userID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx,
		`INSERT INTO team_members (team_id, user_id) VALUES (?, ?)`, teamID, userID)
	if err != nil {
		return mapStorageError(err)
	}
	return nil
}

// ListTeamMembers returns the team's current roster with profile ages.
func (r *TeamRepository) ListTeamMembers(ctx context.Context, teamID string) ([]persistence.User, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT u.id, u.name, u.age, u.created_at, u.updated_at
		 FROM team_members tm
		 JOIN users u ON u.id = tm.user_id
		 WHERE tm.team_id = ?
		 ORDER BY u.name ASC, u.id ASC`, teamID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	var members []persistence.User
	for rows.Next() {
		member, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStorageError(err)
	}
	return members, nil
}

func (r *TeamRepository) memberIDs(ctx context.Context, teamID string) ([]string, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT user_id FROM team_members WHERE team_id = ? ORDER BY user_id ASC`, teamID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapStorageError(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
