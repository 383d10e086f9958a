package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// TeamRepository captures the team registry operations the service needs.
type TeamRepository interface {
	CreateTeam(ctx context.Context, team persistence.Team) error
	ListTeams(ctx context.Context) ([]persistence.Team, error)
	ListTeamMembers(ctx context.Context, teamID string) ([]persistence.User, error)
}

// UserReader resolves users by id when validating team rosters.
type UserReader interface {
	GetUser(ctx context.Context, id string) (persistence.User, error)
}

// TeamService manages the team registry.
type TeamService struct {
	teams       TeamRepository
	users       UserReader
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTeamService constructs a team service.
func NewTeamService(teams TeamRepository, users UserReader, idGenerator func() string, now func() time.Time) *TeamService {
	return NewTeamServiceWithLogger(teams, users, idGenerator, now, nil)
}

// NewTeamServiceWithLogger constructs a team service with a logger.
func NewTeamServiceWithLogger(teams TeamRepository, users UserReader, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TeamService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TeamService{
		teams:       teams,
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TeamService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TeamService", operation, attrs...)
}

// CreateTeam validates the roster and persists a new team. The roster is
// optional, but every listed member id must resolve to a registered user,
// and members may not repeat.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (view TeamView, err error) {
	if s == nil {
		return TeamView{}, fmt.Errorf("TeamService is nil")
	}

	logger := s.loggerWith(ctx, "CreateTeam", "name", input.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create team", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("team_id", view.ID).InfoContext(ctx, "team created")
	}()

	vErr := &ValidationError{}
	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	seen := make(map[string]bool, len(input.MemberIDs))
	for _, memberID := range input.MemberIDs {
		if seen[memberID] {
			vErr.add("member_ids", fmt.Sprintf("member %s appears more than once", memberID))
			break
		}
		seen[memberID] = true
	}
	if vErr.HasErrors() {
		return TeamView{}, vErr
	}

	members, membersErr := s.resolveMembers(ctx, input.MemberIDs)
	if membersErr != nil {
		err = membersErr
		return TeamView{}, err
	}

	createdAt := s.now()
	team := persistence.Team{
		ID:        s.idGenerator(),
		Name:      input.Name,
		MemberIDs: input.MemberIDs,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err = s.teams.CreateTeam(ctx, team); err != nil {
		err = mapLedgerError(err)
		return TeamView{}, err
	}

	return teamView(team, members), nil
}

// ListTeams returns every registered team with its derived size metrics.
func (s *TeamService) ListTeams(ctx context.Context) ([]TeamView, error) {
	if s == nil {
		return nil, fmt.Errorf("TeamService is nil")
	}

	teams, err := s.teams.ListTeams(ctx)
	if err != nil {
		return nil, mapLedgerError(err)
	}

	views := make([]TeamView, 0, len(teams))
	for _, team := range teams {
		members, err := s.teams.ListTeamMembers(ctx, team.ID)
		if err != nil {
			return nil, mapLedgerError(err)
		}
		views = append(views, teamView(team, members))
	}
	return views, nil
}

func (s *TeamService) resolveMembers(ctx context.Context, memberIDs []string) ([]persistence.User, error) {
	members := make([]persistence.User, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		user, err := s.users.GetUser(ctx, memberID)
		if err != nil {
			if isNotFound(err) {
				vErr := &ValidationError{}
				vErr.add("member_ids", fmt.Sprintf("user %s does not exist", memberID))
				return nil, vErr
			}
			return nil, mapLedgerError(err)
		}
		members = append(members, user)
	}
	return members, nil
}

func teamView(team persistence.Team, members []persistence.User) TeamView {
	domain := booking.Team{ID: team.ID, Name: team.Name}
	memberViews := make([]TeamMemberView, 0, len(members))
	for _, member := range members {
		domain.Members = append(domain.Members, booking.User{ID: member.ID, Name: member.Name, Age: member.Age})
		memberViews = append(memberViews, TeamMemberView{
			ID:       member.ID,
			Name:     member.Name,
			Age:      member.Age,
			Eligible: member.Age >= booking.EligibilityAge,
		})
	}
	return TeamView{
		ID:                   team.ID,
		Name:                 team.Name,
		Members:              memberViews,
		MemberCount:          domain.TotalSize(),
		EffectiveMemberCount: domain.EffectiveSize(),
		CreatedAt:            team.CreatedAt,
		UpdatedAt:            team.UpdatedAt,
	}
}
