package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/workspace-booking/internal/application"
)

type teamService interface {
	CreateTeam(ctx context.Context, input application.CreateTeamInput) (application.TeamView, error)
	ListTeams(ctx context.Context) ([]application.TeamView, error)
}

type TeamHandler struct {
	service   teamService
	responder responder
	logger    *slog.Logger
}

func NewTeamHandler(service teamService, logger *slog.Logger) *TeamHandler {
	base := defaultLogger(logger)
	return &TeamHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TeamHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TeamHandler", operation, attrs...)
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req teamRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode team request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if vErr := validatePayload(req); vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := h.log(r.Context(), "Create", "name", req.Name)

	view, err := h.service.CreateTeam(r.Context(), application.CreateTeamInput{
		Name:      strings.TrimSpace(req.Name),
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "team creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("team_id", view.ID).InfoContext(r.Context(), "team created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, teamResponse{Team: toTeamDTO(view)})
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	views, err := h.service.ListTeams(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "team list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(views)).InfoContext(r.Context(), "teams listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTeamsResponse{Teams: toTeamDTOs(views)})
}

type teamRequest struct {
	Name      string   `json:"name" validate:"required"`
	MemberIDs []string `json:"member_ids" validate:"omitempty,dive,required"`
}

type teamResponse struct {
	Team teamDTO `json:"team"`
}

type listTeamsResponse struct {
	Teams []teamDTO `json:"teams"`
}

type teamMemberDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Eligible bool   `json:"eligible"`
}

type teamDTO struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Members              []teamMemberDTO `json:"members"`
	MemberCount          int             `json:"member_count"`
	EffectiveMemberCount int             `json:"effective_member_count"`
	CreatedAt            string          `json:"created_at"`
	UpdatedAt            string          `json:"updated_at"`
}

func toTeamDTO(view application.TeamView) teamDTO {
	members := make([]teamMemberDTO, 0, len(view.Members))
	for _, member := range view.Members {
		members = append(members, teamMemberDTO{
			ID:       member.ID,
			Name:     member.Name,
			Age:      member.Age,
			Eligible: member.Eligible,
		})
	}
	return teamDTO{
		ID:                   view.ID,
		Name:                 view.Name,
		Members:              members,
		MemberCount:          view.MemberCount,
		EffectiveMemberCount: view.EffectiveMemberCount,
		CreatedAt:            view.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:            view.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toTeamDTOs(views []application.TeamView) []teamDTO {
	if len(views) == 0 {
		return nil
	}
	out := make([]teamDTO, 0, len(views))
	for _, view := range views {
		out = append(out, toTeamDTO(view))
	}
	return out
}
