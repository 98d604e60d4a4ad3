package handler

import (
	"net/http"

	"github.com/critiquest/critiquest/internal/catalog"
	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/logger"
	"github.com/critiquest/critiquest/internal/progression"
)

// UpdateRequest is the body of an activity report
type UpdateRequest struct {
	domain.ProgressionUpdate
	Immediate bool `json:"immediate"`
}

// UpdateResponse is returned by the update endpoint on success and failure
type UpdateResponse struct {
	Success       bool                       `json:"success"`
	Rewards       []domain.ProgressionReward `json:"rewards"`
	NewLevel      int                        `json:"newLevel,omitempty"`
	ActivityTitle string                     `json:"activityTitle,omitempty"`
	State         *domain.ProgressionState   `json:"state,omitempty"`
	Error         string                     `json:"error,omitempty"`
	FailedAt      domain.UpdatePhase         `json:"failedAt,omitempty"`
}

// MilestonesResponse lists the catalog annotated for one user
type MilestonesResponse struct {
	UserID     string                        `json:"userId"`
	Milestones []domain.ProgressionMilestone `json:"milestones"`
}

// CatalogResponse exposes the loaded catalog
type CatalogResponse struct {
	Version     string                       `json:"version"`
	Levels      []catalog.Level              `json:"levels"`
	Milestones  []domain.MilestoneDefinition `json:"milestones"`
	DailyReward *domain.RewardSpec           `json:"dailyReward,omitempty"`
}

// ProgressionHandlers contains HTTP handlers for the progression engine
type ProgressionHandlers struct {
	service progression.Service
}

// NewProgressionHandlers creates new progression handlers
func NewProgressionHandlers(service progression.Service) *ProgressionHandlers {
	return &ProgressionHandlers{service: service}
}

// HandleApplyUpdate applies one activity report and returns the rewards it earned
func (h *ProgressionHandlers) HandleApplyUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID, ok := GetUserIDParam(r, w)
		if !ok {
			return
		}

		var req UpdateRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Apply update"); err != nil {
			return
		}

		result := h.service.ApplyUpdate(r.Context(), userID, req.ProgressionUpdate, req.Immediate)
		resp := UpdateResponse{
			Success:       result.Success,
			Rewards:       result.Rewards,
			NewLevel:      result.NewLevel,
			ActivityTitle: result.ActivityTitle,
			State:         result.State,
		}
		if resp.Rewards == nil {
			resp.Rewards = []domain.ProgressionReward{}
		}

		if !result.Success {
			status, msg := mapServiceErrorToUserMessage(result.Error)
			resp.Error = msg
			resp.FailedAt = result.FailedAt
			log.Warn("Apply update: failed", "user_id", userID, "failed_at", result.FailedAt, "error", result.Error)
			respondJSON(w, status, resp)
			return
		}

		log.Info("Apply update: success", "user_id", userID, "rewards", len(result.Rewards), "level", result.NewLevel)
		respondJSON(w, http.StatusOK, resp)
	}
}

// HandleGetProgression returns a user's state, or 404 before their first update
func (h *ProgressionHandlers) HandleGetProgression() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID, ok := GetUserIDParam(r, w)
		if !ok {
			return
		}

		state, err := h.service.GetProgression(r.Context(), userID)
		if err != nil {
			log.Error("Get progression: service error", "user_id", userID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}
		if state == nil {
			respondError(w, http.StatusNotFound, ErrMsgProgressionNotFound)
			return
		}

		respondJSON(w, http.StatusOK, state)
	}
}

// HandleGetMilestones returns every milestone with the user's current value
func (h *ProgressionHandlers) HandleGetMilestones() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID, ok := GetUserIDParam(r, w)
		if !ok {
			return
		}

		milestones, err := h.service.GetMilestones(r.Context(), userID)
		if err != nil {
			log.Error("Get milestones: service error", "user_id", userID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, MilestonesResponse{UserID: userID, Milestones: milestones})
	}
}

// HandleGetLevelProgress returns the user's position in the level table
func (h *ProgressionHandlers) HandleGetLevelProgress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID, ok := GetUserIDParam(r, w)
		if !ok {
			return
		}

		progress, err := h.service.GetLevelProgress(r.Context(), userID)
		if err != nil {
			log.Error("Get level progress: service error", "user_id", userID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, progress)
	}
}

// HandleGetCatalog returns the loaded level table and milestones
func (h *ProgressionHandlers) HandleGetCatalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := h.service.Catalog()
		resp := CatalogResponse{
			Version:    c.Version(),
			Levels:     c.Levels().Levels(),
			Milestones: c.Milestones(),
		}
		if daily, ok := c.DailyReward(); ok {
			resp.DailyReward = &daily
		}
		respondJSON(w, http.StatusOK, resp)
	}
}
