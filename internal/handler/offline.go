package handler

import (
	"net/http"
	"time"

	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/logger"
	"github.com/critiquest/critiquest/internal/offline"
)

// ReplayTrigger starts a replay round without waiting for it
type ReplayTrigger interface {
	TriggerNow()
}

// OfflineUpdateRequest is an update recorded while the client was disconnected
type OfflineUpdateRequest struct {
	domain.ProgressionUpdate
}

// OfflineQueuedResponse acknowledges a queued update
type OfflineQueuedResponse struct {
	Message    string    `json:"message"`
	EntryID    string    `json:"entryId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// OfflineStatusResponse lists a user's queued and rejected entries
type OfflineStatusResponse struct {
	UserID      string               `json:"userId"`
	Pending     []offline.Entry      `json:"pending"`
	DeadLetters []offline.DeadLetter `json:"deadLetters"`
}

// OfflineHandlers exposes the offline queue
type OfflineHandlers struct {
	queue   offline.Queue
	trigger ReplayTrigger
}

// NewOfflineHandlers creates offline queue handlers. trigger may be nil.
func NewOfflineHandlers(queue offline.Queue, trigger ReplayTrigger) *OfflineHandlers {
	return &OfflineHandlers{queue: queue, trigger: trigger}
}

// HandleEnqueue stores an update for chronological replay
func (h *OfflineHandlers) HandleEnqueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID, ok := GetUserIDParam(r, w)
		if !ok {
			return
		}

		var req OfflineUpdateRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Queue offline update"); err != nil {
			return
		}
		if req.IsEmpty() {
			log.Warn("Queue offline update: empty update", "user_id", userID)
			respondError(w, http.StatusBadRequest, ErrMsgEmptyOfflineUpdate)
			return
		}

		entry, err := h.queue.Enqueue(r.Context(), userID, req.ProgressionUpdate)
		if err != nil {
			log.Error("Queue offline update: failed", "user_id", userID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			if status == http.StatusInternalServerError {
				msg = ErrMsgEnqueueFailed
			}
			respondError(w, status, msg)
			return
		}

		if h.trigger != nil {
			h.trigger.TriggerNow()
		}

		log.Info("Queue offline update: success", "user_id", userID, "entry_id", entry.ID)
		respondJSON(w, http.StatusAccepted, OfflineQueuedResponse{
			Message:    MsgOfflineUpdateQueued,
			EntryID:    entry.ID,
			OccurredAt: entry.OccurredAt,
		})
	}
}

// HandleStatus returns a user's pending and dead-lettered entries
func (h *OfflineHandlers) HandleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID, ok := GetUserIDParam(r, w)
		if !ok {
			return
		}

		pending, err := h.queue.Pending(r.Context(), userID)
		if err != nil {
			log.Error("Offline status: failed to read pending", "user_id", userID, "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgGetOfflineStatusFailed)
			return
		}
		dead, err := h.queue.DeadLetters(r.Context(), userID)
		if err != nil {
			log.Error("Offline status: failed to read dead letters", "user_id", userID, "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgGetOfflineStatusFailed)
			return
		}

		if pending == nil {
			pending = []offline.Entry{}
		}
		if dead == nil {
			dead = []offline.DeadLetter{}
		}
		respondJSON(w, http.StatusOK, OfflineStatusResponse{UserID: userID, Pending: pending, DeadLetters: dead})
	}
}

// HandleTriggerReplay starts a replay round immediately
func (h *OfflineHandlers) HandleTriggerReplay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.trigger == nil {
			respondError(w, http.StatusServiceUnavailable, ErrMsgOfflineQueueUnavailable)
			return
		}
		h.trigger.TriggerNow()
		logger.FromContext(r.Context()).Info("Offline replay triggered via API")
		respondJSON(w, http.StatusAccepted, SuccessResponse{Message: MsgReplayTriggered})
	}
}
