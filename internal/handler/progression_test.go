package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/critiquest/critiquest/internal/catalog"
	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/mocks"
)

// withUserID routes through chi so {userID} resolves like it does in the server
func withUserID(pattern string, h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Handle(pattern, h)
	return r
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestProgressionHandlers_HandleApplyUpdate(t *testing.T) {
	InitValidator()

	tickets := 3
	reward := domain.ProgressionReward{
		ID:          "milestone:m1",
		Type:        domain.RewardTypeMilestone,
		Rewards:     domain.RewardPayload{GachaTickets: &tickets},
		MilestoneID: "m1",
	}

	tests := []struct {
		name           string
		userID         string
		body           string
		setupMock      func(*mocks.MockProgressionService)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:   "Success",
			userID: "u1",
			body:   `{"quizzesCompleted": 5, "activityType": "quiz", "immediate": true}`,
			setupMock: func(m *mocks.MockProgressionService) {
				m.On("ApplyUpdate", mock.Anything, "u1", mock.MatchedBy(func(u domain.ProgressionUpdate) bool {
					return u.QuizzesCompleted == 5 && u.ActivityType == "quiz"
				}), true).Return(&domain.UpdateResult{
					Success:       true,
					Rewards:       []domain.ProgressionReward{reward},
					NewLevel:      1,
					Phase:         domain.PhaseCommitted,
					ActivityTitle: "Quiz",
				})
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    `"milestone:m1"`,
		},
		{
			name:           "Negative Delta Rejected By Validation",
			userID:         "u1",
			body:           `{"experience": -10}`,
			setupMock:      func(m *mocks.MockProgressionService) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    ErrMsgInvalidRequestSummary,
		},
		{
			name:           "Malformed JSON",
			userID:         "u1",
			body:           `{"experience": `,
			setupMock:      func(m *mocks.MockProgressionService) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    ErrMsgInvalidRequest,
		},
		{
			name:   "Store Unavailable",
			userID: "u1",
			body:   `{"experience": 10}`,
			setupMock: func(m *mocks.MockProgressionService) {
				err := fmt.Errorf("%w: commit: timeout", domain.ErrStoreUnavailable)
				m.On("ApplyUpdate", mock.Anything, "u1", mock.Anything, false).Return(&domain.UpdateResult{
					Success:  false,
					Phase:    domain.PhaseFailed,
					FailedAt: domain.PhaseResolving,
					Error:    err,
				})
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedMsg:    ErrMsgStoreUnavailableErr,
		},
		{
			name:   "User Not Found In Strict Mode",
			userID: "ghost",
			body:   `{"experience": 10}`,
			setupMock: func(m *mocks.MockProgressionService) {
				m.On("ApplyUpdate", mock.Anything, "ghost", mock.Anything, false).Return(&domain.UpdateResult{
					Phase:    domain.PhaseFailed,
					FailedAt: domain.PhaseApplying,
					Error:    domain.ErrUserNotFound,
				})
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    ErrMsgUserNotFoundError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := mocks.NewMockProgressionService(t)
			tt.setupMock(mockSvc)

			h := NewProgressionHandlers(mockSvc)
			router := withUserID("/progression/{userID}/updates", h.HandleApplyUpdate())

			req := httptest.NewRequest("POST", "/progression/"+tt.userID+"/updates", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedMsg)
		})
	}
}

func TestProgressionHandlers_HandleApplyUpdate_FailureBody(t *testing.T) {
	mockSvc := mocks.NewMockProgressionService(t)
	mockSvc.On("ApplyUpdate", mock.Anything, "u1", mock.Anything, false).Return(&domain.UpdateResult{
		Phase:    domain.PhaseFailed,
		FailedAt: domain.PhaseApplying,
		Error:    fmt.Errorf("%w: read: connection refused", domain.ErrStoreUnavailable),
	})

	router := withUserID("/progression/{userID}/updates", NewProgressionHandlers(mockSvc).HandleApplyUpdate())
	req := httptest.NewRequest("POST", "/progression/u1/updates", jsonBody(t, UpdateRequest{}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp UpdateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, domain.PhaseApplying, resp.FailedAt)
	assert.Empty(t, resp.Rewards)
	assert.NotContains(t, rec.Body.String(), "connection refused", "internal details must not leak")
}

func TestProgressionHandlers_InvalidUserID(t *testing.T) {
	mockSvc := mocks.NewMockProgressionService(t)
	h := NewProgressionHandlers(mockSvc)

	router := withUserID("/progression/{userID}", h.HandleGetProgression())
	long := strings.Repeat("x", MaxUserIDLength+1)

	for _, id := range []string{long, "with%20space"} {
		req := httptest.NewRequest("GET", "/progression/"+id, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
	}
}

func TestProgressionHandlers_HandleGetProgression(t *testing.T) {
	t.Run("existing user", func(t *testing.T) {
		mockSvc := mocks.NewMockProgressionService(t)
		state := domain.NewProgressionState("u1")
		state.Experience = 120
		state.Level = 2
		mockSvc.On("GetProgression", mock.Anything, "u1").Return(state, nil)

		router := withUserID("/progression/{userID}", NewProgressionHandlers(mockSvc).HandleGetProgression())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/progression/u1", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got domain.ProgressionState
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, int64(120), got.Experience)
		assert.Equal(t, 2, got.Level)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockSvc := mocks.NewMockProgressionService(t)
		mockSvc.On("GetProgression", mock.Anything, "nobody").Return(nil, nil)

		router := withUserID("/progression/{userID}", NewProgressionHandlers(mockSvc).HandleGetProgression())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/progression/nobody", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), ErrMsgProgressionNotFound)
	})

	t.Run("store error", func(t *testing.T) {
		mockSvc := mocks.NewMockProgressionService(t)
		mockSvc.On("GetProgression", mock.Anything, "u1").Return(nil, domain.ErrStoreUnavailable)

		router := withUserID("/progression/{userID}", NewProgressionHandlers(mockSvc).HandleGetProgression())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/progression/u1", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestProgressionHandlers_HandleGetMilestones(t *testing.T) {
	mockSvc := mocks.NewMockProgressionService(t)
	milestones := []domain.ProgressionMilestone{
		{
			MilestoneDefinition: domain.MilestoneDefinition{ID: "m1", Metric: domain.MetricQuizzesCompleted, RequiredValue: 5},
			CurrentValue:        3,
		},
	}
	mockSvc.On("GetMilestones", mock.Anything, "u1").Return(milestones, nil)

	router := withUserID("/progression/{userID}/milestones", NewProgressionHandlers(mockSvc).HandleGetMilestones())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/progression/u1/milestones", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp MilestonesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	require.Len(t, resp.Milestones, 1)
	assert.Equal(t, int64(3), resp.Milestones[0].CurrentValue)
	assert.False(t, resp.Milestones[0].Completed)
}

func TestProgressionHandlers_HandleGetLevelProgress(t *testing.T) {
	mockSvc := mocks.NewMockProgressionService(t)
	next := int64(250)
	mockSvc.On("GetLevelProgress", mock.Anything, "u1").Return(&domain.LevelProgress{
		UserID: "u1", Level: 2, Experience: 120, LevelThreshold: 100, NextThreshold: &next, ExperienceToNext: 130,
	}, nil)

	router := withUserID("/progression/{userID}/level", NewProgressionHandlers(mockSvc).HandleGetLevelProgress())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/progression/u1/level", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"experienceToNext":130`)
}

func TestProgressionHandlers_HandleGetCatalog(t *testing.T) {
	levels, err := catalog.NewLevelTable(0, 100)
	require.NoError(t, err)
	c, err := catalog.New(levels, []domain.MilestoneDefinition{
		{ID: "m1", Name: "Quiz Novice", Metric: domain.MetricQuizzesCompleted, RequiredValue: 5},
	}, nil)
	require.NoError(t, err)

	mockSvc := mocks.NewMockProgressionService(t)
	mockSvc.On("Catalog").Return(c)

	rec := httptest.NewRecorder()
	NewProgressionHandlers(mockSvc).HandleGetCatalog()(rec, httptest.NewRequest("GET", "/catalog", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Levels, 2)
	require.Len(t, resp.Milestones, 1)
	assert.Equal(t, "m1", resp.Milestones[0].ID)
	assert.Nil(t, resp.DailyReward)
}

func TestMapServiceErrorToUserMessage(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{nil, http.StatusInternalServerError, ErrMsgUnknownError},
		{fmt.Errorf("%w: experience", domain.ErrInvalidUpdate), http.StatusBadRequest, ErrMsgInvalidUpdateError},
		{domain.ErrUserNotFound, http.StatusNotFound, ErrMsgUserNotFoundError},
		{fmt.Errorf("wrap: %w", domain.ErrStoreUnavailable), http.StatusServiceUnavailable, ErrMsgStoreUnavailableErr},
		{domain.ErrQueueClosed, http.StatusServiceUnavailable, ErrMsgQueueClosedError},
		{context.Canceled, http.StatusInternalServerError, ErrMsgGenericServerError},
	}

	for _, tt := range tests {
		status, msg := mapServiceErrorToUserMessage(tt.err)
		assert.Equal(t, tt.status, status)
		assert.Equal(t, tt.msg, msg)
	}
}
