package handler

import (
	"net/http"

	"github.com/critiquest/critiquest/internal/logger"
)

// ProgressionCache is the admin view of the read-through state cache
type ProgressionCache interface {
	Len() int
	Invalidate(userID string)
}

// CacheStats reports the cache occupancy
type CacheStats struct {
	Enabled bool `json:"enabled"`
	Size    int  `json:"size"`
}

// AdminCacheHandler handles admin cache operations
type AdminCacheHandler struct {
	cache ProgressionCache
}

// NewAdminCacheHandler creates a new admin cache handler. cache may be nil when caching is disabled.
func NewAdminCacheHandler(cache ProgressionCache) *AdminCacheHandler {
	return &AdminCacheHandler{
		cache: cache,
	}
}

// HandleGetCacheStats returns current cache statistics
// GET /api/v1/admin/cache/stats
func (h *AdminCacheHandler) HandleGetCacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		respondJSON(w, http.StatusOK, CacheStats{})
		return
	}
	respondJSON(w, http.StatusOK, CacheStats{Enabled: true, Size: h.cache.Len()})
}

// HandleInvalidateUser drops one user's cached state so the next read goes to the store
// DELETE /api/v1/admin/cache/{userID}
func (h *AdminCacheHandler) HandleInvalidateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDParam(r, w)
	if !ok {
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(userID)
	}
	logger.FromContext(r.Context()).Info("Admin cache invalidation", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
