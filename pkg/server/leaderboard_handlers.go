// Copyright 2025 Tokenlens
//
// Leaderboard and statistics API handlers

package server

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/tokenlens/tokenlens/pkg/database"
)

// LeaderboardHandlers serves the score leaderboards backed by the store.
type LeaderboardHandlers struct {
	store  *database.Store
	logger *logrus.Logger
}

// NewLeaderboardHandlers creates leaderboard handlers.
func NewLeaderboardHandlers(store *database.Store, logger *logrus.Logger) *LeaderboardHandlers {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LeaderboardHandlers{store: store, logger: logger}
}

// paginationInfo describes one leaderboard page.
type paginationInfo struct {
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	HasNext bool `json:"has_next"`
}

// leaderboardResponse is the GET /api/v1/leaderboard reply.
type leaderboardResponse struct {
	Data       []database.LeaderboardEntry `json:"data"`
	Pagination paginationInfo              `json:"pagination"`
}

// HandleLeaderboard handles GET /api/v1/leaderboard with optional
// page/size/chain_id query parameters.
func (h *LeaderboardHandlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_STORAGE", "No storage configured")
		return
	}

	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", 50)
	if size > 100 {
		size = 100
	}

	var chainID *uint64
	if raw := r.URL.Query().Get("chain_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_CHAIN_ID", "Chain id must be an integer")
			return
		}
		chainID = &parsed
	}

	entries, err := h.store.Leaderboard(r.Context(), chainID, page, size)
	if err != nil {
		h.logger.WithError(err).Error("failed to read leaderboard")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, leaderboardResponse{
		Data: entries,
		Pagination: paginationInfo{
			Page:    page,
			Size:    size,
			HasNext: len(entries) == size,
		},
	})
}

// HandleStats handles GET /api/v1/stats.
func (h *LeaderboardHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_STORAGE", "No storage configured")
		return
	}

	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to read stats")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
