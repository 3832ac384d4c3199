package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/alexnjoya/mindlink/internal/scoring"
	"github.com/alexnjoya/mindlink/internal/service"
	"github.com/alexnjoya/mindlink/internal/validation"
)

const maxHistoryLimit = 500

// StatsHandler serves a player's session history and dashboard
type StatsHandler struct {
	stats  *service.StatsService
	logger *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

// ListSessions returns the player's sessions, optionally filtered by ?game=
// and capped by ?limit=
func (h *StatsHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	player, _ := GetPlayerFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			respondWithError(w, h.logger, http.StatusBadRequest, "limit must be between 1 and 500", "", err)
			return
		}
		limit = n
	}

	sessions, err := h.stats.History(r.Context(), player.ID, r.URL.Query().Get("game"), limit)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to list sessions", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// GetSession returns one persisted session record
func (h *StatsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	player, _ := GetPlayerFromContext(r.Context())

	record, err := h.stats.Record(r.Context(), player.ID, r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to load session record", err)
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

// Dashboard returns the player's dashboard figures
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	player, _ := GetPlayerFromContext(r.Context())

	stats, err := h.stats.Dashboard(r.Context(), player.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to build dashboard", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

type mmseResponse struct {
	Score          int    `json:"score"`
	MMSEScore      int    `json:"mmseScore"`
	Classification string `json:"classification"`
}

// MMSE converts a total score given as ?score= into an MMSE estimate
func (h *StatsHandler) MMSE(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.Atoi(r.URL.Query().Get("score"))
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "score must be an integer", "", err)
		return
	}
	if err := validation.ValidateScore(score); err != nil {
		respondWithServiceError(w, h.logger, "", err)
		return
	}

	mmse := scoring.NormalizeToMMSE(score)
	respondWithJSON(w, http.StatusOK, mmseResponse{
		Score:          score,
		MMSEScore:      mmse,
		Classification: scoring.Classify(float64(mmse)),
	})
}

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports whether the database answers
func Health(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			respondWithError(w, logger, http.StatusServiceUnavailable, "Database unavailable", "health check failed", err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
