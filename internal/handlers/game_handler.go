package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/alexnjoya/mindlink/internal/models"
	"github.com/alexnjoya/mindlink/internal/service"
)

// GameHandler exposes the live game host over HTTP
type GameHandler struct {
	games  *service.GameService
	logger *zap.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(games *service.GameService, logger *zap.Logger) *GameHandler {
	return &GameHandler{games: games, logger: logger}
}

type startRequest struct {
	Participant *models.Participant `json:"participantInfo"`
}

type selectRequest struct {
	CardID *int `json:"cardId"`
}

type answerRequest struct {
	Match *bool `json:"match"`
}

// ListGames returns the playable games
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{"games": h.games.Games()})
}

// StartSession starts a session of the game named in the path. A body with
// participantInfo starts a research session.
func (h *GameHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	player, _ := GetPlayerFromContext(r.Context())

	var req startRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	result, err := h.games.Start(r.Context(), player, r.PathValue("game"), req.Participant)
	if err != nil {
		respondWithServiceError(w, h.logger, "failed to start session", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, result)
}

// GetSession returns the live state of a session
func (h *GameHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.event(w, r, "failed to load session", h.games.Get)
}

// Tick advances the session clock by one tick
func (h *GameHandler) Tick(w http.ResponseWriter, r *http.Request) {
	h.event(w, r, "failed to tick session", h.games.Tick)
}

// SelectCard selects a card in a Guess What session
func (h *GameHandler) SelectCard(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil || req.CardID == nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "cardId is required", "", err)
		return
	}
	h.event(w, r, "failed to select card", func(ctx context.Context, p service.Player, id string) (*service.EventResult, error) {
		return h.games.SelectCard(ctx, p, id, *req.CardID)
	})
}

// CompleteLevel scores a finished Guess What level
func (h *GameHandler) CompleteLevel(w http.ResponseWriter, r *http.Request) {
	h.event(w, r, "failed to complete level", h.games.CompleteLevel)
}

// Answer records a Stroop answer
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Match == nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "match is required", "", err)
		return
	}
	h.event(w, r, "failed to record answer", func(ctx context.Context, p service.Player, id string) (*service.EventResult, error) {
		return h.games.Answer(ctx, p, id, *req.Match)
	})
}

// Pause pauses a session
func (h *GameHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.event(w, r, "failed to pause session", h.games.Pause)
}

// Resume resumes a paused session
func (h *GameHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.event(w, r, "failed to resume session", h.games.Resume)
}

// Restart starts a session over
func (h *GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.event(w, r, "failed to restart session", h.games.Restart)
}

// Finish ends a session and keeps its score
func (h *GameHandler) Finish(w http.ResponseWriter, r *http.Request) {
	h.event(w, r, "failed to finish session", h.games.Finish)
}

// Quit abandons a session
func (h *GameHandler) Quit(w http.ResponseWriter, r *http.Request) {
	h.event(w, r, "failed to quit session", h.games.Quit)
}

type eventFunc func(ctx context.Context, player service.Player, id string) (*service.EventResult, error)

func (h *GameHandler) event(w http.ResponseWriter, r *http.Request, logMsg string, fn eventFunc) {
	player, _ := GetPlayerFromContext(r.Context())

	result, err := fn(r.Context(), player, r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, h.logger, logMsg, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
