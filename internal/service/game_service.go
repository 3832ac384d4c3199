package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alexnjoya/mindlink/internal/catalog"
	"github.com/alexnjoya/mindlink/internal/game/guesswhat"
	"github.com/alexnjoya/mindlink/internal/game/stroop"
	"github.com/alexnjoya/mindlink/internal/models"
	"github.com/alexnjoya/mindlink/internal/repository"
	"github.com/alexnjoya/mindlink/internal/scoring"
	"github.com/alexnjoya/mindlink/internal/security"
	"github.com/alexnjoya/mindlink/internal/store"
	"github.com/alexnjoya/mindlink/internal/validation"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnknownGame      = errors.New("unknown game")
	ErrWrongGame        = errors.New("event does not apply to this game")
	ErrForbidden        = errors.New("session belongs to another player")
	ErrLevelNotComplete = errors.New("level is not complete")
)

// Player identifies who is playing
type Player struct {
	ID    string
	Email string
	Name  string
}

// SessionRepository persists game session records
type SessionRepository interface {
	Create(ctx context.Context, s *models.GameSession) error
	GetByID(ctx context.Context, id string) (*models.GameSession, error)
	SaveResult(ctx context.Context, s *models.GameSession) error
	List(ctx context.Context, filter models.SessionFilter) ([]models.GameSession, error)
	AbandonStale(ctx context.Context, before time.Time) (int64, error)
}

// Reporter sends a summary of a finished session
type Reporter interface {
	SendSessionReport(ctx context.Context, toEmail, toName string, record *models.GameSession) error
}

// EventResult is what every host event returns: the session as it stands
// after the event plus whatever the event produced
type EventResult struct {
	Session        *models.LiveSession  `json:"session"`
	Revealed       bool                 `json:"revealed,omitempty"`
	Selection      *guesswhat.Selection `json:"selection,omitempty"`
	CompletedLevel *guesswhat.Metric    `json:"completedLevel,omitempty"`
	Answer         *stroop.Answer       `json:"answer,omitempty"`
	FeedbackDelay  int64                `json:"feedbackDelayMs,omitempty"`
	RemainingMs    int64                `json:"remainingMs,omitempty"`
	Result         *models.GameSession  `json:"result,omitempty"`
}

// GameService hosts live game sessions. Every transition runs under one
// mutex: load from the store, apply the engine event, save or finalize.
type GameService struct {
	mu         sync.Mutex
	store      store.Store
	repo       SessionRepository
	games      *catalog.Catalog
	reporter   Reporter
	logger     *zap.Logger
	rng        *rand.Rand
	staleAfter time.Duration
	now        func() time.Time
}

// NewGameService creates a new game service. Records left active for longer
// than staleAfter are abandoned by Sweep.
func NewGameService(st store.Store, repo SessionRepository, games *catalog.Catalog, reporter Reporter, logger *zap.Logger, rng *rand.Rand, staleAfter time.Duration) *GameService {
	return &GameService{
		store:      st,
		repo:       repo,
		games:      games,
		reporter:   reporter,
		logger:     logger,
		rng:        rng,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Games lists the games that can be started
func (s *GameService) Games() []catalog.Game {
	return s.games.List()
}

// Start creates a session of gameKey for player. A non-nil participant marks
// a research session and is validated and stored with the record.
func (s *GameService) Start(ctx context.Context, player Player, gameKey string, participant *models.Participant) (*EventResult, error) {
	if err := validation.ValidateGameKey(gameKey); err != nil {
		return nil, err
	}
	game, ok := s.games.Get(gameKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameKey)
	}
	if participant != nil {
		if err := validation.ValidateParticipant(participant.Name, participant.Age, participant.Consent); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	live := &models.LiveSession{
		ID:        security.NewSessionID(),
		UserID:    player.ID,
		Email:     player.Email,
		Name:      player.Name,
		GameKey:   game.Key,
		GameTitle: game.Title,
		Engine:    game.Engine,
		StartedAt: now,
		UpdatedAt: now,
	}

	var initConfig any
	switch game.Engine {
	case models.EngineGuessWhat:
		cfg := game.GuessWhatConfig()
		live.GuessWhat = guesswhat.NewSession(live.ID, cfg, s.rng)
		initConfig = cfg
	case models.EngineStroop:
		cfg := game.StroopConfig(s.rng)
		live.Stroop = stroop.NewSession(live.ID, cfg, now)
		initConfig = cfg
	default:
		return nil, fmt.Errorf("%w: engine %q", ErrUnknownGame, game.Engine)
	}

	configJSON, err := json.Marshal(initConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to encode init config: %w", err)
	}

	record := &models.GameSession{
		ID:          live.ID,
		UserID:      player.ID,
		GameKey:     game.Key,
		GameTitle:   game.Title,
		GameType:    game.Type,
		Status:      models.StatusActive,
		InitConfig:  configJSON,
		Metrics:     json.RawMessage(`[]`),
		Participant: participant,
		SessionDate: now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, live); err != nil {
		return nil, err
	}

	s.logger.Info("game session started",
		zap.String("session_id", live.ID),
		zap.String("user_id", player.ID),
		zap.String("game", game.Key),
		zap.Bool("research", participant != nil),
	)

	result := &EventResult{Session: live}
	if live.Stroop != nil {
		result.RemainingMs = live.Stroop.Remaining(now).Milliseconds()
	}
	return result, nil
}

// Get returns the live session
func (s *GameService) Get(ctx context.Context, player Player, id string) (*EventResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live, err := s.load(ctx, player, id)
	if err != nil {
		return nil, err
	}
	result := &EventResult{Session: live}
	if live.Stroop != nil {
		result.RemainingMs = live.Stroop.Remaining(s.now()).Milliseconds()
	}
	return result, nil
}

// Tick advances the memorization countdown of a Guess What session. For a
// Stroop session it ends the game once the duration budget is spent.
func (s *GameService) Tick(ctx context.Context, player Player, id string) (*EventResult, error) {
	return s.apply(ctx, player, id, "", func(live *models.LiveSession, now time.Time, result *EventResult) error {
		switch {
		case live.GuessWhat != nil:
			result.Revealed = live.GuessWhat.Tick(now)
		case live.Stroop != nil:
			if live.Stroop.Expired(now) {
				live.Stroop.End()
			}
		}
		return nil
	})
}

// SelectCard evaluates a card selection and scores the level as soon as it
// is complete
func (s *GameService) SelectCard(ctx context.Context, player Player, id string, cardID int) (*EventResult, error) {
	return s.apply(ctx, player, id, models.EngineGuessWhat, func(live *models.LiveSession, now time.Time, result *EventResult) error {
		sel := live.GuessWhat.Select(cardID)
		result.Selection = &sel
		if sel.Accepted && live.GuessWhat.LevelComplete() {
			result.CompletedLevel = live.GuessWhat.CompleteLevel(now, s.rng)
		}
		return nil
	})
}

// CompleteLevel scores a finished level
func (s *GameService) CompleteLevel(ctx context.Context, player Player, id string) (*EventResult, error) {
	return s.apply(ctx, player, id, models.EngineGuessWhat, func(live *models.LiveSession, now time.Time, result *EventResult) error {
		if !live.GuessWhat.LevelComplete() {
			return ErrLevelNotComplete
		}
		result.CompletedLevel = live.GuessWhat.CompleteLevel(now, s.rng)
		return nil
	})
}

// Answer records a Stroop match/no-match call. The game ends when the
// questions run out or the duration budget is spent.
func (s *GameService) Answer(ctx context.Context, player Player, id string, saidMatch bool) (*EventResult, error) {
	return s.apply(ctx, player, id, models.EngineStroop, func(live *models.LiveSession, now time.Time, result *EventResult) error {
		game := live.Stroop
		if game.Expired(now) {
			game.End()
			return nil
		}
		level := 0
		if game.State != nil {
			level = game.State.Level
		}
		ans := game.Answer(saidMatch)
		result.Answer = &ans
		if ans.Accepted {
			result.FeedbackDelay = stroop.FeedbackDelay(level).Milliseconds()
		}
		if ans.Done {
			game.End()
		}
		return nil
	})
}

// Pause stops the session clock
func (s *GameService) Pause(ctx context.Context, player Player, id string) (*EventResult, error) {
	return s.apply(ctx, player, id, "", func(live *models.LiveSession, now time.Time, result *EventResult) error {
		switch {
		case live.GuessWhat != nil:
			live.GuessWhat.Pause(now)
		case live.Stroop != nil:
			live.Stroop.Pause(now)
		}
		return nil
	})
}

// Resume restarts the session clock
func (s *GameService) Resume(ctx context.Context, player Player, id string) (*EventResult, error) {
	return s.apply(ctx, player, id, "", func(live *models.LiveSession, now time.Time, result *EventResult) error {
		switch {
		case live.GuessWhat != nil:
			live.GuessWhat.Resume(now)
		case live.Stroop != nil:
			live.Stroop.Resume(now)
		}
		return nil
	})
}

// Restart throws away progress and starts the game over
func (s *GameService) Restart(ctx context.Context, player Player, id string) (*EventResult, error) {
	return s.apply(ctx, player, id, "", func(live *models.LiveSession, now time.Time, result *EventResult) error {
		switch {
		case live.GuessWhat != nil:
			live.GuessWhat.Restart(s.rng)
		case live.Stroop != nil:
			live.Stroop.Restart(now)
		}
		return nil
	})
}

// Finish ends the session naturally, keeping its score
func (s *GameService) Finish(ctx context.Context, player Player, id string) (*EventResult, error) {
	return s.apply(ctx, player, id, "", func(live *models.LiveSession, now time.Time, result *EventResult) error {
		switch {
		case live.GuessWhat != nil:
			live.GuessWhat.End()
		case live.Stroop != nil:
			live.Stroop.End()
		}
		return nil
	})
}

// Quit abandons the session. Its record is kept with no score.
func (s *GameService) Quit(ctx context.Context, player Player, id string) (*EventResult, error) {
	return s.apply(ctx, player, id, "", func(live *models.LiveSession, now time.Time, result *EventResult) error {
		switch {
		case live.GuessWhat != nil:
			live.GuessWhat.ForceEnd()
		case live.Stroop != nil:
			live.Stroop.ForceEnd()
		}
		return nil
	})
}

// Sweep drops expired live sessions and abandons records nobody finished
func (s *GameService) Sweep(ctx context.Context) error {
	now := s.now()

	pruned, err := s.store.Prune(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to prune live sessions: %w", err)
	}

	var abandoned int64
	if s.staleAfter > 0 {
		abandoned, err = s.repo.AbandonStale(ctx, now.Add(-s.staleAfter))
		if err != nil {
			return fmt.Errorf("failed to abandon stale sessions: %w", err)
		}
	}

	if pruned > 0 || abandoned > 0 {
		s.logger.Info("swept stale sessions",
			zap.Int("pruned", pruned),
			zap.Int64("abandoned", abandoned),
		)
	}
	return nil
}

// apply runs one event against a live session. engine restricts the event
// to one kind of game; the empty engine accepts both.
func (s *GameService) apply(ctx context.Context, player Player, id string, engine models.Engine, event func(*models.LiveSession, time.Time, *EventResult) error) (*EventResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live, err := s.load(ctx, player, id)
	if err != nil {
		return nil, err
	}
	if engine != "" && live.Engine != engine {
		return nil, fmt.Errorf("%w: %s", ErrWrongGame, live.GameKey)
	}

	now := s.now()
	result := &EventResult{Session: live}
	if err := event(live, now, result); err != nil {
		return nil, err
	}
	live.UpdatedAt = now

	if live.Ended() {
		record, err := s.finalize(ctx, live, now)
		if err != nil {
			return nil, err
		}
		result.Result = record
		return result, nil
	}

	if live.Stroop != nil {
		result.RemainingMs = live.Stroop.Remaining(now).Milliseconds()
	}
	if err := s.store.Save(ctx, live); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GameService) load(ctx context.Context, player Player, id string) (*models.LiveSession, error) {
	if err := validation.ValidateSessionID(id); err != nil {
		return nil, ErrSessionNotFound
	}
	live, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if live.UserID != player.ID {
		return nil, ErrForbidden
	}
	return live, nil
}

// finalize writes the outcome of an ended session and drops it from the store
func (s *GameService) finalize(ctx context.Context, live *models.LiveSession, now time.Time) (*models.GameSession, error) {
	metrics, err := json.Marshal(live.MetricsValue())
	if err != nil {
		return nil, fmt.Errorf("failed to encode metrics: %w", err)
	}

	outcome := &models.GameSession{
		ID:         live.ID,
		Status:     models.StatusAbandoned,
		Metrics:    metrics,
		TotalScore: live.TotalScore(),
		MMSEScore:  live.MMSE(),
		Complete:   live.Complete(),
		UpdatedAt:  now,
	}
	if outcome.Complete {
		outcome.Status = models.StatusCompleted
		outcome.CompletedAt = &now
	}

	if err := s.repo.SaveResult(ctx, outcome); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if err := s.store.Delete(ctx, live.ID); err != nil {
		s.logger.Warn("failed to drop finished live session", zap.String("session_id", live.ID), zap.Error(err))
	}

	record, err := s.repo.GetByID(ctx, live.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("game session ended",
		zap.String("session_id", record.ID),
		zap.String("status", string(record.Status)),
		zap.Int("total_score", record.TotalScore),
		zap.Int("mmse_score", record.MMSEScore),
		zap.String("classification", scoring.Classify(float64(record.MMSEScore))),
	)

	if record.Complete && live.Email != "" && s.reporter != nil {
		if err := s.reporter.SendSessionReport(ctx, live.Email, live.Name, record); err != nil {
			s.logger.Error("failed to send session report", zap.String("session_id", record.ID), zap.Error(err))
		}
	}
	return record, nil
}
