package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexnjoya/mindlink/internal/database"
	"github.com/alexnjoya/mindlink/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

const sessionColumns = `id, user_id, game_key, game_title, game_type, status, init_config, metrics,
	participant, total_score, mmse_score, complete, session_date, updated_at, completed_at`

// GameSessionRepository handles game session database operations
type GameSessionRepository struct {
	db database.DBTX
}

// NewGameSessionRepository creates a new game session repository
func NewGameSessionRepository(db database.DBTX) *GameSessionRepository {
	return &GameSessionRepository{db: db}
}

// Create inserts a new session record
func (r *GameSessionRepository) Create(ctx context.Context, s *models.GameSession) error {
	args, err := sessionArgs(s)
	if err != nil {
		return err
	}
	query := `INSERT INTO game_sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create game session: %w", err)
	}
	return nil
}

// Upsert inserts a session or overwrites the stored copy with the same ID
func (r *GameSessionRepository) Upsert(ctx context.Context, s *models.GameSession) error {
	args, err := sessionArgs(s)
	if err != nil {
		return err
	}
	updated := []string{
		"user_id", "game_key", "game_title", "game_type", "status", "init_config", "metrics",
		"participant", "total_score", "mmse_score", "complete", "session_date", "updated_at", "completed_at",
	}
	query := `INSERT INTO game_sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)` +
		r.db.GetDialect().UpsertClause("id", updated)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert game session %s: %w", s.ID, err)
	}
	return nil
}

// GetByID retrieves a session by ID
func (r *GameSessionRepository) GetByID(ctx context.Context, id string) (*models.GameSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE id = ?`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game session %s: %w", id, err)
	}
	return s, nil
}

// SaveResult stores the outcome of a session
func (r *GameSessionRepository) SaveResult(ctx context.Context, s *models.GameSession) error {
	metrics := string(s.Metrics)
	if metrics == "" {
		metrics = "[]"
	}
	query := `
		UPDATE game_sessions
		SET status = ?, metrics = ?, total_score = ?, mmse_score = ?, complete = ?,
		    updated_at = ?, completed_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		string(s.Status), metrics, s.TotalScore, s.MMSEScore, s.Complete,
		s.UpdatedAt.UTC(), nullTime(s.CompletedAt), s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save game session %s: %w", s.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the sessions matching filter, oldest first
func (r *GameSessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.GameSession, error) {
	var where []string
	var args []any
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.GameKey != "" {
		where = append(where, "game_key = ?")
		args = append(args, filter.GameKey)
	}
	if filter.CompleteOnly {
		where = append(where, "complete = ?")
		args = append(args, true)
	}

	query := `SELECT ` + sessionColumns + ` FROM game_sessions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY session_date ASC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list game sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.GameSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// AbandonStale marks active sessions untouched since before as abandoned
func (r *GameSessionRepository) AbandonStale(ctx context.Context, before time.Time) (int64, error) {
	query := `UPDATE game_sessions SET status = ?, updated_at = ? WHERE status = ? AND updated_at < ?`
	result, err := r.db.ExecContext(ctx, query,
		string(models.StatusAbandoned), time.Now().UTC(), string(models.StatusActive), before.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to abandon stale sessions: %w", err)
	}
	return result.RowsAffected()
}

// DeleteAll removes every session record
func (r *GameSessionRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM game_sessions`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear game sessions: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.GameSession, error) {
	s := &models.GameSession{}
	var status, initConfig, metrics string
	var participant sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.GameKey,
		&s.GameTitle,
		&s.GameType,
		&status,
		&initConfig,
		&metrics,
		&participant,
		&s.TotalScore,
		&s.MMSEScore,
		&s.Complete,
		&s.SessionDate,
		&s.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Status = models.SessionStatus(status)
	s.InitConfig = json.RawMessage(initConfig)
	s.Metrics = json.RawMessage(metrics)
	if participant.Valid && participant.String != "" {
		s.Participant = &models.Participant{}
		if err := json.Unmarshal([]byte(participant.String), s.Participant); err != nil {
			return nil, fmt.Errorf("invalid participant for session %s: %w", s.ID, err)
		}
	}
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}
	return s, nil
}

func sessionArgs(s *models.GameSession) ([]any, error) {
	initConfig := string(s.InitConfig)
	if initConfig == "" {
		initConfig = "{}"
	}
	metrics := string(s.Metrics)
	if metrics == "" {
		metrics = "[]"
	}
	status := s.Status
	if status == "" {
		status = models.StatusActive
	}

	var participant sql.NullString
	if s.Participant != nil {
		data, err := json.Marshal(s.Participant)
		if err != nil {
			return nil, fmt.Errorf("failed to encode participant: %w", err)
		}
		participant = sql.NullString{String: string(data), Valid: true}
	}

	return []any{
		s.ID, s.UserID, s.GameKey, s.GameTitle, s.GameType, string(status), initConfig, metrics,
		participant, s.TotalScore, s.MMSEScore, s.Complete,
		s.SessionDate.UTC(), s.UpdatedAt.UTC(), nullTime(s.CompletedAt),
	}, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
