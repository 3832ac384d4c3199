package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/alexnjoya/mindlink/internal/database"
	"github.com/alexnjoya/mindlink/internal/models"
	"github.com/alexnjoya/mindlink/internal/repository"
)

// BackupVersion is the format version written by Export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string               `json:"version"`
	ExportedAt   time.Time            `json:"exported_at"`
	DatabaseType string               `json:"database_type"`
	GameSessions []models.GameSession `json:"game_sessions"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db     *database.DB
	logger *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *zap.Logger) *BackupService {
	return &BackupService{db: db, logger: logger}
}

// Export writes every session record to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportTo(ctx, file); err != nil {
		return err
	}
	s.logger.Info("database exported", zap.String("path", outputPath))
	return nil
}

// ExportTo writes every session record to w as indented JSON
func (s *BackupService) ExportTo(ctx context.Context, w io.Writer) error {
	sessions, err := repository.NewGameSessionRepository(s.db).List(ctx, models.SessionFilter{})
	if err != nil {
		return fmt.Errorf("failed to export game sessions: %w", err)
	}

	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.Name(),
		GameSessions: sessions,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("exported game sessions", zap.Int("count", len(sessions)))
	return nil
}

// Import restores session records from inputPath
func (s *BackupService) Import(ctx context.Context, inputPath string, clear bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file, clear)
}

// ImportFromReader restores session records from r in one transaction.
// Records already present are overwritten; clear removes every existing
// record first.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader, clear bool) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.logger.Info("importing backup",
		zap.String("version", backup.Version),
		zap.Time("exported_at", backup.ExportedAt),
		zap.String("source_database", backup.DatabaseType),
		zap.Int("game_sessions", len(backup.GameSessions)),
	)

	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		repo := repository.NewGameSessionRepository(tx)
		if clear {
			removed, err := repo.DeleteAll(ctx)
			if err != nil {
				return err
			}
			s.logger.Info("cleared existing game sessions", zap.Int64("count", removed))
		}
		for i := range backup.GameSessions {
			if err := repo.Upsert(ctx, &backup.GameSessions[i]); err != nil {
				return fmt.Errorf("failed to import game sessions: %w", err)
			}
		}
		return nil
	})
}
