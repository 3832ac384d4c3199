// Package store keeps sessions that are being played, keyed by session ID.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/alexnjoya/mindlink/internal/models"
)

// ErrNotFound is returned for unknown or expired sessions
var ErrNotFound = errors.New("live session not found")

// Store holds live sessions between requests. Get returns a copy; callers
// write changes back with Save.
type Store interface {
	Get(ctx context.Context, id string) (*models.LiveSession, error)
	Save(ctx context.Context, s *models.LiveSession) error
	Delete(ctx context.Context, id string) error
	// Prune drops sessions idle since before now minus the TTL and returns how many went
	Prune(ctx context.Context, now time.Time) (int, error)
	Close() error
}
