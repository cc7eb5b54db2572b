package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vortex07x/steamsurf/internal/model"
)

// CleanupService prunes view events past the retention window. Likes,
// dislikes and saves are never touched. It runs on demand only.
type CleanupService struct {
	interactions InteractionStore
	retention    time.Duration
	now          func() time.Time
	onDeleted    func(n int64)
}

func NewCleanupService(interactions InteractionStore, retention time.Duration) *CleanupService {
	return &CleanupService{interactions: interactions, retention: retention, now: time.Now}
}

// OnDeleted registers a callback invoked with the number of rows removed.
func (s *CleanupService) OnDeleted(fn func(n int64)) {
	s.onDeleted = fn
}

// Run deletes view events created before now minus the retention window.
func (s *CleanupService) Run(ctx context.Context) (*model.CleanupResult, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.interactions.DeleteViewsBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if s.onDeleted != nil {
		s.onDeleted(n)
	}
	log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("view cleanup complete")
	return &model.CleanupResult{DeletedCount: n, Cutoff: cutoff}, nil
}
