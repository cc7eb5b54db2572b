package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/vortex07x/steamsurf/internal/model"
	"github.com/vortex07x/steamsurf/internal/repository"
)

// InteractionService handles reactions, views and bookmarks.
type InteractionService struct {
	videos       VideoStore
	interactions InteractionStore
	saved        SavedStore
	aggregates   *AggregateService
}

func NewInteractionService(videos VideoStore, interactions InteractionStore, saved SavedStore, aggregates *AggregateService) *InteractionService {
	return &InteractionService{
		videos:       videos,
		interactions: interactions,
		saved:        saved,
		aggregates:   aggregates,
	}
}

// ToggleReaction flips the caller's like or dislike. Toggling the same kind
// twice restores the original state.
func (s *InteractionService) ToggleReaction(ctx context.Context, userID, videoID string, kind model.Reaction) (*model.ReactionResponse, error) {
	if kind != model.ReactionLike && kind != model.ReactionDislike {
		return nil, invalid("Reaction must be like or dislike")
	}
	return s.react(ctx, userID, videoID, func(cur model.ReactionState) model.ReactionState {
		return cur.Toggle(kind)
	})
}

// SetReaction applies kind idempotently; ReactionNone clears any reaction.
func (s *InteractionService) SetReaction(ctx context.Context, userID, videoID string, kind model.Reaction) (*model.ReactionResponse, error) {
	switch kind {
	case model.ReactionLike, model.ReactionDislike, model.ReactionNone:
	default:
		return nil, invalid("Reaction must be like, dislike or none")
	}
	return s.react(ctx, userID, videoID, func(cur model.ReactionState) model.ReactionState {
		return cur.Set(kind)
	})
}

func (s *InteractionService) react(ctx context.Context, userID, videoID string, next func(model.ReactionState) model.ReactionState) (*model.ReactionResponse, error) {
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}
	if _, err := s.interactions.ApplyReaction(ctx, userID, videoID, next); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, missingReference(err)
		}
		return nil, err
	}

	aggs, err := s.aggregates.GetAggregates(ctx, []string{videoID}, userID)
	if err != nil {
		return nil, err
	}
	agg := aggs[videoID]
	return &model.ReactionResponse{
		VideoID:      videoID,
		Likes:        agg.Likes,
		Dislikes:     agg.Dislikes,
		UserLiked:    agg.UserInteraction.Like,
		UserDisliked: agg.UserInteraction.Dislike,
	}, nil
}

// RecordView appends a view event. Views are never deduplicated.
func (s *InteractionService) RecordView(ctx context.Context, userID, videoID string) (*model.ViewResponse, error) {
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}
	if err := s.interactions.InsertView(ctx, userID, videoID); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, missingReference(err)
		}
		return nil, err
	}

	aggs, err := s.aggregates.GetAggregates(ctx, []string{videoID}, "")
	if err != nil {
		return nil, err
	}
	return &model.ViewResponse{VideoID: videoID, Views: aggs[videoID].Views}, nil
}

// Save bookmarks a video. Saving an already saved pair is a conflict.
func (s *InteractionService) Save(ctx context.Context, userID, videoID string) (*model.SaveResponse, error) {
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}
	if _, err := s.saved.Save(ctx, userID, videoID); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, missingReference(err)
		}
		return nil, conflict(err, "Video already saved")
	}
	return &model.SaveResponse{VideoID: videoID, Saved: true}, nil
}

// missingReference names the row behind a foreign key failure. The video
// was checked just before the write, so anything other than a vanished
// account is a video deleted in between.
func missingReference(err error) error {
	if repository.MissingUser(err) {
		return newError(ErrUnauthorized, "User not found")
	}
	return newError(ErrNotFound, "Video not found")
}

// Unsave removes a bookmark. Unsaving a pair that was never saved is NotFound.
func (s *InteractionService) Unsave(ctx context.Context, userID, videoID string) (*model.SaveResponse, error) {
	if err := s.saved.Unsave(ctx, userID, videoID); err != nil {
		return nil, notFound(err, "Video not in saved list")
	}
	return &model.SaveResponse{VideoID: videoID, Saved: false}, nil
}

// IsSaved reports the caller's bookmark state for a video.
func (s *InteractionService) IsSaved(ctx context.Context, userID, videoID string) (*model.SaveResponse, error) {
	saved, err := s.saved.IsSaved(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	return &model.SaveResponse{VideoID: videoID, Saved: saved}, nil
}

// Stats returns the aggregate of a single existing video. Unlike
// GetAggregates it reports NotFound for unknown or deleted ids.
func (s *InteractionService) Stats(ctx context.Context, videoID, userID string) (*model.Aggregate, error) {
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}
	aggs, err := s.aggregates.GetAggregates(ctx, []string{videoID}, userID)
	if err != nil {
		return nil, err
	}
	agg := aggs[videoID]
	return &agg, nil
}

func (s *InteractionService) requireVideo(ctx context.Context, videoID string) error {
	ok, err := s.videos.Exists(ctx, videoID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if !ok {
		return newError(ErrNotFound, "Video not found")
	}
	return nil
}
