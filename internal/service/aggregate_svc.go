package service

import (
	"context"

	"github.com/vortex07x/steamsurf/internal/model"
)

// AggregateService derives engagement counts from the interaction log.
type AggregateService struct {
	interactions InteractionStore
}

func NewAggregateService(interactions InteractionStore) *AggregateService {
	return &AggregateService{interactions: interactions}
}

// GetAggregates returns an entry for every requested id, zero-filled when a
// video has no interactions. userID may be empty for anonymous callers.
func (s *AggregateService) GetAggregates(ctx context.Context, videoIDs []string, userID string) (map[string]model.Aggregate, error) {
	if len(videoIDs) == 0 {
		return map[string]model.Aggregate{}, nil
	}

	counts, err := s.interactions.CountByVideos(ctx, videoIDs)
	if err != nil {
		return nil, err
	}

	var reactions []model.Interaction
	if userID != "" {
		reactions, err = s.interactions.UserReactions(ctx, userID, videoIDs)
		if err != nil {
			return nil, err
		}
	}

	return TallyAggregates(videoIDs, counts, reactions), nil
}

// TallyAggregates folds grouped counts and the caller's own reaction rows
// into one aggregate per id. Counts for ids not in videoIDs are ignored.
func TallyAggregates(videoIDs []string, counts []model.InteractionCount, reactions []model.Interaction) map[string]model.Aggregate {
	out := make(map[string]model.Aggregate, len(videoIDs))
	for _, id := range videoIDs {
		out[id] = model.Aggregate{}
	}

	for _, c := range counts {
		agg, ok := out[c.VideoID]
		if !ok {
			continue
		}
		switch c.Type {
		case model.InteractionLike:
			agg.Likes += c.Count
		case model.InteractionDislike:
			agg.Dislikes += c.Count
		case model.InteractionView:
			agg.Views += c.Count
		}
		out[c.VideoID] = agg
	}

	for _, r := range reactions {
		agg, ok := out[r.VideoID]
		if !ok {
			continue
		}
		switch r.Type {
		case model.InteractionLike:
			agg.UserInteraction.Like = true
		case model.InteractionDislike:
			agg.UserInteraction.Dislike = true
		}
		out[r.VideoID] = agg
	}
	return out
}

// enrich attaches aggregates to videos, preserving order.
func (s *AggregateService) enrich(ctx context.Context, videos []model.Video, userID string) ([]model.VideoResponse, error) {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	aggs, err := s.GetAggregates(ctx, ids, userID)
	if err != nil {
		return nil, err
	}

	out := make([]model.VideoResponse, len(videos))
	for i, v := range videos {
		out[i] = toResponse(v, aggs[v.ID], userID != "")
	}
	return out, nil
}

func toResponse(v model.Video, agg model.Aggregate, withUser bool) model.VideoResponse {
	resp := model.VideoResponse{
		Video:    v,
		Likes:    agg.Likes,
		Dislikes: agg.Dislikes,
		Views:    agg.Views,
	}
	if withUser {
		ui := agg.UserInteraction
		resp.UserInteraction = &ui
	}
	return resp
}
