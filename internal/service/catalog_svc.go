package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vortex07x/steamsurf/internal/model"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	TrendingLimit   = 10
	HistoryLimit    = 50
)

// CatalogService serves the public video catalog.
type CatalogService struct {
	videos       VideoStore
	interactions InteractionStore
	saved        SavedStore
	aggregates   *AggregateService
	cache        *CacheService
}

func NewCatalogService(videos VideoStore, interactions InteractionStore, saved SavedStore, aggregates *AggregateService, cache *CacheService) *CatalogService {
	if cache == nil {
		cache = &CacheService{}
	}
	return &CatalogService{
		videos:       videos,
		interactions: interactions,
		saved:        saved,
		aggregates:   aggregates,
		cache:        cache,
	}
}

// NormalizeFilter applies paging defaults and canonical tag and category forms.
func NormalizeFilter(f model.VideoFilter) model.VideoFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if strings.EqualFold(string(f.Category), "all") {
		f.Category = ""
	}
	f.Tags = NormalizeTags(f.Tags)
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// NormalizeTags trims, lower-cases and de-duplicates tags, dropping empties.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// List returns one page of published videos with aggregates.
func (s *CatalogService) List(ctx context.Context, f model.VideoFilter, userID string) (*model.VideoPage, error) {
	f = NormalizeFilter(f)
	f.PublishedOnly = true

	videos, total, err := s.videos.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items, err := s.aggregates.enrich(ctx, videos, userID)
	if err != nil {
		return nil, err
	}
	return &model.VideoPage{
		Items:      items,
		Pagination: model.NewPagination(f.Page, f.Limit, total),
	}, nil
}

// Get returns a single video with its aggregate. Unpublished videos are
// reported as not found unless includeDrafts is set (admin callers).
func (s *CatalogService) Get(ctx context.Context, id, userID string, includeDrafts bool) (*model.VideoResponse, error) {
	v, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Video not found")
	}
	if !v.IsPublished && !includeDrafts {
		return nil, newError(ErrNotFound, "Video not found")
	}
	items, err := s.aggregates.enrich(ctx, []model.Video{*v}, userID)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Trending returns the most viewed published videos. The ranking is cached
// briefly; aggregates are always fresh.
func (s *CatalogService) Trending(ctx context.Context, userID string) ([]model.VideoResponse, error) {
	var videos []model.Video
	hit, err := s.cache.GetJSON(ctx, TrendingCacheKey, &videos)
	if err != nil {
		log.Warn().Err(err).Msg("cache: trending read failed")
	}
	if !hit {
		videos, err = s.videos.Trending(ctx, TrendingLimit)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetJSON(ctx, TrendingCacheKey, videos, TrendingCacheTTL); err != nil {
			log.Warn().Err(err).Msg("cache: trending write failed")
		}
	}
	return s.aggregates.enrich(ctx, videos, userID)
}

// Tags returns the distinct lower-cased tags of published videos.
func (s *CatalogService) Tags(ctx context.Context) ([]string, error) {
	var tags []string
	hit, err := s.cache.GetJSON(ctx, TagsCacheKey, &tags)
	if err != nil {
		log.Warn().Err(err).Msg("cache: tags read failed")
	}
	if hit {
		return tags, nil
	}

	tags, err = s.videos.Tags(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, TagsCacheKey, tags, TagsCacheTTL); err != nil {
		log.Warn().Err(err).Msg("cache: tags write failed")
	}
	return tags, nil
}

// Saved returns the caller's bookmarked published videos, newest save first.
func (s *CatalogService) Saved(ctx context.Context, userID string) ([]model.VideoResponse, error) {
	saves, err := s.saved.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(saves))
	for i, sv := range saves {
		ids[i] = sv.VideoID
	}

	items, err := s.ordered(ctx, ids, userID)
	if err != nil {
		return nil, err
	}
	savedAt := make(map[string]*model.SavedVideo, len(saves))
	for i := range saves {
		savedAt[saves[i].VideoID] = &saves[i]
	}
	for i := range items {
		if sv, ok := savedAt[items[i].ID]; ok {
			t := sv.CreatedAt
			items[i].SavedAt = &t
		}
	}
	return items, nil
}

// History returns the distinct published videos the caller has viewed,
// most recent first.
func (s *CatalogService) History(ctx context.Context, userID string) ([]model.VideoResponse, error) {
	views, err := s.interactions.ViewHistory(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(views))
	viewedAt := make(map[string]model.ViewedVideo, len(views))
	for i, v := range views {
		ids[i] = v.VideoID
		viewedAt[v.VideoID] = v
	}

	items, err := s.ordered(ctx, ids, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if v, ok := viewedAt[items[i].ID]; ok {
			t := v.ViewedAt
			items[i].ViewedAt = &t
		}
	}
	return items, nil
}

// ordered loads published videos by id and returns them in the order of
// ids, skipping ids that no longer resolve.
func (s *CatalogService) ordered(ctx context.Context, ids []string, userID string) ([]model.VideoResponse, error) {
	if len(ids) == 0 {
		return []model.VideoResponse{}, nil
	}
	videos, err := s.videos.FindByIDs(ctx, ids, true)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	sorted := make([]model.Video, 0, len(videos))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			sorted = append(sorted, v)
		}
	}
	return s.aggregates.enrich(ctx, sorted, userID)
}
