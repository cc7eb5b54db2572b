package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/vortex07x/steamsurf/internal/middleware"
	"github.com/vortex07x/steamsurf/internal/model"
)

// Catalog is the read side of the video catalog.
type Catalog interface {
	List(ctx context.Context, f model.VideoFilter, userID string) (*model.VideoPage, error)
	Get(ctx context.Context, id, userID string, includeDrafts bool) (*model.VideoResponse, error)
	Trending(ctx context.Context, userID string) ([]model.VideoResponse, error)
	Tags(ctx context.Context) ([]string, error)
	Saved(ctx context.Context, userID string) ([]model.VideoResponse, error)
	History(ctx context.Context, userID string) ([]model.VideoResponse, error)
}

// Interactions records per-user engagement with a video.
type Interactions interface {
	ToggleReaction(ctx context.Context, userID, videoID string, kind model.Reaction) (*model.ReactionResponse, error)
	SetReaction(ctx context.Context, userID, videoID string, kind model.Reaction) (*model.ReactionResponse, error)
	RecordView(ctx context.Context, userID, videoID string) (*model.ViewResponse, error)
	Save(ctx context.Context, userID, videoID string) (*model.SaveResponse, error)
	Unsave(ctx context.Context, userID, videoID string) (*model.SaveResponse, error)
	IsSaved(ctx context.Context, userID, videoID string) (*model.SaveResponse, error)
	Stats(ctx context.Context, videoID, userID string) (*model.Aggregate, error)
}

type VideoHandler struct {
	catalog      Catalog
	interactions Interactions
}

func NewVideoHandler(catalog Catalog, interactions Interactions) *VideoHandler {
	return &VideoHandler{catalog: catalog, interactions: interactions}
}

// List handles GET /api/videos
func (h *VideoHandler) List(c fiber.Ctx) error {
	page, errMsg := middleware.ParsePositiveInt(c.Query("page"), 1, "page")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	limit, errMsg := middleware.ParsePositiveInt(c.Query("limit"), 12, "limit")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	search, errMsg := middleware.ValidateSearch(c.Query("search"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	category, errMsg := middleware.ValidateCategory(c.Query("category"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	tags, errMsg := middleware.ParseTagList(c.Query("tags"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	sortBy, order, errMsg := middleware.ValidateSort(c.Query("sortBy"), c.Query("order"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}

	result, err := h.catalog.List(c.Context(), model.VideoFilter{
		PublishedOnly: true,
		Search:        search,
		Category:      category,
		Tags:          tags,
		SortBy:        sortBy,
		Order:         order,
		Page:          page,
		Limit:         limit,
	}, middleware.UserID(c))
	if err != nil {
		return fail(c, err, "Error fetching videos")
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       result.Items,
		"pagination": result.Pagination,
	})
}

// Get handles GET /api/videos/:id
func (h *VideoHandler) Get(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "video id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	u := middleware.CurrentUser(c)
	v, err := h.catalog.Get(c.Context(), id, middleware.UserID(c), u != nil && u.IsAdmin())
	if err != nil {
		return fail(c, err, "Error fetching video")
	}
	return ok(c, fiber.StatusOK, "", v)
}

// Trending handles GET /api/videos/trending
func (h *VideoHandler) Trending(c fiber.Ctx) error {
	videos, err := h.catalog.Trending(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err, "Error fetching trending videos")
	}
	return ok(c, fiber.StatusOK, "", videos)
}

// Tags handles GET /api/videos/tags
func (h *VideoHandler) Tags(c fiber.Ctx) error {
	tags, err := h.catalog.Tags(c.Context())
	if err != nil {
		return fail(c, err, "Error fetching tags")
	}
	return ok(c, fiber.StatusOK, "", tags)
}

// Saved handles GET /api/videos/saved
func (h *VideoHandler) Saved(c fiber.Ctx) error {
	videos, err := h.catalog.Saved(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err, "Error fetching saved videos")
	}
	return ok(c, fiber.StatusOK, "", videos)
}

// History handles GET /api/videos/history
func (h *VideoHandler) History(c fiber.Ctx) error {
	videos, err := h.catalog.History(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err, "Error fetching watch history")
	}
	return ok(c, fiber.StatusOK, "", videos)
}

// Stats handles GET /api/videos/:id/stats
func (h *VideoHandler) Stats(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "video id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	agg, err := h.interactions.Stats(c.Context(), id, middleware.UserID(c))
	if err != nil {
		return fail(c, err, "Error fetching video stats")
	}
	return ok(c, fiber.StatusOK, "", agg)
}

// Like handles POST /api/videos/:id/like
func (h *VideoHandler) Like(c fiber.Ctx) error {
	return h.toggle(c, model.ReactionLike)
}

// Dislike handles POST /api/videos/:id/dislike
func (h *VideoHandler) Dislike(c fiber.Ctx) error {
	return h.toggle(c, model.ReactionDislike)
}

func (h *VideoHandler) toggle(c fiber.Ctx, kind model.Reaction) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "video id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	resp, err := h.interactions.ToggleReaction(c.Context(), middleware.UserID(c), id, kind)
	if err != nil {
		return fail(c, err, "Error updating reaction")
	}
	countReaction(resp)
	return ok(c, fiber.StatusOK, reactionMessage(kind, resp), resp)
}

func reactionMessage(kind model.Reaction, r *model.ReactionResponse) string {
	switch {
	case kind == model.ReactionLike && r.UserLiked:
		return "Video liked"
	case kind == model.ReactionLike:
		return "Like removed"
	case r.UserDisliked:
		return "Video disliked"
	default:
		return "Dislike removed"
	}
}

// countReaction records a reaction that is present after the change.
func countReaction(r *model.ReactionResponse) {
	switch {
	case r.UserLiked:
		countInteraction(model.InteractionLike)
	case r.UserDisliked:
		countInteraction(model.InteractionDislike)
	}
}

// SetReaction handles PUT /api/videos/:id/reaction
func (h *VideoHandler) SetReaction(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "video id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	var req model.ReactionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	if req.Reaction == nil {
		return badRequest(c, "reaction is required")
	}
	resp, err := h.interactions.SetReaction(c.Context(), middleware.UserID(c), id, *req.Reaction)
	if err != nil {
		return fail(c, err, "Error updating reaction")
	}
	countReaction(resp)
	return ok(c, fiber.StatusOK, "Reaction updated", resp)
}

// View handles POST /api/videos/:id/view
func (h *VideoHandler) View(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "video id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	resp, err := h.interactions.RecordView(c.Context(), middleware.UserID(c), id)
	if err != nil {
		return fail(c, err, "Error incrementing view")
	}
	countInteraction(model.InteractionView)
	return ok(c, fiber.StatusOK, "", resp)
}

// Save handles POST /api/videos/:id/save
func (h *VideoHandler) Save(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "video id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	resp, err := h.interactions.Save(c.Context(), middleware.UserID(c), id)
	if err != nil {
		return fail(c, err, "Error saving video")
	}
	return ok(c, fiber.StatusOK, "Video saved successfully", resp)
}

// Unsave handles DELETE /api/videos/:id/unsave
func (h *VideoHandler) Unsave(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "video id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	resp, err := h.interactions.Unsave(c.Context(), middleware.UserID(c), id)
	if err != nil {
		return fail(c, err, "Error removing saved video")
	}
	return ok(c, fiber.StatusOK, "Video removed from saved list", resp)
}

// IsSaved handles GET /api/videos/:id/is-saved
func (h *VideoHandler) IsSaved(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "video id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	resp, err := h.interactions.IsSaved(c.Context(), middleware.UserID(c), id)
	if err != nil {
		return fail(c, err, "Error checking saved status")
	}
	return ok(c, fiber.StatusOK, "", resp)
}
