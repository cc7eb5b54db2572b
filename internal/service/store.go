package service

import (
	"context"
	"time"

	"github.com/vortex07x/steamsurf/internal/model"
)

// UserStore is the persistence surface for accounts, implemented by
// repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
	TouchLastLogin(ctx context.Context, id string) (*model.User, error)
	UpdateMode(ctx context.Context, id string, mode model.Mode) (*model.User, error)
	UpdateEmail(ctx context.Context, id, email string) (*model.User, error)
	UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error)
	UpdateActive(ctx context.Context, id string, active bool) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

// VideoStore is implemented by repository.VideoRepo.
type VideoStore interface {
	Create(ctx context.Context, nv model.NewVideo) (*model.Video, error)
	FindByID(ctx context.Context, id string) (*model.Video, error)
	FindByIDs(ctx context.Context, ids []string, publishedOnly bool) ([]model.Video, error)
	List(ctx context.Context, f model.VideoFilter) ([]model.Video, int, error)
	ListAll(ctx context.Context) ([]model.Video, error)
	Trending(ctx context.Context, limit int) ([]model.Video, error)
	Tags(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, upd model.VideoUpdate) (*model.Video, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// InteractionStore is implemented by repository.InteractionRepo.
type InteractionStore interface {
	CountByVideos(ctx context.Context, videoIDs []string) ([]model.InteractionCount, error)
	UserReactions(ctx context.Context, userID string, videoIDs []string) ([]model.Interaction, error)
	ApplyReaction(ctx context.Context, userID, videoID string, next func(model.ReactionState) model.ReactionState) (model.ReactionState, error)
	InsertView(ctx context.Context, userID, videoID string) error
	DeleteViewsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	RecentActivity(ctx context.Context, limit int) ([]model.Activity, error)
	ViewHistory(ctx context.Context, userID string, limit int) ([]model.ViewedVideo, error)
}

// SavedStore is implemented by repository.SavedRepo.
type SavedStore interface {
	Save(ctx context.Context, userID, videoID string) (*model.SavedVideo, error)
	Unsave(ctx context.Context, userID, videoID string) error
	IsSaved(ctx context.Context, userID, videoID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.SavedVideo, error)
}
