package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vortex07x/steamsurf/internal/model"
)

type SavedRepo struct {
	pool *pgxpool.Pool
}

func NewSavedRepo(pool *pgxpool.Pool) *SavedRepo {
	return &SavedRepo{pool: pool}
}

// Save bookmarks a video. The unique constraint on (video_id, user_id)
// turns a duplicate into ErrDuplicate even under concurrent requests.
func (r *SavedRepo) Save(ctx context.Context, userID, videoID string) (*model.SavedVideo, error) {
	var s model.SavedVideo
	err := r.pool.QueryRow(ctx, `
		INSERT INTO saved_videos (id, video_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, video_id, user_id, created_at`,
		uuid.NewString(), videoID, userID,
	).Scan(&s.ID, &s.VideoID, &s.UserID, &s.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Unsave removes a bookmark. Returns pgx.ErrNoRows if none exists.
func (r *SavedRepo) Unsave(ctx context.Context, userID, videoID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM saved_videos WHERE video_id = $1 AND user_id = $2`, videoID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IsSaved reports whether the pair is bookmarked.
func (r *SavedRepo) IsSaved(ctx context.Context, userID, videoID string) (bool, error) {
	var saved bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM saved_videos WHERE video_id = $1 AND user_id = $2)`,
		videoID, userID).Scan(&saved)
	return saved, err
}

// ListByUser returns the user's bookmarks of published videos, newest first.
func (r *SavedRepo) ListByUser(ctx context.Context, userID string) ([]model.SavedVideo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.video_id, s.user_id, s.created_at
		FROM saved_videos s
		JOIN videos v ON v.id = s.video_id AND v.is_published = TRUE
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.SavedVideo])
}
