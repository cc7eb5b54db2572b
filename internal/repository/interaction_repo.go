package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vortex07x/steamsurf/internal/model"
)

type InteractionRepo struct {
	pool *pgxpool.Pool
}

func NewInteractionRepo(pool *pgxpool.Pool) *InteractionRepo {
	return &InteractionRepo{pool: pool}
}

// CountByVideos tallies interaction rows grouped by (video, type).
func (r *InteractionRepo) CountByVideos(ctx context.Context, videoIDs []string) ([]model.InteractionCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT video_id, type, COUNT(*)
		FROM interactions
		WHERE video_id = ANY($1::uuid[])
		GROUP BY video_id, type`, videoIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []model.InteractionCount
	for rows.Next() {
		var c model.InteractionCount
		if err := rows.Scan(&c.VideoID, &c.Type, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// UserReactions returns the user's like/dislike rows among the given videos.
func (r *InteractionRepo) UserReactions(ctx context.Context, userID string, videoIDs []string) ([]model.Interaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, video_id, user_id, type, created_at
		FROM interactions
		WHERE user_id = $1 AND video_id = ANY($2::uuid[]) AND type IN ('like', 'dislike')`,
		userID, videoIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Interaction
	for rows.Next() {
		var i model.Interaction
		if err := rows.Scan(&i.ID, &i.VideoID, &i.UserID, &i.Type, &i.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// ApplyReaction reads the user's current reaction on a video, computes the
// next state with next, and writes the difference, all in one transaction.
// A transaction-scoped advisory lock on the (user, video) pair serializes
// concurrent toggles so the read-modify-write cannot interleave.
func (r *InteractionRepo) ApplyReaction(ctx context.Context, userID, videoID string, next func(model.ReactionState) model.ReactionState) (model.ReactionState, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.ReactionState{}, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, userID+":"+videoID)
	if err != nil {
		return model.ReactionState{}, err
	}

	var current model.ReactionState
	rows, err := tx.Query(ctx, `
		SELECT type FROM interactions
		WHERE video_id = $1 AND user_id = $2 AND type IN ('like', 'dislike')`,
		videoID, userID)
	if err != nil {
		return model.ReactionState{}, err
	}
	for rows.Next() {
		var t model.InteractionType
		if err := rows.Scan(&t); err != nil {
			rows.Close()
			return model.ReactionState{}, err
		}
		switch t {
		case model.InteractionLike:
			current.Like = true
		case model.InteractionDislike:
			current.Dislike = true
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return model.ReactionState{}, err
	}

	target := next(current)
	if target == current {
		return current, tx.Commit(ctx)
	}

	// Remove whatever reaction exists, then insert the target one.
	_, err = tx.Exec(ctx, `
		DELETE FROM interactions
		WHERE video_id = $1 AND user_id = $2 AND type IN ('like', 'dislike')`,
		videoID, userID)
	if err != nil {
		return model.ReactionState{}, err
	}

	if kind, ok := ReactionType(target); ok {
		_, err = tx.Exec(ctx, `
			INSERT INTO interactions (id, video_id, user_id, type)
			VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), videoID, userID, kind)
		if err != nil {
			return model.ReactionState{}, translate(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.ReactionState{}, err
	}
	return target, nil
}

// ReactionType maps a reaction state to the row type that represents it.
func ReactionType(s model.ReactionState) (model.InteractionType, bool) {
	switch {
	case s.Like:
		return model.InteractionLike, true
	case s.Dislike:
		return model.InteractionDislike, true
	}
	return "", false
}

// InsertView appends a view event.
func (r *InteractionRepo) InsertView(ctx context.Context, userID, videoID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO interactions (id, video_id, user_id, type)
		VALUES ($1, $2, $3, 'view')`,
		uuid.NewString(), videoID, userID)
	return translate(err)
}

// DeleteViewsBefore removes view events older than cutoff and returns the count.
func (r *InteractionRepo) DeleteViewsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM interactions
		WHERE type = 'view' AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RecentActivity returns the newest interactions with display names.
func (r *InteractionRepo) RecentActivity(ctx context.Context, limit int) ([]model.Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.type, i.created_at,
		       COALESCE(u.username, 'Unknown'), COALESCE(u.email, ''),
		       COALESCE(v.title, 'Unknown Video'), i.video_id, i.user_id
		FROM interactions i
		LEFT JOIN users u ON u.id = i.user_id
		LEFT JOIN videos v ON v.id = i.video_id
		ORDER BY i.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Activity, error) {
		var a model.Activity
		err := row.Scan(&a.ID, &a.Type, &a.CreatedAt, &a.Username, &a.UserEmail, &a.VideoTitle, &a.VideoID, &a.UserID)
		return a, err
	})
}

// ViewHistory returns the distinct published videos a user has viewed,
// most recent view first.
func (r *InteractionRepo) ViewHistory(ctx context.Context, userID string, limit int) ([]model.ViewedVideo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.video_id, MAX(i.created_at) AS viewed_at
		FROM interactions i
		JOIN videos v ON v.id = i.video_id AND v.is_published = TRUE
		WHERE i.user_id = $1 AND i.type = 'view'
		GROUP BY i.video_id
		ORDER BY viewed_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ViewedVideo, error) {
		var v model.ViewedVideo
		err := row.Scan(&v.VideoID, &v.ViewedAt)
		return v, err
	})
}
