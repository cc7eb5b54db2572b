package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vortex07x/steamsurf/internal/model"
)

const videoColumns = `v.id, v.title, v.description, v.video_url, v.thumbnail_url, v.storage_id, v.thumbnail_key,
	v.duration, v.category, v.tags, v.is_published, v.uploaded_by, v.created_at, v.updated_at`

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

func scanVideo(row pgx.Row) (*model.Video, error) {
	var v model.Video
	err := row.Scan(
		&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL, &v.StorageID, &v.ThumbnailKey,
		&v.Duration, &v.Category, &v.Tags, &v.IsPublished, &v.UploadedBy, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	return &v, nil
}

func collectVideos(rows pgx.Rows) ([]model.Video, error) {
	defer rows.Close()

	videos := []model.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

// Create inserts a new video record.
func (r *VideoRepo) Create(ctx context.Context, nv model.NewVideo) (*model.Video, error) {
	query := `
		INSERT INTO videos AS v (id, title, description, video_url, thumbnail_url, storage_id, thumbnail_key,
		                         duration, category, tags, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11)
		RETURNING ` + videoColumns

	tags := nv.Tags
	if tags == nil {
		tags = []string{}
	}
	v, err := scanVideo(r.pool.QueryRow(ctx, query,
		uuid.NewString(), nv.Title, nv.Description, nv.VideoURL, nv.ThumbnailURL, nv.StorageID, nv.ThumbnailKey,
		nv.Duration, nv.Category, tags, nv.UploadedBy))
	if err != nil {
		return nil, translate(err)
	}
	return v, nil
}

// FindByID returns a single video regardless of publish state.
func (r *VideoRepo) FindByID(ctx context.Context, id string) (*model.Video, error) {
	return scanVideo(r.pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos v WHERE v.id = $1`, id))
}

// FindByIDs returns the videos with the given IDs in no particular order.
func (r *VideoRepo) FindByIDs(ctx context.Context, ids []string, publishedOnly bool) ([]model.Video, error) {
	if len(ids) == 0 {
		return []model.Video{}, nil
	}
	query := `SELECT ` + videoColumns + ` FROM videos v WHERE v.id = ANY($1::uuid[])`
	if publishedOnly {
		query += ` AND v.is_published = TRUE`
	}
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// List returns one page of videos matching the filter and the total match count.
func (r *VideoRepo) List(ctx context.Context, f model.VideoFilter) ([]model.Video, int, error) {
	q := BuildListQuery(f)

	var total int
	if err := r.pool.QueryRow(ctx, q.CountSQL, q.CountArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.Video{}, 0, nil
	}

	rows, err := r.pool.Query(ctx, q.PageSQL, q.PageArgs...)
	if err != nil {
		return nil, 0, err
	}
	videos, err := collectVideos(rows)
	return videos, total, err
}

// ListAll returns every video including unpublished ones, newest first.
func (r *VideoRepo) ListAll(ctx context.Context) ([]model.Video, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+videoColumns+` FROM videos v ORDER BY v.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// Trending returns published videos ranked by the number of view events.
func (r *VideoRepo) Trending(ctx context.Context, limit int) ([]model.Video, error) {
	query := `
		SELECT ` + videoColumns + `
		FROM videos v
		JOIN (
			SELECT video_id, COUNT(*) AS view_count
			FROM interactions
			WHERE type = 'view'
			GROUP BY video_id
		) s ON s.video_id = v.id
		WHERE v.is_published = TRUE
		ORDER BY s.view_count DESC, v.created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// Tags returns the distinct lower-cased tags of published videos, sorted.
func (r *VideoRepo) Tags(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT lower(btrim(t)) AS tag
		FROM videos v, unnest(v.tags) AS t
		WHERE v.is_published = TRUE AND btrim(t) <> ''
		ORDER BY tag`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Update applies the non-nil fields of upd and returns the new record.
func (r *VideoRepo) Update(ctx context.Context, id string, upd model.VideoUpdate) (*model.Video, error) {
	sets := []string{}
	args := []any{id}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Tags != nil {
		add("tags", *upd.Tags)
	}
	if upd.IsPublished != nil {
		add("is_published", *upd.IsPublished)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE videos AS v SET ` + strings.Join(sets, ", ") + ` WHERE v.id = $1 RETURNING ` + videoColumns
	v, err := scanVideo(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err)
	}
	return v, nil
}

// Delete removes a video; interactions and saves cascade.
// Returns pgx.ErrNoRows if the video does not exist.
func (r *VideoRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Exists reports whether a video record exists.
func (r *VideoRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
