package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/vortex07x/steamsurf/internal/model"
	"github.com/vortex07x/steamsurf/internal/storage"
	"github.com/vortex07x/steamsurf/pkg/hash"
)

const (
	ActivityLimit        = 1000
	MaxTitleLength       = 500
	MaxDescriptionLength = 2000
)

// MediaFile is an uploaded file staged on local disk.
type MediaFile struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64
}

// UploadInput is the metadata and files of an admin upload.
type UploadInput struct {
	Title       string
	Description string
	Category    model.Category
	Tags        []string
	Duration    int
	UploadedBy  string
	Video       MediaFile
	Thumbnail   *MediaFile
}

// AdminService implements the admin-only user and video operations.
type AdminService struct {
	users        UserStore
	videos       VideoStore
	interactions InteractionStore
	aggregates   *AggregateService
	media        storage.MediaStore
	cache        *CacheService
	cleanup      *CleanupService
	defaultThumb string
}

func NewAdminService(
	users UserStore,
	videos VideoStore,
	interactions InteractionStore,
	aggregates *AggregateService,
	media storage.MediaStore,
	cache *CacheService,
	cleanup *CleanupService,
	defaultThumb string,
) *AdminService {
	if cache == nil {
		cache = &CacheService{}
	}
	return &AdminService{
		users:        users,
		videos:       videos,
		interactions: interactions,
		aggregates:   aggregates,
		media:        media,
		cache:        cache,
		cleanup:      cleanup,
		defaultThumb: defaultThumb,
	}
}

// ListUsers returns every account, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// UpdateUserRole changes another account's role.
func (s *AdminService) UpdateUserRole(ctx context.Context, actorID, targetID string, role model.Role) (*model.User, error) {
	if !model.ValidRoles[role] {
		return nil, invalid(`Invalid role. Must be "user" or "admin"`)
	}
	if actorID == targetID {
		return nil, newError(ErrCannotModifySelf, "Cannot change your own role")
	}
	u, err := s.users.UpdateRole(ctx, targetID, role)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	log.Info().Str("actor", actorID).Str("target", targetID).Str("role", string(role)).Msg("user role changed")
	return u, nil
}

// UpdateUserEmail changes any account's email.
func (s *AdminService) UpdateUserEmail(ctx context.Context, targetID, email string) (*model.User, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	u, err := s.users.UpdateEmail(ctx, targetID, email)
	if err != nil {
		return nil, notFound(conflict(err, "Email already in use"), "User not found")
	}
	return u, nil
}

// UpdateUserStatus activates or deactivates another account.
func (s *AdminService) UpdateUserStatus(ctx context.Context, actorID, targetID string, active bool) (*model.User, error) {
	if actorID == targetID {
		return nil, newError(ErrCannotModifySelf, "Cannot change your own status")
	}
	u, err := s.users.UpdateActive(ctx, targetID, active)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return u, nil
}

// DeleteUser removes a non-admin account other than the caller's.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return newError(ErrCannotModifySelf, "Cannot delete your own account")
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return notFound(err, "User not found")
	}
	if target.IsAdmin() {
		return newError(ErrForbidden, "Cannot delete admin users")
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		return notFound(err, "User not found")
	}
	log.Info().Str("actor", actorID).Str("target", targetID).Msg("user deleted")
	return nil
}

// ListVideos returns every video, including unpublished ones, with counts.
func (s *AdminService) ListVideos(ctx context.Context) ([]model.VideoResponse, error) {
	videos, err := s.videos.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.aggregates.enrich(ctx, videos, "")
}

// UploadVideo stores the media files and records the video. If the record
// cannot be written, the stored objects are removed again.
func (s *AdminService) UploadVideo(ctx context.Context, in UploadInput) (*model.Video, error) {
	nv, err := s.validateUpload(in)
	if err != nil {
		return nil, err
	}

	seed := uuid.NewString()
	videoKey := hash.ObjectKey("videos", filepath.Ext(in.Video.Filename), seed, in.Video.Filename, time.Now().Format(time.RFC3339Nano))
	videoURL, err := s.putFile(ctx, videoKey, in.Video)
	if err != nil {
		log.Error().Err(err).Str("store", s.media.Name()).Msg("video upload failed")
		return nil, newError(ErrUpstream, "Failed to upload video")
	}
	nv.VideoURL = videoURL
	nv.StorageID = videoKey

	if in.Thumbnail != nil {
		thumbKey := hash.ObjectKey("thumbnails", filepath.Ext(in.Thumbnail.Filename), seed, in.Thumbnail.Filename)
		thumbURL, err := s.putFile(ctx, thumbKey, *in.Thumbnail)
		if err != nil {
			log.Error().Err(err).Str("store", s.media.Name()).Msg("thumbnail upload failed")
			s.deleteMedia(ctx, videoKey)
			return nil, newError(ErrUpstream, "Failed to upload thumbnail")
		}
		nv.ThumbnailURL = thumbURL
		nv.ThumbnailKey = thumbKey
	}

	v, err := s.videos.Create(ctx, nv)
	if err != nil {
		s.deleteMedia(ctx, nv.StorageID)
		s.deleteMedia(ctx, nv.ThumbnailKey)
		return nil, err
	}
	s.cache.InvalidateCatalog(ctx)
	log.Info().Str("video_id", v.ID).Str("store", s.media.Name()).Msg("video uploaded")
	return v, nil
}

func (s *AdminService) validateUpload(in UploadInput) (model.NewVideo, error) {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	switch {
	case in.Video.Path == "":
		return model.NewVideo{}, invalid("Please upload a video file")
	case !strings.HasPrefix(in.Video.ContentType, "video/"):
		return model.NewVideo{}, invalid("Only video files are allowed")
	case in.Thumbnail != nil && !strings.HasPrefix(in.Thumbnail.ContentType, "image/"):
		return model.NewVideo{}, invalid("Thumbnail must be an image")
	case title == "" || desc == "":
		return model.NewVideo{}, invalid("Title and description are required")
	case len(title) > MaxTitleLength:
		return model.NewVideo{}, invalid("Title must be between 1 and 500 characters")
	case len(desc) > MaxDescriptionLength:
		return model.NewVideo{}, invalid("Description cannot exceed 2000 characters")
	case in.Duration < 0:
		return model.NewVideo{}, invalid("Duration cannot be negative")
	}

	category := in.Category
	if category == "" {
		category = model.CategoryOther
	}
	if !model.ValidCategories[category] {
		return model.NewVideo{}, invalid("Invalid category")
	}
	uploadedBy := in.UploadedBy
	if uploadedBy == "" {
		uploadedBy = "Admin"
	}

	return model.NewVideo{
		Title:        title,
		Description:  desc,
		Category:     category,
		Tags:         NormalizeTags(in.Tags),
		Duration:     in.Duration,
		ThumbnailURL: s.defaultThumb,
		UploadedBy:   uploadedBy,
	}, nil
}

func (s *AdminService) putFile(ctx context.Context, key string, f MediaFile) (string, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return "", err
	}
	defer fh.Close()

	size := f.Size
	if size <= 0 {
		if fi, err := fh.Stat(); err == nil {
			size = fi.Size()
		}
	}
	return s.media.Put(ctx, key, fh, size, f.ContentType)
}

// UpdateVideo edits video metadata.
func (s *AdminService) UpdateVideo(ctx context.Context, id string, upd model.VideoUpdate) (*model.Video, error) {
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		if t == "" || len(t) > MaxTitleLength {
			return nil, invalid("Title must be between 1 and 500 characters")
		}
		upd.Title = &t
	}
	if upd.Description != nil {
		d := strings.TrimSpace(*upd.Description)
		if d == "" || len(d) > MaxDescriptionLength {
			return nil, invalid("Description must be between 1 and 2000 characters")
		}
		upd.Description = &d
	}
	if upd.Category != nil && !model.ValidCategories[*upd.Category] {
		return nil, invalid("Invalid category")
	}
	if upd.Tags != nil {
		tags := NormalizeTags(*upd.Tags)
		upd.Tags = &tags
	}

	v, err := s.videos.Update(ctx, id, upd)
	if err != nil {
		return nil, notFound(err, "Video not found")
	}
	s.cache.InvalidateCatalog(ctx)
	return v, nil
}

// DeleteVideo removes stored media (best effort) and then the record. The
// record's interactions and saves cascade.
func (s *AdminService) DeleteVideo(ctx context.Context, id string) error {
	v, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "Video not found")
	}

	if v.StorageID != nil {
		s.deleteMedia(ctx, *v.StorageID)
	}
	if v.ThumbnailKey != nil {
		s.deleteMedia(ctx, *v.ThumbnailKey)
	}

	if err := s.videos.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return newError(ErrNotFound, "Video not found")
		}
		return err
	}
	s.cache.InvalidateCatalog(ctx)
	log.Info().Str("video_id", id).Msg("video deleted")
	return nil
}

// Activity returns the most recent interactions with user and video names.
func (s *AdminService) Activity(ctx context.Context) ([]model.Activity, error) {
	return s.interactions.RecentActivity(ctx, ActivityLimit)
}

// Cleanup prunes expired view events.
func (s *AdminService) Cleanup(ctx context.Context) (*model.CleanupResult, error) {
	return s.cleanup.Run(ctx)
}

func (s *AdminService) deleteMedia(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("media delete failed, continuing")
	}
}
