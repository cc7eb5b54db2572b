package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vortex07x/steamsurf/internal/middleware"
	"github.com/vortex07x/steamsurf/internal/model"
	"github.com/vortex07x/steamsurf/internal/service"
)

// Administration is the admin-only surface.
type Administration interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserRole(ctx context.Context, actorID, targetID string, role model.Role) (*model.User, error)
	UpdateUserEmail(ctx context.Context, targetID, email string) (*model.User, error)
	UpdateUserStatus(ctx context.Context, actorID, targetID string, active bool) (*model.User, error)
	DeleteUser(ctx context.Context, actorID, targetID string) error
	ListVideos(ctx context.Context) ([]model.VideoResponse, error)
	UploadVideo(ctx context.Context, in service.UploadInput) (*model.Video, error)
	UpdateVideo(ctx context.Context, id string, upd model.VideoUpdate) (*model.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	Activity(ctx context.Context) ([]model.Activity, error)
	Cleanup(ctx context.Context) (*model.CleanupResult, error)
}

type AdminHandler struct {
	svc       Administration
	maxUpload int64
	tempDir   string
}

func NewAdminHandler(svc Administration, maxUploadBytes int64) *AdminHandler {
	return &AdminHandler{svc: svc, maxUpload: maxUploadBytes, tempDir: os.TempDir()}
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(c fiber.Ctx) error {
	users, err := h.svc.ListUsers(c.Context())
	if err != nil {
		return fail(c, err, "Error fetching users")
	}
	return ok(c, fiber.StatusOK, "", users)
}

// UpdateUserRole handles PUT /api/admin/users/:id/role
func (h *AdminHandler) UpdateUserRole(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "user id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	var req model.RoleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	u, err := h.svc.UpdateUserRole(c.Context(), middleware.UserID(c), id, req.Role)
	if err != nil {
		return fail(c, err, "Error updating user role")
	}
	return ok(c, fiber.StatusOK, "User role updated to "+string(u.Role), u)
}

// UpdateUserEmail handles PUT /api/admin/users/:id/email
func (h *AdminHandler) UpdateUserEmail(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "user id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	var req model.EmailRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	u, err := h.svc.UpdateUserEmail(c.Context(), id, req.Email)
	if err != nil {
		return fail(c, err, "Error updating user email")
	}
	return ok(c, fiber.StatusOK, "User email updated successfully", u)
}

// UpdateUserStatus handles PUT /api/admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "user id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	var req model.StatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	if req.IsActive == nil {
		return badRequest(c, "isActive is required")
	}
	u, err := h.svc.UpdateUserStatus(c.Context(), middleware.UserID(c), id, *req.IsActive)
	if err != nil {
		return fail(c, err, "Error updating user status")
	}
	msg := "User deactivated"
	if u.IsActive {
		msg = "User activated"
	}
	return ok(c, fiber.StatusOK, msg, u)
}

// DeleteUser handles DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "user id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	if err := h.svc.DeleteUser(c.Context(), middleware.UserID(c), id); err != nil {
		return fail(c, err, "Error deleting user")
	}
	return ok(c, fiber.StatusOK, "User deleted successfully", nil)
}

// ListVideos handles GET /api/admin/videos
func (h *AdminHandler) ListVideos(c fiber.Ctx) error {
	videos, err := h.svc.ListVideos(c.Context())
	if err != nil {
		return fail(c, err, "Error fetching videos")
	}
	return ok(c, fiber.StatusOK, "", videos)
}

// UploadVideo handles POST /api/admin/videos/upload (multipart).
func (h *AdminHandler) UploadVideo(c fiber.Ctx) error {
	videoFile, err := c.FormFile("video")
	if err != nil {
		return badRequest(c, "Please upload a video file")
	}
	if videoFile.Size > h.maxUpload {
		return badRequest(c, fmt.Sprintf("Video exceeds the %d MB limit", h.maxUpload/(1024*1024)))
	}

	tags, errMsg := middleware.ParseTagsField(c.FormValue("tags"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	duration := 0
	if raw := strings.TrimSpace(c.FormValue("duration")); raw != "" {
		if duration, err = strconv.Atoi(raw); err != nil {
			return badRequest(c, "duration must be a whole number of seconds")
		}
	}

	video, err := h.stage(c, videoFile)
	if err != nil {
		return fail(c, err, "Error staging upload")
	}
	defer removeStaged(video.Path)

	in := service.UploadInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    model.Category(strings.TrimSpace(c.FormValue("category"))),
		Tags:        tags,
		Duration:    duration,
		Video:       video,
	}
	if u := middleware.CurrentUser(c); u != nil {
		in.UploadedBy = u.Username
	}

	if thumbFile, err := c.FormFile("thumbnail"); err == nil {
		thumb, err := h.stage(c, thumbFile)
		if err != nil {
			return fail(c, err, "Error staging upload")
		}
		defer removeStaged(thumb.Path)
		in.Thumbnail = &thumb
	}

	v, err := h.svc.UploadVideo(c.Context(), in)
	if err != nil {
		return fail(c, err, "Error uploading video")
	}
	return ok(c, fiber.StatusCreated, "Video uploaded successfully", v)
}

// stage writes a multipart file to a temp path.
func (h *AdminHandler) stage(c fiber.Ctx, fh *multipart.FileHeader) (service.MediaFile, error) {
	path := filepath.Join(h.tempDir, "steamsurf-"+uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveFile(fh, path); err != nil {
		return service.MediaFile{}, err
	}
	return service.MediaFile{
		Path:        path,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
	}, nil
}

func removeStaged(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", path).Msg("temp file cleanup failed")
	}
}

// UpdateVideo handles PUT /api/admin/videos/:id
func (h *AdminHandler) UpdateVideo(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "video id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	var upd model.VideoUpdate
	if err := c.Bind().JSON(&upd); err != nil {
		return invalidBody(c)
	}
	v, err := h.svc.UpdateVideo(c.Context(), id, upd)
	if err != nil {
		return fail(c, err, "Error updating video")
	}
	return ok(c, fiber.StatusOK, "Video updated successfully", v)
}

// DeleteVideo handles DELETE /api/admin/videos/:id
func (h *AdminHandler) DeleteVideo(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID(c.Params("id"), "video id")
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	if err := h.svc.DeleteVideo(c.Context(), id); err != nil {
		return fail(c, err, "Error deleting video")
	}
	return ok(c, fiber.StatusOK, "Video deleted successfully", nil)
}

// Activity handles GET /api/admin/activity
func (h *AdminHandler) Activity(c fiber.Ctx) error {
	rows, err := h.svc.Activity(c.Context())
	if err != nil {
		return fail(c, err, "Error fetching activity")
	}
	return ok(c, fiber.StatusOK, "", rows)
}

// Cleanup handles DELETE /api/admin/activity/cleanup
func (h *AdminHandler) Cleanup(c fiber.Ctx) error {
	res, err := h.svc.Cleanup(c.Context())
	if err != nil {
		return fail(c, err, "Error cleaning up activity")
	}
	return ok(c, fiber.StatusOK, fmt.Sprintf("Deleted %d view records", res.DeletedCount), res)
}
