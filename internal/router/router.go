package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vortex07x/steamsurf/internal/handler"
	"github.com/vortex07x/steamsurf/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Health *handler.HealthHandler
	Auth   *handler.AuthHandler
	Video  *handler.VideoHandler
	Admin  *handler.AdminHandler
}

// Options configures the cross-cutting parts of the route tree.
type Options struct {
	CORSOrigins   string
	Authenticator middleware.Authenticator
	// Gatherer serves /metrics when non-nil.
	Gatherer prometheus.Gatherer
	// UploadDir is served under /uploads when media is stored locally.
	UploadDir string
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, opts Options) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(opts.CORSOrigins))

	app.Get("/", h.Health.Info)
	app.Get("/health", h.Health.Health)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	if opts.Gatherer != nil {
		app.Get("/metrics", handler.MetricsHandler(opts.Gatherer))
	}
	if opts.UploadDir != "" {
		app.Get("/uploads/*", static.New(opts.UploadDir))
	}

	requireAuth := middleware.RequireAuth(opts.Authenticator)
	optionalAuth := middleware.OptionalAuth(opts.Authenticator)
	authLimit := middleware.NewAuthRateLimiter().Handler()
	interactionLimit := middleware.NewInteractionRateLimiter().Handler()

	api := app.Group("/api", middleware.NewAPIRateLimiter().Handler())

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authLimit, h.Auth.Register)
	auth.Post("/login", authLimit, h.Auth.Login)
	auth.Post("/forgot-password", authLimit, h.Auth.ForgotPassword)
	auth.Post("/verify-otp", authLimit, h.Auth.VerifyOTP)
	auth.Post("/reset-password", authLimit, h.Auth.ResetPassword)
	auth.Get("/me", requireAuth, h.Auth.Me)
	auth.Put("/mode", requireAuth, h.Auth.UpdateMode)
	auth.Put("/email", requireAuth, h.Auth.UpdateEmail)
	auth.Post("/logout", requireAuth, h.Auth.Logout)

	// Video routes. Static segments are registered before /:id.
	videos := api.Group("/videos")
	videos.Get("/", optionalAuth, h.Video.List)
	videos.Get("/trending", optionalAuth, h.Video.Trending)
	videos.Get("/tags", h.Video.Tags)
	videos.Get("/saved", requireAuth, h.Video.Saved)
	videos.Get("/history", requireAuth, h.Video.History)
	videos.Get("/:id", optionalAuth, h.Video.Get)
	videos.Get("/:id/stats", optionalAuth, h.Video.Stats)
	videos.Get("/:id/is-saved", requireAuth, h.Video.IsSaved)
	videos.Post("/:id/like", requireAuth, interactionLimit, h.Video.Like)
	videos.Post("/:id/dislike", requireAuth, interactionLimit, h.Video.Dislike)
	videos.Put("/:id/reaction", requireAuth, interactionLimit, h.Video.SetReaction)
	videos.Post("/:id/view", requireAuth, interactionLimit, h.Video.View)
	videos.Post("/:id/save", requireAuth, interactionLimit, h.Video.Save)
	videos.Delete("/:id/unsave", requireAuth, interactionLimit, h.Video.Unsave)

	// Admin routes
	admin := api.Group("/admin", requireAuth, middleware.AdminOnly())
	admin.Get("/users", h.Admin.ListUsers)
	admin.Put("/users/:id/role", h.Admin.UpdateUserRole)
	admin.Put("/users/:id/email", h.Admin.UpdateUserEmail)
	admin.Put("/users/:id/status", h.Admin.UpdateUserStatus)
	admin.Delete("/users/:id", h.Admin.DeleteUser)
	admin.Get("/videos", h.Admin.ListVideos)
	admin.Post("/videos/upload", h.Admin.UploadVideo)
	admin.Put("/videos/:id", h.Admin.UpdateVideo)
	admin.Delete("/videos/:id", h.Admin.DeleteVideo)
	admin.Get("/activity", h.Admin.Activity)
	admin.Delete("/activity/cleanup", h.Admin.Cleanup)
}
