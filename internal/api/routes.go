package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bilgisen/sevennews/internal/config"
	"github.com/bilgisen/sevennews/internal/i18n"
	"github.com/bilgisen/sevennews/internal/middleware"
	"github.com/bilgisen/sevennews/internal/web"
)

// NewApp creates the fiber app with the embedded views and error handler.
func NewApp(cfg *config.Config) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "sevennews",
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
		Views:        web.NewEngine(),
		// Form values outlive the request when a submit times out.
		Immutable: true,
		BodyLimit: int(cfg.MaxFileSize) + 1<<20,
	})
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h *Handlers, d Deps) {
	cfg := d.Config

	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Preferences(i18n.Defaults(cfg.DefaultLanguage, cfg.DefaultTheme)))

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   web.Static(),
		MaxAge: 3600,
	}))
	if d.UploadDir != "" {
		app.Static("/uploads", d.UploadDir, fiber.Static{MaxAge: 86400})
	}

	// JSON API
	api := app.Group("/api")
	api.Get("/health", h.HealthCheck)
	api.Get("/news", h.GetNews)
	api.Get("/news/:id", h.GetNewsByID)

	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	// Public pages
	app.Get("/", h.Home)
	app.Get("/videos", h.Videos)
	app.Get("/news/:id", h.NewsDetail)
	app.Get("/prefs/language", h.ToggleLanguage)
	app.Get("/prefs/theme", h.ToggleTheme)

	// Sign-in
	limiter := middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)
	app.Get("/admin/login", h.LoginPage)
	app.Post("/admin/login", limiter.Handler(h.LoginThrottled), h.Login)
	app.Post("/admin/logout", h.Logout)

	// Admin, session required
	adminGroup := app.Group("/admin", middleware.RequireSession(middleware.SessionConfig{
		Sessions: d.Sessions,
		Cookie:   cfg.SessionCookie,
	}))
	adminGroup.Get("", h.Dashboard)
	adminGroup.Get("/news/new", h.NewNews)
	adminGroup.Get("/news/:id/edit", h.EditNews)
	adminGroup.Post("/news", h.CreateNews)
	adminGroup.Post("/news/:id", h.UpdateNews)
	adminGroup.Get("/news/:id/delete", h.ConfirmDelete)
	adminGroup.Post("/news/:id/delete", h.DeleteNews)
	adminGroup.Post("/logout-all", h.LogoutAll)

	// 404 Handler
	app.Use(h.NotFound)
}
