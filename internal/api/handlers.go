package api

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/sevennews/internal/admin"
	"github.com/bilgisen/sevennews/internal/auth"
	"github.com/bilgisen/sevennews/internal/cache"
	"github.com/bilgisen/sevennews/internal/config"
	"github.com/bilgisen/sevennews/internal/feed"
	"github.com/bilgisen/sevennews/internal/logger"
	"github.com/bilgisen/sevennews/internal/metrics"
	"github.com/bilgisen/sevennews/internal/middleware"
	"github.com/bilgisen/sevennews/internal/repository"
	"github.com/bilgisen/sevennews/internal/web"
)

// Authenticator signs administrators in.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*auth.Identity, error)
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Config   *config.Config
	Repo     *repository.Repository
	Snapshot *feed.Snapshot
	Sessions cache.Sessions
	Auth     Authenticator
	Metrics  *metrics.Metrics
	// UploadDir is served at /uploads when images are stored locally.
	UploadDir string
}

type Handlers struct {
	config   *config.Config
	repo     *repository.Repository
	snapshot *feed.Snapshot
	editor   *admin.Editor
	sessions cache.Sessions
	auth     Authenticator
	metrics  *metrics.Metrics
	validate *validator.Validate
	started  time.Time
}

func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		config:   d.Config,
		repo:     d.Repo,
		snapshot: d.Snapshot,
		editor:   admin.NewEditor(d.Repo, d.Snapshot, d.Config.SubmitTimeout, d.Config.MaxFileSize),
		sessions: d.Sessions,
		auth:     d.Auth,
		metrics:  d.Metrics,
		validate: validator.New(),
		started:  time.Now(),
	}
}

// HealthCheck handles GET /api/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	status, code := "ok", fiber.StatusOK
	if err := h.repo.Ping(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("Health check failed")
		status, code = "degraded", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"store":  h.config.StoreBackend,
		"uptime": time.Since(h.started).Round(time.Second).String(),
		"time":   time.Now().Format(time.RFC3339),
	})
}

// GetNews handles GET /api/news
func (h *Handlers) GetNews(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "0"))
	if err != nil || limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be a non-negative integer")
	}

	news, err := h.repo.ListRecent(c.UserContext(), limit)
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error getting news")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to fetch news",
			"details": err.Error(),
		})
	}

	return c.JSON(news)
}

// GetNewsByID handles GET /api/news/:id
func (h *Handlers) GetNewsByID(c *fiber.Ctx) error {
	id := c.Params("id")

	news, err := h.repo.GetByID(c.UserContext(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "News not found",
		})
	}
	if err != nil {
		logger.Get().Error().Err(err).Str("id", id).Msg("Error getting news item")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to fetch news",
			"details": err.Error(),
		})
	}

	return c.JSON(news)
}

// render fills in the values the layout needs and renders page name.
func (h *Handlers) render(c *fiber.Ctx, status int, name, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Prefs"] = middleware.Prefs(c)
	data["Path"] = c.OriginalURL()
	data["Title"] = title
	data["Session"] = middleware.CurrentSession(c)
	return c.Status(status).Render(name, data, web.Layout)
}
