package api

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/sevennews/internal/content"
	"github.com/bilgisen/sevennews/internal/i18n"
	"github.com/bilgisen/sevennews/internal/logger"
	"github.com/bilgisen/sevennews/internal/middleware"
	"github.com/bilgisen/sevennews/internal/models"
	"github.com/bilgisen/sevennews/internal/repository"
)

const prefCookieAge = 365 * 24 * time.Hour

// feedItems loads the snapshot; a failure is logged and reported through the
// second result so the page can show its retry banner.
func (h *Handlers) feedItems(c *fiber.Ctx) ([]models.NewsItem, bool) {
	items, err := h.snapshot.Items(c.UserContext())
	if err != nil {
		logger.Get().Error().
			Err(err).
			Str("path", c.Path()).
			Msg("Error loading news feed")
		return nil, false
	}
	return items, true
}

// Home handles GET /
func (h *Handlers) Home(c *fiber.Ctx) error {
	lang := middleware.Prefs(c).Language
	items, ok := h.feedItems(c)

	status := fiber.StatusOK
	if !ok {
		status = fiber.StatusServiceUnavailable
	}
	feed := content.FilterFeed(items)
	return h.render(c, status, "home", "", fiber.Map{
		"Hero":      content.Hero(feed, lang),
		"Cards":     content.Cards(feed, lang),
		"Videos":    content.Cards(content.FilterVideos(items), lang),
		"LoadError": !ok,
	})
}

// Videos handles GET /videos
func (h *Handlers) Videos(c *fiber.Ctx) error {
	prefs := middleware.Prefs(c)
	items, ok := h.feedItems(c)

	status := fiber.StatusOK
	if !ok {
		status = fiber.StatusServiceUnavailable
	}
	return h.render(c, status, "videos", prefs.T("videos"), fiber.Map{
		"Videos":    content.Cards(content.FilterVideos(items), prefs.Language),
		"LoadError": !ok,
	})
}

// NewsDetail handles GET /news/:id
func (h *Handlers) NewsDetail(c *fiber.Ctx) error {
	prefs := middleware.Prefs(c)
	id := c.Params("id")

	item, err := h.repo.GetByID(c.UserContext(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return h.render(c, fiber.StatusNotFound, "not_found", prefs.T("newsNotFound"), nil)
	}
	if err != nil {
		return err
	}

	var related []content.Card
	if items, ok := h.feedItems(c); ok {
		if len(items) > content.RelatedWindow {
			items = items[:content.RelatedWindow]
		}
		related = content.Cards(content.Related(items, id), prefs.Language)
	}

	card := content.NewCard(*item, prefs.Language)
	return h.render(c, fiber.StatusOK, "detail", card.Title, fiber.Map{
		"Item":    &card,
		"Related": related,
	})
}

// NotFound renders the empty state for unknown pages.
func (h *Handlers) NotFound(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/api") {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	}
	return h.render(c, fiber.StatusNotFound, "not_found", "", nil)
}

// ToggleLanguage handles GET /prefs/language. ?to= picks a language,
// otherwise the current one is flipped.
func (h *Handlers) ToggleLanguage(c *fiber.Ctx) error {
	next := middleware.Prefs(c).Language.Other()
	if l, ok := i18n.ParseLanguage(c.Query("to")); ok {
		next = l
	}
	h.setPrefCookie(c, i18n.LanguageKey, string(next))
	return c.Redirect(safeBack(c.Query("back")), fiber.StatusSeeOther)
}

// ToggleTheme handles GET /prefs/theme.
func (h *Handlers) ToggleTheme(c *fiber.Ctx) error {
	next := middleware.Prefs(c).Theme.Other()
	if t, ok := i18n.ParseTheme(c.Query("to")); ok {
		next = t
	}
	h.setPrefCookie(c, i18n.ThemeKey, string(next))
	return c.Redirect(safeBack(c.Query("back")), fiber.StatusSeeOther)
}

func (h *Handlers) setPrefCookie(c *fiber.Ctx, name, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(prefCookieAge),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// safeBack keeps redirects on this site and drops preference overrides from
// the query so the new cookie takes effect.
func safeBack(back string) string {
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") || strings.Contains(back, `\`) {
		return "/"
	}
	u, err := url.Parse(back)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	q := u.Query()
	q.Del(i18n.LanguageKey)
	q.Del(i18n.ThemeKey)
	u.RawQuery = q.Encode()
	return u.RequestURI()
}
