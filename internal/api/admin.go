package api

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/bilgisen/sevennews/internal/admin"
	"github.com/bilgisen/sevennews/internal/auth"
	"github.com/bilgisen/sevennews/internal/cache"
	"github.com/bilgisen/sevennews/internal/content"
	"github.com/bilgisen/sevennews/internal/logger"
	"github.com/bilgisen/sevennews/internal/middleware"
	"github.com/bilgisen/sevennews/internal/models"
	"github.com/bilgisen/sevennews/internal/repository"
)

type loginRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

var flashes = map[string]string{
	"created": "News item published.",
	"updated": "News item updated.",
	"deleted": "News item deleted.",
}

// LoginPage handles GET /admin/login
func (h *Handlers) LoginPage(c *fiber.Ctx) error {
	if token := c.Cookies(h.config.SessionCookie); token != "" {
		if _, err := h.sessions.Lookup(c.UserContext(), token); err == nil {
			return c.Redirect("/admin", fiber.StatusSeeOther)
		}
	}
	return h.renderLogin(c, fiber.StatusOK, "", "")
}

func (h *Handlers) renderLogin(c *fiber.Ctx, status int, email, msg string) error {
	return h.render(c, status, "login", middleware.Prefs(c).T("login"), fiber.Map{
		"Email": email,
		"Error": msg,
	})
}

// LoginThrottled renders the login page for a rate-limited attempt.
func (h *Handlers) LoginThrottled(c *fiber.Ctx) error {
	return h.renderLogin(c, fiber.StatusTooManyRequests, c.FormValue("email"),
		"Too many sign-in attempts. Please wait a moment and try again.")
}

// Login handles POST /admin/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return h.renderLogin(c, fiber.StatusBadRequest, "", "Invalid request.")
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validate.Struct(req); err != nil {
		return h.renderLogin(c, fiber.StatusUnprocessableEntity, req.Email, "Enter a valid email and password.")
	}

	id, err := h.auth.SignIn(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		logger.Get().Warn().
			Str("email", req.Email).
			Str("ip", c.IP()).
			Msg("Failed admin sign-in")
		return h.renderLogin(c, fiber.StatusUnauthorized, req.Email, "Invalid email or password.")
	}
	if err != nil {
		logger.Get().Error().Err(err).Msg("Identity provider error")
		return h.renderLogin(c, fiber.StatusBadGateway, req.Email, "Sign-in is unavailable right now. Please try again.")
	}

	token, err := h.sessions.Create(c.UserContext(), cache.Session{
		UID:       id.UID,
		Email:     id.Email,
		CreatedAt: time.Now(),
	}, h.config.SessionTTL)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.config.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.config.SessionTTL),
		HTTPOnly: true,
		Secure:   h.config.Env == "production",
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	logger.Get().Info().Str("uid", id.UID).Msg("Admin signed in")
	return c.Redirect("/admin", fiber.StatusSeeOther)
}

// Logout handles POST /admin/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(h.config.SessionCookie); token != "" {
		if err := h.sessions.Revoke(c.UserContext(), token); err != nil {
			logger.Get().Error().Err(err).Msg("Error revoking session")
		}
	}
	c.ClearCookie(h.config.SessionCookie)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// LogoutAll handles POST /admin/logout-all. Every session is revoked,
// including the caller's.
func (h *Handlers) LogoutAll(c *fiber.Ctx) error {
	if err := h.sessions.Clear(c.UserContext()); err != nil {
		logger.Get().Error().Err(err).Msg("Error revoking all sessions")
		return fiber.NewError(fiber.StatusInternalServerError, "Could not sign out all sessions")
	}
	logger.Get().Info().
		Str("uid", middleware.CurrentSession(c).UID).
		Msg("All admin sessions revoked")
	c.ClearCookie(h.config.SessionCookie)
	return c.Redirect(middleware.LoginPath, fiber.StatusSeeOther)
}

// Dashboard handles GET /admin
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	prefs := middleware.Prefs(c)

	items, err := h.repo.ListRecent(c.UserContext(), 0)
	loadError := err != nil
	status := fiber.StatusOK
	if loadError {
		logger.Get().Error().Err(err).Msg("Error loading admin list")
		status = fiber.StatusServiceUnavailable
	}

	return h.render(c, status, "dashboard", prefs.T("dashboard"), fiber.Map{
		"Cards":     content.Cards(items, prefs.Language),
		"LoadError": loadError,
		"Flash":     flashes[c.Query("done")],
	})
}

// NewNews handles GET /admin/news/new
func (h *Handlers) NewNews(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, h.editor.OpenCreate())
}

// EditNews handles GET /admin/news/:id/edit
func (h *Handlers) EditNews(c *fiber.Ctx) error {
	form, err := h.editor.OpenEdit(c.UserContext(), c.Params("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return h.render(c, fiber.StatusNotFound, "not_found", "", nil)
	}
	if err != nil {
		return err
	}
	return h.renderForm(c, fiber.StatusOK, form)
}

func (h *Handlers) renderForm(c *fiber.Ctx, status int, form *admin.Form) error {
	prefs := middleware.Prefs(c)
	title := prefs.T("uploadNews")
	if !form.IsNew() {
		title = prefs.T("edit")
	}

	var preview *content.Display
	if form.Input.TitleEN != "" || form.Input.TitleTA != "" {
		d := content.ResolveDisplayFields(models.NewsItem{
			TitleEN:       form.Input.TitleEN,
			TitleTA:       form.Input.TitleTA,
			DescriptionEN: form.Input.DescriptionEN,
			DescriptionTA: form.Input.DescriptionTA,
		}, prefs.Language)
		preview = &d
	}

	return h.render(c, status, "form", title, fiber.Map{
		"Form":       form,
		"Categories": models.Categories,
		"Preview":    preview,
	})
}

// CreateNews handles POST /admin/news
func (h *Handlers) CreateNews(c *fiber.Ctx) error {
	return h.submit(c, h.editor.OpenCreate(), "created")
}

// UpdateNews handles POST /admin/news/:id
func (h *Handlers) UpdateNews(c *fiber.Ctx) error {
	form, err := h.editor.OpenEdit(c.UserContext(), c.Params("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return h.render(c, fiber.StatusNotFound, "not_found", "", nil)
	}
	if err != nil {
		return err
	}
	return h.submit(c, form, "updated")
}

func (h *Handlers) submit(c *fiber.Ctx, form *admin.Form, done string) error {
	var in admin.Input
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form data")
	}

	img, err := h.readImage(c)
	if err != nil {
		return err
	}

	_, err = h.editor.Submit(c.UserContext(), form, in, img)
	if err != nil {
		status := middleware.StatusOf(err)
		// The re-rendered form is editable again, with the error shown.
		form.Retry()
		return h.renderForm(c, status, form)
	}
	return c.Redirect("/admin?done="+done, fiber.StatusSeeOther)
}

// readImage returns the uploaded image, or nil when none was sent. Oversized
// files are returned without a body so validation rejects them unread.
func (h *Handlers) readImage(c *fiber.Ctx) (*repository.Image, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return nil, nil
	}
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid image upload")
	}
	if fh.Filename == "" && fh.Size == 0 {
		return nil, nil
	}

	img := &repository.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
	}
	if h.config.MaxFileSize > 0 && fh.Size > h.config.MaxFileSize {
		return img, nil
	}

	// The multipart buffers belong to the request; copy before returning.
	data, err := readAll(fh)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid image upload")
	}
	img.Body = bytes.NewReader(data)
	img.Size = int64(len(data))
	return img, nil
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// ConfirmDelete handles GET /admin/news/:id/delete
func (h *Handlers) ConfirmDelete(c *fiber.Ctx) error {
	prefs := middleware.Prefs(c)
	item, err := h.repo.GetByID(c.UserContext(), c.Params("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return h.render(c, fiber.StatusNotFound, "not_found", "", nil)
	}
	if err != nil {
		return err
	}
	return h.render(c, fiber.StatusOK, "confirm_delete", prefs.T("delete"), fiber.Map{
		"Item": content.NewCard(*item, prefs.Language),
	})
}

// DeleteNews handles POST /admin/news/:id/delete
func (h *Handlers) DeleteNews(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.editor.Delete(c.UserContext(), id); err != nil {
		logger.Get().Error().Err(err).Str("id", id).Msg("Error deleting news item")
		return err
	}
	logger.Get().Info().Str("id", id).Msg("News item deleted")
	return c.Redirect("/admin?done=deleted", fiber.StatusSeeOther)
}
