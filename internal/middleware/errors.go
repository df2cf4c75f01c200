package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/sevennews/internal/admin"
	"github.com/bilgisen/sevennews/internal/logger"
	"github.com/bilgisen/sevennews/internal/repository"
	"github.com/bilgisen/sevennews/internal/web"
)

// StatusOf maps an error returned by a handler to its HTTP status.
func StatusOf(err error) int {
	var (
		fe   *fiber.Error
		verr *admin.ValidationError
	)
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, repository.ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &verr):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, admin.ErrSubmitTimeout):
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders errors as JSON under /api and as the error page
// everywhere else.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusOf(err)

	if code >= fiber.StatusInternalServerError {
		logger.Get().Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", code).
			Msg("HTTP error")
	}

	message := http.StatusText(code)
	var fe *fiber.Error
	if errors.As(err, &fe) && code < fiber.StatusInternalServerError {
		message = fe.Message
	}

	if strings.HasPrefix(c.Path(), "/api") {
		body := fiber.Map{"error": message}
		var verr *admin.ValidationError
		if errors.As(err, &verr) {
			body["fields"] = verr.Fields
		}
		return c.Status(code).JSON(body)
	}

	prefs := Prefs(c)
	data := fiber.Map{
		"Prefs":   prefs,
		"Status":  code,
		"Message": message,
		"Path":    c.OriginalURL(),
	}
	if rerr := c.Status(code).Render("error", data, web.Layout); rerr != nil {
		logger.Get().Error().Err(rerr).Msg("Error rendering error page")
		return c.Status(code).SendString(message)
	}
	return nil
}
