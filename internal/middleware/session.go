package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/sevennews/internal/cache"
	"github.com/bilgisen/sevennews/internal/logger"
)

const sessionLocal = "session"

// LoginPath is where unauthenticated admin requests are sent.
const LoginPath = "/admin/login"

// SessionConfig defines the config for the session gate
type SessionConfig struct {
	// Sessions resolves the cookie token.
	// Required.
	Sessions cache.Sessions

	// Cookie is the name of the session cookie.
	// Optional. Default: "sevennews_session"
	Cookie string
}

// DefaultSessionCookie is the cookie name used when none is configured
const DefaultSessionCookie = "sevennews_session"

// RequireSession redirects to the login view unless the request carries a
// live session cookie.
func RequireSession(cfg SessionConfig) fiber.Handler {
	if cfg.Cookie == "" {
		cfg.Cookie = DefaultSessionCookie
	}

	return func(c *fiber.Ctx) error {
		token := c.Cookies(cfg.Cookie)
		if token == "" {
			return c.Redirect(LoginPath, fiber.StatusSeeOther)
		}

		s, err := cfg.Sessions.Lookup(c.UserContext(), token)
		if errors.Is(err, cache.ErrSessionNotFound) {
			logger.Get().Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Admin access with unknown session")
			c.ClearCookie(cfg.Cookie)
			return c.Redirect(LoginPath, fiber.StatusSeeOther)
		}
		if err != nil {
			return err
		}

		c.Locals(sessionLocal, s)
		return c.Next()
	}
}

// CurrentSession returns the session RequireSession attached, or nil.
func CurrentSession(c *fiber.Ctx) *cache.Session {
	s, _ := c.Locals(sessionLocal).(*cache.Session)
	return s
}
