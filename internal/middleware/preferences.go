package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/sevennews/internal/i18n"
)

const prefsLocal = "prefs"

// Preferences resolves the language and theme of every request from the
// query string, then the cookies, then defaults.
func Preferences(defaults i18n.Preferences) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := defaults.Resolve(
			func(k string) string { return c.Query(k) },
			func(k string) string { return c.Cookies(k) },
		)
		c.Locals(prefsLocal, p)
		return c.Next()
	}
}

// Prefs returns the preferences of the request, falling back to English
// and the light theme outside the middleware.
func Prefs(c *fiber.Ctx) i18n.Preferences {
	if p, ok := c.Locals(prefsLocal).(i18n.Preferences); ok {
		return p
	}
	return i18n.Defaults("", "")
}
