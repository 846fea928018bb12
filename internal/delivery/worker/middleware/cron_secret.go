// Package middleware guards the jobs server's scheduled endpoints.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HeaderCronSecret carries the shared secret on scheduler requests.
const HeaderCronSecret = "X-Cron-Secret"

// RequireCronSecret rejects requests whose X-Cron-Secret header does
// not match the configured secret. The comparison is constant-time.
// An empty configured secret locks the endpoints entirely rather than
// leaving them open.
func RequireCronSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := c.Request().Header.Get(HeaderCronSecret)
			if secret == "" || provided == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "cron secret required"})
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "cron secret mismatch"})
			}

			return next(c)
		}
	}
}
