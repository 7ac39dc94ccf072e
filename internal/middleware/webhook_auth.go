package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// WebhookSecretHeader carries the shared secret configured on the CDC trigger.
const WebhookSecretHeader = "X-Webhook-Secret"

// WebhookAuthMiddleware rejects webhook calls that don't present the shared
// secret, so the CDC endpoint cannot be invoked by arbitrary callers.
func WebhookAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			presented := c.Request().Header.Get(WebhookSecretHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid webhook secret")
			}
			return next(c)
		}
	}
}
