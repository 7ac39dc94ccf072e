package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/openboard/notifier/internal/events"
)

// WebhookHandler receives change-data-capture events from the database trigger
type WebhookHandler struct {
	dispatcher *events.Dispatcher
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(dispatcher *events.Dispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

// RegisterWebhookRoutes registers webhook routes
func (h *WebhookHandler) RegisterWebhookRoutes(g *echo.Group) {
	g.POST("/events", h.HandleEvent)
}

// HandleEvent processes one change event and returns its structured result.
// The response is always 200 with the outcome in the body — the trigger
// transport treats non-2xx as "retry me", which only applies to malformed
// requests it could never fix by retrying.
func (h *WebhookHandler) HandleEvent(c echo.Context) error {
	var event events.ChangeEvent
	if err := c.Bind(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid event body")
	}
	if event.Operation == "" || event.Table == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing operation or table")
	}

	result := h.dispatcher.Process(c.Request().Context(), &event)
	return c.JSON(http.StatusOK, result)
}
