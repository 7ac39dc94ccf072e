package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/openboard/notifier/internal/models"
	"github.com/openboard/notifier/internal/repositories"
)

// DeviceHandler handles device registration for push notifications
type DeviceHandler struct {
	deviceRepository repositories.DeviceTokenRepository
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(deviceRepo repositories.DeviceTokenRepository) *DeviceHandler {
	return &DeviceHandler{deviceRepository: deviceRepo}
}

// RegisterDeviceRoutes registers device routes
func (h *DeviceHandler) RegisterDeviceRoutes(g *echo.Group) {
	g.POST("/devices", h.RegisterDevice)
	g.DELETE("/devices/:token", h.UnregisterDevice)
}

// RegisterDevice registers (or reclaims) a push device token for the user
func (h *DeviceHandler) RegisterDevice(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.DeviceToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "device_token is required")
	}
	if req.Platform != models.PlatformIOS && req.Platform != models.PlatformAndroid {
		return echo.NewHTTPError(http.StatusBadRequest, "platform must be ios or android")
	}

	device := &models.DeviceToken{
		UserID:      currentUserID,
		DeviceToken: req.DeviceToken,
		Platform:    req.Platform,
	}
	if err := h.deviceRepository.RegisterDevice(c.Request().Context(), device); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, device)
}

// UnregisterDevice removes a device registration owned by the user
func (h *DeviceHandler) UnregisterDevice(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	token := c.Param("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing device token")
	}

	if err := h.deviceRepository.DeleteByToken(c.Request().Context(), currentUserID, token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
