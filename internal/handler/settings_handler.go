package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogsphere/internal/service"
)

// SettingsHandler reads and writes the site settings.
type SettingsHandler struct {
	errorMapper
	settings service.SettingsService
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(settings service.SettingsService, debug bool) *SettingsHandler {
	return &SettingsHandler{errorMapper: errorMapper{debug: debug}, settings: settings}
}

// Get godoc
// @Summary Site settings
// @Tags settings
// @Produce json
// @Success 200 {object} model.Settings
// @Failure 500 {object} errors.ErrorResponse
// @Router /settings [get]
func (h *SettingsHandler) Get(c echo.Context) error {
	settings, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, settings)
}

// Update godoc
// @Summary Update site settings
// @Description Only the fields present in the body are changed.
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SettingsPatch true "Fields to change"
// @Success 200 {object} model.Settings
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /settings [put]
func (h *SettingsHandler) Update(c echo.Context) error {
	var patch service.SettingsPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	settings, err := h.settings.Update(c.Request().Context(), patch)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, settings)
}
