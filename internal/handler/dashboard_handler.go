package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogsphere/internal/service"
)

// DashboardHandler serves admin analytics.
type DashboardHandler struct {
	errorMapper
	dashboard service.DashboardService
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(dashboard service.DashboardService, debug bool) *DashboardHandler {
	return &DashboardHandler{errorMapper: errorMapper{debug: debug}, dashboard: dashboard}
}

// Stats godoc
// @Summary Dashboard statistics
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.dashboard.Stats(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// RecentActivity godoc
// @Summary Latest users, posts and comments
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.Activity
// @Failure 500 {object} errors.ErrorResponse
// @Router /dashboard/activity [get]
func (h *DashboardHandler) RecentActivity(c echo.Context) error {
	feed, err := h.dashboard.RecentActivity(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, feed)
}

// PopularPosts godoc
// @Summary Most liked posts
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.PopularPost
// @Failure 500 {object} errors.ErrorResponse
// @Router /dashboard/popular-posts [get]
func (h *DashboardHandler) PopularPosts(c echo.Context) error {
	posts, err := h.dashboard.PopularPosts(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, posts)
}
