package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "blogsphere/internal/errors"
)

// MessageResponse is returned by endpoints that only acknowledge an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// errorMapper converts service errors into echo HTTP errors.
type errorMapper struct {
	debug bool
}

func (m errorMapper) fail(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err, m.debug)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Message: "invalid request body",
			Code:    "INVALID_REQUEST",
		})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Message: err.Error(),
			Code:    "VALIDATION_ERROR",
		})
	}
	return nil
}
