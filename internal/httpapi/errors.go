package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"CRMDashboard/internal/board"
	"CRMDashboard/internal/usecase"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) validationError(c echo.Context, err error) error {
	s.logger.Debug("validation error", "path", c.Request().URL.Path, "error", err)
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
	})
}

func (s *Server) notFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   "not_found",
		Message: "Unknown " + resource + ".",
	})
}

func (s *Server) internalError(c echo.Context, err error) error {
	s.logger.Error("request failed", "path", c.Request().URL.Path, "error", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// serviceError maps use case errors onto HTTP responses.
func (s *Server) serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, board.ErrUnknownMetric):
		return s.notFoundError(c, "metric")
	case errors.Is(err, board.ErrUnknownColor), errors.Is(err, usecase.ErrEmployeeRequired):
		return s.validationError(c, err)
	case errors.Is(err, usecase.ErrHistoryDisabled):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "history_disabled",
			Message: "History storage is not configured.",
		})
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("crm backend timed out", "path", c.Request().URL.Path, "error", err)
		return c.JSON(http.StatusGatewayTimeout, ErrorResponse{
			Error:   "upstream_timeout",
			Message: "The CRM backend did not answer in time.",
		})
	}
	return s.internalError(c, err)
}
