package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"CRMDashboard/internal/board"
	"CRMDashboard/internal/infrastructure/export"
)

type bucketRequest struct {
	Metric string `param:"metric" validate:"required"`
	Color  string `param:"color" validate:"required,oneof=red yellow green"`
	Format string `query:"format" validate:"omitempty,oneof=csv xlsx"`
}

type tasksRequest struct {
	Filter string `query:"filter"`
	Format string `query:"format" validate:"omitempty,oneof=csv xlsx"`
}

type historyRequest struct {
	Metric string `param:"metric" validate:"required"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=500"`
}

type workRequest struct {
	ID string `param:"id" validate:"required"`
}

// bind binds path and query values, normalizes case and validates.
func (s *Server) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	switch r := req.(type) {
	case *bucketRequest:
		r.Color = strings.ToLower(strings.TrimSpace(r.Color))
		r.Format = strings.ToLower(strings.TrimSpace(r.Format))
	case *tasksRequest:
		r.Format = strings.ToLower(strings.TrimSpace(r.Format))
	}
	return c.Validate(req)
}

func (s *Server) getDashboard(c echo.Context) error {
	view, err := s.dashboard.Dashboard(c.Request().Context())
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) refreshDashboard(c echo.Context) error {
	view, err := s.dashboard.Refresh(c.Request().Context())
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) getDrilldown(c echo.Context) error {
	var req bucketRequest
	if err := s.bind(c, &req); err != nil {
		return s.validationError(c, err)
	}
	dd, err := s.dashboard.Drilldown(c.Request().Context(), req.Metric, board.Color(req.Color))
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, dd)
}

func (s *Server) exportDrilldown(c echo.Context) error {
	var req bucketRequest
	if err := s.bind(c, &req); err != nil {
		return s.validationError(c, err)
	}
	dd, err := s.dashboard.Drilldown(c.Request().Context(), req.Metric, board.Color(req.Color))
	if err != nil {
		return s.serviceError(c, err)
	}
	return s.writeTable(c, req.Format, export.DrilldownTable(dd))
}

func (s *Server) getCallLogSummary(c echo.Context) error {
	summary, err := s.dashboard.CallLogSummary(c.Request().Context())
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) getWorkHistory(c echo.Context) error {
	var req workRequest
	if err := s.bind(c, &req); err != nil {
		return s.validationError(c, err)
	}
	work, err := s.dashboard.WorkHistory(c.Request().Context(), req.ID)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"employee": req.ID, "items": work})
}

func (s *Server) getTasks(c echo.Context) error {
	var req tasksRequest
	if err := s.bind(c, &req); err != nil {
		return s.validationError(c, err)
	}
	filter := board.ParseTaskFilter(req.Filter)
	tasks, err := s.dashboard.Tasks(c.Request().Context(), filter)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"filter": filter, "items": tasks})
}

func (s *Server) exportTasks(c echo.Context) error {
	var req tasksRequest
	if err := s.bind(c, &req); err != nil {
		return s.validationError(c, err)
	}
	tasks, err := s.dashboard.Tasks(c.Request().Context(), board.ParseTaskFilter(req.Filter))
	if err != nil {
		return s.serviceError(c, err)
	}
	return s.writeTable(c, req.Format, export.TasksTable(tasks))
}

func (s *Server) getHistory(c echo.Context) error {
	var req historyRequest
	if err := s.bind(c, &req); err != nil {
		return s.validationError(c, err)
	}
	rows, err := s.dashboard.History(c.Request().Context(), req.Metric, req.Limit)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"metric": req.Metric, "items": rows})
}

func (s *Server) getInsights(c echo.Context) error {
	insights, err := s.dashboard.Insights(c.Request().Context())
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, insights)
}

func (s *Server) getTrackingSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, s.dashboard.TrackingSummary(c.Request().Context()))
}

// writeTable buffers the export so encoding errors still produce a JSON
// error instead of a truncated download.
func (s *Server) writeTable(c echo.Context, format string, table export.Table) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return s.validationError(c, err)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, f, table); err != nil {
		return s.internalError(c, err)
	}
	if s.metrics != nil {
		s.metrics.RecordExport(string(f))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", table.Filename(f)))
	return c.Blob(http.StatusOK, f.ContentType(), buf.Bytes())
}
