package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/errandlabs/errand/internal/agent/core"
	"github.com/errandlabs/errand/internal/store"
)

const defaultRunTimeout = 2 * time.Minute

// Processor executes one query end to end. The orchestrator satisfies it;
// tests substitute their own.
type Processor interface {
	ProcessQuery(ctx context.Context, req core.Request) (core.Result, error)
}

// RunsHandler serves run execution and retrieval.
type RunsHandler struct {
	Processor Processor
	Archive   store.Storage // nil when archiving is disabled
	Timeout   time.Duration
	Logger    *log.Logger
}

// Register mounts the runs endpoints on the API group.
func (h *RunsHandler) Register(g *echo.Group) {
	g.POST("/runs", h.create)
	g.GET("/runs/:id", h.get)
}

type runRequest struct {
	Query    string `json:"query"`
	FilePath string `json:"file_path"`
}

func (h *RunsHandler) create(c echo.Context) error {
	var req runRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	result, err := h.Processor.ProcessQuery(ctx, core.Request{
		Query:    req.Query,
		FilePath: req.FilePath,
	})
	if err != nil {
		// The cause goes to the log; the client gets a generic failure.
		h.logger().Printf("run failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if h.Archive != nil {
		if err := h.Archive.SaveRun(ctx, result); err != nil {
			h.logger().Printf("archive run %s: %v", result.ID, err)
		}
	}

	return c.JSON(http.StatusOK, result)
}

func (h *RunsHandler) get(c echo.Context) error {
	if h.Archive == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "run archive is disabled")
	}
	id := c.Param("id")
	result, err := h.Archive.GetRun(c.Request().Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "run not found")
	}
	if err != nil {
		h.logger().Printf("load run %s: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, result)
}

func (h *RunsHandler) logger() *log.Logger {
	if h.Logger == nil {
		h.Logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}
	return h.Logger
}
