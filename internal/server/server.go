// Package server exposes the orchestrator over HTTP.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/agent/core"
	"github.com/errandlabs/errand/internal/agent/telemetry"
	"github.com/errandlabs/errand/internal/store"
	"github.com/errandlabs/errand/tools/toolkit"
)

// Run wires the orchestrator, tools and archive together and serves until
// the listener fails.
func Run(cfg *config.Config) error {
	e := newEcho()

	tele := telemetry.NewTelemetry(cfg.Telemetry)
	registry, err := toolkit.Build(cfg)
	if err != nil {
		return fmt.Errorf("build tools: %w", err)
	}
	orch, err := core.NewOrchestrator(cfg, registry, tele)
	if err != nil {
		return fmt.Errorf("build orchestrator: %w", err)
	}
	archive, err := store.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open run archive: %w", err)
	}
	if archive != nil {
		defer archive.Close()
	}

	api := e.Group("/api")

	rh := &RunsHandler{
		Processor: orch,
		Archive:   archive,
		Timeout:   cfg.General.DefaultTimeout,
	}
	rh.Register(api)

	uh := &UploadsHandler{
		DataDir:  cfg.General.DataDir,
		MaxBytes: cfg.Server.UploadMaxBytes,
	}
	uh.Register(api)

	mh := &ModelsHandler{LLM: orch.LLM()}
	mh.Register(api)

	return e.Start(cfg.Server.Address)
}

// newEcho applies the middleware and boundary endpoints every deployment
// gets regardless of configuration.
func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}
