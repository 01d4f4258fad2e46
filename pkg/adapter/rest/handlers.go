package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/item"
	"github.com/marmos91/dittoprovider/pkg/metadata"
)

// enqueueRequest is the body of POST /v1/pending.
type enqueueRequest struct {
	Account string `json:"account"`
	FileID  string `json:"file_id"`
}

// pendingResponse lists queued descriptors.
type pendingResponse struct {
	Count int                `json:"count"`
	Items []*item.Descriptor `json:"items"`
}

// healthResponse reports each registered check.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the router for the item API.
func (s *RESTAdapter) Handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handleError
	e.Use(middleware.Recover())
	e.Use(logRequests)

	v1 := e.Group("/v1")
	v1.GET("/items/:account/:fileID", s.getItem)
	v1.GET("/pending", s.listPending)
	v1.POST("/pending", s.enqueue)
	v1.POST("/pending/drain", s.drain)
	v1.DELETE("/pending/:identifier", s.removePending)

	e.GET("/healthz", s.health)
	return e
}

func (s *RESTAdapter) getItem(c echo.Context) error {
	d, err := s.materializer.MaterializeByID(c.Request().Context(), c.Param("account"), c.Param("fileID"))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (s *RESTAdapter) listPending(c echo.Context) error {
	items := s.materializer.Queue().Snapshot()
	return c.JSON(http.StatusOK, pendingResponse{Count: len(items), Items: items})
}

func (s *RESTAdapter) enqueue(c echo.Context) error {
	var req enqueueRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Account == "" || req.FileID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account and file_id are required")
	}

	d, err := s.materializer.EnqueueByID(c.Request().Context(), req.Account, req.FileID)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusAccepted, d)
}

func (s *RESTAdapter) drain(c echo.Context) error {
	items := s.materializer.Queue().Drain()
	logger.Debug("Drained %d pending update(s)", len(items))
	return c.JSON(http.StatusOK, pendingResponse{Count: len(items), Items: items})
}

func (s *RESTAdapter) removePending(c echo.Context) error {
	id := c.Param("identifier")
	if !s.materializer.Queue().RemoveIfPresent(id) {
		return echo.NewHTTPError(http.StatusNotFound, "no pending update for "+id)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *RESTAdapter) health(c echo.Context) error {
	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK

	for _, check := range s.checks {
		if err := check.Check(c.Request().Context()); err != nil {
			resp.Checks[check.Name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "ok"
	}

	return c.JSON(status, resp)
}

// storeError maps metadata store errors to HTTP errors.
func storeError(err error) error {
	switch {
	case metadata.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case metadata.IsInvalidArgument(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	default:
		logger.Warn("Item request failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

// handleError renders every error as {"error": message}.
func handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	}

	if err := c.JSON(status, errorResponse{Error: msg}); err != nil {
		logger.Debug("Failed to write error response: %v", err)
	}
}

func logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			// Render now so the logged status is the one sent
			c.Error(err)
		}
		logger.Debug("%s %s -> %d (%v)", c.Request().Method, c.Request().URL.Path,
			c.Response().Status, time.Since(start))
		return nil
	}
}
