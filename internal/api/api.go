// Package api exposes stored postings and on-demand runs over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/jobrank/internal/model"
	"github.com/amishk599/jobrank/internal/pipeline"
)

// RunFunc triggers one pipeline run.
type RunFunc func(ctx context.Context) (*pipeline.Result, error)

// Server wires the HTTP routes to the persistence gateway.
type Server struct {
	gateway model.Gateway
	run     RunFunc
	metrics http.Handler
	logger  *slog.Logger
	engine  *gin.Engine
}

// New builds the router. run and metrics may be nil, in which case the
// corresponding routes are not registered.
func New(gateway model.Gateway, run RunFunc, metrics http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		gateway: gateway,
		run:     run,
		metrics: metrics,
		logger:  logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.GET("/healthz", s.health)
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/jobs", s.listJobs)
		v1.GET("/jobs/:id", s.getJob)
		v1.POST("/jobs/:id/applied", s.markApplied)
		if run != nil {
			v1.POST("/runs", s.triggerRun)
		}
	}

	s.engine = engine
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listJobs(c *gin.Context) {
	q := model.Query{
		Role:     c.Query("role"),
		Location: c.Query("location"),
	}

	if raw := c.Query("status"); raw != "" {
		status, err := model.ParseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		q.Status = status
	}
	if raw := c.Query("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_score"})
			return
		}
		q.MinScore = v
	}
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		q.Limit = v
	}

	jobs, err := s.gateway.List(c.Request.Context(), q)
	if err != nil {
		s.logger.Error("listing postings failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list postings"})
		return
	}

	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toResponse(j))
	}
	c.JSON(http.StatusOK, gin.H{"jobs": out, "count": len(out)})
}

func (s *Server) getJob(c *gin.Context) {
	id := c.Param("id")
	job, err := s.gateway.Get(c.Request.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "posting not found"})
		return
	}
	if err != nil {
		s.logger.Error("loading posting failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load posting"})
		return
	}
	c.JSON(http.StatusOK, toResponse(job))
}

func (s *Server) markApplied(c *gin.Context) {
	id := c.Param("id")
	err := s.gateway.SetStatus(c.Request.Context(), id, model.StatusApplied)
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "posting not found"})
		return
	}
	if err != nil {
		s.logger.Error("marking posting applied failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update posting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": string(model.StatusApplied)})
}

func (s *Server) triggerRun(c *gin.Context) {
	res, err := s.run(c.Request.Context())

	var total *pipeline.TotalFailureError
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.As(err, &total):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "no source could be fetched",
			"sources": sourceResponses(total.Sources),
		})
		return
	case err != nil:
		s.logger.Error("triggered run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, runResponse{
		RunID:      res.RunID,
		Summary:    res.Summary(),
		Fetched:    res.Fetched,
		Dropped:    res.Dropped,
		Duplicates: res.Duplicates,
		Filtered:   res.Filtered,
		Persisted:  res.Persisted,
		Sources:    sourceResponses(res.Sources),
	})
}
