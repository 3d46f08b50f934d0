// Copyright 2025 Fotocabin Systems B.V.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api serves the booth state over HTTP for the kiosk UI: the latest
// validation report, the guidance list, the session and a reset trigger.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/fotocabin/booth-core/pkg/booth"
	"github.com/fotocabin/booth-core/pkg/logger"
	"github.com/fotocabin/booth-core/pkg/metrics"
	"github.com/fotocabin/booth-core/pkg/models"
	"github.com/fotocabin/booth-core/pkg/storage"
)

// SessionResetter starts a fresh capture session.
type SessionResetter interface {
	RequestReset()
}

// ServerConfig carries the HTTP server settings.
type ServerConfig struct {
	Port  int
	Debug bool
}

// Server exposes the booth over HTTP. Read-only except for the session
// reset; the kiosk UI polls it between frames.
type Server struct {
	server   *http.Server
	logger   *zap.SugaredLogger
	status   *booth.StatusManager
	resetter SessionResetter
	store    storage.Store
	config   ServerConfig
}

// NewServer wires the API to the running loop's status and storage.
func NewServer(status *booth.StatusManager, resetter SessionResetter, store storage.Store, config ServerConfig) *Server {
	return &Server{
		logger:   logger.For(logger.ComponentAPI),
		status:   status,
		resetter: resetter,
		store:    store,
		config:   config,
	}
}

// Handler builds the HTTP handler. Exposed separately from Start so tests can
// drive it without a listener.
func (s *Server) Handler() http.Handler {
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.loggingMiddleware())

	router.GET("/healthz", s.handleHealth)

	v1 := router.Group("/api/v1")
	v1.GET("/validation/report", s.handleReport)
	v1.GET("/validation/guidance", s.handleGuidance)
	v1.GET("/session", s.handleSession)
	v1.POST("/session/reset", s.handleReset)
	v1.GET("/captures/:id", s.handleCapture)

	return router
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Infow("Starting API server", "port", s.config.Port, "debug", s.config.Debug)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Stopping API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReport(c *gin.Context) {
	status := s.status.Get()
	if status.Report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report yet"})
		return
	}

	body, err := status.Report.Serialize()
	if err != nil {
		s.logger.Errorf("Failed to serialize report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "serialization failure"})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func (s *Server) handleGuidance(c *gin.Context) {
	status := s.status.Get()
	guidance := status.Guidance
	if guidance == nil {
		guidance = []models.GuidanceMessage{}
	}
	s.renderJSON(c, gin.H{"guidance": guidance})
}

func (s *Server) handleSession(c *gin.Context) {
	status := s.status.Get()
	s.renderJSON(c, gin.H{
		"tick":    status.Tick,
		"session": status.Session,
	})
}

func (s *Server) handleReset(c *gin.Context) {
	s.resetter.RequestReset()
	s.logger.Info("Session reset requested over API")
	c.JSON(http.StatusAccepted, gin.H{"status": "reset requested"})
}

func (s *Server) handleCapture(c *gin.Context) {
	id := c.Param("id")

	record, err := s.store.Load(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown record"})
			return
		}
		s.logger.Errorf("Failed to load record %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	s.renderJSON(c, record)
}

// renderJSON serializes with the same codec the rest of the core uses, so the
// boundary format is identical no matter which layer produced it.
func (s *Server) renderJSON(c *gin.Context, value any) {
	body, err := json.Marshal(value)
	if err != nil {
		s.logger.Errorf("Failed to marshal response: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "serialization failure"})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		metrics.ObserveTickTime(metrics.ComponentAPI, c.FullPath(), time.Since(start))
		if s.config.Debug {
			s.logger.Infow("API request",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", c.Writer.Status(),
				"duration", time.Since(start),
			)
		}
	}
}
