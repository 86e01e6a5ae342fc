// Package server exposes the readiness probe, status snapshot and metrics over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"RSISentinel/internal/model"

	"github.com/gin-gonic/gin"
)

// StatusSource provides the monitor snapshot.
type StatusSource interface {
	Status() model.MonitorStatus
}

// Server is the HTTP side of the bot. It only reads monitor state.
type Server struct {
	srv *http.Server
}

// NewRouter builds the gin engine. metricsHandler may be nil.
func NewRouter(src StatusSource, metricsHandler http.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery())

	e.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "RSI bot is running"})
	})
	e.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "READY"})
	})
	e.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, src.Status())
	})
	if metricsHandler != nil {
		e.GET("/metrics", gin.WrapH(metricsHandler))
	}
	return e
}

// New creates a server listening on addr.
func New(addr string, src StatusSource, metricsHandler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(src, metricsHandler),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] http server listening on %s", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Println("[INFO] http server stopped")
	return nil
}
