// Package server is the development REST server for the garage API. It
// serves clients, cars and car services from a types.Backend using the same
// endpoints, headers and error bodies the production API uses.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/braude/garage/internal/logging"
	"github.com/braude/garage/pkg/types"
)

// Defaults for list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 1000
)

const shutdownTimeout = 5 * time.Second

// Config configures a Server.
type Config struct {
	Backend     types.Backend // Attached backend; required.
	Log         zerolog.Logger
	CORSOrigins []string // Allowed browser origins; empty disables CORS.
}

// Server serves the REST API.
type Server struct {
	backend types.Backend
	log     zerolog.Logger
	engine  *gin.Engine
}

// New builds the router. The backend must already be attached.
func New(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		backend: cfg.Backend,
		log:     cfg.Log,
		engine:  gin.New(),
	}

	s.engine.Use(requestID(), logging.GinLogger(cfg.Log), gin.Recovery())
	if len(cfg.CORSOrigins) > 0 {
		s.engine.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", headerRequestID},
			ExposeHeaders: []string{headerTotalCount, "Link", "Location", headerRequestID},
			MaxAge:        12 * time.Hour,
		}))
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler for use with httptest or a custom server.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

const (
	headerTotalCount = "X-Total-Count"
	headerRequestID  = "X-Request-ID"
)

// requestID echoes the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		c.Next()
	}
}
