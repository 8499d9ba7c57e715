package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Vodeneev/keirin-odds/internal/pkg/server/handlers"
)

// NewRouter builds the gin engine with every route of the service.
func NewRouter(svc handlers.OddsService, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	// any web client may call /odds directly from the browser
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"*"},
		AllowHeaders:    []string{"*"},
		MaxAge:          12 * time.Hour,
	}))

	h := handlers.New(svc, log)

	// Health endpoints
	r.GET("/ping", handlers.HandlePing)
	r.GET("/health", handlers.HandleHealth)

	// Metrics endpoint
	r.GET("/metrics", h.HandleMetrics)

	// Odds endpoints
	r.GET("/odds", h.HandleOdds)
	r.GET("/venues", h.HandleVenues)

	return r
}

// requestLogger replaces gin's access log with a logrus line per request.
func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"query":    c.Request.URL.RawQuery,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"client":   c.ClientIP(),
		})
		if outcome := c.Writer.Header().Get(handlers.OutcomeHeader); outcome != "" {
			entry = entry.WithField("outcome", outcome)
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("Request failed")
			return
		}
		entry.Info("Request served")
	}
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight scrapes up to shutdownTimeout to finish.
func Run(ctx context.Context, addr string, handler http.Handler, readHeaderTimeout, shutdownTimeout time.Duration, log logrus.FieldLogger) error {
	if readHeaderTimeout <= 0 {
		return fmt.Errorf("read_header_timeout must be specified in config")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownDone <- srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("HTTP server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}

	if err := <-shutdownDone; err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	log.Info("HTTP server stopped")
	return nil
}

// AddrFor returns the listen address for port.
func AddrFor(port int) (string, error) {
	if port <= 0 {
		return "", fmt.Errorf("port must be greater than 0")
	}
	return fmt.Sprintf(":%d", port), nil
}
