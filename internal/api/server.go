package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"datalens/app"
	"datalens/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP layer exposes. Datasets and Metrics may be nil.
type Deps struct {
	Reports        *app.ReportService
	Configurations *app.ConfigurationService
	Datasets       *app.DatasetService
	Metrics        *metrics.Metrics
	MetricsPath    string
}

// Server represents the HTTP API server
type Server struct {
	router *gin.Engine
	deps   Deps
}

// NewServer builds the router. gin's mode should be set before calling.
func NewServer(deps Deps) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	s := &Server{router: router, deps: deps}
	s.setupRoutes()
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.deps.Metrics != nil {
		path := s.deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.router.GET(path, gin.WrapH(s.deps.Metrics.Handler()))
	}

	v1 := s.router.Group("/api/v1", OwnerScope())
	v1.GET("/presets", s.handleListPresets)

	configs := v1.Group("/configurations")
	configs.GET("", s.handleListConfigurations)
	configs.POST("", s.handleCreateConfiguration)
	configs.GET("/default", s.handleGetDefaultConfiguration)
	configs.GET("/:id", s.handleGetConfiguration)
	configs.PUT("/:id", s.handleUpdateConfiguration)
	configs.DELETE("/:id", s.handleDeleteConfiguration)
	configs.POST("/:id/default", s.handleSetDefaultConfiguration)

	reports := v1.Group("/reports")
	reports.POST("", s.handleGenerateReport)
	reports.GET("/:id", s.handleGetReport)

	v1.GET("/datasets/:handle/reports", s.handleListDatasetReports)
	if s.deps.Datasets != nil {
		v1.POST("/datasets", s.handleRegisterDataset)
		v1.GET("/datasets/:handle", s.handleGetDataset)
		v1.DELETE("/datasets/:handle", s.handleDeleteDataset)
	}
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("[Server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
