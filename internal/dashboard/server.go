// Package dashboard hosts a small web UI over a benchmark session: recent
// runs and registered models out of the history store, live logs and host
// resource usage.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appconfig "llm4time/config"
	"llm4time/internal/history"
	"llm4time/logger"
)

//go:embed templates/index.tmpl
var embeddedFS embed.FS

// Server hosts the Gin-powered dashboard. A nil *Server is a valid disabled
// server; all methods tolerate it.
type Server struct {
	cfg               appconfig.DashboardConfig
	store             *history.Store
	log               *logger.Log
	logStore          *logStore
	sampler           *resourceSampler
	httpServer        *http.Server
	refreshIntervalMs int
}

// NewServer constructs the dashboard when enabled; it returns nil otherwise.
// The history store is the data source for runs and models and is required.
func NewServer(cfg appconfig.DashboardConfig, store *history.Store, log *logger.Log) (*Server, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if store == nil {
		return nil, fmt.Errorf("dashboard: history store is required")
	}

	cfg.Address = normalizeAddress(cfg.Address)
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 5
	}
	if cfg.LogHistory <= 0 {
		cfg.LogHistory = 200
	}
	if cfg.ResourceHistory <= 0 {
		cfg.ResourceHistory = 200
	}
	if cfg.RunsLimit <= 0 {
		cfg.RunsLimit = 50
	}

	ls := newLogStore(cfg.LogHistory)
	log.AddHook(ls)

	interval := time.Duration(cfg.RefreshInterval) * time.Second
	return &Server{
		cfg:               cfg,
		store:             store,
		log:               log,
		logStore:          ls,
		sampler:           newResourceSampler(cfg.ResourceHistory, interval, "/", log),
		refreshIntervalMs: int(interval / time.Millisecond),
	}, nil
}

// Run serves the dashboard until the context is cancelled or the HTTP server
// fails.
func (s *Server) Run(ctx context.Context, appName string) error {
	if s == nil {
		return nil
	}
	defer s.cleanup()

	router, err := s.buildRouter(appName)
	if err != nil {
		return err
	}
	s.sampler.start(ctx)

	s.httpServer = &http.Server{Addr: s.cfg.Address, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) cleanup() {
	if s.logStore != nil {
		s.logStore.close()
	}
	if s.sampler != nil {
		s.sampler.stop()
	}
}

// Address reports the listen address after defaulting.
func (s *Server) Address() string {
	if s == nil {
		return ""
	}
	return s.cfg.Address
}

func (s *Server) buildRouter(appName string) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	tmpl := template.Must(template.New("dashboard").ParseFS(embeddedFS, "templates/index.tmpl"))
	router.SetHTMLTemplate(tmpl)

	router.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.tmpl", gin.H{
			"AppName":           appName,
			"RefreshIntervalMs": s.refreshIntervalMs,
		})
	})

	router.GET("/api/runs", func(c *gin.Context) {
		runs, err := s.store.ListRuns(c.Request.Context(), s.cfg.RunsLimit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		payload := make([]gin.H, 0, len(runs))
		for _, r := range runs {
			payload = append(payload, gin.H{
				"id":            r.ID,
				"model":         r.Model,
				"provider":      r.Provider,
				"dataset":       r.Dataset,
				"strategy":      r.Strategy,
				"format":        r.Format,
				"smape":         r.SMAPE,
				"mae":           r.MAE,
				"rmse":          r.RMSE,
				"response_time": r.ResponseTime,
				"created_at":    r.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"runs": payload})
	})

	router.GET("/api/models", func(c *gin.Context) {
		models, err := s.store.ListModels(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"models": models})
	})

	router.GET("/api/prompts", func(c *gin.Context) {
		prompts, err := s.store.ListPrompts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		payload := make([]gin.H, 0, len(prompts))
		for _, p := range prompts {
			payload = append(payload, gin.H{
				"name":       p.Name,
				"template":   p.Template,
				"updated_at": p.UpdatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"prompts": payload})
	})

	router.GET("/api/logs", func(c *gin.Context) {
		logs := s.logStore.snapshot()
		payload := make([]gin.H, 0, len(logs))
		for _, l := range logs {
			payload = append(payload, gin.H{
				"timestamp": l.Timestamp.Format(time.RFC3339Nano),
				"level":     l.Level,
				"component": l.Component,
				"message":   l.Message,
				"fields":    l.Fields,
			})
		}
		c.JSON(http.StatusOK, gin.H{"logs": payload})
	})

	router.GET("/api/resources", func(c *gin.Context) {
		snapshots := s.sampler.snapshot()
		payload := make([]gin.H, 0, len(snapshots))
		for _, snap := range snapshots {
			payload = append(payload, gin.H{
				"timestamp":      snap.Timestamp.Format(time.RFC3339Nano),
				"cpu_percent":    snap.CPUPercent,
				"memory_percent": snap.MemoryPct,
				"disk_percent":   snap.DiskPct,
			})
		}
		c.JSON(http.StatusOK, gin.H{"resources": payload})
	})

	return router, nil
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "0.0.0.0:8080"
	}
	if strings.HasPrefix(addr, ":") {
		return "0.0.0.0" + addr
	}
	if host, port, err := net.SplitHostPort(addr); err == nil {
		if host == "" || host == "*" {
			host = "0.0.0.0"
		}
		if port == "" {
			port = "8080"
		}
		return net.JoinHostPort(host, port)
	}
	return net.JoinHostPort(addr, "8080")
}
