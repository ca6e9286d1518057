// Package server exposes the converter over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reoring/flatcsv"
	"github.com/reoring/flatcsv/export/xlsx"
	"github.com/reoring/flatcsv/metrics"
	"github.com/reoring/flatcsv/middleware"
	ginmw "github.com/reoring/flatcsv/middleware/gin"
)

// Output formats accepted by POST /api/convert.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// KindXLSXLimit is the error kind for datasets that do not fit a worksheet.
const KindXLSXLimit = "xlsx-limit"

// Config holds what the server needs from the application configuration.
type Config struct {
	Addr            string
	GinMode         string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	Options         flatcsv.Options
}

// Server wires the HTTP routes.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	engine   *gin.Engine
	now      func() time.Time
}

// New builds a Server with its own Prometheus registry.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics()
	if err := m.Register(reg); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		registry: reg,
		now:      time.Now,
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), ginmw.RequestID(), ginmw.Logger(s.logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/sample", s.handleSample)
	api.POST("/convert", s.checkFormat, ginmw.ConvertJSON(s.cfg.Options, s.metrics), s.handleConvert)
	return r
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) handleSample(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(flatcsv.SampleJSON))
}

func format(c *gin.Context) string {
	return c.DefaultQuery("format", FormatJSON)
}

// checkFormat rejects unknown formats before the body is read.
func (s *Server) checkFormat(c *gin.Context) {
	switch format(c) {
	case FormatJSON, FormatCSV, FormatXLSX:
		c.Next()
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"kind":    "bad-format",
			"message": fmt.Sprintf("unknown format %q (want json, csv or xlsx)", format(c)),
		}})
	}
}

func (s *Server) handleConvert(c *gin.Context) {
	ds, ok := ginmw.GetDataset(c)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	opt := s.cfg.Options
	switch f := format(c); f {
	case FormatCSV:
		c.Header("Content-Disposition", attachment(flatcsv.DownloadName(s.now(), f)))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(flatcsv.Encode(ds, opt)))
	case FormatXLSX:
		book, err := xlsx.Build(ds)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(xlsxStatus(err))
			return
		}
		defer book.Close()
		c.Header("Content-Disposition", attachment(flatcsv.DownloadName(s.now(), f)))
		c.Header("Content-Type", xlsx.ContentType)
		c.Status(http.StatusOK)
		if err := book.Write(c.Writer); err != nil {
			_ = c.Error(err)
		}
	default:
		c.JSON(http.StatusOK, flatcsv.Conversion{
			Headers: ds.Headers,
			Rows:    ds.Rows,
			CSV:     flatcsv.Encode(ds, opt),
		})
	}
}

// xlsxStatus maps a workbook build failure to a response. Worksheet limits
// are the client's data, anything else is ours.
func xlsxStatus(err error) (int, any) {
	if errors.Is(err, xlsx.ErrLimit) {
		return http.StatusUnprocessableEntity, gin.H{"error": gin.H{
			"kind":    KindXLSXLimit,
			"message": err.Error(),
		}}
	}
	return http.StatusInternalServerError, middleware.ErrorPayload(err)
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.Addr)
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

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
