// Package server exposes the chat pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docchat/internal/config"
	"docchat/internal/logging"
	"docchat/internal/service"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	addr   string
	engine *gin.Engine
	logger *zap.Logger
}

// New builds the router. topK is used when a chat request does not set one.
func New(chat *service.Chat, cfg config.ServerConfig, topK int, logger *zap.Logger) *Server {
	logger = logging.OrNop(logger).Named("http")
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 32
	}
	if topK <= 0 {
		topK = 3
	}
	h := &handler{
		chat:        chat,
		defaultTopK: topK,
		maxUpload:   int64(cfg.MaxUploadMB) << 20,
		logger:      logger,
	}

	engine := gin.New()
	engine.MaxMultipartMemory = h.maxUpload
	engine.Use(
		gin.Recovery(),
		requestLogger(logger),
		cors(),
		gzip.Gzip(gzip.DefaultCompression),
	)
	registerRoutes(engine, h)
	return &Server{addr: cfg.Addr, engine: engine, logger: logger}
}

func registerRoutes(r gin.IRouter, h *handler) {
	r.GET("/", h.root)
	r.POST("/upload", h.upload)
	r.POST("/chat", h.ask)
	r.GET("/status", h.status)
	r.GET("/history", h.history)
	r.POST("/clear", h.clear)
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.addr))
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

	s.logger.Info("server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
