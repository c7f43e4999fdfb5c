package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
)

const pageTemplate = "index.html"

//go:embed templates/index.html
var templatesFS embed.FS

type Options struct {
	Addr           string
	AllowedOrigins []string
	// AccessLog receives one line per request; nil disables access logging.
	AccessLog *zap.Logger
}

type Server struct {
	httpServer *http.Server
	router     *gin.Engine
}

func New(dash interfaces.Dashboard, opts Options) *Server {
	r := NewRouter(dash, opts)
	return &Server{
		router: r,
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(dash interfaces.Dashboard, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), Tracing())
	if opts.AccessLog != nil {
		r.Use(AccessLog(opts.AccessLog))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	r.SetHTMLTemplate(template.Must(template.New(pageTemplate).ParseFS(templatesFS, "templates/"+pageTemplate)))

	h := NewBoardHandler(dash)
	r.GET("/", h.GetPage)
	r.GET("/health", h.GetHealth)

	api := r.Group("/api")
	api.GET("/stocks", h.GetStocks)
	api.GET("/board", h.GetBoards)
	api.GET("/stocks/:ticker", h.GetBoard)
	api.POST("/stocks/:ticker/refresh", h.RefreshBoard)
	api.GET("/stocks/:ticker/history", h.GetHistory)
	return r
}

func (s *Server) Handler() http.Handler { return s.router }

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start(ctx context.Context) error {
	logger.Info(ctx, "HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
