package ui

import (
	"net/http"
	"time"

	"studyviz/domain/core"
	"studyviz/internal"
	"studyviz/internal/api"
	"studyviz/internal/coordinator"
	"studyviz/internal/errors"
	"studyviz/internal/session"
	"studyviz/ui/middleware"

	"github.com/gin-gonic/gin"
)

// maxUploadSize caps dataset uploads (50MB).
const maxUploadSize = 50 * 1024 * 1024

// Options configures the HTTP server.
type Options struct {
	// Sheet is the worksheet read from uploaded workbooks.
	Sheet     string
	KeepAlive time.Duration
	Logger    *internal.Logger
}

// Server is the HTTP surface of the dashboard backend.
type Server struct {
	router   *gin.Engine
	sessions *session.Manager
	hub      *api.Hub
	opts     Options
	log      *internal.Logger
}

// NewServer creates the server and registers its routes.
func NewServer(sessions *session.Manager, hub *api.Hub, opts Options) *Server {
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}
	s := &Server{
		router:   gin.Default(),
		sessions: sessions,
		hub:      hub,
		opts:     opts,
		log:      opts.Logger.WithComponent("Server"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.CORS())
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	apiGroup := s.router.Group("/api")
	apiGroup.GET("/dataset", s.handleDataset)
	apiGroup.POST("/dataset", middleware.MaxBodySize(maxUploadSize+1<<20), s.handleDatasetUpload)

	apiGroup.GET("/sessions", s.handleListSessions)
	apiGroup.POST("/sessions", s.handleCreateSession)

	sessions := apiGroup.Group("/sessions/:id")
	sessions.GET("", s.handleGetSession)
	sessions.DELETE("", s.handleDeleteSession)
	sessions.POST("/events", s.handleEvent)
	sessions.PUT("/params", s.handleParams)
	sessions.GET("/stream", s.handleStream)
	sessions.GET("/ws", s.handleWebSocket)
	sessions.GET("/table", s.handleTable)
	sessions.GET("/export", s.handleExport)
	sessions.GET("/report", s.handleReport)
	sessions.POST("/views", s.handleSaveView)
	sessions.POST("/views/:viewID/restore", s.handleRestoreView)

	apiGroup.GET("/views", s.handleListViews)
	apiGroup.DELETE("/views/:viewID", s.handleDeleteView)
}

// Handler returns the router, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.log.Info("Starting studyviz on http://%s", addr)
	return s.router.Run(addr)
}

// respondError writes err with the status of its error code.
func (s *Server) respondError(c *gin.Context, err error) {
	appErr := errors.FromDomain(err)
	status := errors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		s.log.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	} else {
		s.log.Debug("%s %s rejected: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": appErr.Error(), "code": appErr.Code})
}

// session resolves the :id parameter. It writes the error response and
// returns false when the session does not exist.
func (s *Server) session(c *gin.Context) (*coordinator.Coordinator, bool) {
	coord, err := s.sessions.Get(core.SessionID(c.Param("id")))
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return coord, true
}

func (s *Server) handleHealth(c *gin.Context) {
	store := s.sessions.Dataset()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"records":  store.Len(),
		"sessions": len(s.sessions.List()),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
