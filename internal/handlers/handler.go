package handlers

import (
	"io"
	"time"

	"cnc_dashboard/internal/logger"
	"cnc_dashboard/internal/metrics"
	"cnc_dashboard/internal/models"
	"cnc_dashboard/internal/service"
	"cnc_dashboard/internal/view"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// PageRenderer draws the full HTML pages around the dashboard fragment.
type PageRenderer interface {
	RenderPage(w io.Writer, p view.PageData) error
	RenderHistory(w io.Writer, entries []models.HistoryEntry, loadErr error) error
}

// Options carries the optional collaborators of a Handler.
type Options struct {
	Pages           PageRenderer
	Metrics         *metrics.Metrics
	RefreshInterval time.Duration
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services        *service.Service
	pages           PageRenderer
	metrics         *metrics.Metrics
	refreshInterval time.Duration
	log             *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	return &Handler{
		services:        services,
		pages:           opts.Pages,
		metrics:         opts.Metrics,
		refreshInterval: opts.RefreshInterval,
		log:             log,
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if h.metrics != nil {
		router.Use(h.metricsMiddleware)
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Pages
	router.GET("/", h.index)
	router.GET("/history", h.historyPage)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Render push for an open page, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerSessionRoutes(api)
		h.registerHistoryRoutes(api)
	}
}

func (h *Handler) registerSessionRoutes(api *gin.RouterGroup) {
	sessions := api.Group("/sessions/:sid", h.sessionMiddleware)
	{
		sessions.GET("/view", h.getView)
		sessions.POST("/refresh", h.refresh)

		sessions.POST("/modal/add", h.openAddModal)
		sessions.POST("/modal/edit/:id", h.openEditModal)
		sessions.POST("/modal/close", h.closeModal)

		// Body: the modal form, e.g. {"mesin":"CNC1","job_type":"current","MODEL":"A",...}
		sessions.POST("/jobs", h.submitJob)
		sessions.POST("/jobs/:id/finish", h.finishJob)
		sessions.POST("/machines/:machine/navigate/:direction", h.navigateJob)
	}
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	history := api.Group("/history")
	{
		history.GET("", h.listHistory)
		history.DELETE("", h.clearHistory)
	}
	api.GET("/export/:kind", h.exportExcel)
}
