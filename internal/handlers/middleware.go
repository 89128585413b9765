package handlers

import (
	"errors"
	"net/http"
	"time"

	"cnc_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

const ctxDashboard = "dashboard"

// sessionMiddleware resolves :sid to the page's dashboard controller.
// An unknown or evicted session answers 410 Gone, the only status the page
// treats as "reload"; 404 stays free for missing jobs.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	d, err := h.services.Get(c.Param("sid"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.AbortWithStatusJSON(http.StatusGone, gin.H{
				"error": errSessionNotFound,
			})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadSession, "session_lookup_failed", err)
		c.Abort()
		return
	}

	// store in Gin context
	c.Set(ctxDashboard, d)
	c.Next()
}

// dashboard returns the controller stored by sessionMiddleware.
func dashboard(c *gin.Context) service.Dashboard {
	return c.MustGet(ctxDashboard).(service.Dashboard)
}

// metricsMiddleware records request count and latency per route pattern.
func (h *Handler) metricsMiddleware(c *gin.Context) {
	if c.Request.URL.Path == "/metrics" {
		c.Next()
		return
	}
	start := time.Now()
	c.Next()

	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	h.metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
}
