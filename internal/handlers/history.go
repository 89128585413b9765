package handlers

import (
	"fmt"
	"net/http"

	"cnc_dashboard/internal/backend"

	"github.com/gin-gonic/gin"
)

const (
	errLoadHistory  = "Error loading history data"
	errClearHistory = "Error clearing history"
	errExport       = "Error exporting data"
	errExportKind   = "export kind must be jobs or history"

	contentTypeXLS = "application/vnd.ms-excel"
)

// @Summary      List history
// @Description  Finished jobs as returned by the backend
// @Tags         history
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, jobs"
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/history [get]
func (h *Handler) listHistory(c *gin.Context) {
	entries, err := h.services.List(c.Request.Context())
	if err != nil {
		h.backendFailure(c, errLoadHistory, "history_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(entries),
		"jobs":  entries,
	})
}

// @Summary      Clear history
// @Tags         history
// @Produce      json
// @Success      200  {object}  ActionResponse
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/history [delete]
func (h *Handler) clearHistory(c *gin.Context) {
	res, err := h.services.Clear(c.Request.Context())
	if err != nil {
		h.backendFailure(c, errClearHistory, "history_clear_failed", err)
		return
	}
	c.JSON(http.StatusOK, actionResponse(res))
}

// @Summary      Export spreadsheet
// @Description  Streams the backend's .xls export unchanged
// @Tags         history
// @Produce      application/vnd.ms-excel
// @Param        kind  path  string  true  "What to export"  Enums(jobs,history)
// @Success      200  {file}  file
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/export/{kind} [get]
func (h *Handler) exportExcel(c *gin.Context) {
	kind := c.Param("kind")
	if kind != backend.ExportJobs && kind != backend.ExportHistory {
		c.JSON(http.StatusBadRequest, gin.H{"error": errExportKind})
		return
	}

	exp, err := h.services.Export(c.Request.Context(), kind)
	if err != nil {
		h.backendFailure(c, errExport, "export_failed", err, "kind", kind)
		return
	}
	defer exp.Body.Close()

	contentType := exp.ContentType
	if contentType == "" {
		contentType = contentTypeXLS
	}
	headers := map[string]string{}
	if exp.Disposition != "" {
		headers["Content-Disposition"] = exp.Disposition
	} else {
		headers["Content-Disposition"] = fmt.Sprintf("attachment; filename=%s.xls", kind)
	}
	c.DataFromReader(http.StatusOK, exp.ContentLength, contentType, exp.Body, headers)
}
