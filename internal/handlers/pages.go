package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"cnc_dashboard/internal/view"

	"github.com/gin-gonic/gin"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	errOpenSession  = "failed to open dashboard"
	errRenderPage   = "failed to render page"
)

// index opens a fresh dashboard session and serves the page around its
// first render. Each load gets its own carousel positions.
func (h *Handler) index(c *gin.Context) {
	ctx := c.Request.Context()
	d, err := h.services.Open(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errOpenSession, "session_open_failed", err)
		return
	}
	fragment, err := d.View()
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errRender, "dashboard_view_failed", err, "session", d.ID())
		return
	}

	modal, err := d.ModalView()
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errRender, "dashboard_modal_view_failed", err, "session", d.ID())
		return
	}

	var buf bytes.Buffer
	err = h.pages.RenderPage(&buf, view.PageData{
		SessionID: d.ID(),
		// rendered by our own templates
		Dashboard:       template.HTML(fragment),
		Modal:           template.HTML(modal),
		RefreshInterval: h.refreshInterval,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errRenderPage, "page_render_failed", err, "session", d.ID())
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, buf.Bytes())
}

// historyPage lists finished jobs. A backend failure still renders the
// page with an error banner.
func (h *Handler) historyPage(c *gin.Context) {
	entries, err := h.services.List(c.Request.Context())
	if err != nil && h.log != nil {
		h.log.Errorw("history_load_failed", "err", err)
	}

	var buf bytes.Buffer
	if rerr := h.pages.RenderHistory(&buf, entries, err); rerr != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errRenderPage, "history_render_failed", rerr)
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, buf.Bytes())
}
