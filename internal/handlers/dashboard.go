package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"cnc_dashboard/internal/backend"
	"cnc_dashboard/internal/models"
	"cnc_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errSessionNotFound  = "dashboard session not found; reload the page"
	errLoadSession      = "failed to load session"
	errRender           = "failed to render dashboard"
	errLoadDashboard    = "Error loading dashboard data"
	errLoadJob          = "Error loading job data"
	errSaveJob          = "Error saving job"
	errFinishJob        = "Error finishing job"
	errNavigateJob      = "Error navigating job"
	errConfirmRequired  = "finishing a job requires confirmed=true"
	errInvalidJobID     = "invalid job id"
	errUnknownMachine   = "unknown machine"
	errInvalidDirection = "direction must be prev or next"
	errInvalidBodyPref  = "invalid body: "
	errBackendDown      = "job backend unavailable"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// backendFailure maps a backend error to a status code and user message.
// The breaker being open wins over the operation's own message.
func (h *Handler) backendFailure(c *gin.Context, userMsg, logKey string, err error, kv ...interface{}) {
	switch {
	case errors.Is(err, backend.ErrUnavailable):
		h.logAndJSONError(c, http.StatusServiceUnavailable, errBackendDown, logKey, err, kv...)
	case backend.IsNotFound(err):
		h.logAndJSONError(c, http.StatusNotFound, userMsg, logKey, err, kv...)
	default:
		h.logAndJSONError(c, http.StatusBadGateway, userMsg, logKey, err, kv...)
	}
}

// ActionResponse mirrors the backend's {success, message} envelope.
type ActionResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Job added successfully"`
}

// JobFormRequest is an exported model for Swagger docs of the job form payload.
type JobFormRequest struct {
	// Target machine. Allowed: CNC1..CNC5
	Machine string `json:"mesin" binding:"required" enums:"CNC1,CNC2,CNC3,CNC4,CNC5" example:"CNC1"`
	// Slot the job is added to. Allowed: current, next
	JobType string `json:"job_type" binding:"required" enums:"current,next" example:"current"`
	Model   string `json:"MODEL" example:"X-200"`
	Part    string `json:"PART" example:"Housing"`
	Size    string `json:"SIZE" example:"M"`
	// datetime-local value, may be empty
	Start string `json:"START" example:"2024-03-01T08:00"`
	// datetime-local value, may be empty
	Finish   string `json:"FINISH" example:""`
	Target   string `json:"ETC_H" example:"4"`
	Operator string `json:"OPERATOR" example:"Bo"`
	Remark   string `json:"REMARK" example:""`
}

func actionResponse(res models.ActionResult) ActionResponse {
	return ActionResponse{Success: res.Success, Message: res.Message}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Dashboard markup
// @Description  Latest rendered dashboard fragment of the session
// @Tags         dashboard
// @Produce      html
// @Param        sid  path  string  true  "Session id"
// @Success      200  {string}  string
// @Failure      404  {object}  map[string]string
// @Failure      410  {object}  map[string]string
// @Router       /api/v1/sessions/{sid}/view [get]
func (h *Handler) getView(c *gin.Context) {
	html, err := dashboard(c).View()
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errRender, "dashboard_view_failed", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// @Summary      Refresh dashboard
// @Description  Reloads all machine queues from the backend. Carousel positions are kept.
// @Tags         dashboard
// @Produce      json
// @Param        sid  path  string  true  "Session id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      410  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/sessions/{sid}/refresh [post]
func (h *Handler) refresh(c *gin.Context) {
	d := dashboard(c)
	if err := d.Refresh(c.Request.Context()); err != nil {
		h.backendFailure(c, errLoadDashboard, "dashboard_refresh_failed", err, "session", d.ID())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Open add modal
// @Tags         dashboard
// @Produce      json
// @Param        sid  path  string  true  "Session id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      410  {object}  map[string]string
// @Router       /api/v1/sessions/{sid}/modal/add [post]
func (h *Handler) openAddModal(c *gin.Context) {
	dashboard(c).OpenAdd()
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Open edit modal
// @Description  Loads the job and opens the modal populated with it
// @Tags         dashboard
// @Produce      json
// @Param        sid  path  string  true  "Session id"
// @Param        id   path  int     true  "Job id"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      410  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/sessions/{sid}/modal/edit/{id} [post]
func (h *Handler) openEditModal(c *gin.Context) {
	id, ok := jobIDParam(c)
	if !ok {
		return
	}
	d := dashboard(c)
	if err := d.OpenEdit(c.Request.Context(), id); err != nil {
		h.backendFailure(c, errLoadJob, "dashboard_open_edit_failed", err, "session", d.ID(), "job_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Close modal
// @Tags         dashboard
// @Produce      json
// @Param        sid  path  string  true  "Session id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      410  {object}  map[string]string
// @Router       /api/v1/sessions/{sid}/modal/close [post]
func (h *Handler) closeModal(c *gin.Context) {
	dashboard(c).CloseModal()
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Save job
// @Description  Adds a job, or edits the job the modal was opened for. A rejection keeps the modal open.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        sid   path  string          true  "Session id"
// @Param        body  body  JobFormRequest  true  "Job form"
// @Success      200   {object}  ActionResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      410   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/sessions/{sid}/jobs [post]
func (h *Handler) submitJob(c *gin.Context) {
	var form models.JobForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	d := dashboard(c)
	res, err := d.Submit(c.Request.Context(), form)
	if err != nil {
		h.backendFailure(c, errSaveJob, "dashboard_submit_failed", err, "session", d.ID(), "machine", form.Machine)
		return
	}
	c.JSON(http.StatusOK, actionResponse(res))
}

// @Summary      Finish job
// @Description  Marks the job finished. The browser must confirm first and pass confirmed=true.
// @Tags         jobs
// @Produce      json
// @Param        sid        path   string  true  "Session id"
// @Param        id         path   int     true  "Job id"
// @Param        confirmed  query  bool    true  "User confirmed the action"
// @Success      200  {object}  ActionResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      410  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/sessions/{sid}/jobs/{id}/finish [post]
func (h *Handler) finishJob(c *gin.Context) {
	id, ok := jobIDParam(c)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(c.Query("confirmed"))

	d := dashboard(c)
	res, err := d.Finish(c.Request.Context(), id, confirmed)
	if err != nil {
		if errors.Is(err, service.ErrNotConfirmed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errConfirmRequired})
			return
		}
		h.backendFailure(c, errFinishJob, "dashboard_finish_failed", err, "session", d.ID(), "job_id", id)
		return
	}
	c.JSON(http.StatusOK, actionResponse(res))
}

// @Summary      Navigate next-job carousel
// @Description  Moves the machine's next-job carousel one step; only that machine is updated.
// @Tags         jobs
// @Produce      json
// @Param        sid        path  string  true  "Session id"
// @Param        machine    path  string  true  "Machine"  Enums(CNC1,CNC2,CNC3,CNC4,CNC5)
// @Param        direction  path  string  true  "Direction"  Enums(prev,next)
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      410  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/sessions/{sid}/machines/{machine}/navigate/{direction} [post]
func (h *Handler) navigateJob(c *gin.Context) {
	machine := c.Param("machine")
	if !models.IsKnownMachine(machine) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errUnknownMachine})
		return
	}
	dir, ok := models.ParseDirection(c.Param("direction"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidDirection})
		return
	}

	d := dashboard(c)
	if err := d.Navigate(c.Request.Context(), machine, dir); err != nil {
		if errors.Is(err, service.ErrUnknownMachine) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUnknownMachine})
			return
		}
		h.backendFailure(c, errNavigateJob, "dashboard_navigate_failed", err, "session", d.ID(), "machine", machine, "direction", dir)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

func jobIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidJobID})
		return 0, false
	}
	return id, true
}
