package handlers

import (
	"errors"
	"net/http"

	"weather_station/internal/models"
	"weather_station/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK     = "ok"
	statusQueued = "queued"

	errGetStatus       = "failed to load station status"
	errQueueDirective  = "failed to queue directive"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// DirectiveRequest documents the directive payload. Keys match the ones a
// primary collector may return; any subset may be sent.
type DirectiveRequest struct {
	// true requests a host shutdown; any other value is rejected
	PiShutdown *bool `json:"PiShutdown,omitempty" example:"true"`
	// true requests a host reboot; any other value is rejected
	PiReboot *bool `json:"PiReboot,omitempty" example:"true"`
	// true stops the agent; any other value is rejected
	WeatherPiOff *bool `json:"WeatherPiOff,omitempty" example:"true"`
	// "Yes" dims the display
	DisplayDim string `json:"DisplayDim,omitempty" example:"Yes"`
	// "Yes" turns the display on
	DisplayOn string `json:"DisplayOn,omitempty" example:"Yes"`
	// "On" enables the secondary zone
	ColdFrame string `json:"ColdFrame,omitempty" example:"On"`
	// Primary upload interval in minutes; 0 disables
	PiServerUploadInterval *int `json:"PiServerUploadInterval,omitempty" example:"2"`
	// Secondary upload interval in minutes; below 15 disables
	WUServerUploadInterval *int `json:"WUServerUploadInterval,omitempty" example:"15"`
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

// @Summary      Get station status
// @Description  Latest snapshot, runtime config, persisted state, notifications and upload targets
// @Tags         station
// @Produce      json
// @Success      200  {object}  service.StationStatus
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/station/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	st, err := h.services.Monitoring.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "station_get_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Get upload targets
// @Tags         station
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "targets, consecutive_failures"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/station/targets [get]
// @Security     BearerAuth
func (h *Handler) getTargets(c *gin.Context) {
	st, err := h.services.Monitoring.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "station_get_targets_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"targets":              st.Targets,
		"consecutive_failures": st.ConsecutiveFailures,
	})
}

// @Summary      Submit directive
// @Description  Queues a control directive; it is applied at the start of the next engine tick
// @Tags         station
// @Accept       json
// @Produce      json
// @Param        body  body      DirectiveRequest  true  "Directive payload"
// @Success      202   {object}  map[string]interface{}  "status, directive"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/station/directive [post]
// @Security     BearerAuth
func (h *Handler) submitDirective(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	d, err := h.services.Control.SubmitDirective(c.Request.Context(), raw)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidDirective):
		if h.log != nil {
			h.log.Infow("station_directive_rejected", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrDirectiveQueueFull):
		h.logAndJSONError(c, http.StatusServiceUnavailable, err.Error(), "station_directive_queue_full", err)
		return
	default:
		h.logAndJSONError(c, http.StatusServiceUnavailable, errQueueDirective, "station_directive_failed", err)
		return
	}

	if h.log != nil {
		operatorID, _ := c.Get(operatorCtxKey)
		h.log.Infow("station_directive_queued", "operator_id", operatorID, "directive", d)
	}
	c.JSON(http.StatusAccepted, directiveResponse{Status: statusQueued, Directive: d})
}

type directiveResponse struct {
	Status    string                  `json:"status"`
	Directive models.ControlDirective `json:"directive"`
}
