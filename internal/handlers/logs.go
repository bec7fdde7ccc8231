package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"weather_station/internal/models"
	"weather_station/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"

	errLoadLogs = "failed to load station events"
)

// logsResponse is the body of GET /api/v1/logs.
type logsResponse struct {
	Count  int                   `json:"count"`
	ByType map[string]int        `json:"by_type"`
	Events []models.StationEvent `json:"events"`
}

// @Summary      List station events
// @Description  Events oldest first. 'from'/'to' accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD' (UTC); a date-only 'to' covers the whole day. 'target' matches upload failures of one collector.
// @Tags         logs
// @Produce      json
// @Param        from    query     string  false  "Start of range"  example(2025-08-01)
// @Param        to      query     string  false  "End of range"    example(2025-08-31)
// @Param        type    query     string  false  "Event type"      Enums(STARTUP,DIRECTIVE,UPLOAD_FAILED,REBOOT_REQUESTED,STATE_WRITE_FAILED,SHUTDOWN)
// @Param        target  query     string  false  "Upload target"   Enums(primary,secondary)
// @Success      200     {object}  logsResponse
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	filter, err := logFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), filter)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidLogFilter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadLogs, "logs_list_failed", err,
			"from", filter.From, "to", filter.To, "type", filter.Type, "target", filter.Target)
		return
	}

	c.JSON(http.StatusOK, logsResponse{
		Count:  len(events),
		ByType: service.CountByType(events),
		Events: events,
	})
}

// logFilterFromQuery reads from, to, type and target. Type and target are
// validated by the event log service.
func logFilterFromQuery(c *gin.Context) (service.LogFilter, error) {
	f := service.LogFilter{
		Type:   c.Query("type"),
		Target: c.Query("target"),
	}

	if qs := c.Query("from"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			return service.LogFilter{}, fmt.Errorf("from: %w", err)
		}
		f.From = t
	}
	if qs := c.Query("to"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			return service.LogFilter{}, fmt.Errorf("to: %w", err)
		}
		if !strings.ContainsAny(qs, "T ") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = t
	}
	return f, nil
}

// parseQueryTime accepts RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'", s)
}
