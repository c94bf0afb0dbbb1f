package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cookstove_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errLimit       = "invalid 'limit'; use a whole number"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List activity events
// @Description  Filter the activity log by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' is end-of-day inclusive.
// @Tags         admin
// @Produce      json
// @Param        from     query   string  false  "Start of range"  example(2024-03-01)
// @Param        to       query   string  false  "End of range. Date-only treated as end of day."  example(2024-03-31)
// @Param        type     query   string  false  "Event type"  Enums(STOVE_REGISTERED,STOVE_PAIRED,USAGE_RECORDED,ROLE_CHANGED)
// @Param        stoveId  query   string  false  "Only events of this stove"
// @Param        limit    query   int     false  "Newest N events (max 1000)"
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/admin/events [get]
// @Security     BearerAuth
func (h *Handler) getEvents(c *gin.Context) {
	var (
		from, to time.Time
		err      error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
	}
	var limit int
	if qs := c.Query("limit"); qs != "" {
		if limit, err = strconv.Atoi(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimit})
			return
		}
	}

	filter := service.LogFilter{
		From:    from,
		To:      to,
		Type:    c.Query("type"),
		StoveID: c.Query("stoveId"),
		Limit:   limit,
	}
	events, err := h.services.ActivityLog.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "events_list_failed", "filter", filter)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": nonNil(events),
	})
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2024-03-07T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
