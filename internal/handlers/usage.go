package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Usage summary
// @Description  Lifetime fuel total, average minutes per day and per-day fuel over the caller's paired stoves.
// @Tags         usage
// @Produce      json
// @Success      200  {object}  models.UsageSummary
// @Failure      401  {object}  map[string]string
// @Router       /api/usage/summary [get]
// @Security     BearerAuth
func (h *Handler) usageSummary(c *gin.Context) {
	summary, err := h.services.UsageSummary(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err, "usage_summary_failed", "user_id", currentUserID(c))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary      Weekly usage stats
// @Tags         usage
// @Produce      json
// @Success      200  {object}  models.WeeklyStats
// @Failure      401  {object}  map[string]string
// @Router       /api/usage/stats [get]
// @Security     BearerAuth
func (h *Handler) usageStats(c *gin.Context) {
	stats, err := h.services.UserWeeklyStats(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err, "usage_stats_failed", "user_id", currentUserID(c))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary      Stove usage history
// @Tags         usage
// @Produce      json
// @Param        stoveId  path      string  true  "Stove ID"
// @Success      200      {object}  models.StoveUsage
// @Failure      404      {object}  map[string]string
// @Router       /api/usage/stove/{stoveId} [get]
// @Security     BearerAuth
func (h *Handler) stoveUsage(c *gin.Context) {
	stoveID := c.Param("stoveId")
	out, err := h.services.StoveUsage(c.Request.Context(), currentUserID(c), stoveID)
	if err != nil {
		h.respondError(c, err, "stove_usage_failed", "user_id", currentUserID(c), "stove_id", stoveID)
		return
	}
	out.Usage = nonNil(out.Usage)
	c.JSON(http.StatusOK, out)
}
