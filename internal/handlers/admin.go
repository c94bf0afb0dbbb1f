package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type changeRoleInput struct {
	NewRole string `json:"newRole"`
}

// @Summary      Usage grouped by owner and stove
// @Tags         admin
// @Produce      json
// @Success      200  {object}  models.GroupedUsage
// @Failure      403  {object}  map[string]string
// @Router       /api/admin/usage [get]
// @Security     BearerAuth
func (h *Handler) adminUsage(c *gin.Context) {
	out, err := h.services.GroupedUsage(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "admin_usage_failed")
		return
	}
	out.GroupedByUser = nonNil(out.GroupedByUser)
	c.JSON(http.StatusOK, out)
}

// @Summary      Users with usage rollups
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "users"
// @Failure      403  {object}  map[string]string
// @Router       /api/admin/users [get]
// @Security     BearerAuth
func (h *Handler) adminUsers(c *gin.Context) {
	users, err := h.services.UserRollups(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "admin_users_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": nonNil(users)})
}

// @Summary      Stoves with usage rollups
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "stoves"
// @Failure      403  {object}  map[string]string
// @Router       /api/admin/stoves [get]
// @Security     BearerAuth
func (h *Handler) adminStoves(c *gin.Context) {
	stoves, err := h.services.StoveRollups(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "admin_stoves_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stoves": nonNil(stoves)})
}

// @Summary      Fleet stats for the last 7 days
// @Tags         admin
// @Produce      json
// @Success      200  {object}  models.FleetStats
// @Failure      403  {object}  map[string]string
// @Router       /api/admin/stats [get]
// @Security     BearerAuth
func (h *Handler) adminStats(c *gin.Context) {
	stats, err := h.services.FleetStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "admin_stats_failed")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary      Change user role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        userId  path      int              true  "User ID"
// @Param        input   body      changeRoleInput  true  "newRole: user or admin"
// @Success      200     {object}  map[string]interface{}  "message, user"
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/admin/users/{userId}/role [patch]
// @Security     BearerAuth
func (h *Handler) changeRole(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var input changeRoleInput
	if ok := h.bindJSONOrBadRequest(c, &input, "admin_change_role_bad_body"); !ok {
		return
	}

	user, err := h.services.ChangeRole(c.Request.Context(), userID, input.NewRole)
	if err != nil {
		h.respondError(c, err, "admin_change_role_failed", "user_id", userID, "role", input.NewRole)
		return
	}

	if h.log != nil {
		h.log.Infow("admin_role_changed", "user_id", userID, "role", user.Role, "by", currentUserID(c))
	}
	c.JSON(http.StatusOK, gin.H{"message": "User role updated successfully", "user": user})
}
