package handlers

import (
	"net/http"
	"strings"
	"time"

	"cookstove_tracker/internal/metrics"
	"cookstove_tracker/internal/models"

	"github.com/gin-gonic/gin"
)

// Gin context keys.
const (
	ctxUserID = "userId"
	ctxRole   = "role"
	ctxStove  = "stove"
)

// bearerToken extracts the credential of an "Authorization: Bearer <x>" header.
func bearerToken(c *gin.Context) (string, string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", "missing Authorization header"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", "invalid Authorization header format"
	}
	return strings.TrimSpace(parts[1]), ""
}

// userIdMiddleware authenticates the JWT and loads the caller, so role changes
// take effect on the next request.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	token, problem := bearerToken(c)
	if problem != "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": problem})
		return
	}

	userId, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	user, err := h.services.GetUser(c.Request.Context(), userId)
	if err != nil {
		if statusFor(err) == 0 {
			h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_load_user_failed", err, "user_id", userId)
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	c.Set(ctxUserID, user.ID)
	c.Set(ctxRole, user.Role)
	c.Next()
}

func (h *Handler) requireAdmin(c *gin.Context) {
	if c.GetString(ctxRole) != models.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
	c.Next()
}

// stoveKeyMiddleware authenticates a device by its API key.
func (h *Handler) stoveKeyMiddleware(c *gin.Context) {
	key, problem := bearerToken(c)
	if problem != "" {
		h.metrics.IngestRejectedWith(metrics.PathAuthenticated, "unauthorized")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no API key provided"})
		return
	}

	stove, err := h.services.ResolveAPIKey(c.Request.Context(), key)
	if err != nil {
		h.metrics.IngestRejectedWith(metrics.PathAuthenticated, "unauthorized")
		if statusFor(err) == 0 {
			h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "api_key_lookup_failed", err)
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
		return
	}

	c.Set(ctxStove, stove)
	c.Next()
}

func (h *Handler) metricsMiddleware(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	h.metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
}

func currentUserID(c *gin.Context) int {
	return c.GetInt(ctxUserID)
}

func currentStove(c *gin.Context) models.Stove {
	v, _ := c.Get(ctxStove)
	st, _ := v.(models.Stove)
	return st
}
