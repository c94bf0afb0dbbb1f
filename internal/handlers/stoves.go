package handlers

import (
	"errors"
	"net/http"
	"strings"

	"cookstove_tracker/internal/metrics"
	"cookstove_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type registerStoveInput struct {
	StoveID    string `json:"stoveId"`
	Model      string `json:"model"`
	StoveModel string `json:"stoveModel"`
}

type pairStoveInput struct {
	StoveID     string `json:"stoveId"`
	PairingCode string `json:"pairingCode"`
}

// usageInput mirrors the device payload; pointers distinguish missing from zero.
type usageInput struct {
	StoveID       *string  `json:"stoveId"`
	Date          *string  `json:"date"`
	CookingEvents *int64   `json:"cookingEvents"`
	TotalMinutes  *int64   `json:"totalMinutes"`
	FuelUsedKg    *float64 `json:"fuelUsedKg"`
}

func (in usageInput) toService() service.UsageInput {
	return service.UsageInput{
		StoveID:       in.StoveID,
		Date:          in.Date,
		CookingEvents: in.CookingEvents,
		TotalMinutes:  in.TotalMinutes,
		FuelUsedKg:    in.FuelUsedKg,
	}
}

// rejectReason labels a failed submission for the ingest metrics.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, service.ErrValidation):
		return "invalid"
	case errors.Is(err, service.ErrForbidden):
		return "mismatch"
	case errors.Is(err, service.ErrNotFound):
		return "unknown_stove"
	default:
		return "error"
	}
}

func pairingResult(err error) string {
	switch {
	case err == nil:
		return metrics.PairingSuccess
	case errors.Is(err, service.ErrNotFound):
		return metrics.PairingNotFound
	case errors.Is(err, service.ErrConflict):
		return metrics.PairingConflict
	default:
		return metrics.PairingInvalid
	}
}

// @Summary      Register stove
// @Description  Creates an unpaired stove and returns its pairing code. `stoveModel` is accepted as an alias of `model`.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        input  body      registerStoveInput  true  "stoveId, model"
// @Success      201    {object}  map[string]interface{}  "message, stove"
// @Failure      400    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Router       /api/admin/stoves/register [post]
// @Security     BearerAuth
func (h *Handler) registerStove(c *gin.Context) {
	var input registerStoveInput
	if ok := h.bindJSONOrBadRequest(c, &input, "stove_register_bad_body"); !ok {
		return
	}
	model := input.Model
	if model == "" {
		model = input.StoveModel
	}

	stove, err := h.services.RegisterStove(c.Request.Context(), input.StoveID, model)
	if err != nil {
		h.respondError(c, err, "stove_register_failed", "stove_id", input.StoveID)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stove registered successfully",
		"stove": gin.H{
			"id":           stove.ID,
			"stove_id":     stove.StoveID,
			"model":        stove.Model,
			"pairing_code": stove.PairingCode,
			"status":       stove.Status,
		},
	})
}

// @Summary      Pair stove
// @Description  Binds an unpaired stove to the caller. The API key is returned only here.
// @Tags         stoves
// @Accept       json
// @Produce      json
// @Param        input  body      pairStoveInput  true  "stoveId, pairingCode"
// @Success      200    {object}  map[string]interface{}  "message, stove"
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Router       /api/stoves/pair [post]
// @Security     BearerAuth
func (h *Handler) pairStove(c *gin.Context) {
	var input pairStoveInput
	if ok := h.bindJSONOrBadRequest(c, &input, "stove_pair_bad_body"); !ok {
		h.metrics.PairingAttempt(metrics.PairingInvalid)
		return
	}

	paired, err := h.services.PairStove(c.Request.Context(), input.StoveID, input.PairingCode, currentUserID(c))
	h.metrics.PairingAttempt(pairingResult(err))
	if err != nil {
		h.respondError(c, err, "stove_pair_failed", "stove_id", input.StoveID, "user_id", currentUserID(c))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stove paired successfully", "stove": paired})
}

// @Summary      Submit usage
// @Description  Appends one usage record for the stove owning the Bearer API key.
// @Tags         stoves
// @Accept       json
// @Produce      json
// @Param        input  body      usageInput  true  "stoveId, date, cookingEvents, totalMinutes, fuelUsedKg"
// @Success      201    {object}  map[string]interface{}  "message, usage"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /api/stoves/data [post]
// @Security     ApiKeyAuth
func (h *Handler) ingestData(c *gin.Context) {
	var input usageInput
	if ok := h.bindJSONOrBadRequest(c, &input, "ingest_bad_body"); !ok {
		h.metrics.IngestRejectedWith(metrics.PathAuthenticated, "invalid")
		return
	}

	stove := currentStove(c)
	rec, err := h.services.IngestAuthenticated(c.Request.Context(), stove, input.toService())
	if err != nil {
		h.metrics.IngestRejectedWith(metrics.PathAuthenticated, rejectReason(err))
		h.respondError(c, err, "ingest_failed", "stove_id", stove.StoveID)
		return
	}

	h.metrics.IngestAccepted(metrics.PathAuthenticated)
	c.JSON(http.StatusCreated, gin.H{"message": "Usage data saved successfully", "usage": rec})
}

// @Summary      Submit usage without credentials
// @Description  Appends one usage record for any registered stove. Rate-limited per stove id.
// @Tags         stoves
// @Accept       json
// @Produce      json
// @Param        input  body      usageInput  true  "stoveId, date, cookingEvents, totalMinutes, fuelUsedKg"
// @Success      201    {object}  map[string]interface{}  "message, usage"
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      429    {object}  map[string]string
// @Router       /api/stoves/data/open [post]
func (h *Handler) ingestOpen(c *gin.Context) {
	var input usageInput
	if ok := h.bindJSONOrBadRequest(c, &input, "ingest_open_bad_body"); !ok {
		h.metrics.IngestRejectedWith(metrics.PathOpen, "invalid")
		return
	}

	var stoveID string
	if input.StoveID != nil {
		stoveID = strings.TrimSpace(*input.StoveID)
	}
	if ok := h.admitOpen(c, stoveID); !ok {
		return
	}

	rec, err := h.services.IngestOpen(c.Request.Context(), input.toService())
	if err != nil {
		h.metrics.IngestRejectedWith(metrics.PathOpen, rejectReason(err))
		h.respondError(c, err, "ingest_open_failed", "stove_id", stoveID)
		return
	}

	if h.log != nil {
		h.log.Warnw("ingest_open_accepted", "stove_id", rec.StoveID, "client_ip", c.ClientIP())
	}
	h.metrics.IngestAccepted(metrics.PathOpen)
	c.JSON(http.StatusCreated, gin.H{"message": "Usage data saved successfully", "usage": rec})
}

// admitOpen charges the open-ingest bucket of a registered stove. Unknown ids are
// rejected before a bucket exists for them; blank ids fall through to validation.
func (h *Handler) admitOpen(c *gin.Context, stoveID string) bool {
	if h.limiter == nil || stoveID == "" {
		return true
	}
	if _, err := h.services.GetStove(c.Request.Context(), stoveID); err != nil {
		h.metrics.IngestRejectedWith(metrics.PathOpen, rejectReason(err))
		h.respondError(c, err, "ingest_open_failed", "stove_id", stoveID)
		return false
	}
	if !h.limiter.Allow(stoveID) {
		h.metrics.IngestRejectedWith(metrics.PathOpen, "rate_limited")
		if h.log != nil {
			h.log.Warnw("ingest_open_rate_limited", "stove_id", stoveID, "client_ip", c.ClientIP())
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return false
	}
	return true
}

// @Summary      List my stoves
// @Tags         stoves
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "stoves"
// @Failure      401  {object}  map[string]string
// @Router       /api/stoves [get]
// @Security     BearerAuth
func (h *Handler) listStoves(c *gin.Context) {
	stoves, err := h.services.ListUserStoves(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err, "stove_list_failed", "user_id", currentUserID(c))
		return
	}
	c.JSON(http.StatusOK, gin.H{"stoves": nonNil(stoves)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
