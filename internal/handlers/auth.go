package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type signUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      signUpInput  true  "name, email, password"
// @Success      201    {object}  map[string]int
// @Failure      400    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *Handler) signUp(c *gin.Context) {
	var input signUpInput
	if ok := h.bindJSONOrBadRequest(c, &input, "auth_bad_request_body"); !ok {
		return
	}

	id, err := h.services.SignUp(c.Request.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		h.respondError(c, err, "auth_sign_up_failed", "email", input.Email)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      signInInput  true  "email, password"
// @Success      200    {object}  map[string]interface{}  "token, user"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *Handler) signIn(c *gin.Context) {
	var input signInInput
	if ok := h.bindJSONOrBadRequest(c, &input, "auth_bad_request_body"); !ok {
		return
	}

	token, user, err := h.services.GenerateToken(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.respondError(c, err, "auth_sign_in_failed", "email", input.Email)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  models.User
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/me [get]
// @Security     BearerAuth
func (h *Handler) me(c *gin.Context) {
	user, err := h.services.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err, "auth_me_failed", "user_id", currentUserID(c))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
