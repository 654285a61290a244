package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/libvisit-api/internal/middleware"
	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/internal/service"
	"github.com/noah-isme/libvisit-api/pkg/response"
)

// CookieOptions controls the admin session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
	cookie  CookieOptions
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, cookie CookieOptions) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "admin_token"
	}
	return &AuthHandler{service: svc, cookie: cookie}
}

// Login godoc
// @Summary Administrator login
// @Description Verifies credentials and sets the HttpOnly session cookie
// @Tags Admin Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid login payload"))
		return
	}

	token, res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setCookie(c, token, h.service.SessionTTL())
	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Administrator logout
// @Description Clears the session cookie
// @Tags Admin Auth
// @Success 204
// @Router /admin/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	response.NoContent(c)
}

// CheckSession godoc
// @Summary Session introspection
// @Tags Admin Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/check-session [get]
func (h *AuthHandler) CheckSession(c *gin.Context) {
	info := h.service.CheckSession(middleware.SessionToken(c, h.cookie.Name))
	response.JSON(c, http.StatusOK, info, nil)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
