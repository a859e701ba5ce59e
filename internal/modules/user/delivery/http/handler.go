package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulseboard/backend/internal/middleware"
	userDto "github.com/pulseboard/backend/internal/modules/user/dto"
	user "github.com/pulseboard/backend/internal/modules/user/service"
	"github.com/pulseboard/backend/pkg/apperror"
	"github.com/pulseboard/backend/pkg/response"
	"github.com/pulseboard/backend/pkg/validator"
)

type AuthHandler struct {
	service   user.AuthService
	cookieTTL int
}

func NewAuthHandler(service user.AuthService, cookieTTLSeconds int) *AuthHandler {
	return &AuthHandler{service: service, cookieTTL: cookieTTLSeconds}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req userDto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.WithMessage(apperror.ErrValidation, validator.FormatValidationError(err)))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, resp.Token)
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req userDto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.WithMessage(apperror.ErrValidation, validator.FormatValidationError(err)))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, resp.Token)
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me reports auth state; anonymous is a normal 200, not an error.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := response.OptionalUserID(c)
	if userID == nil {
		c.JSON(http.StatusOK, userDto.MeResponse{Authenticated: false})
		return
	}

	resp, err := h.service.CurrentUser(c.Request.Context(), *userID)
	if err != nil {
		// Token subject no longer resolves to a user; treat as anonymous.
		c.JSON(http.StatusOK, userDto.MeResponse{Authenticated: false})
		return
	}

	c.JSON(http.StatusOK, userDto.MeResponse{Authenticated: true, User: resp})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.SessionCookie, token, h.cookieTTL, "/", "", false, true)
}
