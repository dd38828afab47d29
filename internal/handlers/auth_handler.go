package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-service/internal/models"
	"loan-service/internal/services"
	"loan-service/pkg/common"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code"`
}

type TwoFactorCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type AssignRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), services.RegisterDTO{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewCreatedResponse(user, "Registration successful"))
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), services.LoginDTO{
		Email:    req.Email,
		Password: req.Password,
		TOTPCode: req.TOTPCode,
	})
	switch {
	case errors.Is(err, services.ErrTwoFactorRequired):
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Two-factor code required", gin.H{"two_factor_required": true}, http.StatusUnauthorized))
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse("Invalid credentials", nil, http.StatusUnauthorized))
		return
	case err != nil:
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(res, "Login successful"))
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.Auth.Me(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(user, ""))
}

func (h *Handler) SetupTwoFactor(c *gin.Context) {
	key, err := h.Auth.SetupTwoFactor(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(key, "Scan the code and confirm it to enable two-factor authentication"))
}

func (h *Handler) EnableTwoFactor(c *gin.Context) {
	var req TwoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Auth.EnableTwoFactor(c.Request.Context(), principal(c), req.Code); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"two_factor_enabled": true}, "Two-factor authentication enabled"))
}

func (h *Handler) DisableTwoFactor(c *gin.Context) {
	var req TwoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Auth.DisableTwoFactor(c.Request.Context(), principal(c), req.Code); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"two_factor_enabled": false}, "Two-factor authentication disabled"))
}

func (h *Handler) AssignRole(c *gin.Context) {
	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.Auth.AssignRole(c.Request.Context(), principal(c), c.Param("id"), req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(user, "Role updated"))
}
