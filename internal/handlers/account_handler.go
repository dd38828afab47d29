package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"loan-service/internal/services"
	"loan-service/pkg/common"
)

type OpenAccountRequest struct {
	UserID           string          `json:"user_id" binding:"required"`
	Principal        decimal.Decimal `json:"principal"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

func (h *Handler) GetMyAccount(c *gin.Context) {
	account, err := h.Accounts.GetMine(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(account, ""))
}

func (h *Handler) OpenAccount(c *gin.Context) {
	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	account, err := h.Accounts.Open(c.Request.Context(), principal(c), services.OpenAccountDTO{
		UserID:           req.UserID,
		Principal:        req.Principal,
		AvailableBalance: req.AvailableBalance,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewCreatedResponse(account, "Loan account created"))
}
