package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"loan-service/internal/models"
	"loan-service/internal/workflow"
	"loan-service/pkg/common"
)

// Amount is not bound with "required" because a zero decimal must reach the
// workflow's validation and be reported there.
type CreateWithdrawalRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Reason  string          `json:"reason"`
	Urgency models.Urgency  `json:"urgency"`
}

type UpdateWithdrawalStatusRequest struct {
	Status     models.WithdrawalStatus `json:"status" binding:"required"`
	AdminNotes *string                 `json:"admin_notes"`
}

func (h *Handler) CreateWithdrawal(c *gin.Context) {
	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Urgency == "" {
		req.Urgency = models.UrgencyNormal
	}

	created, err := h.Withdrawals.Create(c.Request.Context(), principal(c), workflow.CreateWithdrawalInput{
		Amount:  req.Amount,
		Reason:  req.Reason,
		Urgency: req.Urgency,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewCreatedResponse(created, "Withdrawal request submitted"))
}

func (h *Handler) ListMyWithdrawals(c *gin.Context) {
	result, err := h.Withdrawals.ListForOwner(c.Request.Context(), principal(c), pageParams(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	paginated(c, result)
}

func (h *Handler) ListAllWithdrawals(c *gin.Context) {
	result, err := h.Withdrawals.ListAll(c.Request.Context(), principal(c), pageParams(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	paginated(c, result)
}

func (h *Handler) GetWithdrawal(c *gin.Context) {
	req, err := h.Withdrawals.Get(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(req, ""))
}

func (h *Handler) UpdateWithdrawalStatus(c *gin.Context) {
	var body UpdateWithdrawalStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.Withdrawals.UpdateStatus(c.Request.Context(), principal(c), c.Param("id"), body.Status, body.AdminNotes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(updated, "Withdrawal status updated"))
}

func (h *Handler) CompleteWithdrawal(c *gin.Context) {
	updated, err := h.Withdrawals.Complete(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(updated, "Withdrawal completed"))
}
