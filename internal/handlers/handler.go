package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"loan-service/internal/services"
	"loan-service/internal/workflow"
	"loan-service/pkg/common"
)

const principalKey = "principal"

type Handler struct {
	Identity    workflow.IdentityProvider
	Auth        *services.AuthService
	Accounts    *services.AccountService
	Withdrawals *workflow.WithdrawalService
	Meetings    *workflow.MeetingService
	Logger      *log.Logger
}

func NewHandler(identity workflow.IdentityProvider, authSvc *services.AuthService, accounts *services.AccountService, withdrawals *workflow.WithdrawalService, meetings *workflow.MeetingService, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		Identity:    identity,
		Auth:        authSvc,
		Accounts:    accounts,
		Withdrawals: withdrawals,
		Meetings:    meetings,
		Logger:      logger.With("component", "http"),
	}
}

// AuthRequired resolves the bearer token into a principal or aborts with 401.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := h.Identity.ResolvePrincipal(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			h.respondError(c, err)
			c.Abort()
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func principal(c *gin.Context) workflow.Principal {
	p, _ := c.Get(principalKey)
	out, _ := p.(workflow.Principal)
	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrValidation), errors.Is(err, workflow.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, workflow.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition), errors.Is(err, workflow.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrIntegration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		message = "internal server error"
	}
	c.JSON(status, common.NewErrorResponse(message, nil, status))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
}

// pageParams reads ?page= and ?limit= (page_size is accepted as an alias).
func pageParams(c *gin.Context) workflow.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit == 0 {
		limit, _ = strconv.Atoi(c.Query("page_size"))
	}
	return workflow.NewPage(page, limit)
}

func paginated[T any](c *gin.Context, result workflow.PageResult[T]) {
	items := result.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, common.PaginateResponse(items, result.Total, result.Page.Number, result.Page.Size, ""))
}
