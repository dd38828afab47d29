package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome To Loan service",
		})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	protected := api.Group("")
	protected.Use(h.AuthRequired())

	protected.GET("/auth/me", h.Me)
	protected.POST("/auth/2fa/setup", h.SetupTwoFactor)
	protected.POST("/auth/2fa/enable", h.EnableTwoFactor)
	protected.POST("/auth/2fa/disable", h.DisableTwoFactor)

	protected.GET("/accounts/me", h.GetMyAccount)

	protected.POST("/withdrawals", h.CreateWithdrawal)
	protected.GET("/withdrawals", h.ListMyWithdrawals)
	protected.GET("/withdrawals/:id", h.GetWithdrawal)

	protected.POST("/meetings", h.CreateMeeting)
	protected.GET("/meetings", h.ListMyMeetings)
	protected.GET("/meetings/:id", h.GetMeeting)

	admin := protected.Group("/admin")
	admin.PUT("/users/:id/role", h.AssignRole)
	admin.POST("/accounts", h.OpenAccount)
	admin.GET("/withdrawals", h.ListAllWithdrawals)
	admin.PUT("/withdrawals/:id/status", h.UpdateWithdrawalStatus)
	admin.POST("/withdrawals/:id/complete", h.CompleteWithdrawal)
	admin.GET("/meetings", h.ListAllMeetings)
	admin.PUT("/meetings/:id/status", h.UpdateMeetingStatus)
}
