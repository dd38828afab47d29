package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-service/internal/models"
	"loan-service/internal/workflow"
	"loan-service/pkg/common"
)

type CreateMeetingRequest struct {
	Purpose       string             `json:"purpose"`
	PreferredDate string             `json:"preferred_date"`
	PreferredTime string             `json:"preferred_time"`
	MeetingType   models.MeetingType `json:"meeting_type"`
}

type UpdateMeetingStatusRequest struct {
	Status        models.MeetingStatus `json:"status" binding:"required"`
	ScheduledDate *string              `json:"scheduled_date"`
	ScheduledTime *string              `json:"scheduled_time"`
	AdminNotes    *string              `json:"admin_notes"`
}

func (h *Handler) CreateMeeting(c *gin.Context) {
	var req CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.Meetings.Create(c.Request.Context(), principal(c), workflow.CreateMeetingInput{
		Purpose:       req.Purpose,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		MeetingType:   req.MeetingType,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewCreatedResponse(created, "Meeting request submitted"))
}

func (h *Handler) ListMyMeetings(c *gin.Context) {
	result, err := h.Meetings.ListForOwner(c.Request.Context(), principal(c), pageParams(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	paginated(c, result)
}

func (h *Handler) ListAllMeetings(c *gin.Context) {
	result, err := h.Meetings.ListAll(c.Request.Context(), principal(c), pageParams(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	paginated(c, result)
}

func (h *Handler) GetMeeting(c *gin.Context) {
	req, err := h.Meetings.Get(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(req, ""))
}

func (h *Handler) UpdateMeetingStatus(c *gin.Context) {
	var body UpdateMeetingStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.Meetings.UpdateStatus(c.Request.Context(), principal(c), c.Param("id"), body.Status, workflow.MeetingUpdate{
		ScheduledDate: body.ScheduledDate,
		ScheduledTime: body.ScheduledTime,
		AdminNotes:    body.AdminNotes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(updated, "Meeting status updated"))
}
