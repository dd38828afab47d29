package models

import (
	"time"
)

type MeetingRequest struct {
	ID                string        `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	OwnerUserID       string        `gorm:"column:owner_user_id;type:char(36);not null;index:idx_meeting_owner" json:"owner_user_id"`
	Purpose           string        `gorm:"column:purpose;type:text;not null" json:"purpose"`
	PreferredDate     string        `gorm:"column:preferred_date;size:10;not null" json:"preferred_date"`
	PreferredTime     string        `gorm:"column:preferred_time;size:8;not null" json:"preferred_time"`
	MeetingType       MeetingType   `gorm:"column:meeting_type;size:20;not null" json:"meeting_type"`
	Status            MeetingStatus `gorm:"column:status;size:20;not null;default:pending;index" json:"status"`
	ScheduledDate     *string       `gorm:"column:scheduled_date;size:10" json:"scheduled_date"`
	ScheduledTime     *string       `gorm:"column:scheduled_time;size:8" json:"scheduled_time"`
	MeetingLink       *string       `gorm:"column:meeting_link;size:512" json:"meeting_link"`
	ExternalMeetingID *string       `gorm:"column:external_meeting_id;size:64" json:"-"`
	AdminNotes        *string       `gorm:"column:admin_notes;type:text" json:"admin_notes"`
	CreatedAt         time.Time     `gorm:"column:created_at;index:idx_meeting_owner" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (MeetingRequest) TableName() string {
	return "meeting_requests"
}
