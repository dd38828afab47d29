package worker

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task Types
const (
	TypeMeetingCleanup = "meeting-link-cleanup"
)

type MeetingCleanupPayload struct {
	MeetingID string `json:"meeting_id"`
}

func NewMeetingCleanupTask(meetingID string) (*asynq.Task, error) {
	data, err := json.Marshal(MeetingCleanupPayload{MeetingID: meetingID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMeetingCleanup, data), nil
}
