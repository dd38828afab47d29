package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/hibiken/asynq"

	"loan-service/internal/workflow"
)

// MeetingDeleter removes a remote video meeting.
type MeetingDeleter interface {
	DeleteMeeting(ctx context.Context, meetingID string) error
}

type Worker struct {
	Meetings MeetingDeleter
	Logger   *log.Logger
}

func NewWorker(meetings MeetingDeleter, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.Default()
	}
	return &Worker{
		Meetings: meetings,
		Logger:   logger.With("component", "worker"),
	}
}

// HandleMeetingCleanup deletes a meeting whose removal failed during
// cancellation. A meeting that is already gone counts as done.
func (w *Worker) HandleMeetingCleanup(ctx context.Context, t *asynq.Task) error {
	var p MeetingCleanupPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if p.MeetingID == "" {
		return fmt.Errorf("meeting_id is empty: %w", asynq.SkipRetry)
	}

	err := w.Meetings.DeleteMeeting(ctx, p.MeetingID)
	switch {
	case err == nil:
		w.Logger.Info("remote meeting deleted", "meeting_id", p.MeetingID)
		return nil
	case errors.Is(err, workflow.ErrMeetingNotFound):
		w.Logger.Info("remote meeting already gone", "meeting_id", p.MeetingID)
		return nil
	default:
		w.Logger.Warn("remote meeting delete failed", "meeting_id", p.MeetingID, "err", err)
		return err
	}
}

func NewServeMux(w *Worker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeMeetingCleanup, w.HandleMeetingCleanup)
	return mux
}

// StartWorker blocks processing tasks until the server receives a signal.
func StartWorker(redisOpt asynq.RedisClientOpt, w *Worker) error {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)
	return srv.Run(NewServeMux(w))
}
