package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	cleanupMaxRetry = 10
	cleanupQueue    = "default"
)

// Enqueuer is the part of *asynq.Client the cleanup queue needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// CleanupQueue hands remote meeting deletions to the background worker.
type CleanupQueue struct {
	Client Enqueuer
}

func NewCleanupQueue(client Enqueuer) *CleanupQueue {
	return &CleanupQueue{Client: client}
}

func (q *CleanupQueue) EnqueueMeetingCleanup(ctx context.Context, meetingID string) error {
	task, err := NewMeetingCleanupTask(meetingID)
	if err != nil {
		return err
	}
	_, err = q.Client.EnqueueContext(ctx, task,
		asynq.MaxRetry(cleanupMaxRetry),
		asynq.Queue(cleanupQueue),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue meeting cleanup %s: %w", meetingID, err)
	}
	return nil
}
