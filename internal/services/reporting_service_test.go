package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-service/internal/testutil"
)

func TestBacklog(t *testing.T) {
	svc := NewReportingService(
		testutil.StatusCounts{Counts: map[string]int64{"pending": 3, "approved": 1}},
		testutil.StatusCounts{Counts: map[string]int64{"scheduled": 2}},
		nil,
	)
	svc.Now = func() time.Time { return fixedNow }

	report, err := svc.Backlog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.Withdrawals["pending"])
	assert.Equal(t, int64(2), report.Meetings["scheduled"])
	assert.Equal(t, fixedNow, report.GeneratedAt)
}

func TestBacklogPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	svc := NewReportingService(testutil.StatusCounts{}, testutil.StatusCounts{Err: boom}, nil)

	_, err := svc.Backlog(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestStartScheduler(t *testing.T) {
	svc := NewReportingService(testutil.StatusCounts{}, testutil.StatusCounts{}, nil)

	_, err := svc.StartScheduler("not a schedule")
	assert.Error(t, err)

	c, err := svc.StartScheduler("")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	c.Stop()
}
