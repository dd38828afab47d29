package services

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

const DefaultReportSchedule = "0 0 * * *"

// StatusCounter counts rows of one request table grouped by status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type BacklogReport struct {
	Withdrawals map[string]int64 `json:"withdrawals"`
	Meetings    map[string]int64 `json:"meetings"`
	GeneratedAt time.Time        `json:"generated_at"`
}

type ReportingService struct {
	Withdrawals StatusCounter
	Meetings    StatusCounter
	Logger      *log.Logger
	Now         func() time.Time
}

func NewReportingService(withdrawals, meetings StatusCounter, logger *log.Logger) *ReportingService {
	if logger == nil {
		logger = log.Default()
	}
	return &ReportingService{
		Withdrawals: withdrawals,
		Meetings:    meetings,
		Logger:      logger.With("component", "reporting"),
		Now:         time.Now,
	}
}

func (s *ReportingService) Backlog(ctx context.Context) (*BacklogReport, error) {
	withdrawals, err := s.Withdrawals.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	meetings, err := s.Meetings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &BacklogReport{
		Withdrawals: withdrawals,
		Meetings:    meetings,
		GeneratedAt: s.Now().UTC(),
	}, nil
}

// LogBacklog writes the pending request counts to the log.
func (s *ReportingService) LogBacklog(ctx context.Context) {
	report, err := s.Backlog(ctx)
	if err != nil {
		s.Logger.Error("backlog report failed", "err", err)
		return
	}
	s.Logger.Info("request backlog",
		"pending_withdrawals", report.Withdrawals["pending"],
		"approved_withdrawals", report.Withdrawals["approved"],
		"pending_meetings", report.Meetings["pending"],
		"scheduled_meetings", report.Meetings["scheduled"],
	)
}

// StartScheduler runs LogBacklog on the given cron schedule. The returned
// cron must be stopped by the caller.
func (s *ReportingService) StartScheduler(schedule string) (*cron.Cron, error) {
	if schedule == "" {
		schedule = DefaultReportSchedule
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.LogBacklog(ctx)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	s.Logger.Info("backlog report scheduler started", "schedule", schedule)
	return c, nil
}
