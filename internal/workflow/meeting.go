package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"loan-service/internal/models"
)

const (
	// DefaultMeetingDuration is the length, in minutes, of created video meetings.
	DefaultMeetingDuration = 60
	// DefaultIntegrationTimeout bounds each call to the meeting link provider.
	DefaultIntegrationTimeout = 10 * time.Second

	dateLayout = "2006-01-02"
)

var timeLayouts = []string{"15:04", "15:04:05"}

type MeetingService struct {
	Store    MeetingStore
	Links    MeetingLinkProvider
	Cleanup  CleanupQueue
	Timeout  time.Duration
	Location *time.Location
	Logger   *log.Logger
	Now      func() time.Time
}

// MeetingOptions tunes a MeetingService. Zero values pick the defaults.
type MeetingOptions struct {
	Timeout  time.Duration
	Location *time.Location
	Logger   *log.Logger
}

// NewMeetingService wires the meeting workflow. links and cleanup may be nil:
// without links video meetings cannot be scheduled, without cleanup a failed
// remote delete blocks cancellation.
func NewMeetingService(store MeetingStore, links MeetingLinkProvider, cleanup CleanupQueue, opts MeetingOptions) *MeetingService {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultIntegrationTimeout
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &MeetingService{
		Store:    store,
		Links:    links,
		Cleanup:  cleanup,
		Timeout:  opts.Timeout,
		Location: opts.Location,
		Logger:   opts.Logger.With("component", "meetings"),
		Now:      time.Now,
	}
}

type CreateMeetingInput struct {
	Purpose       string
	PreferredDate string
	PreferredTime string
	MeetingType   models.MeetingType
}

// MeetingUpdate carries the admin supplied fields of a status change.
// Empty schedule fields fall back to the requester's preferred slot.
type MeetingUpdate struct {
	ScheduledDate *string
	ScheduledTime *string
	AdminNotes    *string
}

// ParseMeetingTime combines a YYYY-MM-DD date and an HH:MM[:SS] time.
func ParseMeetingTime(date, clock string, loc *time.Location) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(dateLayout+" "+layout, date+" "+clock, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, validationf("invalid date/time %q %q, expected YYYY-MM-DD and HH:MM", date, clock)
}

func (s *MeetingService) Create(ctx context.Context, p Principal, in CreateMeetingInput) (*models.MeetingRequest, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Purpose) == "" {
		return nil, validationf("purpose is required")
	}
	if !in.MeetingType.Valid() {
		return nil, validationf("meeting_type must be one of video, phone, in_person")
	}
	at, err := ParseMeetingTime(in.PreferredDate, in.PreferredTime, s.Location)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	if at.Before(now.Truncate(time.Minute)) {
		return nil, validationf("preferred date and time must not be in the past")
	}

	stamp := now.UTC()
	req := &models.MeetingRequest{
		ID:            uuid.NewString(),
		OwnerUserID:   p.ID,
		Purpose:       strings.TrimSpace(in.Purpose),
		PreferredDate: strings.TrimSpace(in.PreferredDate),
		PreferredTime: strings.TrimSpace(in.PreferredTime),
		MeetingType:   in.MeetingType,
		Status:        models.MeetingPending,
		CreatedAt:     stamp,
		UpdatedAt:     stamp,
	}
	if err := s.Store.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("saving meeting request: %w", err)
	}

	s.Logger.Info("meeting requested", "id", req.ID, "owner", p.ID, "type", req.MeetingType)
	return req, nil
}

func (s *MeetingService) ListForOwner(ctx context.Context, p Principal, page Page) (PageResult[models.MeetingRequest], error) {
	if err := requireAuthenticated(p); err != nil {
		return PageResult[models.MeetingRequest]{}, err
	}
	items, total, err := s.Store.ListByOwner(ctx, p.ID, page)
	if err != nil {
		return PageResult[models.MeetingRequest]{}, fmt.Errorf("listing meeting requests: %w", err)
	}
	return PageResult[models.MeetingRequest]{Items: items, Total: total, Page: page}, nil
}

func (s *MeetingService) ListAll(ctx context.Context, p Principal, page Page) (PageResult[models.MeetingRequest], error) {
	if err := requireAdmin(p); err != nil {
		return PageResult[models.MeetingRequest]{}, err
	}
	items, total, err := s.Store.ListAll(ctx, page)
	if err != nil {
		return PageResult[models.MeetingRequest]{}, fmt.Errorf("listing meeting requests: %w", err)
	}
	return PageResult[models.MeetingRequest]{Items: items, Total: total, Page: page}, nil
}

func (s *MeetingService) Get(ctx context.Context, p Principal, id string) (*models.MeetingRequest, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	req, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireViewer(p, req.OwnerUserID); err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateStatus moves a meeting request along the meeting graph. Admin only.
//
// Scheduling a video meeting creates the remote meeting inside the same
// store transaction as the status change; any provider failure rolls the
// status back. Cancelling a scheduled video meeting deletes the remote one:
// with a cleanup queue the delete runs after commit and falls back to the
// queue, without one it runs inside the transaction and a failure blocks
// the cancellation.
func (s *MeetingService) UpdateStatus(ctx context.Context, p Principal, id string, next models.MeetingStatus, in MeetingUpdate) (*models.MeetingRequest, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if !next.Valid() {
		return nil, validationf("unknown meeting status %q", next)
	}

	current, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateMeetingTransition(current.Status, next); err != nil {
		return nil, err
	}

	fields := MeetingFields{AdminNotes: in.AdminNotes}
	var start time.Time
	if next == models.MeetingScheduled {
		date := pick(in.ScheduledDate, current.PreferredDate)
		clock := pick(in.ScheduledTime, current.PreferredTime)
		if start, err = ParseMeetingTime(date, clock, s.Location); err != nil {
			return nil, err
		}
		fields.ScheduledDate = &date
		fields.ScheduledTime = &clock
	}

	var created *Meeting
	var release string
	err = s.Store.WithinTx(ctx, func(tx MeetingStore) error {
		ok, err := tx.ConditionalUpdateStatus(ctx, id, current.Status, next, fields)
		if err != nil {
			return fmt.Errorf("updating meeting status: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: meeting %s is no longer %s", ErrConflict, id, current.Status)
		}

		switch {
		case next == models.MeetingScheduled && current.MeetingType == models.MeetingVideo:
			m, err := s.createLink(ctx, current, start)
			if err != nil {
				return err
			}
			created = &m
			return tx.SetMeetingLink(ctx, id, &m.JoinURL, &m.ID)

		case next == models.MeetingCancelled && (current.MeetingLink != nil || current.ExternalMeetingID != nil):
			if current.ExternalMeetingID != nil {
				if s.Cleanup != nil {
					release = *current.ExternalMeetingID
				} else if err := s.releaseLink(ctx, *current.ExternalMeetingID); err != nil {
					return err
				}
			}
			return tx.SetMeetingLink(ctx, id, nil, nil)
		}
		return nil
	})
	if err != nil {
		if created != nil {
			s.discardLink(ctx, created.ID)
		}
		return nil, err
	}
	if release != "" {
		s.releaseCommitted(ctx, release)
	}

	s.Logger.Info("meeting status changed", "id", id, "from", current.Status, "to", next, "admin", p.ID)
	return s.Store.GetByID(ctx, id)
}

func (s *MeetingService) createLink(ctx context.Context, req *models.MeetingRequest, start time.Time) (Meeting, error) {
	if s.Links == nil {
		return Meeting{}, fmt.Errorf("%w: no meeting link provider configured", ErrIntegration)
	}
	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	m, err := s.Links.CreateMeeting(callCtx, MeetingSpec{
		Topic:           req.Purpose,
		StartTime:       start,
		DurationMinutes: DefaultMeetingDuration,
	})
	if err != nil {
		s.Logger.Warn("meeting link creation failed", "id", req.ID, "err", err)
		return Meeting{}, fmt.Errorf("%w: creating meeting link: %v", ErrIntegration, err)
	}
	return m, nil
}

// releaseLink deletes a remote meeting. A meeting that is already gone is
// fine; other failures are handed to the cleanup queue when one is set.
func (s *MeetingService) releaseLink(ctx context.Context, meetingID string) error {
	if s.Links == nil {
		return s.deferCleanup(ctx, meetingID, errors.New("no meeting link provider configured"))
	}
	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	err := s.Links.DeleteMeeting(callCtx, meetingID)
	if err == nil || errors.Is(err, ErrMeetingNotFound) {
		return nil
	}
	return s.deferCleanup(ctx, meetingID, err)
}

func (s *MeetingService) deferCleanup(ctx context.Context, meetingID string, cause error) error {
	if s.Cleanup == nil {
		return fmt.Errorf("%w: deleting meeting %s: %v", ErrIntegration, meetingID, cause)
	}
	enqCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := s.Cleanup.EnqueueMeetingCleanup(enqCtx, meetingID); err != nil {
		return fmt.Errorf("%w: deleting meeting %s: %v (enqueue cleanup: %v)", ErrIntegration, meetingID, cause, err)
	}
	s.Logger.Warn("remote meeting delete deferred", "meeting", meetingID, "err", cause)
	return nil
}

// releaseCommitted deletes the remote meeting of a committed cancellation.
// The cancellation stands whatever happens here.
func (s *MeetingService) releaseCommitted(ctx context.Context, meetingID string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.releaseLink(ctx, meetingID); err != nil {
		s.Logger.Error("orphaned remote meeting", "meeting", meetingID, "err", err)
	}
}

// discardLink removes a remote meeting whose status change did not commit.
func (s *MeetingService) discardLink(ctx context.Context, meetingID string) {
	ctx = context.WithoutCancel(ctx)
	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	err := s.Links.DeleteMeeting(callCtx, meetingID)
	cancel()
	if err == nil || errors.Is(err, ErrMeetingNotFound) {
		return
	}
	s.Logger.Error("orphaned remote meeting", "meeting", meetingID, "err", err)
	if s.Cleanup == nil {
		return
	}

	enqCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := s.Cleanup.EnqueueMeetingCleanup(enqCtx, meetingID); err != nil {
		s.Logger.Error("enqueue meeting cleanup failed", "meeting", meetingID, "err", err)
	}
}

func pick(override *string, fallback string) string {
	if override != nil && strings.TrimSpace(*override) != "" {
		return strings.TrimSpace(*override)
	}
	return fallback
}
