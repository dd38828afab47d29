package workflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"loan-service/internal/models"
)

// Page selects a window of a listing. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageResult is one page of a listing plus the total number of rows.
type PageResult[T any] struct {
	Items []T
	Total int64
	Page  Page
}

// IdentityProvider resolves a credential (bearer token) into a Principal.
// It fails with ErrAuthentication.
type IdentityProvider interface {
	ResolvePrincipal(ctx context.Context, credential string) (Principal, error)
}

// BalanceProvider reads a user's available loan balance. It fails with
// ErrNotFound when the user has no loan account.
type BalanceProvider interface {
	AvailableBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}

// WithdrawalFields are the admin-controlled columns written with a status change.
type WithdrawalFields struct {
	AdminNotes *string
}

// WithdrawalStore persists withdrawal requests. GetByID fails with ErrNotFound.
type WithdrawalStore interface {
	Create(ctx context.Context, req *models.WithdrawalRequest) error
	GetByID(ctx context.Context, id string) (*models.WithdrawalRequest, error)
	ListByOwner(ctx context.Context, ownerID string, page Page) ([]models.WithdrawalRequest, int64, error)
	ListAll(ctx context.Context, page Page) ([]models.WithdrawalRequest, int64, error)
	// ConditionalUpdateStatus moves id from expected to next and reports
	// false when the row was not in expected.
	ConditionalUpdateStatus(ctx context.Context, id string, expected, next models.WithdrawalStatus, fields WithdrawalFields) (bool, error)
}

type MeetingFields struct {
	ScheduledDate *string
	ScheduledTime *string
	AdminNotes    *string
}

// MeetingStore persists meeting requests. WithinTx runs fn against a store
// bound to one database transaction; a non-nil error from fn rolls it back.
type MeetingStore interface {
	Create(ctx context.Context, req *models.MeetingRequest) error
	GetByID(ctx context.Context, id string) (*models.MeetingRequest, error)
	ListByOwner(ctx context.Context, ownerID string, page Page) ([]models.MeetingRequest, int64, error)
	ListAll(ctx context.Context, page Page) ([]models.MeetingRequest, int64, error)
	ConditionalUpdateStatus(ctx context.Context, id string, expected, next models.MeetingStatus, fields MeetingFields) (bool, error)
	// SetMeetingLink stores (or with nil values clears) the join link and the
	// provider's meeting id.
	SetMeetingLink(ctx context.Context, id string, link, externalID *string) error
	WithinTx(ctx context.Context, fn func(tx MeetingStore) error) error
}

// MeetingSpec describes a video meeting to create.
type MeetingSpec struct {
	Topic           string
	StartTime       time.Time
	DurationMinutes int
}

// Meeting is what the provider returns for a created meeting.
type Meeting struct {
	ID      string
	JoinURL string
}

// MeetingLinkProvider creates and deletes video meetings. DeleteMeeting
// returns ErrMeetingNotFound when the meeting is already gone.
type MeetingLinkProvider interface {
	CreateMeeting(ctx context.Context, spec MeetingSpec) (Meeting, error)
	DeleteMeeting(ctx context.Context, meetingID string) error
}

// CleanupQueue defers deletion of a remote meeting to a background worker.
type CleanupQueue interface {
	EnqueueMeetingCleanup(ctx context.Context, meetingID string) error
}
