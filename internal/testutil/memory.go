// Package testutil provides in-memory implementations of the workflow ports
// for tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"loan-service/internal/models"
	"loan-service/internal/workflow"
)

// Clock hands out strictly increasing times, one second apart.
type Clock struct {
	mu   sync.Mutex
	next time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{next: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(time.Second)
	return t
}

// Balances is a static BalanceProvider.
type Balances map[string]decimal.Decimal

func (b Balances) AvailableBalance(_ context.Context, userID string) (decimal.Decimal, error) {
	bal, ok := b[userID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no loan account found for user %s", workflow.ErrNotFound, userID)
	}
	return bal, nil
}

// WithdrawalStore is a map backed workflow.WithdrawalStore.
type WithdrawalStore struct {
	mu   sync.Mutex
	rows map[string]models.WithdrawalRequest
}

func NewWithdrawalStore() *WithdrawalStore {
	return &WithdrawalStore{rows: map[string]models.WithdrawalRequest{}}
}

func (s *WithdrawalStore) Create(_ context.Context, req *models.WithdrawalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[req.ID]; ok {
		return fmt.Errorf("duplicate id %s", req.ID)
	}
	s.rows[req.ID] = *req
	return nil
}

func (s *WithdrawalStore) GetByID(_ context.Context, id string) (*models.WithdrawalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: withdrawal request %s", workflow.ErrNotFound, id)
	}
	return &row, nil
}

func (s *WithdrawalStore) ListByOwner(_ context.Context, ownerID string, page workflow.Page) ([]models.WithdrawalRequest, int64, error) {
	return s.list(page, func(r models.WithdrawalRequest) bool { return r.OwnerUserID == ownerID })
}

func (s *WithdrawalStore) ListAll(_ context.Context, page workflow.Page) ([]models.WithdrawalRequest, int64, error) {
	return s.list(page, func(models.WithdrawalRequest) bool { return true })
}

func (s *WithdrawalStore) list(page workflow.Page, keep func(models.WithdrawalRequest) bool) ([]models.WithdrawalRequest, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.WithdrawalRequest
	for _, r := range s.rows {
		if keep(r) {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return window(all, page), int64(len(all)), nil
}

func (s *WithdrawalStore) ConditionalUpdateStatus(_ context.Context, id string, expected, next models.WithdrawalStatus, fields workflow.WithdrawalFields) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok || row.Status != expected {
		return false, nil
	}
	row.Status = next
	if fields.AdminNotes != nil {
		notes := *fields.AdminNotes
		row.AdminNotes = &notes
	}
	row.UpdatedAt = time.Now().UTC()
	s.rows[id] = row
	return true, nil
}

// CountByStatus implements services.StatusCounter.
func (s *WithdrawalStore) CountByStatus(context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int64{}
	for _, r := range s.rows {
		out[string(r.Status)]++
	}
	return out, nil
}

// MeetingStore is a map backed workflow.MeetingStore. WithinTx records the
// prior state of every row fn writes and restores only those rows when fn
// fails.
type MeetingStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	rows map[string]models.MeetingRequest
	// SetLinkErr makes SetMeetingLink fail without writing.
	SetLinkErr error
}

func NewMeetingStore() *MeetingStore {
	return &MeetingStore{rows: map[string]models.MeetingRequest{}}
}

func (s *MeetingStore) Create(_ context.Context, req *models.MeetingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[req.ID]; ok {
		return fmt.Errorf("duplicate id %s", req.ID)
	}
	s.rows[req.ID] = *req
	return nil
}

func (s *MeetingStore) GetByID(_ context.Context, id string) (*models.MeetingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: meeting request %s", workflow.ErrNotFound, id)
	}
	return &row, nil
}

func (s *MeetingStore) ListByOwner(_ context.Context, ownerID string, page workflow.Page) ([]models.MeetingRequest, int64, error) {
	return s.list(page, func(r models.MeetingRequest) bool { return r.OwnerUserID == ownerID })
}

func (s *MeetingStore) ListAll(_ context.Context, page workflow.Page) ([]models.MeetingRequest, int64, error) {
	return s.list(page, func(models.MeetingRequest) bool { return true })
}

func (s *MeetingStore) list(page workflow.Page, keep func(models.MeetingRequest) bool) ([]models.MeetingRequest, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.MeetingRequest
	for _, r := range s.rows {
		if keep(r) {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return window(all, page), int64(len(all)), nil
}

func (s *MeetingStore) ConditionalUpdateStatus(_ context.Context, id string, expected, next models.MeetingStatus, fields workflow.MeetingFields) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok || row.Status != expected {
		return false, nil
	}
	row.Status = next
	if fields.ScheduledDate != nil {
		row.ScheduledDate = copyString(fields.ScheduledDate)
	}
	if fields.ScheduledTime != nil {
		row.ScheduledTime = copyString(fields.ScheduledTime)
	}
	if fields.AdminNotes != nil {
		row.AdminNotes = copyString(fields.AdminNotes)
	}
	row.UpdatedAt = time.Now().UTC()
	s.rows[id] = row
	return true, nil
}

func (s *MeetingStore) SetMeetingLink(_ context.Context, id string, link, externalID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetLinkErr != nil {
		return s.SetLinkErr
	}
	row, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("%w: meeting request %s", workflow.ErrNotFound, id)
	}
	row.MeetingLink = copyString(link)
	row.ExternalMeetingID = copyString(externalID)
	s.rows[id] = row
	return nil
}

func (s *MeetingStore) WithinTx(_ context.Context, fn func(tx workflow.MeetingStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &meetingTx{MeetingStore: s, before: map[string]*models.MeetingRequest{}}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// meetingTx journals the rows written through it. Writes made directly on
// the parent store meanwhile are left alone on rollback.
type meetingTx struct {
	*MeetingStore
	before map[string]*models.MeetingRequest
}

func (t *meetingTx) touch(id string) {
	if _, seen := t.before[id]; seen {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if row, ok := t.rows[id]; ok {
		t.before[id] = &row
	} else {
		t.before[id] = nil
	}
}

func (t *meetingTx) rollback() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, row := range t.before {
		if row == nil {
			delete(t.rows, id)
			continue
		}
		t.rows[id] = *row
	}
}

func (t *meetingTx) Create(ctx context.Context, req *models.MeetingRequest) error {
	t.touch(req.ID)
	return t.MeetingStore.Create(ctx, req)
}

func (t *meetingTx) ConditionalUpdateStatus(ctx context.Context, id string, expected, next models.MeetingStatus, fields workflow.MeetingFields) (bool, error) {
	t.touch(id)
	return t.MeetingStore.ConditionalUpdateStatus(ctx, id, expected, next, fields)
}

func (t *meetingTx) SetMeetingLink(ctx context.Context, id string, link, externalID *string) error {
	t.touch(id)
	return t.MeetingStore.SetMeetingLink(ctx, id, link, externalID)
}

func (t *meetingTx) WithinTx(_ context.Context, fn func(tx workflow.MeetingStore) error) error {
	return fn(t)
}

func (s *MeetingStore) CountByStatus(context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int64{}
	for _, r := range s.rows {
		out[string(r.Status)]++
	}
	return out, nil
}

func window[T any](all []T, page workflow.Page) []T {
	start := page.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// MeetingLinks records calls made to a workflow.MeetingLinkProvider.
type MeetingLinks struct {
	mu        sync.Mutex
	Created   []workflow.MeetingSpec
	Deleted   []string
	CreateErr error
	DeleteErr error
	// Block makes CreateMeeting wait for its context to expire.
	Block bool
	// BlockDelete does the same for DeleteMeeting.
	BlockDelete bool
	seq   int
}

func (m *MeetingLinks) CreateMeeting(ctx context.Context, spec workflow.MeetingSpec) (workflow.Meeting, error) {
	m.mu.Lock()
	m.Created = append(m.Created, spec)
	m.seq++
	seq := m.seq
	block, createErr := m.Block, m.CreateErr
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return workflow.Meeting{}, ctx.Err()
	}
	if createErr != nil {
		return workflow.Meeting{}, createErr
	}
	id := fmt.Sprintf("%d", 8800000+seq)
	return workflow.Meeting{ID: id, JoinURL: "https://meet.example.com/j/" + id}, nil
}

func (m *MeetingLinks) DeleteMeeting(ctx context.Context, meetingID string) error {
	m.mu.Lock()
	m.Deleted = append(m.Deleted, meetingID)
	block, deleteErr := m.BlockDelete, m.DeleteErr
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return deleteErr
}

func (m *MeetingLinks) CreateCalls() []workflow.MeetingSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]workflow.MeetingSpec(nil), m.Created...)
}

func (m *MeetingLinks) DeleteCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deleted...)
}

// CleanupQueue records enqueued meeting cleanups. Like a real broker call
// it fails once its context is done.
type CleanupQueue struct {
	mu       sync.Mutex
	Enqueued []string
	Err      error
}

func (q *CleanupQueue) EnqueueMeetingCleanup(ctx context.Context, meetingID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if q.Err != nil {
		return q.Err
	}
	q.Enqueued = append(q.Enqueued, meetingID)
	return nil
}

func (q *CleanupQueue) EnqueuedIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.Enqueued...)
}

// Identity maps bearer tokens to principals.
type Identity map[string]workflow.Principal

func (i Identity) ResolvePrincipal(_ context.Context, credential string) (workflow.Principal, error) {
	p, ok := i[strings.TrimSpace(credential)]
	if !ok {
		return workflow.Principal{}, workflow.ErrAuthentication
	}
	return p, nil
}
