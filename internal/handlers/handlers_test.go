package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-service/internal/auth"
	"loan-service/internal/models"
	"loan-service/internal/services"
	"loan-service/internal/testutil"
	"loan-service/internal/workflow"
)

var (
	adminP = workflow.Principal{ID: "admin-1", Role: models.RoleAdmin}
	aliceP = workflow.Principal{ID: "alice", Role: models.RoleUser}
	bobP   = workflow.Principal{ID: "bob", Role: models.RoleUser}
)

type testServer struct {
	router   *gin.Engine
	users    *testutil.UserStore
	accounts *testutil.AccountStore
	links    *testutil.MeetingLinks
	tokens   *auth.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard)

	users := testutil.NewUserStore()
	accounts := testutil.NewAccountStore()
	links := &testutil.MeetingLinks{}

	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour, users)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, accounts.Create(ctx, &models.LoanAccount{
		ID: "acc-alice", UserID: aliceP.ID, AccountNumber: "LN00000001",
		Principal: decimal.NewFromInt(5000), AvailableBalance: decimal.NewFromInt(1000),
	}))

	meetings := workflow.NewMeetingService(testutil.NewMeetingStore(), links, &testutil.CleanupQueue{}, workflow.MeetingOptions{
		Timeout: time.Second,
		Logger:  logger,
	})
	meetings.Now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	identity := identityChain{
		testutil.Identity{"admin-token": adminP, "alice-token": aliceP, "bob-token": bobP},
		tokens,
	}
	h := NewHandler(
		identity,
		services.NewAuthService(users, tokens, auth.NewTOTP("LoanService"), logger),
		services.NewAccountService(accounts, users, logger),
		workflow.NewWithdrawalService(testutil.NewWithdrawalStore(), accounts, logger),
		meetings,
		logger,
	)

	r := gin.New()
	RegisterRoutes(r, h)
	return &testServer{router: r, users: users, accounts: accounts, links: links, tokens: tokens}
}

// identityChain accepts the fixed test tokens as well as real JWTs.
type identityChain struct {
	fixed testutil.Identity
	jwt   *auth.TokenIssuer
}

func (c identityChain) ResolvePrincipal(ctx context.Context, credential string) (workflow.Principal, error) {
	if p, err := c.fixed.ResolvePrincipal(ctx, trimBearer(credential)); err == nil {
		return p, nil
	}
	return c.jwt.ResolvePrincipal(ctx, credential)
}

func trimBearer(s string) string {
	if len(s) > 7 && s[:7] == "Bearer " {
		return s[7:]
	}
	return s
}

type envelope struct {
	Status      int             `json:"status"`
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data"`
	Count       int64           `json:"count"`
	CurrentPage int             `json:"currentPage"`
	LastPage    int             `json:"lastPage"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/api/withdrawals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.do(t, http.MethodGet, "/api/withdrawals", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodGet, "/api/admin/withdrawals", "alice-token", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestWithdrawalEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/withdrawals", "alice-token", gin.H{"amount": "250.00", "reason": "Tuition"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created models.WithdrawalRequest
	decodeData(t, env, &created)
	assert.Equal(t, models.WithdrawalPending, created.Status)
	assert.Equal(t, models.UrgencyNormal, created.Urgency)

	code, env = s.do(t, http.MethodPost, "/api/withdrawals", "alice-token", gin.H{"amount": 5000, "reason": "Car", "urgency": "high"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "insufficient funds")

	code, _ = s.do(t, http.MethodPost, "/api/withdrawals", "alice-token", gin.H{"amount": 0, "reason": "x"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/withdrawals", "bob-token", gin.H{"amount": 10, "reason": "x"})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(t, http.MethodGet, "/api/withdrawals?page=1&limit=10", "alice-token", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), env.Count)
	assert.Equal(t, 1, env.CurrentPage)

	code, env = s.do(t, http.MethodGet, "/api/withdrawals", "bob-token", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(0), env.Count)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, _ = s.do(t, http.MethodGet, "/api/withdrawals/"+created.ID, "bob-token", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(t, http.MethodGet, "/api/withdrawals/missing", "alice-token", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPut, "/api/admin/withdrawals/"+created.ID+"/status", "alice-token", gin.H{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodPost, "/api/admin/withdrawals/"+created.ID+"/complete", "admin-token", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodPut, "/api/admin/withdrawals/"+created.ID+"/status", "admin-token", gin.H{"status": "approved", "admin_notes": "ok"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = s.do(t, http.MethodPut, "/api/admin/withdrawals/"+created.ID+"/status", "admin-token", gin.H{"status": "paid"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPost, "/api/admin/withdrawals/"+created.ID+"/complete", "admin-token", nil)
	require.Equal(t, http.StatusOK, code)
	var done models.WithdrawalRequest
	decodeData(t, env, &done)
	assert.Equal(t, models.WithdrawalCompleted, done.Status)

	code, _ = s.do(t, http.MethodPost, "/api/admin/withdrawals/"+created.ID+"/complete", "admin-token", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodGet, "/api/admin/withdrawals", "admin-token", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), env.Count)
}

func TestMeetingEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/meetings", "alice-token", gin.H{
		"purpose": "Discuss repayment", "preferred_date": "2026-03-05", "preferred_time": "14:00", "meeting_type": "video",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created models.MeetingRequest
	decodeData(t, env, &created)

	code, _ = s.do(t, http.MethodPost, "/api/meetings", "alice-token", gin.H{
		"purpose": "Too late", "preferred_date": "2020-01-01", "preferred_time": "09:00", "meeting_type": "phone",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPut, "/api/admin/meetings/"+created.ID+"/status", "admin-token", gin.H{"status": "scheduled"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var scheduled models.MeetingRequest
	decodeData(t, env, &scheduled)
	require.NotNil(t, scheduled.MeetingLink)
	assert.Len(t, s.links.CreateCalls(), 1)

	code, _ = s.do(t, http.MethodPut, "/api/admin/meetings/"+created.ID+"/status", "admin-token", gin.H{"status": "pending"})
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodPut, "/api/admin/meetings/"+created.ID+"/status", "admin-token", gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var cancelled models.MeetingRequest
	decodeData(t, env, &cancelled)
	assert.Nil(t, cancelled.MeetingLink)

	code, env = s.do(t, http.MethodGet, "/api/meetings", "alice-token", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), env.Count)

	code, _ = s.do(t, http.MethodGet, "/api/meetings/"+created.ID, "bob-token", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodGet, "/api/admin/meetings", "bob-token", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestMeetingProviderFailureIsBadGateway(t *testing.T) {
	s := newTestServer(t)
	s.links.CreateErr = errors.New("zoom unavailable")

	_, env := s.do(t, http.MethodPost, "/api/meetings", "alice-token", gin.H{
		"purpose": "Review", "preferred_date": "2026-03-05", "preferred_time": "14:00", "meeting_type": "video",
	})
	var created models.MeetingRequest
	decodeData(t, env, &created)

	code, _ := s.do(t, http.MethodPut, "/api/admin/meetings/"+created.ID+"/status", "admin-token", gin.H{"status": "scheduled"})
	assert.Equal(t, http.StatusBadGateway, code)

	_, env = s.do(t, http.MethodGet, "/api/meetings/"+created.ID, "alice-token", nil)
	var after models.MeetingRequest
	decodeData(t, env, &after)
	assert.Equal(t, models.MeetingPending, after.Status)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"email": "carol@example.com", "password": "s3cretpass", "full_name": "Carol"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var user models.User
	decodeData(t, env, &user)
	assert.NotContains(t, string(env.Data), "password")

	code, _ = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"email": "carol@example.com", "password": "s3cretpass"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "carol@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", env.Message)

	code, env = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "carol@example.com", "password": "s3cretpass"})
	require.Equal(t, http.StatusOK, code)
	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &login)
	require.NotEmpty(t, login.Token)

	code, env = s.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var me models.User
	decodeData(t, env, &me)
	assert.Equal(t, user.ID, me.ID)

	code, env = s.do(t, http.MethodPost, "/api/auth/2fa/setup", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var key auth.TwoFactorKey
	decodeData(t, env, &key)
	assert.NotEmpty(t, key.Secret)

	code, _ = s.do(t, http.MethodPost, "/api/auth/2fa/enable", login.Token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPut, "/api/admin/users/"+user.ID+"/role", login.Token, gin.H{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPut, "/api/admin/users/"+user.ID+"/role", "admin-token", gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, code, env.Message)

	// role changes apply to the token already held
	code, _ = s.do(t, http.MethodGet, "/api/admin/withdrawals", login.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodPut, "/api/admin/users/"+user.ID+"/role", "admin-token", gin.H{"role": "user"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = s.do(t, http.MethodGet, "/api/admin/withdrawals", login.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestLoginTwoFactorRequired(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	hash, err := auth.HashPassword("s3cretpass")
	require.NoError(t, err)
	require.NoError(t, s.users.Create(ctx, &models.User{
		ID: "dave", Email: "dave@example.com", PasswordHash: hash, Role: models.RoleUser,
		TwoFactorEnabled: true, TwoFactorSecret: "JBSWY3DPEHPK3PXP",
	}))

	code, env := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "dave@example.com", "password": "s3cretpass"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.JSONEq(t, `{"two_factor_required": true}`, string(env.Data))
}

func TestAccountEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.users.Create(ctx, &models.User{ID: bobP.ID, Email: "bob@example.com", Role: models.RoleUser}))

	code, _ := s.do(t, http.MethodGet, "/api/accounts/me", "bob-token", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPost, "/api/admin/accounts", "bob-token", gin.H{"user_id": bobP.ID, "principal": "1000"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := s.do(t, http.MethodPost, "/api/admin/accounts", "admin-token", gin.H{"user_id": bobP.ID, "principal": "1000", "available_balance": "400"})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, _ = s.do(t, http.MethodPost, "/api/admin/accounts", "admin-token", gin.H{"user_id": bobP.ID, "principal": "1000", "available_balance": "400"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodGet, "/api/accounts/me", "bob-token", nil)
	require.Equal(t, http.StatusOK, code)
	var account models.LoanAccount
	decodeData(t, env, &account)
	assert.Equal(t, "400", account.AvailableBalance.String())
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		workflow.ErrValidation:                 http.StatusBadRequest,
		workflow.ErrInsufficientFunds:          http.StatusBadRequest,
		workflow.ErrAuthentication:             http.StatusUnauthorized,
		workflow.ErrAuthorization:              http.StatusForbidden,
		workflow.ErrNotFound:                   http.StatusNotFound,
		&workflow.TransitionError{Entity: "x"}: http.StatusConflict,
		workflow.ErrConflict:                   http.StatusConflict,
		workflow.ErrIntegration:                http.StatusBadGateway,
		errors.New("connection reset by peer"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, nil, nil, nil, log.New(io.Discard))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.respondError(c, errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Contains(t, w.Body.String(), "internal server error")
}
