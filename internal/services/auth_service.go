package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"loan-service/internal/auth"
	"loan-service/internal/models"
	"loan-service/internal/workflow"
)

var (
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = fmt.Errorf("%w: Invalid credentials", workflow.ErrAuthentication)
	ErrTwoFactorRequired  = fmt.Errorf("%w: two-factor code required", workflow.ErrAuthentication)
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
	UpdateTwoFactor(ctx context.Context, id string, enabled bool, secret string) error
}

type AuthService struct {
	Users         UserStore
	Tokens        *auth.TokenIssuer
	TOTP          *auth.TOTP
	Logger        *log.Logger
	Now           func() time.Time
	CheckPassword func(hash, password string) bool
}

func NewAuthService(users UserStore, tokens *auth.TokenIssuer, otp *auth.TOTP, logger *log.Logger) *AuthService {
	if logger == nil {
		logger = log.Default()
	}
	return &AuthService{
		Users:         users,
		Tokens:        tokens,
		TOTP:          otp,
		Logger:        logger.With("component", "auth"),
		Now:           time.Now,
		CheckPassword: auth.CheckPassword,
	}
}

type RegisterDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, data RegisterDTO) (*models.User, error) {
	email := normalizeEmail(data.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: a valid email is required", workflow.ErrValidation)
	}

	hash, err := auth.HashPassword(data.Password)
	if errors.Is(err, auth.ErrWeakPassword) {
		return nil, fmt.Errorf("%w: %v", workflow.ErrValidation, err)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", workflow.ErrValidation)
	} else if !errors.Is(err, workflow.ErrNotFound) {
		return nil, err
	}

	now := s.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(data.FullName),
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, workflow.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", workflow.ErrValidation)
		}
		return nil, err
	}

	s.Logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, data LoginDTO) (*LoginResult, error) {
	user, err := s.Users.GetByEmail(ctx, normalizeEmail(data.Email))
	if errors.Is(err, workflow.ErrNotFound) {
		// same bcrypt cost as a real account
		s.CheckPassword(auth.PlaceholderHash(), data.Password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.CheckPassword(user.PasswordHash, data.Password) {
		return nil, ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		if strings.TrimSpace(data.TOTPCode) == "" {
			return nil, ErrTwoFactorRequired
		}
		if !s.TOTP.Validate(strings.TrimSpace(data.TOTPCode), user.TwoFactorSecret) {
			return nil, ErrInvalidCredentials
		}
	}

	token, err := s.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

// Me returns the caller's own user record.
func (s *AuthService) Me(ctx context.Context, p workflow.Principal) (*models.User, error) {
	if p.ID == "" {
		return nil, workflow.ErrAuthentication
	}
	return s.Users.GetByID(ctx, p.ID)
}

// SetupTwoFactor stores a new TOTP secret for the caller. It is not enforced
// until EnableTwoFactor confirms a code generated from it.
func (s *AuthService) SetupTwoFactor(ctx context.Context, p workflow.Principal) (auth.TwoFactorKey, error) {
	user, err := s.Me(ctx, p)
	if err != nil {
		return auth.TwoFactorKey{}, err
	}
	if user.TwoFactorEnabled {
		return auth.TwoFactorKey{}, fmt.Errorf("%w: two-factor authentication is already enabled", workflow.ErrValidation)
	}

	key, err := s.TOTP.Generate(user.Email)
	if err != nil {
		return auth.TwoFactorKey{}, fmt.Errorf("generate totp secret: %w", err)
	}
	if err := s.Users.UpdateTwoFactor(ctx, user.ID, false, key.Secret); err != nil {
		return auth.TwoFactorKey{}, err
	}
	return key, nil
}

func (s *AuthService) EnableTwoFactor(ctx context.Context, p workflow.Principal, code string) error {
	user, err := s.Me(ctx, p)
	if err != nil {
		return err
	}
	if user.TwoFactorSecret == "" {
		return fmt.Errorf("%w: two-factor authentication has not been set up", workflow.ErrValidation)
	}
	if !s.TOTP.Validate(strings.TrimSpace(code), user.TwoFactorSecret) {
		return fmt.Errorf("%w: invalid two-factor code", workflow.ErrValidation)
	}
	if err := s.Users.UpdateTwoFactor(ctx, user.ID, true, user.TwoFactorSecret); err != nil {
		return err
	}
	s.Logger.Info("two-factor enabled", "user_id", user.ID)
	return nil
}

func (s *AuthService) DisableTwoFactor(ctx context.Context, p workflow.Principal, code string) error {
	user, err := s.Me(ctx, p)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled {
		return fmt.Errorf("%w: two-factor authentication is not enabled", workflow.ErrValidation)
	}
	if !s.TOTP.Validate(strings.TrimSpace(code), user.TwoFactorSecret) {
		return fmt.Errorf("%w: invalid two-factor code", workflow.ErrValidation)
	}
	if err := s.Users.UpdateTwoFactor(ctx, user.ID, false, ""); err != nil {
		return err
	}
	s.Logger.Info("two-factor disabled", "user_id", user.ID)
	return nil
}

// AssignRole changes another user's role. Admin only.
func (s *AuthService) AssignRole(ctx context.Context, p workflow.Principal, userID string, role models.Role) (*models.User, error) {
	if p.ID == "" {
		return nil, workflow.ErrAuthentication
	}
	if !workflow.CanAdminister(p) {
		return nil, fmt.Errorf("%w: admin role required", workflow.ErrAuthorization)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be user or admin", workflow.ErrValidation)
	}
	if err := s.Users.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}

	s.Logger.Info("role assigned", "user_id", userID, "role", role, "by", p.ID)
	return s.Users.GetByID(ctx, userID)
}
