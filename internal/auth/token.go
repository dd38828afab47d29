package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"loan-service/internal/models"
	"loan-service/internal/workflow"
)

const DefaultTokenTTL = 24 * time.Hour

// Claims is the JWT payload. Subject carries the user id. Role records the
// role at issue time only; ResolvePrincipal reads the current one.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserLookup loads the stored user behind a token subject.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	users  UserLookup
	Now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration, users UserLookup) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if users == nil {
		return nil, errors.New("token issuer needs a user lookup")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, users: users, Now: time.Now}, nil
}

func (t *TokenIssuer) Issue(userID string, role models.Role) (string, error) {
	now := t.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// ResolvePrincipal verifies a bearer token and returns the subject with its
// current stored role, so role changes apply to tokens already issued. A
// "Bearer " prefix is accepted.
func (t *TokenIssuer) ResolvePrincipal(ctx context.Context, credential string) (workflow.Principal, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(credential), "Bearer "))
	if raw == "" {
		return workflow.Principal{}, fmt.Errorf("%w: missing token", workflow.ErrAuthentication)
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return workflow.Principal{}, fmt.Errorf("%w: invalid or expired token", workflow.ErrAuthentication)
	}
	if claims.Subject == "" {
		return workflow.Principal{}, fmt.Errorf("%w: token has no subject", workflow.ErrAuthentication)
	}

	user, err := t.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, workflow.ErrNotFound) {
		return workflow.Principal{}, fmt.Errorf("%w: unknown user", workflow.ErrAuthentication)
	}
	if err != nil {
		return workflow.Principal{}, fmt.Errorf("loading token user: %w", err)
	}

	role := user.Role
	if role != models.RoleAdmin {
		role = models.RoleUser
	}
	return workflow.Principal{ID: user.ID, Role: role}, nil
}
