package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"autosalon/internal/domain"
)

// MinSecretLen is the shortest signing secret NewTokenIssuer accepts.
const MinSecretLen = 32

var ErrWeakSecret = errors.New("signing secret too short")

type tokenClaims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 identity tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type TokenOption func(*TokenIssuer)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenIssuer) { t.now = now }
}

func NewTokenIssuer(secret, issuer string, ttl time.Duration, opts ...TokenOption) (*TokenIssuer, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinSecretLen)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	t := &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

func (t *TokenIssuer) Issue(userID int64, username, role string) (string, error) {
	now := t.now().UTC()
	claims := tokenClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Verify checks signature, algorithm, issuer and expiry. Every failure
// wraps domain.ErrInvalidToken.
func (t *TokenIssuer) Verify(raw string) (domain.Claims, error) {
	claims := &tokenClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !token.Valid {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	exp := claims.ExpiresAt.Time
	if !t.now().Before(exp) {
		return domain.Claims{}, fmt.Errorf("%w: expired", domain.ErrInvalidToken)
	}
	return domain.Claims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		ExpiresAt: exp,
	}, nil
}
