package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"autosalon/internal/domain"
	"autosalon/internal/validate"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) (int64, error)
	ByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) (bool, error)
}

type Tokens interface {
	Issue(userID int64, username, role string) (string, error)
	Verify(raw string) (domain.Claims, error)
}

type AuthService struct {
	Users  UserStore
	Hasher Hasher
	Tokens Tokens

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAuthService(users UserStore, hasher Hasher, tokens Tokens) *AuthService {
	return &AuthService{Users: users, Hasher: hasher, Tokens: tokens}
}

// Register validates r, hashes the password and stores the account. The
// existence checks give the common case a precise error; the store's unique
// constraints still decide concurrent sign-ups.
func (s *AuthService) Register(ctx context.Context, r domain.Registration) (int64, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = validate.Email(r.Email)
	if err := validate.Struct(r); err != nil {
		return 0, err
	}
	if r.Role == "" {
		r.Role = domain.RoleUser
	}

	taken, err := s.Users.EmailTaken(ctx, r.Email)
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}
	if taken {
		return 0, domain.ErrDuplicateEmail
	}
	taken, err = s.Users.UsernameTaken(ctx, r.Username)
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}
	if taken {
		return 0, domain.ErrDuplicateUsername
	}

	digest, err := s.Hasher.Hash(r.Password)
	if err != nil {
		return 0, err
	}
	id, err := s.Users.Create(ctx, &domain.User{
		Username: r.Username,
		Email:    r.Email,
		Hash:     digest,
		Role:     r.Role,
	})
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}
	return id, nil
}

// Login returns a signed token for the account behind email. Unknown email
// and wrong password are the same domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = validate.Email(email)
	if email == "" || password == "" {
		fields := map[string]string{}
		if email == "" {
			fields["email"] = "is required"
		}
		if password == "" {
			fields["password"] = "is required"
		}
		return "", &domain.ValidationError{Fields: fields}
	}

	u, err := s.Users.ByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		// Burn one comparison so unknown emails cost the same as bad passwords.
		_, _ = s.Hasher.Verify(password, s.dummy())
		return "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	ok, err := s.Hasher.Verify(password, u.Hash)
	if err != nil {
		return "", fmt.Errorf("%w: user %d: %w", domain.ErrInvalidCredentials, u.ID, err)
	}
	if !ok {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return token, nil
}

// VerifyRequest turns a bearer token into claims. Every failure wraps
// domain.ErrUnauthenticated plus the specific reason.
func (s *AuthService) VerifyRequest(token string) (domain.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Claims{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, domain.ErrMissingToken)
	}
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, domain.ErrInvalidToken)
	}
	return claims, nil
}

// EnsureAdmin creates the administrator account unless email is already
// registered. It reports whether a new account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, username, password string) (bool, error) {
	email = validate.Email(email)
	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	_, err := s.Register(ctx, domain.Registration{
		Username: username,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrDuplicateEmail):
		// Another instance won the race.
		return false, nil
	case errors.Is(err, domain.ErrDuplicateUsername):
		return false, fmt.Errorf("ensure admin: username %q belongs to another account, set ADMIN_USERNAME: %w", username, err)
	default:
		return false, fmt.Errorf("ensure admin: %w", err)
	}
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		if d, err := s.Hasher.Hash(hex.EncodeToString(buf)); err == nil {
			s.dummyDigest = d
		}
	})
	return s.dummyDigest
}
