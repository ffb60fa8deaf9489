package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"autosalon/internal/domain"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// PasswordHasher produces and checks salted bcrypt digests.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordHasher{cost: cost}, nil
}

// Hash returns a new digest with a random salt on every call.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.NewValidationError("password", "must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plain matches digest. A mismatch is (false, nil);
// a digest that bcrypt cannot parse is domain.ErrInvalidDigest.
func (h *PasswordHasher) Verify(plain, digest string) (bool, error) {
	if _, err := bcrypt.Cost([]byte(digest)); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrInvalidDigest, err)
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil, nil
}
