package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"autosalon/internal/domain"
	"autosalon/internal/repos"
	"autosalon/internal/security"
	"autosalon/internal/services"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(context.Background(), repos.Options{Driver: repos.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fixture struct {
	db     *sqlx.DB
	auth   *services.AuthService
	tokens *security.TokenIssuer
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{db: memdb(t), now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	hasher, err := security.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	f.tokens, err = security.NewTokenIssuer(testSecret, "autosalon", time.Hour,
		security.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.auth = services.NewAuthService(repos.NewUserRepo(f.db), hasher, f.tokens)
	return f
}

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.auth.Register(ctx, domain.Registration{Username: "alice", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Positive(t, id)

	token, err := f.auth.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	claims, err := f.auth.VerifyRequest(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestRegister_StoresDigestNotPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, domain.Registration{Username: "bob", Email: "Bob@X.com ", Password: "hunter22"})
	require.NoError(t, err)

	u, err := repos.NewUserRepo(f.db).ByEmail(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", u.Hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte("hunter22")))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), domain.Registration{Email: "not-an-email", Role: "root"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
	assert.Contains(t, verr.Fields, "role")
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, domain.Registration{Username: "alice", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, domain.Registration{Username: "alice2", Email: "A@x.com", Password: "p2"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	_, err = f.auth.Register(ctx, domain.Registration{Username: "alice", Email: "other@x.com", Password: "p2"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.auth.Register(ctx, domain.Registration{
				Username: "racer" + string(rune('a'+i)), Email: "race@x.com", Password: "p",
			})
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	}
	assert.Equal(t, 1, ok)
}

func TestLogin_SameErrorForUnknownAndWrong(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, domain.Registration{Username: "alice", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	_, errUnknown := f.auth.Login(ctx, "nobody@x.com", "p1")
	_, errWrong := f.auth.Login(ctx, "a@x.com", "nope")
	require.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	require.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLogin_MissingFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Login(context.Background(), " ", "")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestLogin_CorruptDigest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := repos.NewUserRepo(f.db).Create(ctx, &domain.User{
		Username: "legacy", Email: "legacy@x.com", Hash: "plaintext", Role: domain.RoleUser,
	})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, "legacy@x.com", "plaintext")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, err, domain.ErrInvalidDigest)
}

func TestVerifyRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, domain.Registration{Username: "alice", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	token, err := f.auth.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	_, err = f.auth.VerifyRequest("")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.ErrorIs(t, err, domain.ErrMissingToken)

	_, err = f.auth.VerifyRequest("garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	f.now = f.now.Add(time.Hour)
	_, err = f.auth.VerifyRequest(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.auth.EnsureAdmin(ctx, "Admin@Autosalon.local", "Admin", "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.auth.EnsureAdmin(ctx, "admin@autosalon.local", "Admin", "other")
	require.NoError(t, err)
	assert.False(t, created)

	token, err := f.auth.Login(ctx, "admin@autosalon.local", "s3cret-pass")
	require.NoError(t, err)
	claims, err := f.auth.VerifyRequest(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestEnsureAdmin_UsernameHeldByOtherAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, domain.Registration{Username: "Admin", Email: "someone@x.com", Password: "p1"})
	require.NoError(t, err)

	created, err := f.auth.EnsureAdmin(ctx, "admin@autosalon.local", "Admin", "s3cret-pass")
	require.ErrorIs(t, err, domain.ErrDuplicateUsername)
	assert.False(t, created)
	assert.Contains(t, err.Error(), "ADMIN_USERNAME")

	_, err = f.auth.Login(ctx, "admin@autosalon.local", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

type failingUsers struct{ services.UserStore }

func (failingUsers) ByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrStoreUnavailable
}

func (failingUsers) EmailTaken(context.Context, string) (bool, error) {
	return false, domain.ErrStoreUnavailable
}

func TestStoreFailuresPropagate(t *testing.T) {
	f := newFixture(t)
	f.auth.Users = failingUsers{}
	ctx := context.Background()

	_, err := f.auth.Login(ctx, "a@x.com", "p1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.False(t, errors.Is(err, domain.ErrInvalidCredentials))

	_, err = f.auth.Register(ctx, domain.Registration{Username: "a", Email: "a@x.com", Password: "p"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = f.auth.EnsureAdmin(ctx, "a@x.com", "a", "p")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
