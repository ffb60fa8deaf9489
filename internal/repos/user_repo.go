package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"autosalon/internal/domain"
)

const userColumns = `id, username, email, password_hash, role, created_at`

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts u and returns the store-assigned id. Unique violations come
// back as domain.ErrDuplicateEmail or domain.ErrDuplicateUsername.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO users (username, email, password_hash, role)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), u.Username, u.Email, u.Hash, u.Role).Scan(&id)
	if err != nil {
		return 0, storeErr("users.create", err)
	}
	return id, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	if err != nil {
		return nil, storeErr("users.by_email", err)
	}
	return &u, nil
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "users.email_taken", `SELECT COUNT(*) FROM users WHERE email = ?`, email)
}

func (r *UserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "users.username_taken", `SELECT COUNT(*) FROM users WHERE username = ?`, username)
}

func (r *UserRepo) exists(ctx context.Context, op, query string, arg any) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), arg); err != nil {
		return false, storeErr(op, err)
	}
	return n > 0, nil
}
