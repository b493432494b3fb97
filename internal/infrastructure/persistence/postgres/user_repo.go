package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	authDomain "trade-signals/internal/domain/auth"
)

// UserRepo 提供帳號查詢，供登入與授權使用。
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo 建立使用者 repository。
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (authDomain.User, error) {
	const q = `SELECT id, email, name, role, status, password_hash FROM users WHERE email = $1;`
	return r.findOne(ctx, q, email)
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (authDomain.User, error) {
	const q = `SELECT id, email, name, role, status, password_hash FROM users WHERE id = $1;`
	return r.findOne(ctx, q, id)
}

func (r *UserRepo) findOne(ctx context.Context, query, arg string) (authDomain.User, error) {
	var u authDomain.User
	var role, status string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Name, &role, &status, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return authDomain.User{}, fmt.Errorf("user not found")
	}
	if err != nil {
		return authDomain.User{}, err
	}
	u.Role = authDomain.Role(role)
	u.Status = authDomain.Status(status)
	return u, nil
}
