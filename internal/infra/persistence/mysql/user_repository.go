package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	dom "example.com/storefront/internal/domain/user"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *dom.User) (*dom.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return nil, dom.ErrEmailAlreadyUsed
		}
		return nil, err
	}
	id, _ := res.LastInsertId()
	u.ID = id
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*dom.User, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*dom.User, error) {
	return r.getOne(ctx, `WHERE email = ?`, email)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*dom.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash FROM users `+where, arg)

	var u dom.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dom.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
