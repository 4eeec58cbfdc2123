package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	authsvc "github.com/vjzest/PropCIDBack/internal/services/auth"
)

const uniqueViolationCode = "23505"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user authsvc.User, passwordHash string) (authsvc.User, error) {
	if r.pool == nil {
		return authsvc.User{}, fmt.Errorf("postgres pool is nil")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO users (uid, name, email, password_hash, user_type, company_name, license_number, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, user.UID, user.Name, user.Email, passwordHash, user.UserType, user.CompanyName, user.LicenseNumber, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return authsvc.User{}, authsvc.ErrEmailTaken
		}
		return authsvc.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (authsvc.User, string, error) {
	if r.pool == nil {
		return authsvc.User{}, "", fmt.Errorf("postgres pool is nil")
	}

	var (
		user authsvc.User
		hash string
	)
	err := r.pool.QueryRow(ctx, `
SELECT uid, name, email, password_hash, user_type, company_name, license_number, created_at
FROM users
WHERE email = $1
`, email).Scan(&user.UID, &user.Name, &user.Email, &hash, &user.UserType, &user.CompanyName, &user.LicenseNumber, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authsvc.User{}, "", authsvc.ErrUserNotFound
		}
		return authsvc.User{}, "", fmt.Errorf("get user by email: %w", err)
	}

	return user, hash, nil
}

func (r *UserRepo) List(ctx context.Context) ([]authsvc.User, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT uid, name, email, user_type, company_name, license_number, created_at
FROM users
ORDER BY created_at ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]authsvc.User, 0)
	for rows.Next() {
		var user authsvc.User
		if err := rows.Scan(&user.UID, &user.Name, &user.Email, &user.UserType, &user.CompanyName, &user.LicenseNumber, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}
