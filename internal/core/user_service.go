package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService provides user lookup, creation, and credential checks.
type UserService interface {
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	ListUsers(ctx context.Context, role string, page, limit int) ([]User, int, error)
	CreateUser(ctx context.Context, in UserInput) (*User, error)
}

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, phone, created_at`

func (s *userService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1)", email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user %q: %w", email, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID int) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, &NotFoundError{Entity: "User", ID: userID}
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", userID, err)
	}
	return u, nil
}

func (s *userService) ListUsers(ctx context.Context, role string, page, limit int) ([]User, int, error) {
	lim, offset := pageBounds(page, limit)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE ($1::text = '' OR role = $1)", role).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := s.pool.Query(ctx, "SELECT "+userColumns+`
		FROM users
		WHERE ($1::text = '' OR role = $1)
		ORDER BY name, id
		LIMIT $2 OFFSET $3`, role, lim, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (s *userService) CreateUser(ctx context.Context, in UserInput) (*User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = RoleClient
	}

	var fields []FieldError
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, FieldError{Field: "name", Message: "is required"})
	}
	if in.Email == "" {
		fields = append(fields, FieldError{Field: "email", Message: "is required"})
	}
	if len(in.Password) < 6 {
		fields = append(fields, FieldError{Field: "password", Message: "must be at least 6 characters"})
	}
	if in.Role != RoleAdmin && in.Role != RoleClient {
		fields = append(fields, FieldError{Field: "role", Message: "must be admin or client"})
	}
	if len(fields) > 0 {
		return nil, NewValidationError("invalid user", fields...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		in.Name, in.Email, string(hash), in.Role, in.Phone,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, NewValidationError("email already registered", FieldError{Field: "email", Message: "already registered"})
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}
