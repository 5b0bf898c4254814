package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salvadorquinn/studynet/internal/domain"
)

// userColumns must match the Scan order in scanUser.
const userColumns = `id, email, name, role, created_at, last_sign_in`

const uniqueViolation = "23505"

// UserRepo implements domain.UserRepository backed by PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var lastSignIn *time.Time
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.CreatedAt, &lastSignIn)
	if err != nil {
		return nil, err
	}
	if lastSignIn != nil {
		user.LastSignIn = *lastSignIn
	}
	return &user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *UserRepo) Create(ctx context.Context, email, name string, role domain.Role, passwordHash string) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		email, name, string(role), passwordHash))
	if isUniqueViolation(err) {
		return nil, domain.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) Update(ctx context.Context, userID uuid.UUID, update domain.UserUpdate) (*domain.User, error) {
	var role *string
	if update.Role != nil {
		s := string(*update.Role)
		role = &s
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET email = COALESCE($1, email),
		    name = COALESCE($2, name),
		    role = COALESCE($3, role),
		    updated_at = NOW()
		WHERE id = $4
		RETURNING `+userColumns,
		update.Email, update.Name, role, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if isUniqueViolation(err) {
		return nil, domain.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// PasswordHash returns the user ID and stored hash for a login attempt. The
// caller compares the hash; this layer never sees the plaintext password.
func (r *UserRepo) PasswordHash(ctx context.Context, email string) (uuid.UUID, string, error) {
	var userID uuid.UUID
	var hash string
	err := r.pool.QueryRow(ctx,
		`SELECT id, password_hash FROM users WHERE email = $1`, email).Scan(&userID, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, "", domain.ErrUserNotFound
	}
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to get password hash: %w", err)
	}
	return userID, hash, nil
}

func (r *UserRepo) RecordSignIn(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_sign_in = $1, updated_at = NOW() WHERE id = $2`, at, userID)
	if err != nil {
		return fmt.Errorf("failed to record sign-in: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
