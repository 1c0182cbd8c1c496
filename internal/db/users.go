package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/incognito-chat/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound      = errors.New("db: user not found")
	ErrUsernameTaken = errors.New("db: username already taken")
)

const uniqueViolation = "23505"

const usernameExistsQuery = `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

func (db *Postgres) UsernameExists(ctx context.Context, username string) (bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := db.Pool.QueryRow(ctx, usernameExistsQuery, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

// CreateUser inserts a new active user inside one transaction. The unique
// index on username decides concurrent inserts; the loser gets ErrUsernameTaken.
func (db *Postgres) CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var exists bool
	if err := tx.QueryRow(ctx, usernameExistsQuery, username).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	user := model.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, username, password_hash, created_at, updated_at, is_active)
		VALUES ($1, $2, $3, NOW(), NOW(), TRUE)
		RETURNING created_at, updated_at
	`, user.ID, username, passwordHash).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &user, nil
}

func (db *Postgres) GetActiveUserByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, username, password_hash, created_at, updated_at, is_active
		FROM users
		WHERE username = $1 AND is_active = TRUE
	`
	var (
		user model.User
		id   string
	)
	err := db.Pool.QueryRow(ctx, query, username).Scan(
		&id,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.IsActive,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("get user: bad id: %w", err)
	}
	return &user, nil
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
