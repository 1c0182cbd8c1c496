package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/incognito-chat/backend/internal/db"
	"github.com/incognito-chat/backend/internal/model"
)

const (
	signupMessage = "User registered successfully!"
	loginMessage  = "Login successful!"
)

// UserStore persists credential records keyed by normalized username.
// CreateUser must return db.ErrUsernameTaken when the name is already used,
// including when a concurrent insert wins the race.
type UserStore interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error)
	GetActiveUserByUsername(ctx context.Context, username string) (*model.User, error)
}

type SecretCodec interface {
	Hash(ctx context.Context, secret string) (string, error)
	Verify(ctx context.Context, secret, digest string) (bool, error)
}

type TokenIssuer interface {
	Issue(subject uuid.UUID, username string) (string, error)
}

type AuthService struct {
	store   UserStore
	codec   SecretCodec
	tokens  TokenIssuer
	logger  *slog.Logger
	metrics *authMetrics
}

func NewAuthService(store UserStore, codec SecretCodec, tokens TokenIssuer, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:   store,
		codec:   codec,
		tokens:  tokens,
		logger:  logger,
		metrics: newAuthMetrics(),
	}
}

// Signup registers name with password and returns a token for the new user.
// The existence check before hashing only saves bcrypt work; uniqueness is
// decided by the store at insert time.
func (s *AuthService) Signup(ctx context.Context, name, password string) (result *model.AuthResult, err error) {
	defer func() { s.metrics.record(ctx, s.metrics.signup, err) }()

	if err := validateCredentials(name, password); err != nil {
		return nil, err
	}
	username := normalizeUsername(name)

	exists, err := s.store.UsernameExists(ctx, username)
	if err != nil {
		return nil, s.internal(ctx, "signup: check username", err)
	}
	if exists {
		return nil, ErrConflict
	}

	hash, err := s.codec.Hash(ctx, password)
	if err != nil {
		return nil, s.internal(ctx, "signup: hash secret", err)
	}

	user, err := s.store.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, db.ErrUsernameTaken) {
			return nil, ErrConflict
		}
		return nil, s.internal(ctx, "signup: create user", err)
	}

	signed, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "new user registered", "username", user.Username, "user_id", user.ID)
	return &model.AuthResult{Message: signupMessage, Token: signed, User: user.Summary()}, nil
}

// Login checks password against the stored digest. An unknown username and a
// wrong password both return ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, name, password string) (result *model.AuthResult, err error) {
	defer func() { s.metrics.record(ctx, s.metrics.login, err) }()

	if err := validateCredentials(name, password); err != nil {
		return nil, err
	}
	username := normalizeUsername(name)

	user, err := s.store.GetActiveUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, s.internal(ctx, "login: get user", err)
	}

	ok, err := s.codec.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, s.internal(ctx, "login: verify secret", err)
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	signed, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", "username", user.Username, "user_id", user.ID)
	return &model.AuthResult{Message: loginMessage, Token: signed, User: user.Summary()}, nil
}

func (s *AuthService) issue(ctx context.Context, user *model.User) (string, error) {
	signed, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		// Signing only fails on a bad key or unencodable claims.
		s.logger.ErrorContext(ctx, "token issuance failed, check JWT_SECRET", "user_id", user.ID, "err", err)
		return "", fmt.Errorf("%w: issue token: %w", ErrInternal, err)
	}
	return signed, nil
}

func (s *AuthService) internal(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, "auth operation failed", "op", op, "err", err)
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
