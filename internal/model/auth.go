package model

import (
	"time"

	"github.com/google/uuid"
)

// AuthRequest is the body of both signup and login.
type AuthRequest struct {
	Name     string `json:"name" example:"alice"`
	Password string `json:"password" example:"hunter22"`
}

type AuthResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token,omitempty"`
	User    *UserResponse `json:"user,omitempty"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult is what the auth service hands back on a successful signup or login.
type AuthResult struct {
	Message string
	Token   string
	User    UserSummary
}

type UserSummary struct {
	ID        uuid.UUID
	Username  string
	CreatedAt time.Time
}

// AuthUser is the identity carried by a verified bearer token.
type AuthUser struct {
	ID       uuid.UUID
	Username string
}

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	IsActive     bool
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

func (r AuthResult) Response() AuthResponse {
	return AuthResponse{
		Message: r.Message,
		Token:   r.Token,
		User: &UserResponse{
			ID:        r.User.ID,
			Username:  r.User.Username,
			CreatedAt: r.User.CreatedAt,
		},
	}
}
