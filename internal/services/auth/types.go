package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionNotFound    = errors.New("session not found")
	ErrRefreshNotFound    = errors.New("refresh token not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password is too short")
)

type SessionRecord struct {
	SID       string
	UserID    string
	Role      string
	ExpiresAt time.Time
}

type AccessClaims struct {
	UserID    string
	SID       string
	Role      string
	ExpiresAt time.Time
}

type Me struct {
	ID    string
	Email string
	Name  string
	Role  string
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	Me            Me
}
