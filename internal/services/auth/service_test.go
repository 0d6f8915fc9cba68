package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/scrollinondubs/DogTinder/internal/domain/model"
	pgrepo "github.com/scrollinondubs/DogTinder/internal/repo/postgres"
	redrepo "github.com/scrollinondubs/DogTinder/internal/repo/redis"
	authsvc "github.com/scrollinondubs/DogTinder/internal/services/auth"
)

type memoryUserStore struct {
	mu      sync.Mutex
	byEmail map[string]model.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{byEmail: make(map[string]model.User)}
}

func (s *memoryUserStore) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return model.User{}, pgrepo.ErrEmailTaken
	}
	s.byEmail[user.Email] = user
	return user, nil
}

func (s *memoryUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byEmail[email]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func TestSignupThenLogin(t *testing.T) {
	svc, users, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	signupRes, err := svc.Signup(ctx, "  Rex.Owner@Example.com ", "secret1", "Rex Owner")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if signupRes.Me.Email != "rex.owner@example.com" {
		t.Fatalf("email was not normalized: %q", signupRes.Me.Email)
	}
	if signupRes.Me.Role != "USER" {
		t.Fatalf("unexpected role: %q", signupRes.Me.Role)
	}

	stored, err := users.FindByEmail(ctx, "rex.owner@example.com")
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if stored.PasswordHash == "secret1" {
		t.Fatalf("password stored in plain text")
	}

	loginRes, err := svc.Login(ctx, "rex.owner@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginRes.Me.ID != signupRes.Me.ID {
		t.Fatalf("login resolved another user: got %s want %s", loginRes.Me.ID, signupRes.Me.ID)
	}

	claims, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != signupRes.Me.ID {
		t.Fatalf("unexpected subject: %s", claims.UserID)
	}
}

func TestSignupRejectsDuplicateAndWeakInput(t *testing.T) {
	svc, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.Signup(ctx, "dup@example.com", "secret1", "First"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(ctx, "DUP@example.com", "secret1", "Second"); !errors.Is(err, authsvc.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := svc.Signup(ctx, "short@example.com", "12345", "Short"); !errors.Is(err, authsvc.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := svc.Signup(ctx, "not-an-email", "secret1", "Nobody"); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.Signup(ctx, "walker@example.com", "secret1", "Walker"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Login(ctx, "walker@example.com", "wrong-pass"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.Signup(ctx, "rotate@example.com", "secret1", "Rotate")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	refreshRes, err := svc.Refresh(ctx, loginRes.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if refreshRes.RefreshToken == loginRes.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	if _, err := svc.Refresh(ctx, loginRes.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("old refresh token should be unauthorized, got err=%v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, refreshRes.AccessToken); err != nil {
		t.Fatalf("new access token validation failed: %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.Signup(ctx, "logout@example.com", "secret1", "Logout")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken)
	if err != nil {
		t.Fatalf("validate access token before logout: %v", err)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("access token should be unauthorized after logout, got err=%v", err)
	}
}

func TestLogoutAllDropsEverySession(t *testing.T) {
	svc, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	first, err := svc.Signup(ctx, "many@example.com", "secret1", "Many")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	second, err := svc.Login(ctx, "many@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.LogoutAll(ctx, first.Me.ID); err != nil {
		t.Fatalf("logout all: %v", err)
	}

	for _, token := range []string{first.AccessToken, second.AccessToken} {
		if _, err := svc.ValidateAccessToken(ctx, token); !errors.Is(err, authsvc.ErrUnauthorized) {
			t.Fatalf("expected unauthorized after logout all, got %v", err)
		}
	}
}

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, *memoryUserStore, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	repo := redrepo.NewSessionRepo(client)
	users := newMemoryUserStore()
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, repo, users, authsvc.Config{
		RefreshTTL: 30 * 24 * time.Hour,
		BcryptCost: bcrypt.MinCost,
	})

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}

	return svc, users, cleanup
}
