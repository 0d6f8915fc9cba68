package apiapp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	authsvc "github.com/scrollinondubs/DogTinder/internal/services/auth"
)

type validatorStub struct {
	claims authsvc.AccessClaims
	err    error
	calls  int
}

func (v *validatorStub) ValidateAccessToken(_ context.Context, accessToken string) (authsvc.AccessClaims, error) {
	v.calls++
	if v.err != nil {
		return authsvc.AccessClaims{}, v.err
	}
	if accessToken != "good-token" {
		return authsvc.AccessClaims{}, authsvc.ErrUnauthorized
	}
	return v.claims, nil
}

func identityEcho(t *testing.T, wantIdentity bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if ok != wantIdentity {
			t.Fatalf("identity presence mismatch: got %v want %v", ok, wantIdentity)
		}
		if ok && identity.UserID != "user-1" {
			t.Fatalf("unexpected user id: %q", identity.UserID)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddlewareAttachesIdentity(t *testing.T) {
	validator := &validatorStub{claims: authsvc.AccessClaims{UserID: "user-1", SID: "sid-1", Role: "USER"}}
	mw := AuthMiddleware(validator, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/likes/merge", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	mw(identityEcho(t, true)).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuthMiddlewareRejectsMissingAndInvalidTokens(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "wrong scheme", header: "Basic good-token"},
		{name: "empty bearer", header: "Bearer "},
		{name: "bad token", header: "Bearer bad-token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mw := AuthMiddleware(&validatorStub{}, zap.NewNop())

			req := httptest.NewRequest(http.MethodPost, "/v1/likes", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()

			mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatalf("handler must not be called without a valid token")
			})).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestOptionalAuthMiddlewareLetsAnonymousThrough(t *testing.T) {
	validator := &validatorStub{}
	mw := OptionalAuthMiddleware(validator, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/dogs", nil)
	rr := httptest.NewRecorder()

	mw(identityEcho(t, false)).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
	if validator.calls != 0 {
		t.Fatalf("validator must not run without a header, calls=%d", validator.calls)
	}
}

func TestOptionalAuthMiddlewareAttachesIdentity(t *testing.T) {
	validator := &validatorStub{claims: authsvc.AccessClaims{UserID: "user-1", SID: "sid-1", Role: "USER"}}
	mw := OptionalAuthMiddleware(validator, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/dogs", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	mw(identityEcho(t, true)).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestOptionalAuthMiddlewareRejectsExpiredSession(t *testing.T) {
	mw := OptionalAuthMiddleware(&validatorStub{err: errors.New("session expired")}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/dogs", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not be called for a rejected token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestExtractBearerToken(t *testing.T) {
	token, ok := extractBearerToken("  bearer abc.def ")
	if !ok || token != "abc.def" {
		t.Fatalf("unexpected parse result: %q %v", token, ok)
	}
	if _, ok := extractBearerToken("Token abc"); ok {
		t.Fatalf("non-bearer scheme must be rejected")
	}
}
