package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scrollinondubs/DogTinder/internal/transport/http/dto"
)

func newTestSession(t *testing.T, handler http.HandlerFunc) (*clientSession, *bytes.Buffer) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	out := &bytes.Buffer{}
	s, err := openSession(ts.URL, filepath.Join(t.TempDir(), "state.db"), time.Second, zap.NewNop(), out)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, out
}

func TestAnonymousSwipeGoesToLedger(t *testing.T) {
	s, out := newTestSession(t, func(http.ResponseWriter, *http.Request) {
		t.Fatalf("anonymous swipes must not reach the server")
	})

	require.NoError(t, s.swipe(context.Background(), "d1", true))
	require.NoError(t, s.swipe(context.Background(), "d1", false))

	require.Equal(t, []string{"d1"}, s.ledger.SwipedIDs())
	require.Contains(t, out.String(), "saved locally")
	require.Contains(t, out.String(), "was not recorded")
}

func TestSignInMergesLedgerThenSwipesOnline(t *testing.T) {
	var merged []string
	s, out := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v1/likes/merge":
			var body struct {
				Swipes []struct {
					DogID string `json:"dogId"`
				} `json:"swipes"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			for _, sw := range body.Swipes {
				merged = append(merged, sw.DogID)
			}
			_, _ = w.Write([]byte(`{"merged":2,"skipped":0}`))
		case "/v1/likes":
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	require.NoError(t, s.swipe(context.Background(), "d1", true))
	require.NoError(t, s.swipe(context.Background(), "d2", false))

	require.NoError(t, s.signIn(context.Background(), dto.AuthTokensResponse{
		AccessToken: "access-1",
		Me:          dto.AuthMeResponse{ID: "u1", Email: "rex@example.com"},
	}))

	require.Equal(t, []string{"d1", "d2"}, merged)
	require.False(t, s.ledger.HasAny())
	require.Contains(t, out.String(), "merged 2 anonymous swipes")

	require.NoError(t, s.swipe(context.Background(), "d3", true))
	require.False(t, s.ledger.HasAny())
}

func TestSignInSucceedsWhenMergeFails(t *testing.T) {
	s, out := newTestSession(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	require.NoError(t, s.swipe(context.Background(), "d1", true))

	require.NoError(t, s.signIn(context.Background(), dto.AuthTokensResponse{
		AccessToken: "access-1",
		Me:          dto.AuthMeResponse{Email: "rex@example.com"},
	}))

	require.Equal(t, "access-1", s.accessToken())
	require.True(t, s.ledger.HasAny())
	require.Contains(t, out.String(), "signed in as rex@example.com")
}

func TestOnlineSwipeConflictIsReported(t *testing.T) {
	s, out := newTestSession(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"ALREADY_SWIPED","message":"dog already swiped"}`))
	})
	require.NoError(t, s.store.Set(accessTokenKey, "access-1"))

	require.NoError(t, s.swipe(context.Background(), "d1", true))
	require.Contains(t, out.String(), "already swiped on d1")
}

func TestSignOutRequiresToken(t *testing.T) {
	s, _ := newTestSession(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	require.ErrorIs(t, s.signOut(context.Background()), errNotSignedIn)

	require.NoError(t, s.store.Set(accessTokenKey, "access-1"))
	require.NoError(t, s.signOut(context.Background()))
	require.Empty(t, s.accessToken())
}
