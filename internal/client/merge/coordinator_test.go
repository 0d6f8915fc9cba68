package merge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scrollinondubs/DogTinder/internal/client/anonswipes"
	"github.com/scrollinondubs/DogTinder/internal/client/api"
	"github.com/scrollinondubs/DogTinder/internal/client/localstore"
)

func newHarness(t *testing.T, handler http.HandlerFunc) (*Coordinator, *anonswipes.Ledger, *int32) {
	t.Helper()

	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	client, err := api.NewClient(ts.URL, time.Second)
	require.NoError(t, err)

	ledger := anonswipes.New(localstore.NewMemoryStore(0), zap.NewNop())
	return NewCoordinator(ledger, client, zap.NewNop()), ledger, &calls
}

func TestRunWithEmptyLedgerMakesNoCall(t *testing.T) {
	coordinator, ledger, calls := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	res := coordinator.Run(context.Background(), "tok")

	require.Equal(t, NoOp, res.Outcome)
	require.NoError(t, res.Err)
	require.Zero(t, atomic.LoadInt32(calls))
	require.False(t, ledger.HasAny())
}

func TestRunClearsLedgerAfterConfirmedMerge(t *testing.T) {
	coordinator, ledger, calls := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Swipes []api.MergeSwipe `json:"swipes"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Swipes, 2)
		require.Equal(t, "d1", body.Swipes[0].DogID)
		require.Equal(t, "d2", body.Swipes[1].DogID)
		require.False(t, body.Swipes[1].Liked)

		_, _ = w.Write([]byte(`{"merged":1,"skipped":1}`))
	})

	require.True(t, ledger.Append("d1", true))
	require.True(t, ledger.Append("d2", false))

	res := coordinator.Run(context.Background(), "tok")

	require.Equal(t, Merged, res.Outcome)
	require.Equal(t, 1, res.Merged)
	require.Equal(t, 1, res.Skipped)
	require.EqualValues(t, 1, atomic.LoadInt32(calls))
	require.False(t, ledger.HasAny())
}

func TestRunKeepsLedgerOnServerError(t *testing.T) {
	coordinator, ledger, _ := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"INTERNAL_ERROR","message":"failed to merge swipes"}`))
	})

	require.True(t, ledger.Append("d1", true))
	require.True(t, ledger.Append("d2", false))
	before := ledger.All()

	res := coordinator.Run(context.Background(), "tok")

	require.Equal(t, Failed, res.Outcome)
	require.Error(t, res.Err)
	require.Equal(t, http.StatusInternalServerError, api.StatusCode(res.Err))
	require.Equal(t, before, ledger.All())
}

func TestRunKeepsLedgerOnNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	baseURL := ts.URL
	ts.Close()

	client, err := api.NewClient(baseURL, 200*time.Millisecond)
	require.NoError(t, err)

	ledger := anonswipes.New(localstore.NewMemoryStore(0), zap.NewNop())
	require.True(t, ledger.Append("d1", true))

	res := NewCoordinator(ledger, client, zap.NewNop()).Run(context.Background(), "tok")

	require.Equal(t, Failed, res.Outcome)
	require.Error(t, res.Err)
	require.True(t, ledger.HasAny())
	require.Equal(t, []string{"d1"}, ledger.SwipedIDs())
}

func TestRunKeepsLedgerOnUnauthorized(t *testing.T) {
	coordinator, ledger, _ := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	require.True(t, ledger.Append("d1", true))

	res := coordinator.Run(context.Background(), "expired")

	require.Equal(t, Failed, res.Outcome)
	require.True(t, ledger.HasAny())
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "noop", NoOp.String())
	require.Equal(t, "merged", Merged.String())
	require.Equal(t, "failed", Failed.String())
	require.Equal(t, "outcome(7)", Outcome(7).String())
}
