package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/scrollinondubs/DogTinder/internal/client/anonswipes"
	"github.com/scrollinondubs/DogTinder/internal/client/api"
	"github.com/scrollinondubs/DogTinder/internal/client/localstore"
	"github.com/scrollinondubs/DogTinder/internal/client/merge"
	"github.com/scrollinondubs/DogTinder/internal/transport/http/dto"
)

const accessTokenKey = "dogswipe_access_token"

var errNotSignedIn = errors.New("not signed in")

// clientSession bundles the local state and API client for one CLI run.
type clientSession struct {
	store       *localstore.SQLiteStore
	ledger      *anonswipes.Ledger
	client      *api.Client
	coordinator *merge.Coordinator
	log         *zap.Logger
	out         io.Writer
}

func openSession(baseURL, statePath string, timeout time.Duration, log *zap.Logger, out io.Writer) (*clientSession, error) {
	store, err := localstore.OpenSQLite(statePath)
	if err != nil {
		return nil, err
	}
	client, err := api.NewClient(baseURL, timeout)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	ledger := anonswipes.New(store, log)
	return &clientSession{
		store:       store,
		ledger:      ledger,
		client:      client,
		coordinator: merge.NewCoordinator(ledger, client, log),
		log:         log,
		out:         out,
	}, nil
}

func (s *clientSession) Close() error {
	return s.store.Close()
}

func (s *clientSession) accessToken() string {
	token, ok, err := s.store.Get(accessTokenKey)
	if err != nil {
		s.log.Warn("read access token", zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// swipe records a decision on the server when signed in and in the local
// ledger otherwise.
func (s *clientSession) swipe(ctx context.Context, dogID string, liked bool) error {
	verb := "passed on"
	if liked {
		verb = "liked"
	}

	token := s.accessToken()
	if token == "" {
		if !s.ledger.Append(dogID, liked) {
			fmt.Fprintf(s.out, "%s was not recorded (already swiped or storage unavailable)\n", dogID)
			return nil
		}
		fmt.Fprintf(s.out, "%s %s (saved locally until you sign in)\n", verb, dogID)
		return nil
	}

	if err := s.client.Swipe(ctx, token, dogID, liked); err != nil {
		switch api.StatusCode(err) {
		case http.StatusConflict:
			fmt.Fprintf(s.out, "you already swiped on %s\n", dogID)
			return nil
		case http.StatusNotFound:
			return fmt.Errorf("dog %s does not exist", dogID)
		case http.StatusTooManyRequests:
			return fmt.Errorf("swiping too fast, slow down")
		}
		return err
	}
	fmt.Fprintf(s.out, "%s %s\n", verb, dogID)
	return nil
}

// signIn stores the access token and then merges the anonymous ledger. The
// merge outcome is reported but never fails the sign-in.
func (s *clientSession) signIn(ctx context.Context, tokens dto.AuthTokensResponse) error {
	if err := s.store.Set(accessTokenKey, tokens.AccessToken); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	fmt.Fprintf(s.out, "signed in as %s\n", tokens.Me.Email)

	s.reportMerge(s.coordinator.Run(ctx, tokens.AccessToken))
	return nil
}

func (s *clientSession) reportMerge(res merge.Result) {
	switch res.Outcome {
	case merge.Merged:
		fmt.Fprintf(s.out, "merged %d anonymous swipes (%d skipped)\n", res.Merged, res.Skipped)
	case merge.Failed:
		s.log.Warn("anonymous swipes were not merged, will retry on next sign-in", zap.Error(res.Err))
	default:
		s.log.Debug("no anonymous swipes to merge")
	}
}

func (s *clientSession) signOut(ctx context.Context) error {
	token := s.accessToken()
	if token == "" {
		return errNotSignedIn
	}
	if err := s.client.Logout(ctx, token); err != nil {
		s.log.Warn("server logout failed", zap.Error(err))
	}
	return s.store.Remove(accessTokenKey)
}

func (s *clientSession) listDogs(ctx context.Context) ([]dto.DogCardResponse, error) {
	token := s.accessToken()
	if token != "" {
		return s.client.ListDogs(ctx, token, nil)
	}
	return s.client.ListDogs(ctx, "", s.ledger.SwipedIDs())
}
