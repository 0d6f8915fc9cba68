package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/scrollinondubs/DogTinder/internal/domain/model"
)

type dogStoreStub struct {
	cards       []model.DogCard
	lastExclude []string
	lastLimit   int
}

func (s *dogStoreStub) ListAvailable(_ context.Context, excludeIDs []string, limit int) ([]model.DogCard, error) {
	s.lastExclude = append([]string(nil), excludeIDs...)
	s.lastLimit = limit

	skip := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		skip[id] = struct{}{}
	}
	out := make([]model.DogCard, 0, len(s.cards))
	for _, c := range s.cards {
		if _, ok := skip[c.ID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type historyStub struct {
	ids []string
	err error
}

func (s historyStub) SwipedDogIDs(context.Context, pgx.Tx, string) ([]string, error) {
	return s.ids, s.err
}

type prefixResolver struct{}

func (prefixResolver) ResolveCards(_ context.Context, cards []model.DogCard) error {
	for i := range cards {
		if cards[i].PrimaryImage != "" {
			cards[i].PrimaryImage = "https://cdn.local/" + cards[i].PrimaryImage
		}
	}
	return nil
}

func card(id string) model.DogCard {
	return model.DogCard{Dog: model.Dog{ID: id}, PrimaryImage: id + ".jpg"}
}

func TestListAnonymousUsesClientExclusions(t *testing.T) {
	store := &dogStoreStub{cards: []model.DogCard{card("d1"), card("d2"), card("d3")}}
	svc := NewService(store, historyStub{ids: []string{"d3"}}, prefixResolver{}, Config{})

	cards, err := svc.List(context.Background(), "", []string{"d1", " "})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cards) != 2 || cards[0].ID != "d2" || cards[1].ID != "d3" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
	if cards[0].PrimaryImage != "https://cdn.local/d2.jpg" {
		t.Fatalf("image was not resolved: %s", cards[0].PrimaryImage)
	}
	if store.lastLimit != DefaultPageLimit {
		t.Fatalf("unexpected limit: %d", store.lastLimit)
	}
}

func TestListSignedInUsesStoredSwipes(t *testing.T) {
	store := &dogStoreStub{cards: []model.DogCard{card("d1"), card("d2")}}
	svc := NewService(store, historyStub{ids: []string{"d2"}}, nil, Config{})

	cards, err := svc.List(context.Background(), "u1", []string{"d1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != "d1" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
}

func TestListCapsClientExclusions(t *testing.T) {
	store := &dogStoreStub{}
	svc := NewService(store, nil, nil, Config{MaxExcludeIDs: 3})

	ids := make([]string, 10)
	for i := range ids {
		ids[i] = fmt.Sprintf("d%d", i)
	}
	if _, err := svc.List(context.Background(), "", ids); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(store.lastExclude) != 3 || store.lastExclude[2] != "d2" {
		t.Fatalf("unexpected exclusions: %v", store.lastExclude)
	}
}

func TestListSurfacesHistoryFailure(t *testing.T) {
	svc := NewService(&dogStoreStub{}, historyStub{err: errors.New("db down")}, nil, Config{})
	if _, err := svc.List(context.Background(), "u1", nil); err == nil {
		t.Fatalf("expected history error")
	}
}

func TestParseExcludeIDs(t *testing.T) {
	if got := ParseExcludeIDs(`["a","b"]`); len(got) != 2 || got[1] != "b" {
		t.Fatalf("unexpected ids: %v", got)
	}
	if got := ParseExcludeIDs(`not json`); got != nil {
		t.Fatalf("invalid json should yield nil, got %v", got)
	}
	if got := ParseExcludeIDs(``); got != nil {
		t.Fatalf("empty value should yield nil, got %v", got)
	}
}
