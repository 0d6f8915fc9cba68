package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/scrollinondubs/DogTinder/internal/domain/enums"
	"github.com/scrollinondubs/DogTinder/internal/domain/model"
	feedsvc "github.com/scrollinondubs/DogTinder/internal/services/feed"
)

type availableDogsStub struct {
	lastExclude []string
}

func (s *availableDogsStub) ListAvailable(_ context.Context, excludeIDs []string, _ int) ([]model.DogCard, error) {
	s.lastExclude = excludeIDs
	return []model.DogCard{{
		Dog:          model.Dog{ID: "d9", Name: "Biscuit", Breed: "Beagle", Status: enums.DogStatusAvailable},
		PrimaryImage: "https://img.example.com/d9.jpg",
		Shelter:      model.Shelter{ID: "s1", Name: "Happy Tails"},
	}}, nil
}

type swipeHistoryStub struct {
	ids []string
}

func (s swipeHistoryStub) SwipedDogIDs(context.Context, pgx.Tx, string) ([]string, error) {
	return s.ids, nil
}

func TestDogsHandlerAnonymousExclusions(t *testing.T) {
	store := &availableDogsStub{}
	h := NewDogsHandler(feedsvc.NewService(store, swipeHistoryStub{ids: []string{"server"}}, nil, feedsvc.Config{}))

	target := "/v1/dogs?excludeDogIds=" + url.QueryEscape(`["d1","d2"]`)
	rr := doJSON(t, h.List, http.MethodGet, target, "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if len(store.lastExclude) != 2 || store.lastExclude[0] != "d1" {
		t.Fatalf("unexpected exclusions: %v", store.lastExclude)
	}

	var payload struct {
		Items []struct {
			ID           string `json:"id"`
			Status       string `json:"status"`
			PrimaryImage string `json:"primary_image"`
			Shelter      struct {
				Name string `json:"name"`
			} `json:"shelter"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].Status != "available" || payload.Items[0].Shelter.Name != "Happy Tails" {
		t.Fatalf("unexpected items: %+v", payload.Items)
	}
}

func TestDogsHandlerSignedInIgnoresQuery(t *testing.T) {
	store := &availableDogsStub{}
	h := NewDogsHandler(feedsvc.NewService(store, swipeHistoryStub{ids: []string{"server"}}, nil, feedsvc.Config{}))

	rr := doJSON(t, h.List, http.MethodGet, "/v1/dogs?excludeDogIds=not-json", "", viewer("u1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if len(store.lastExclude) != 1 || store.lastExclude[0] != "server" {
		t.Fatalf("unexpected exclusions: %v", store.lastExclude)
	}
}

func TestHealthHandler(t *testing.T) {
	rr := doJSON(t, NewHealthHandler().Handle, http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "{\"ok\":true}\n" {
		t.Fatalf("unexpected health response: %d %q", rr.Code, rr.Body.String())
	}
}
