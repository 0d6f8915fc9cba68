package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/scrollinondubs/DogTinder/internal/domain/model"
)

const (
	DefaultMaxExcludeIDs = 500
	DefaultPageLimit     = 100
)

type DogStore interface {
	ListAvailable(ctx context.Context, excludeIDs []string, limit int) ([]model.DogCard, error)
}

type SwipeHistory interface {
	SwipedDogIDs(ctx context.Context, tx pgx.Tx, userID string) ([]string, error)
}

type ImageResolver interface {
	ResolveCards(ctx context.Context, cards []model.DogCard) error
}

type Config struct {
	MaxExcludeIDs int
	PageLimit     int
}

type Service struct {
	dogs    DogStore
	history SwipeHistory
	images  ImageResolver
	cfg     Config
}

func NewService(dogs DogStore, history SwipeHistory, images ImageResolver, cfg Config) *Service {
	if cfg.MaxExcludeIDs <= 0 {
		cfg.MaxExcludeIDs = DefaultMaxExcludeIDs
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DefaultPageLimit
	}

	return &Service{
		dogs:    dogs,
		history: history,
		images:  images,
		cfg:     cfg,
	}
}

// List returns available dogs the viewer has not swiped yet. A signed-in
// viewer is filtered by their stored Likes and clientExclude is ignored;
// an anonymous viewer is filtered by clientExclude, capped at MaxExcludeIDs.
func (s *Service) List(ctx context.Context, viewerID string, clientExclude []string) ([]model.DogCard, error) {
	if s.dogs == nil {
		return nil, fmt.Errorf("feed dependencies are not configured")
	}

	var exclude []string
	if strings.TrimSpace(viewerID) != "" && s.history != nil {
		swiped, err := s.history.SwipedDogIDs(ctx, nil, viewerID)
		if err != nil {
			return nil, fmt.Errorf("load swiped dogs: %w", err)
		}
		exclude = swiped
	} else {
		exclude = s.capExclude(clientExclude)
	}

	cards, err := s.dogs.ListAvailable(ctx, exclude, s.cfg.PageLimit)
	if err != nil {
		return nil, fmt.Errorf("list available dogs: %w", err)
	}

	if s.images != nil {
		if err := s.images.ResolveCards(ctx, cards); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

func (s *Service) capExclude(ids []string) []string {
	out := make([]string, 0, min(len(ids), s.cfg.MaxExcludeIDs))
	for _, id := range ids {
		if len(out) == s.cfg.MaxExcludeIDs {
			break
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ParseExcludeIDs decodes the excludeDogIds query value, a JSON array of
// strings. Anything that does not decode yields no exclusions.
func ParseExcludeIDs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}
