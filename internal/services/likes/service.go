package likes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/scrollinondubs/DogTinder/internal/domain/model"
	pgrepo "github.com/scrollinondubs/DogTinder/internal/repo/postgres"
)

const DefaultMaxMergeBatch = 500

var (
	ErrValidation      = errors.New("validation error")
	ErrDogNotFound     = errors.New("dog not found")
	ErrAlreadySwiped   = errors.New("dog already swiped")
	ErrDependenciesNil = errors.New("likes dependencies are not configured")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type LikeStore interface {
	SwipedDogIDs(ctx context.Context, tx pgx.Tx, userID string) ([]string, error)
	Exists(ctx context.Context, tx pgx.Tx, userID, dogID string) (bool, error)
	Insert(ctx context.Context, tx pgx.Tx, userID string, rec pgrepo.LikeWriteRecord, now time.Time) error
	InsertBatch(ctx context.Context, tx pgx.Tx, userID string, records []pgrepo.LikeWriteRecord, now time.Time) (int, error)
	ListLikedDogs(ctx context.Context, userID string) ([]model.DogCard, error)
}

type DogStore interface {
	ExistingIDs(ctx context.Context, tx pgx.Tx, ids []string) ([]string, error)
	Exists(ctx context.Context, tx pgx.Tx, id string) (bool, error)
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID string) (int64, bool, error)
}

type ImageResolver interface {
	ResolveCards(ctx context.Context, cards []model.DogCard) error
}

type Config struct {
	MaxMergeBatch int
}

// MergeSwipe is one anonymous decision carried over from a device ledger.
// Timestamp is the client clock and is not persisted.
type MergeSwipe struct {
	DogID     string
	Liked     bool
	Timestamp int64
}

type MergeResult struct {
	Merged  int
	Skipped int
}

type Service struct {
	tx          TxRunner
	likes       LikeStore
	dogs        DogStore
	rateLimiter RateLimiter
	images      ImageResolver
	cfg         Config
	now         func() time.Time
}

type Dependencies struct {
	Tx          TxRunner
	Likes       LikeStore
	Dogs        DogStore
	RateLimiter RateLimiter
	Images      ImageResolver
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MaxMergeBatch <= 0 {
		cfg.MaxMergeBatch = DefaultMaxMergeBatch
	}

	return &Service{
		tx:          deps.Tx,
		likes:       deps.Likes,
		dogs:        deps.Dogs,
		rateLimiter: deps.RateLimiter,
		images:      deps.Images,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *Service) MaxMergeBatch() int {
	return s.cfg.MaxMergeBatch
}

// Swipe records one authenticated decision. A second decision on the same
// dog is rejected with ErrAlreadySwiped, including when a concurrent writer
// wins the race past the pre-check.
func (s *Service) Swipe(ctx context.Context, userID, dogID string, liked bool) error {
	userID = strings.TrimSpace(userID)
	dogID = strings.TrimSpace(dogID)
	if userID == "" || dogID == "" {
		return ErrValidation
	}
	if s.tx == nil || s.likes == nil || s.dogs == nil {
		return ErrDependenciesNil
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowSwipe(ctx, userID)
		if err != nil {
			return fmt.Errorf("apply swipe rate limiter: %w", err)
		}
		if !allowed {
			return TooFastError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()
	return s.tx.WithinTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		found, err := s.dogs.Exists(txCtx, tx, dogID)
		if err != nil {
			return err
		}
		if !found {
			return ErrDogNotFound
		}

		swiped, err := s.likes.Exists(txCtx, tx, userID, dogID)
		if err != nil {
			return err
		}
		if swiped {
			return ErrAlreadySwiped
		}

		if err := s.likes.Insert(txCtx, tx, userID, pgrepo.LikeWriteRecord{DogID: dogID, Liked: liked}, now); err != nil {
			if errors.Is(err, pgrepo.ErrLikeConflict) {
				return ErrAlreadySwiped
			}
			return err
		}
		return nil
	})
}

// Merge folds a device ledger into the user's Likes. Records naming an
// unknown dog, a dog the user already swiped, or a dog repeated in the batch
// are skipped. Repeats keep the last decision. Merged counts rows actually
// written, so inserts dropped by a concurrent merge land in Skipped.
func (s *Service) Merge(ctx context.Context, userID string, swipes []MergeSwipe) (MergeResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || len(swipes) > s.cfg.MaxMergeBatch {
		return MergeResult{}, ErrValidation
	}
	for _, sw := range swipes {
		if strings.TrimSpace(sw.DogID) == "" {
			return MergeResult{}, ErrValidation
		}
	}
	if len(swipes) == 0 {
		return MergeResult{}, nil
	}
	if s.tx == nil || s.likes == nil || s.dogs == nil {
		return MergeResult{}, ErrDependenciesNil
	}

	candidates := dedupeLastWins(swipes)
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.DogID)
	}

	now := s.now().UTC()
	merged := 0
	if err := s.tx.WithinTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		swiped, err := s.likes.SwipedDogIDs(txCtx, tx, userID)
		if err != nil {
			return err
		}
		valid, err := s.dogs.ExistingIDs(txCtx, tx, ids)
		if err != nil {
			return err
		}

		swipedSet := toSet(swiped)
		validSet := toSet(valid)

		records := make([]pgrepo.LikeWriteRecord, 0, len(candidates))
		for _, c := range candidates {
			if _, ok := validSet[c.DogID]; !ok {
				continue
			}
			if _, ok := swipedSet[c.DogID]; ok {
				continue
			}
			records = append(records, pgrepo.LikeWriteRecord{DogID: c.DogID, Liked: c.Liked})
		}
		if len(records) == 0 {
			return nil
		}

		inserted, err := s.likes.InsertBatch(txCtx, tx, userID, records, now)
		if err != nil {
			return err
		}
		merged = inserted
		return nil
	}); err != nil {
		return MergeResult{}, err
	}

	return MergeResult{
		Merged:  merged,
		Skipped: len(swipes) - merged,
	}, nil
}

func (s *Service) ListLiked(ctx context.Context, userID string) ([]model.DogCard, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	if s.likes == nil {
		return nil, ErrDependenciesNil
	}
	dogs, err := s.likes.ListLikedDogs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list liked dogs: %w", err)
	}
	if s.images != nil {
		if err := s.images.ResolveCards(ctx, dogs); err != nil {
			return nil, err
		}
	}
	return dogs, nil
}

// dedupeLastWins keeps the final decision per dog, in order of that final occurrence.
func dedupeLastWins(swipes []MergeSwipe) []MergeSwipe {
	seen := make(map[string]struct{}, len(swipes))
	out := make([]MergeSwipe, 0, len(swipes))
	for i := len(swipes) - 1; i >= 0; i-- {
		sw := swipes[i]
		sw.DogID = strings.TrimSpace(sw.DogID)
		if _, ok := seen[sw.DogID]; ok {
			continue
		}
		seen[sw.DogID] = struct{}{}
		out = append(out, sw)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
