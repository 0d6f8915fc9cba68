package anonswipes

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scrollinondubs/DogTinder/internal/client/localstore"
)

const (
	StorageKey     = "dog_tinder_anonymous_swipes"
	CurrentVersion = 1
	MaxSwipes      = 500
)

// SwipeRecord is one like/pass made before sign-in. Timestamp is unix ms.
type SwipeRecord struct {
	DogID     string `json:"dogId"`
	Liked     bool   `json:"liked"`
	Timestamp int64  `json:"timestamp"`
}

type state struct {
	Swipes  []SwipeRecord `json:"swipes"`
	Version int           `json:"version"`
}

// Ledger is the device-local log of anonymous swipes. Dog IDs are unique and
// the oldest entry is evicted once MaxSwipes is reached. Storage failures are
// logged and never returned.
type Ledger struct {
	store localstore.Store
	log   *zap.Logger
	now   func() time.Time
}

func New(store localstore.Store, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// All returns the stored swipes in insertion order. A ledger written with a
// different schema version is discarded.
func (l *Ledger) All() []SwipeRecord {
	raw, ok, err := l.store.Get(StorageKey)
	if err != nil {
		l.log.Warn("read anonymous swipes", zap.Error(err))
		return []SwipeRecord{}
	}
	if !ok || raw == "" {
		return []SwipeRecord{}
	}

	var st state
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		l.log.Warn("parse anonymous swipes", zap.Error(err))
		return []SwipeRecord{}
	}
	if st.Version != CurrentVersion {
		l.log.Info("discarding anonymous swipes with unknown version",
			zap.Int("version", st.Version),
			zap.Int("expected", CurrentVersion),
		)
		l.Clear()
		return []SwipeRecord{}
	}
	if st.Swipes == nil {
		return []SwipeRecord{}
	}
	return st.Swipes
}

// Append records a swipe. It returns false when dogID is already present or
// when the ledger could not be persisted.
func (l *Ledger) Append(dogID string, liked bool) bool {
	dogID = strings.TrimSpace(dogID)
	if dogID == "" {
		return false
	}

	swipes := l.All()
	for _, s := range swipes {
		if s.DogID == dogID {
			return false
		}
	}

	if len(swipes) >= MaxSwipes {
		swipes = swipes[len(swipes)-MaxSwipes+1:]
	}
	swipes = append(swipes, SwipeRecord{
		DogID:     dogID,
		Liked:     liked,
		Timestamp: l.now().UnixMilli(),
	})

	if err := l.save(swipes); err != nil {
		if errors.Is(err, localstore.ErrQuotaExceeded) {
			l.log.Warn("local storage full, clearing anonymous swipes", zap.Int("swipes", len(swipes)))
			l.Clear()
			return false
		}
		l.log.Warn("save anonymous swipes", zap.Error(err))
		return false
	}
	return true
}

func (l *Ledger) SwipedIDs() []string {
	swipes := l.All()
	ids := make([]string, 0, len(swipes))
	for _, s := range swipes {
		ids = append(ids, s.DogID)
	}
	return ids
}

func (l *Ledger) Liked() []SwipeRecord {
	swipes := l.All()
	liked := make([]SwipeRecord, 0, len(swipes))
	for _, s := range swipes {
		if s.Liked {
			liked = append(liked, s)
		}
	}
	return liked
}

func (l *Ledger) Clear() {
	if err := l.store.Remove(StorageKey); err != nil {
		l.log.Warn("clear anonymous swipes", zap.Error(err))
	}
}

func (l *Ledger) HasAny() bool {
	return len(l.All()) > 0
}

func (l *Ledger) save(swipes []SwipeRecord) error {
	payload, err := json.Marshal(state{
		Swipes:  swipes,
		Version: CurrentVersion,
	})
	if err != nil {
		return err
	}
	return l.store.Set(StorageKey, string(payload))
}
