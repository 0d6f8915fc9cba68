package merge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scrollinondubs/DogTinder/internal/client/anonswipes"
	"github.com/scrollinondubs/DogTinder/internal/client/api"
	"github.com/scrollinondubs/DogTinder/internal/transport/http/dto"
)

type Outcome int

const (
	// NoOp means the ledger was empty and nothing was sent.
	NoOp Outcome = iota
	// Merged means the server confirmed the batch and the ledger was cleared.
	Merged
	// Failed leaves the ledger untouched so the next sign-in retries it.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case NoOp:
		return "noop"
	case Merged:
		return "merged"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Result struct {
	Outcome Outcome
	Merged  int
	Skipped int
	Err     error
}

// Ledger is the slice of anonswipes.Ledger the coordinator needs.
type Ledger interface {
	HasAny() bool
	All() []anonswipes.SwipeRecord
	Clear()
}

type Uploader interface {
	Merge(ctx context.Context, accessToken string, swipes []api.MergeSwipe) (dto.MergeResponse, error)
}

// Coordinator moves anonymous swipes onto the signed-in account.
type Coordinator struct {
	ledger   Ledger
	uploader Uploader
	log      *zap.Logger
}

func NewCoordinator(ledger Ledger, uploader Uploader, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		ledger:   ledger,
		uploader: uploader,
		log:      log,
	}
}

// Run uploads the whole ledger as one batch and clears it only after the
// server confirms. Failures come back in Result; Run never blocks sign-in.
func (c *Coordinator) Run(ctx context.Context, accessToken string) Result {
	if !c.ledger.HasAny() {
		return Result{Outcome: NoOp}
	}

	records := c.ledger.All()
	swipes := make([]api.MergeSwipe, 0, len(records))
	for _, rec := range records {
		swipes = append(swipes, api.MergeSwipe{
			DogID:     rec.DogID,
			Liked:     rec.Liked,
			Timestamp: rec.Timestamp,
		})
	}

	res, err := c.uploader.Merge(ctx, accessToken, swipes)
	if err != nil {
		c.log.Warn("merge anonymous swipes failed, keeping ledger",
			zap.Int("swipes", len(swipes)),
			zap.Error(err),
		)
		return Result{Outcome: Failed, Err: err}
	}

	c.ledger.Clear()
	c.log.Info("merged anonymous swipes",
		zap.Int("merged", res.Merged),
		zap.Int("skipped", res.Skipped),
	)
	return Result{
		Outcome: Merged,
		Merged:  res.Merged,
		Skipped: res.Skipped,
	}
}
