package memory

import (
	"context"
	"time"

	"github.com/sandevgo/evabot/internal/core"
	"github.com/sandevgo/evabot/pkg/log"
)

const defaultSweepInterval = time.Hour

// Sweeper periodically purges expired short-term messages. Queries
// already filter on expires_at, so the sweep only reclaims storage;
// its cadence does not affect what callers see as valid context.
type Sweeper struct {
	repo     core.MessageRepository
	Interval time.Duration
}

func NewSweeper(repo core.MessageRepository) *Sweeper {
	return &Sweeper{
		repo:     repo,
		Interval: defaultSweepInterval,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Dur("interval", s.Interval).Msg("starting short-term expiry sweeper")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			count, err := s.repo.PurgeExpired(ctx, time.Now().UTC())
			if err != nil {
				logger.Error().Err(err).Msg("expiry sweep failed")
				continue
			}
			if count > 0 {
				logger.Debug().Int("count", count).Msg("purged expired messages")
			}
		}
	}
}

func (s *Sweeper) Shutdown(ctx context.Context) error {
	return nil
}
