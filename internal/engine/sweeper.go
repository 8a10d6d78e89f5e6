package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cestino/shopping-service/internal/list"
	"github.com/cestino/shopping-service/internal/telemetry"
)

// Sweeper periodically removes bought products that have aged past the
// retention window. Local mode sweeps in-memory state on a tight interval;
// cloud mode issues remote deletes and resynchronizes on a slower one.
type Sweeper struct {
	engine   *Engine
	logger   *zerolog.Logger
	local    time.Duration
	cloud    time.Duration
	stopChan chan struct{}
}

// NewSweeper creates an expiry sweeper for the engine.
func NewSweeper(engine *Engine, logger *zerolog.Logger, localInterval, cloudInterval time.Duration) *Sweeper {
	return &Sweeper{
		engine:   engine,
		logger:   logger,
		local:    localInterval,
		cloud:    cloudInterval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic sweep. The interval is chosen from the engine's
// mode, which is fixed after Init.
func (s *Sweeper) Start(ctx context.Context) {
	interval := s.local
	if s.engine.Mode() == ModeCloud {
		interval = s.cloud
		// Cloud mode sweeps once immediately so stale rows from previous
		// sessions don't linger a full interval.
		s.sweep(ctx)
	}

	s.logger.Info().Dur("interval", interval).Str("mode", string(s.engine.Mode())).Msg("Starting expiry sweeper")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Expiry sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Expiry sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop signals the sweeper to stop.
func (s *Sweeper) Stop() {
	close(s.stopChan)
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.engine.SweepExpired(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Expiry sweep failed")
		return
	}
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Removed expired bought products")
	}
}

// SweepExpired removes every product whose bought timestamp is older than the
// retention window, returning how many were removed. In cloud mode the rows
// are deleted remotely and the collections resynchronized with a refresh.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	if !e.Ready() {
		return 0, nil
	}

	if !e.isCloud() {
		e.mu.Lock()
		before := len(e.products)
		e.products = list.SortProducts(list.PruneExpired(e.products, e.now()))
		removed := before - len(e.products)
		if removed > 0 {
			e.saveLocalLocked()
		}
		e.mu.Unlock()

		if removed > 0 {
			telemetry.RecordExpired(removed)
		}
		return removed, nil
	}

	e.mu.Lock()
	expired := list.ExpiredIDs(e.products, e.now())
	e.mu.Unlock()

	if len(expired) == 0 {
		return 0, nil
	}

	if err := e.remote.DeleteProducts(ctx, expired); err != nil {
		return 0, err
	}
	telemetry.RecordExpired(len(expired))

	if err := e.Refresh(ctx); err != nil {
		return len(expired), err
	}
	return len(expired), nil
}
