package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/addon-bridge/internal/domain"
	"github.com/bnema/addon-bridge/internal/ports"
)

const DefaultWatchdogInterval = 8 * time.Second

// Watchdog polls the host liveness signal. The host gives no callback when it
// freezes or is killed from outside, so an empty scene set is the only cue.
type Watchdog struct {
	liveness ports.Liveness
	interval time.Duration
	clock    ports.Clock
	logger   *slog.Logger
}

func NewWatchdog(liveness ports.Liveness, interval time.Duration, clock ports.Clock, logger *slog.Logger) *Watchdog {
	if interval <= 0 {
		interval = DefaultWatchdogInterval
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watchdog{
		liveness: liveness,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

// Run checks liveness immediately and then once per interval. It returns
// ErrHostUnresponsive when the host is gone and nil when ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) error {
	startedAt := w.clock.Now()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.check(ctx, startedAt); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Watchdog) check(ctx context.Context, startedAt time.Time) error {
	count, err := w.liveness.Alive(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		w.logger.Error("stopping bridge", "error", err)
		return fmt.Errorf("%w: %w", domain.ErrHostUnresponsive, err)
	}
	if count == 0 {
		w.logger.Error("stopping bridge", "scenes", count)
		return fmt.Errorf("%w: no live scenes", domain.ErrHostUnresponsive)
	}

	w.logger.Debug("host alive", "uptime", w.clock.Now().Sub(startedAt).Truncate(time.Second).String(), "scenes", count)
	return nil
}
