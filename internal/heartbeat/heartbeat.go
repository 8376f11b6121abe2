// Package heartbeat reports operator presence to the service while a
// protected screen is open.
package heartbeat

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultInterval is used when no interval is configured
const DefaultInterval = 10 * time.Second

// StatusUpdater is the remote presence call
type StatusUpdater interface {
	UpdateStatus(ctx context.Context) error
}

// Heartbeat periodically calls UpdateStatus. Failures are logged and
// otherwise ignored; a 401 is handled by the transport, not here.
type Heartbeat struct {
	api      StatusUpdater
	interval time.Duration
	logger   zerolog.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

func New(api StatusUpdater, interval time.Duration, logger zerolog.Logger) *Heartbeat {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Heartbeat{
		api:      api,
		interval: interval,
		logger:   logger.With().Str("component", "heartbeat").Logger(),
	}
}

// Start begins beating. Calling it while running is a no-op.
func (h *Heartbeat) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cron != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(&h.logger))))
	c.Schedule(cron.Every(h.interval), cron.FuncJob(func() { h.Beat(ctx) }))
	c.Start()

	h.cron = c
	h.cancel = cancel

	h.logger.Debug().Dur("interval", h.interval).Msg("Heartbeat started")
}

// Stop halts the schedule and waits for a running beat to finish. Calling it
// while stopped is a no-op.
func (h *Heartbeat) Stop() {
	if c := h.halt(); c != nil {
		<-c.Stop().Done()
		h.logger.Debug().Msg("Heartbeat stopped")
	}
}

// Cancel halts the schedule without waiting for a running beat, so it is
// safe to call from inside one. A Start that follows gets a fresh schedule
// which Cancel no longer touches.
func (h *Heartbeat) Cancel() {
	if c := h.halt(); c != nil {
		c.Stop()
		h.logger.Debug().Msg("Heartbeat cancelled")
	}
}

// halt detaches the current schedule and cancels its in-flight beat
func (h *Heartbeat) halt() *cron.Cron {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, cancel := h.cron, h.cancel
	h.cron, h.cancel = nil, nil
	if c != nil {
		cancel()
	}
	return c
}

// Running reports whether the schedule is active
func (h *Heartbeat) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cron != nil
}

// Beat performs a single status update
func (h *Heartbeat) Beat(ctx context.Context) {
	if err := h.api.UpdateStatus(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		h.logger.Warn().Err(err).Msg("Heartbeat failed")
	}
}
