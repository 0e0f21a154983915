package status

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ravenfell/worldserver/internal/config"
	"github.com/ravenfell/worldserver/internal/observability"
)

// Heartbeat periodically recomputes this server's aggregate status and
// pushes it to the status store, independent of request traffic. A failed
// write is logged and swallowed; the schedule continues unconditionally.
type Heartbeat struct {
	cfg      config.ServerConfig
	interval time.Duration
	counter  ConnectionCounter
	store    Store
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewHeartbeat creates a stopped Heartbeat.
//
// Precondition: interval > 0; counter, store, and logger must be non-nil.
func NewHeartbeat(cfg config.ServerConfig, interval time.Duration, counter ConnectionCounter, store Store, logger *zap.Logger) *Heartbeat {
	return &Heartbeat{
		cfg:      cfg,
		interval: interval,
		counter:  counter,
		store:    store,
		logger:   logger,
	}
}

// Start transitions the publisher to running: one immediate publish cycle,
// then one per interval. Calling Start while running logs a warning and
// no-ops; the schedule is never doubled.
func (h *Heartbeat) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		h.logger.Warn("status heartbeat already running")
		return
	}
	h.running = true
	h.done = make(chan struct{})
	done := h.done
	h.mu.Unlock()

	h.logger.Info("starting status heartbeat",
		zap.Int("server_id", h.cfg.ID),
		zap.Duration("interval", h.interval),
	)

	h.publish()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h.publish()
			case <-done:
				return
			}
		}
	}()
}

// Stop transitions the publisher to stopped and cancels the schedule.
// Safe to call when never started or already stopped.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.done)
	h.mu.Unlock()

	h.wg.Wait()
	h.logger.Info("status heartbeat stopped", zap.Int("server_id", h.cfg.ID))
}

// Running reports whether the publisher is currently scheduled.
func (h *Heartbeat) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// publish runs one cycle: read the live connection count, build the status
// snapshot, and write it to the store.
func (h *Heartbeat) publish() {
	count := h.counter.Count()
	s := ServerStatus{
		ID:          h.cfg.ID,
		Name:        h.cfg.Name,
		State:       StateOnline,
		PlayerCount: count,
		MaxPlayers:  h.cfg.MaxPlayers,
		CapturedAt:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.interval)
	defer cancel()

	if err := h.store.Upsert(ctx, s); err != nil {
		// The next tick still fires.
		observability.HeartbeatPublishes.WithLabelValues("error").Inc()
		h.logger.Error("publishing server status",
			zap.Int("server_id", h.cfg.ID),
			zap.Error(err),
		)
		return
	}

	observability.HeartbeatPublishes.WithLabelValues("ok").Inc()
	h.logger.Debug("server status published",
		zap.Int("server_id", h.cfg.ID),
		zap.Int("player_count", count),
	)
}
