package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ananth-NQI/orderbot/internal/log"
	"github.com/Ananth-NQI/orderbot/internal/metrics"
)

// Purger drops entries that expired before now and reports how many.
type Purger interface {
	Purge(now time.Time) int
}

// MaintenanceJob periodically purges expired in-memory state.
type MaintenanceJob struct {
	purger   Purger
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMaintenanceJob creates a job that purges every interval.
func NewMaintenanceJob(purger Purger, interval time.Duration) *MaintenanceJob {
	return &MaintenanceJob{
		purger:   purger,
		interval: interval,
		now:      time.Now,
		logger:   log.WithComponent("maintenance"),
	}
}

// Run purges on every tick until ctx is done.
func (m *MaintenanceJob) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info().Dur("interval", m.interval).Msg("maintenance job started")
	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("maintenance job stopped")
			return nil
		case <-ticker.C:
			m.runOnce()
		}
	}
}

// Start runs the job in the background. Calling Start twice is a no-op.
func (m *MaintenanceJob) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.logger.Warn().Msg("maintenance job already running")
		return
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		_ = m.Run(ctx)
	}(m.done)
}

// Stop halts a job started with Start and waits for it to exit.
func (m *MaintenanceJob) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *MaintenanceJob) runOnce() {
	n := m.purger.Purge(m.now())
	if n == 0 {
		return
	}
	metrics.DedupPurgedTotal.Add(float64(n))
	m.logger.Debug().Int("purged", n).Msg("expired dedup entries removed")
}
