package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingPurger struct {
	calls atomic.Int32
}

func (c *countingPurger) Purge(time.Time) int {
	c.calls.Add(1)
	return 2
}

func TestMaintenanceJob_RunPurgesUntilCanceled(t *testing.T) {
	purger := &countingPurger{}
	job := NewMaintenanceJob(purger, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- job.Run(ctx) }()

	require.Eventually(t, func() bool { return purger.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("job did not stop")
	}
}

func TestMaintenanceJob_StartStop(t *testing.T) {
	purger := &countingPurger{}
	job := NewMaintenanceJob(purger, 10*time.Millisecond)

	job.Start(context.Background())
	job.Start(context.Background())
	require.Eventually(t, func() bool { return purger.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)

	job.Stop()
	job.Stop()

	calls := purger.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, purger.calls.Load())
}
