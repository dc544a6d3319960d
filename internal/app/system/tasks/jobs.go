// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/teamtool/teamtool/internal/app/store/oauthstate"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// StateCleanup periodically purges expired OAuth state tokens. The TTL
// index does this too; the job covers deployments where TTL monitor
// passes are delayed or disabled.
type StateCleanup struct {
	states   *oauthstate.Store
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// StartStateCleanup launches the cleanup loop. A non-positive interval
// defaults to one hour.
func StartStateCleanup(states *oauthstate.Store, interval time.Duration, log *zap.Logger) *StateCleanup {
	if interval <= 0 {
		interval = time.Hour
	}
	j := &StateCleanup{
		states:   states,
		log:      log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	j.wg.Add(1)
	go j.run()
	return j
}

func (j *StateCleanup) run() {
	defer j.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stopCh:
			return
		}
	}
}

func (j *StateCleanup) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()

	n, err := j.states.CleanupExpired(ctx)
	if err != nil {
		j.log.Error("oauth state cleanup failed", zap.Error(err))
		return
	}
	if n > 0 {
		j.log.Info("purged expired oauth states", zap.Int64("count", n))
	}
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (j *StateCleanup) Stop() {
	close(j.stopCh)
	j.wg.Wait()
}
