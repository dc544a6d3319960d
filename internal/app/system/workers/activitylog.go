// internal/app/system/workers/activitylog.go
package workers

import (
	"context"
	"sync"

	"github.com/teamtool/teamtool/internal/app/store/activity"
	"github.com/teamtool/teamtool/internal/app/system/events"
	"github.com/teamtool/teamtool/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ActivityLogger is the single consumer of the event bus. It drains
// events and persists them as project history entries. Running exactly
// one consumer keeps the stream whole; persistence stays exactly-once
// through the unique event_id index.
type ActivityLogger struct {
	bus   *events.Bus
	store *activity.Store
	log   *zap.Logger
	wg    sync.WaitGroup
}

// StartActivityLogger launches the consumer goroutine.
func StartActivityLogger(bus *events.Bus, store *activity.Store, log *zap.Logger) *ActivityLogger {
	w := &ActivityLogger{
		bus:   bus,
		store: store,
		log:   log,
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *ActivityLogger) run() {
	defer w.wg.Done()
	for ev := range w.bus.Events() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
		if err := w.store.Record(ctx, ev); err != nil {
			w.log.Error("record activity event failed",
				zap.String("event_id", ev.EventID),
				zap.String("kind", ev.Kind),
				zap.Error(err))
		}
		cancel()
	}
}

// Stop closes the bus and waits for the consumer to drain what remains.
// Publishers must have stopped before calling this.
func (w *ActivityLogger) Stop() {
	w.bus.Close()
	w.wg.Wait()
}
