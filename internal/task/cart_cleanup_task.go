package task

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CartPurger removes carts that have been idle past their TTL.
type CartPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgeReporter is told how many carts a run removed.
type PurgeReporter interface {
	NotifyCartsPurged(ctx context.Context, count int64) error
}

// CartCleanupTask periodically deletes abandoned carts.
type CartCleanupTask struct {
	purger   CartPurger
	reporter PurgeReporter
	log      *zap.Logger
	spec     string
	cron     *cron.Cron
}

// NewCartCleanupTask creates the task. spec is a six-field cron expression
// (seconds first). reporter may be nil.
func NewCartCleanupTask(purger CartPurger, reporter PurgeReporter, log *zap.Logger, spec string) *CartCleanupTask {
	return &CartCleanupTask{
		purger:   purger,
		reporter: reporter,
		log:      log,
		spec:     spec,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start schedules the cleanup and starts the scheduler.
func (t *CartCleanupTask) Start() error {
	if _, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule cart cleanup %q: %w", t.spec, err)
	}

	t.cron.Start()
	t.log.Info("cart cleanup task started", zap.String("spec", t.spec))
	return nil
}

// Stop waits for a running cleanup to finish.
func (t *CartCleanupTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.log.Info("cart cleanup task stopped")
}

// RunOnce performs one cleanup pass.
func (t *CartCleanupTask) RunOnce(ctx context.Context) int64 {
	removed, err := t.purger.PurgeExpired(ctx)
	if err != nil {
		t.log.Error("cart cleanup failed", zap.Error(err))
		return 0
	}

	t.log.Info("cart cleanup finished", zap.Int64("removed", removed))
	if t.reporter != nil && removed > 0 {
		if err := t.reporter.NotifyCartsPurged(ctx, removed); err != nil {
			t.log.Warn("failed to report cart cleanup", zap.Error(err))
		}
	}
	return removed
}
