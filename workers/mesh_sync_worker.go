// workers/mesh_sync_worker.go
package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Syncer is the console side the worker drives.
type Syncer interface {
	SyncCycle(ctx context.Context)
	AddAmbientRecruit(now time.Time)
}

// MeshSyncWorker runs the periodic mesh reconciliation while a session is
// active, plus the optional ambient recruit ticker. Start and Stop may be called
// repeatedly as the user logs in and out.
type MeshSyncWorker struct {
	ctx             context.Context
	syncer          Syncer
	log             *zap.Logger
	interval        time.Duration
	ambientInterval time.Duration

	mu    sync.Mutex
	sched gocron.Scheduler
}

// NewMeshSyncWorker builds a stopped worker. An ambientInterval of zero
// disables the recruit ticker. Cycles run with ctx, so cancelling it winds
// down in-flight work on shutdown.
func NewMeshSyncWorker(ctx context.Context, syncer Syncer, log *zap.Logger, interval, ambientInterval time.Duration) *MeshSyncWorker {
	return &MeshSyncWorker{
		ctx:             ctx,
		syncer:          syncer,
		log:             log,
		interval:        interval,
		ambientInterval: ambientInterval,
	}
}

// Start schedules the reconciliation job, running it once immediately.
func (w *MeshSyncWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sched != nil {
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			w.log.Debug("[SYNC] 📡 mesh cycle")
			w.syncer.SyncCycle(w.ctx)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithName("mesh-sync"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to schedule mesh sync: %w", err)
	}

	if w.ambientInterval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(w.ambientInterval),
			gocron.NewTask(func() { w.syncer.AddAmbientRecruit(time.Now()) }),
			gocron.WithName("ambient-recruit"),
		)
		if err != nil {
			_ = sched.Shutdown()
			return fmt.Errorf("failed to schedule ambient recruits: %w", err)
		}
	}

	sched.Start()
	w.sched = sched
	w.log.Info("🔁 [SYNC] mesh sync worker started", zap.Duration("interval", w.interval))
	return nil
}

// Stop cancels the schedule and waits for running jobs to return.
func (w *MeshSyncWorker) Stop() error {
	w.mu.Lock()
	sched := w.sched
	w.sched = nil
	w.mu.Unlock()

	if sched == nil {
		return nil
	}
	if err := sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	w.log.Info("⏹️ [SYNC] mesh sync worker stopped")
	return nil
}

// Running reports whether the schedule is active.
func (w *MeshSyncWorker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sched != nil
}
