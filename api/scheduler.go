/*
scheduler.go - Nightly snapshot scheduler

PURPOSE:
  Runs the batch snapshot job on a cron schedule so that the summary
  engine's fast path stays warm without manual intervention. After each
  run it applies the retention window to old snapshots.

DESIGN:
  - robfig/cron with a configurable cron expression (default: 02:00 UTC)
  - Each run snapshots YESTERDAY, the most recent fully completed day
  - Per-card failures are already isolated inside the generator; the
    scheduler only logs the run totals
  - Retention cleanup runs after generation, skipped when RetentionDays
    is zero (keep forever)

USAGE:
  sched := NewSnapshotScheduler(handler, "0 2 * * *", 365)
  sched.Start()
  // ... later
  sched.Stop()

SEE ALSO:
  - handlers.go: GenerateSnapshots endpoint (manual trigger)
  - ledger/snapshot.go: SnapshotGenerator
*/
package api

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// SnapshotScheduler runs the nightly snapshot and cleanup jobs.
type SnapshotScheduler struct {
	Handler       *Handler
	Spec          string
	RetentionDays int

	cron *cron.Cron
}

// NewSnapshotScheduler creates a scheduler. A retentionDays of zero
// disables cleanup.
func NewSnapshotScheduler(handler *Handler, spec string, retentionDays int) *SnapshotScheduler {
	return &SnapshotScheduler{
		Handler:       handler,
		Spec:          spec,
		RetentionDays: retentionDays,
		cron:          cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start registers the job and begins the cron loop.
func (s *SnapshotScheduler) Start() error {
	_, err := s.cron.AddFunc(s.Spec, s.RunOnce)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("[Scheduler] Started with spec %q, retention %d days", s.Spec, s.RetentionDays)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *SnapshotScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[Scheduler] Stopped")
}

// RunOnce executes one snapshot-plus-cleanup cycle for yesterday.
// Exported so operators can trigger it out of schedule.
func (s *SnapshotScheduler) RunOnce() {
	ctx := context.Background()
	yesterday := time.Now().UTC().AddDate(0, 0, -1)

	stats, err := s.Handler.Snapshots.GenerateForDate(ctx, yesterday, false)
	if err != nil {
		log.Printf("[Scheduler] Snapshot run failed: %v", err)
		return
	}
	log.Printf("[Scheduler] Snapshot run for %s: %d created, %d updated, %d skipped, %d errors",
		stats.Date.Format("2006-01-02"), stats.Created, stats.Updated, stats.Skipped, stats.Errors)

	if s.RetentionDays <= 0 {
		return
	}

	cleanup, err := s.Handler.Snapshots.CleanupOlderThan(ctx, s.RetentionDays)
	if err != nil {
		log.Printf("[Scheduler] Cleanup failed: %v", err)
		return
	}
	if cleanup.DeletedCount > 0 {
		log.Printf("[Scheduler] Cleanup deleted %d snapshots older than %s",
			cleanup.DeletedCount, cleanup.CutoffDate.Format("2006-01-02"))
	}
}
