// Package retention implements the two retention workers: backup retention
// (per-task artifact cleanup by age) and log retention (global job-log
// cleanup by age). Each runs on its own ticker, with an initial run shortly
// after process start so a freshly started daemon doesn't wait a full
// interval before its first sweep.
package retention

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/casparjones/rdumper/internal/artifact"
	"github.com/casparjones/rdumper/internal/logging"
	"github.com/casparjones/rdumper/internal/store"
)

const initialDelay = 30 * time.Second

// RunBackupRetention runs the per-task artifact sweep on a ticker until ctx
// is cancelled. For every task, artifacts older than the task's retention
// window are deleted from disk and from the gateway; artifacts not linked
// to a task are never touched.
func RunBackupRetention(ctx context.Context, gateway *store.Gateway, backupRoot string, interval time.Duration) {
	runAfter(ctx, initialDelay, interval, func() {
		sweepBackupRetention(gateway, backupRoot)
	})
}

// RunLogRetention runs the global job-log sweep on a ticker until ctx is
// cancelled.
func RunLogRetention(ctx context.Context, gateway *store.Gateway, logRoot string, retentionDays int, interval time.Duration) {
	runAfter(ctx, initialDelay, interval, func() {
		sweepLogRetention(gateway, logRoot, retentionDays)
	})
}

func runAfter(ctx context.Context, initial, interval time.Duration, fn func()) {
	initialTimer := time.NewTimer(initial)
	defer initialTimer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-initialTimer.C:
		fn()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

func sweepBackupRetention(gateway *store.Gateway, backupRoot string) {
	tasks, err := gateway.ListTasks()
	if err != nil {
		logging.Error(logging.Event{Category: logging.CategoryWorker, Message: "backup retention: failed to list tasks: " + err.Error()})
		return
	}

	now := time.Now().UTC()
	deleted := 0

	for _, task := range tasks {
		if task.CleanupDays < 1 {
			continue
		}
		cutoff := now.Add(-time.Duration(task.CleanupDays) * 24 * time.Hour)

		stale, err := gateway.ArtifactsForTaskOlderThan(task.ID, cutoff)
		if err != nil {
			logging.Error(logging.Event{
				Category: logging.CategoryTask, EntityType: "task", EntityID: task.ID,
				Message: "backup retention: failed to query stale artifacts: " + err.Error(),
			})
			continue
		}

		for _, a := range stale {
			if err := artifact.Delete(backupRoot, a.DirName); err != nil {
				logging.Error(logging.Event{
					Category: logging.CategoryJob, EntityType: "artifact", EntityID: a.ID,
					Message: "backup retention: failed to delete artifact directory: " + err.Error(),
				})
				continue
			}
			if err := gateway.DeleteArtifact(a.ID); err != nil {
				logging.Error(logging.Event{
					Category: logging.CategoryJob, EntityType: "artifact", EntityID: a.ID,
					Message: "backup retention: failed to delete artifact row: " + err.Error(),
				})
				continue
			}
			deleted++
		}
	}

	logging.Info(logging.Event{Category: logging.CategoryWorker, Message: "backup retention sweep complete", EntityType: "count", EntityID: strconv.Itoa(deleted)})
}

func sweepLogRetention(gateway *store.Gateway, logRoot string, retentionDays int) {
	entries, err := os.ReadDir(logRoot)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		logging.Error(logging.Event{Category: logging.CategoryWorker, Message: "log retention: failed to list log directory: " + err.Error()})
		return
	}

	cutoff := time.Now().UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	deleted := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		jobID := entry.Name()

		job, err := gateway.GetJob(jobID)
		if err == nil && !job.Status.Terminal() {
			// Still live — skip regardless of age.
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err := os.RemoveAll(filepath.Join(logRoot, jobID)); err != nil {
			logging.Error(logging.Event{
				Category: logging.CategoryJob, EntityType: "job", EntityID: jobID,
				Message: "log retention: failed to delete log directory: " + err.Error(),
			})
			continue
		}
		deleted++
	}

	logging.Info(logging.Event{Category: logging.CategoryWorker, Message: "log retention sweep complete", EntityType: "count", EntityID: strconv.Itoa(deleted)})
}

