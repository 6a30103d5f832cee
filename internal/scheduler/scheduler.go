// Package scheduler is the Scheduler Worker: one cooperative goroutine that
// ticks every scheduler_tick_seconds, selects due tasks, and asks the Job
// Orchestrator to try to start a backup job for each.
//
// The tick counter / last-tick / tasks-executed tuple is a natural shared
// singleton, so it is modeled as a record owned by the worker goroutine and
// read by callers only through a request/response channel rather than an
// ambient global.
package scheduler

import (
	"context"
	"time"

	"github.com/casparjones/rdumper/internal/cronexpr"
	"github.com/casparjones/rdumper/internal/logging"
	"github.com/casparjones/rdumper/internal/model"
	"github.com/casparjones/rdumper/internal/orchestrator"
	"github.com/casparjones/rdumper/internal/store"
)

// Snapshot is the worker's health tuple: tick count, tasks handed to the
// Orchestrator, and the time of the last tick.
type Snapshot struct {
	TotalTicks    uint64
	TasksExecuted uint64
	LastTickAt    time.Time
}

// Worker runs the one scheduler tick task.
type Worker struct {
	gateway      *store.Gateway
	orchestrator *orchestrator.Orchestrator
	tickInterval time.Duration

	snapshotRequests chan chan Snapshot
	done             chan struct{}
}

func New(gateway *store.Gateway, orch *orchestrator.Orchestrator, tickInterval time.Duration) *Worker {
	if tickInterval < 5*time.Second {
		tickInterval = 5 * time.Second
	}
	return &Worker{
		gateway:          gateway,
		orchestrator:     orch,
		tickInterval:     tickInterval,
		snapshotRequests: make(chan chan Snapshot),
		done:             make(chan struct{}),
	}
}

// Run blocks, ticking until ctx is cancelled. Call it in its own goroutine.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	snap := Snapshot{}

	for {
		select {
		case <-ctx.Done():
			close(w.done)
			return
		case reply := <-w.snapshotRequests:
			reply <- snap
		case <-ticker.C:
			snap.TotalTicks++
			snap.LastTickAt = time.Now().UTC()
			snap.TasksExecuted += w.tick(ctx)
		}
	}
}

// Snapshot requests the current health tuple over the worker's own channel,
// per the owned-record / message-passing design note — no ambient global.
func (w *Worker) Snapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	select {
	case w.snapshotRequests <- reply:
		return <-reply
	case <-w.done:
		return Snapshot{}
	}
}

// tick loads every due task, advances its next_fire_at, and asks the
// Orchestrator to try starting a job. A failure handling one task is logged
// and does not stop the tick from reaching the rest.
func (w *Worker) tick(ctx context.Context) (executed uint64) {
	now := time.Now().UTC()

	tasks, err := w.gateway.DueTasks(now)
	if err != nil {
		logging.Error(logging.Event{Category: logging.CategoryWorker, Message: "failed to load due tasks: " + err.Error()})
		return 0
	}

	for _, task := range tasks {
		next, err := cronexpr.NextAfter(task.CronExpression, now)
		if err != nil {
			logging.Error(logging.Event{
				Category: logging.CategoryTask, EntityType: "task", EntityID: task.ID,
				Message: "invalid cron expression: " + err.Error(),
			})
			continue
		}

		if err := w.gateway.UpdateTaskFireTimes(task.ID, now, next); err != nil {
			logging.Error(logging.Event{
				Category: logging.CategoryTask, EntityType: "task", EntityID: task.ID,
				Message: "failed to persist next fire time: " + err.Error(),
			})
			continue
		}

		conn, err := w.gateway.GetConnection(task.ConnectionID)
		if err != nil {
			logging.Error(logging.Event{
				Category: logging.CategoryTask, EntityType: "task", EntityID: task.ID,
				Message: "failed to load owning connection: " + err.Error(),
			})
			continue
		}

		if _, err := w.orchestrator.TryStartBackup(ctx, task, *conn, model.BackupKindScheduled); err != nil {
			logging.Error(logging.Event{
				Category: logging.CategoryTask, EntityType: "task", EntityID: task.ID,
				Message: "failed to start scheduled job: " + err.Error(),
			})
			continue
		}

		executed++
	}

	return executed
}
