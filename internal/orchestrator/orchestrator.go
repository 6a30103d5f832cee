package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/casparjones/rdumper/internal/artifact"
	"github.com/casparjones/rdumper/internal/dumper"
	"github.com/casparjones/rdumper/internal/logging"
	"github.com/casparjones/rdumper/internal/model"
	"github.com/casparjones/rdumper/internal/rdconfig"
	"github.com/casparjones/rdumper/internal/store"
)

// Orchestrator owns the gateway, configuration, and probed capability set,
// and is the single driver of every job's state machine. Per-job driver
// goroutines share no mutable state with their siblings — each owns its own
// cancel token, tracked here only so a CLI-issued cancel request can find it.
type Orchestrator struct {
	gateway *store.Gateway
	cfg     rdconfig.Config
	caps    dumper.CapabilitySet

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func New(gateway *store.Gateway, cfg rdconfig.Config, caps dumper.CapabilitySet) *Orchestrator {
	return &Orchestrator{
		gateway: gateway,
		cfg:     cfg,
		caps:    caps,
		cancels: map[string]context.CancelFunc{},
	}
}

// TryStartBackup implements the scheduler's "try to start" call: it resolves
// used_database, performs the start-contention check and insert atomically,
// and — only if a job row was actually created — spawns the per-job driver
// goroutine. A collision is logged, not returned as an error, since the
// scheduler tick must continue to the next task regardless.
func (o *Orchestrator) TryStartBackup(ctx context.Context, task model.Task, conn model.DatabaseConnection, kind model.BackupKind) (*model.Job, error) {
	usedDatabase, database, err := ResolveUsedDatabase(conn.Name, conn.DefaultDatabase, task.DatabaseName)
	taskID := task.ID

	job := &model.Job{
		Type:         model.JobTypeBackup,
		TaskID:       &taskID,
		ConnectionID: conn.ID,
		UsedDatabase: usedDatabase,
	}

	if err != nil {
		job.Status = model.JobFailed
		job.ErrorMessage = err.Error()
		now := time.Now().UTC()
		job.CompletedAt = &now
		if createErr := o.gateway.CreateJobIfNoLiveJob(job); createErr != nil {
			return nil, createErr
		}
		return job, nil
	}

	createErr := o.gateway.CreateJobIfNoLiveJob(job)
	if createErr != nil {
		if createErr == store.ErrJobCollision {
			logging.Info(logging.Event{
				Category:   logging.CategoryTask,
				EntityType: "task",
				EntityID:   task.ID,
				Message:    "skipped: a non-terminal job already exists for this task",
			})
			return nil, nil
		}
		return nil, createErr
	}

	go o.driveBackup(task, conn, *job, database, kind)
	return job, nil
}

// RequestCancel flips the cancellation token for jobID, if a live driver
// goroutine owns one. The driver observes it only at its next await point.
func (o *Orchestrator) RequestCancel(jobID string) bool {
	o.mu.Lock()
	cancel, ok := o.cancels[jobID]
	o.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

func (o *Orchestrator) registerCancel(jobID string, cancel context.CancelFunc) {
	o.mu.Lock()
	o.cancels[jobID] = cancel
	o.mu.Unlock()
}

func (o *Orchestrator) unregisterCancel(jobID string) {
	o.mu.Lock()
	delete(o.cancels, jobID)
	o.mu.Unlock()
}

func (o *Orchestrator) jobLogDir(jobID string) string {
	return filepath.Join(o.cfg.LogDir(), jobID)
}

func (o *Orchestrator) target(conn model.DatabaseConnection) dumper.ConnectionTarget {
	return dumper.ConnectionTarget{
		Host:     conn.Host,
		Port:     conn.Port,
		Username: conn.Username,
		Password: conn.Password,
	}
}

// driveBackup runs the full Pending -> Running -> Compressing -> Completed
// chain (or an early Failed/Cancelled exit) for one backup job. It holds no
// state any sibling driver reads; everything it needs travels in its
// arguments and what it reads back from the gateway.
func (o *Orchestrator) driveBackup(task model.Task, conn model.DatabaseConnection, job model.Job, database string, kind model.BackupKind) {
	ctx, cancel := context.WithCancel(context.Background())
	o.registerCancel(job.ID, cancel)
	defer o.unregisterCancel(job.ID)
	defer cancel()

	fail := func(err error) {
		now := time.Now().UTC()
		_ = o.gateway.TransitionJob(job.ID, map[string]interface{}{
			"status":       model.JobFailed,
			"error_message": err.Error(),
			"completed_at": now,
		})
		logging.Error(logging.Event{Category: logging.CategoryJob, EntityType: "job", EntityID: job.ID, Message: err.Error()})
	}

	target := o.target(conn)
	target.Database = database

	if err := dumper.TestConnection(ctx, target); err != nil {
		fail(fmt.Errorf("%w: %v", model.ErrPreflightFailure, err))
		return
	}

	engines, err := dumper.AnalyzeTableEngines(ctx, target, database)
	if err != nil {
		fail(err)
		return
	}

	now := time.Now().UTC()
	if err := o.gateway.TransitionJob(job.ID, map[string]interface{}{
		"status":         model.JobRunning,
		"started_at":     now,
		"log_output_path": o.jobLogDir(job.ID),
	}); err != nil {
		logging.InvariantViolation(err.Error())
		return
	}

	parser := dumper.NewParser()
	for _, e := range engines {
		if e.Class == dumper.EngineNonTransactional && !task.NonTransactionalMode {
			parser.Feed(dumper.LogLine{Text: fmt.Sprintf("non-innodb table `%s` skipped", e.Name), At: now})
		}
	}
	_ = o.gateway.SaveTableProgressSnapshot(job.ID, parser.Snapshot(job.ID))

	outputDir := filepath.Join(o.cfg.BackupDir(), ".work", job.ID)
	argv := dumper.BuildDumpArgv(dumper.DumpArgs{
		Target:           target,
		Database:         database,
		OutputDir:        outputDir,
		LogFile:          filepath.Join(o.jobLogDir(job.ID), "mydumper.log"),
		NonTransactional: task.NonTransactionalMode,
		Compression:      string(task.Compression),
		Capabilities:      o.caps,
	})

	sup, err := dumper.Spawn(ctx, o.cfg.DumperPath, argv,
		filepath.Join(o.jobLogDir(job.ID), "stdout.log"),
		filepath.Join(o.jobLogDir(job.ID), "stderr.log"),
		time.Duration(o.cfg.CancelGraceSeconds)*time.Second)
	if err != nil {
		fail(fmt.Errorf("%w: %v", model.ErrExternalToolFailure, err))
		return
	}

	o.consumeProgress(job.ID, parser, sup)

	result := sup.Wait()

	if result.Cancelled {
		now := time.Now().UTC()
		_ = o.gateway.TransitionJob(job.ID, map[string]interface{}{
			"status":       model.JobCancelled,
			"completed_at": now,
		})
		_ = removeWorkDir(outputDir)
		logging.Info(logging.Event{Category: logging.CategoryJob, EntityType: "job", EntityID: job.ID, Message: "cancelled"})
		return
	}

	if result.ExitCode != 0 {
		fail(fmt.Errorf("%w: dumper exited with code %d", model.ErrExternalToolFailure, result.ExitCode))
		_ = removeWorkDir(outputDir)
		return
	}

	if err := o.gateway.TransitionJob(job.ID, map[string]interface{}{"status": model.JobCompressing}); err != nil {
		logging.InvariantViolation(err.Error())
		return
	}

	dirName := artifact.DirName(conn.Name, database)
	destDir := filepath.Join(o.cfg.BackupDir(), dirName)
	meta := model.ArtifactMetadata{
		JobID:        job.ID,
		TaskID:       task.ID,
		ConnectionID: conn.ID,
		UsedDatabase: job.UsedDatabase,
		CreatedAt:    time.Now().UTC(),
		Compression:  task.Compression,
		Kind:         kind,
	}

	filePath, size, err := artifact.Seal(outputDir, destDir, dirName, task.Compression, meta)
	if err != nil {
		fail(fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err))
		return
	}
	_ = removeWorkDir(outputDir)

	row := &model.Artifact{
		ConnectionID: &conn.ID,
		UsedDatabase: job.UsedDatabase,
		TaskID:       &task.ID,
		DirName:      dirName,
		FilePath:     filePath,
		FileSize:     size,
		Compression:  task.Compression,
		Kind:         kind,
		CreatedAt:    meta.CreatedAt,
	}
	if err := o.gateway.CreateArtifact(row); err != nil {
		logging.InvariantViolation(err.Error())
		return
	}

	completedAt := time.Now().UTC()
	_ = o.gateway.TransitionJob(job.ID, map[string]interface{}{
		"status":       model.JobCompleted,
		"progress":     100,
		"artifact_id":  row.ID,
		"completed_at": completedAt,
	})
	logging.Info(logging.Event{Category: logging.CategoryJob, EntityType: "job", EntityID: job.ID, Message: "completed"})
}

// consumeProgress drains the supervisor's line channel through the parser,
// writing a rate-limited snapshot to the gateway. It returns once the
// channel closes (process exited, streams drained).
func (o *Orchestrator) consumeProgress(jobID string, parser *dumper.Parser, sup *dumper.Supervisor) {
	for line := range sup.Lines() {
		if parser.Feed(line) && parser.ShouldPersist() {
			_ = o.gateway.SaveTableProgressSnapshot(jobID, parser.Snapshot(jobID))
			_ = o.gateway.UpdateJobProgress(jobID, parser.OverallPercent())
			parser.MarkPersisted()
		}
	}
}
