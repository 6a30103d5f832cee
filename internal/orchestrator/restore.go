package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/casparjones/rdumper/internal/artifact"
	"github.com/casparjones/rdumper/internal/dumper"
	"github.com/casparjones/rdumper/internal/logging"
	"github.com/casparjones/rdumper/internal/model"
)

// StartRestore creates and drives a restore job against artifactRow,
// symmetric to a backup job but with no Compressing phase: Running then
// directly to Completed, Failed, or Cancelled.
func (o *Orchestrator) StartRestore(ctx context.Context, artifactRow model.Artifact, conn model.DatabaseConnection, mode model.RestoreMode, newDatabaseName string) (*model.Job, error) {
	job := &model.Job{
		Type:            model.JobTypeRestore,
		ConnectionID:    conn.ID,
		UsedDatabase:    artifactRow.UsedDatabase,
		ArtifactID:      &artifactRow.ID,
		RestoreMode:     mode,
		NewDatabaseName: newDatabaseName,
	}

	if err := o.gateway.CreateJobIfNoLiveJob(job); err != nil {
		return nil, err
	}

	go o.driveRestore(*job, artifactRow, conn, mode, newDatabaseName)
	return job, nil
}

func (o *Orchestrator) driveRestore(job model.Job, artifactRow model.Artifact, conn model.DatabaseConnection, mode model.RestoreMode, newDatabaseName string) {
	ctx, cancel := context.WithCancel(context.Background())
	o.registerCancel(job.ID, cancel)
	defer o.unregisterCancel(job.ID)
	defer cancel()

	fail := func(err error) {
		now := time.Now().UTC()
		_ = o.gateway.TransitionJob(job.ID, map[string]interface{}{
			"status":        model.JobFailed,
			"error_message": err.Error(),
			"completed_at":  now,
		})
		logging.Error(logging.Event{Category: logging.CategoryJob, EntityType: "job", EntityID: job.ID, Message: err.Error()})
	}

	target := o.target(conn)

	database := databaseFromUsedDatabase(artifactRow.UsedDatabase)
	if mode == model.RestoreCreateNew {
		database = newDatabaseName
		canCreate, err := dumper.CanCreateDatabase(ctx, target)
		if err != nil {
			fail(fmt.Errorf("%w: %v", model.ErrPreflightFailure, err))
			return
		}
		if !canCreate {
			fail(fmt.Errorf("%w: connection user lacks database-creation privilege", model.ErrPreflightFailure))
			return
		}
	}
	target.Database = database

	now := time.Now().UTC()
	if err := o.gateway.TransitionJob(job.ID, map[string]interface{}{
		"status":          model.JobRunning,
		"started_at":      now,
		"log_output_path": o.jobLogDir(job.ID),
	}); err != nil {
		logging.InvariantViolation(err.Error())
		return
	}

	extractDir := filepath.Join(o.cfg.LogDir(), "..", ".restore-work", job.ID)
	if err := artifact.Extract(artifactRow.FilePath, extractDir); err != nil {
		fail(err)
		return
	}
	defer removeWorkDir(extractDir)

	argv := dumper.BuildLoadArgv(dumper.LoadArgs{
		Target:    target,
		Database:  database,
		SourceDir: extractDir,
		Overwrite: mode == model.RestoreOverwriteOriginal,
	})

	sup, err := dumper.Spawn(ctx, o.cfg.LoaderPath, argv,
		filepath.Join(o.jobLogDir(job.ID), "stdout.log"),
		filepath.Join(o.jobLogDir(job.ID), "stderr.log"),
		time.Duration(o.cfg.CancelGraceSeconds)*time.Second)
	if err != nil {
		fail(fmt.Errorf("%w: %v", model.ErrExternalToolFailure, err))
		return
	}

	parser := dumper.NewParser()
	o.consumeProgress(job.ID, parser, sup)

	result := sup.Wait()

	if result.Cancelled {
		completed := time.Now().UTC()
		_ = o.gateway.TransitionJob(job.ID, map[string]interface{}{"status": model.JobCancelled, "completed_at": completed})
		return
	}
	if result.ExitCode != 0 {
		fail(fmt.Errorf("%w: loader exited with code %d", model.ErrExternalToolFailure, result.ExitCode))
		return
	}

	completed := time.Now().UTC()
	_ = o.gateway.TransitionJob(job.ID, map[string]interface{}{
		"status":       model.JobCompleted,
		"progress":     100,
		"completed_at": completed,
	})
	logging.Info(logging.Event{Category: logging.CategoryJob, EntityType: "job", EntityID: job.ID, Message: "restore completed"})
}

func databaseFromUsedDatabase(usedDatabase string) string {
	for i := len(usedDatabase) - 1; i >= 0; i-- {
		if usedDatabase[i] == '/' {
			return usedDatabase[i+1:]
		}
	}
	return usedDatabase
}
