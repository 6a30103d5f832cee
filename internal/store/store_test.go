package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/casparjones/rdumper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestGateway(t *testing.T) *Gateway {
	t.Helper()
	dir := t.TempDir()
	g, err := Open(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	return g
}

func seedConnectionAndTask(t *testing.T, g *Gateway) *model.Task {
	t.Helper()
	conn := &model.DatabaseConnection{Name: "primary", Host: "127.0.0.1", Port: 3306, Username: "root"}
	require.NoError(t, g.CreateConnection(conn))

	task := &model.Task{
		Name:           "nightly",
		ConnectionID:   conn.ID,
		CronExpression: "0 2 * * *",
		Compression:    model.CompressionGzip,
		CleanupDays:    7,
	}
	require.NoError(t, g.CreateTask(task))
	return task
}

func TestCreateJobIfNoLiveJob_RejectsSecondLiveJob(t *testing.T) {
	g := openTestGateway(t)
	task := seedConnectionAndTask(t, g)

	first := &model.Job{Type: model.JobTypeBackup, TaskID: &task.ID, ConnectionID: task.ConnectionID, UsedDatabase: "primary/app"}
	require.NoError(t, g.CreateJobIfNoLiveJob(first))

	second := &model.Job{Type: model.JobTypeBackup, TaskID: &task.ID, ConnectionID: task.ConnectionID, UsedDatabase: "primary/app"}
	err := g.CreateJobIfNoLiveJob(second)
	assert.ErrorIs(t, err, ErrJobCollision)
}

func TestCreateJobIfNoLiveJob_AllowsAfterTerminal(t *testing.T) {
	g := openTestGateway(t)
	task := seedConnectionAndTask(t, g)

	first := &model.Job{Type: model.JobTypeBackup, TaskID: &task.ID, ConnectionID: task.ConnectionID, UsedDatabase: "primary/app"}
	require.NoError(t, g.CreateJobIfNoLiveJob(first))
	require.NoError(t, g.TransitionJob(first.ID, map[string]interface{}{"status": model.JobCompleted}))

	second := &model.Job{Type: model.JobTypeBackup, TaskID: &task.ID, ConnectionID: task.ConnectionID, UsedDatabase: "primary/app"}
	assert.NoError(t, g.CreateJobIfNoLiveJob(second))
}

func TestTransitionJob_RejectsMutationAfterTerminal(t *testing.T) {
	g := openTestGateway(t)
	task := seedConnectionAndTask(t, g)

	job := &model.Job{Type: model.JobTypeBackup, TaskID: &task.ID, ConnectionID: task.ConnectionID, UsedDatabase: "primary/app"}
	require.NoError(t, g.CreateJobIfNoLiveJob(job))
	require.NoError(t, g.TransitionJob(job.ID, map[string]interface{}{"status": model.JobFailed, "error_message": "boom"}))

	err := g.TransitionJob(job.ID, map[string]interface{}{"status": model.JobRunning})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInternalInvariantViolation)
}

func TestArtifactsForTaskOlderThan(t *testing.T) {
	g := openTestGateway(t)
	task := seedConnectionAndTask(t, g)

	now := time.Now().UTC()
	old := &model.Artifact{
		TaskID: &task.ID, UsedDatabase: "primary/app", DirName: "primary-app-old",
		FilePath: "/x/primary-app-old.tar.gz", Compression: model.CompressionGzip,
		Kind: model.BackupKindScheduled, CreatedAt: now.Add(-10 * 24 * time.Hour),
	}
	recent := &model.Artifact{
		TaskID: &task.ID, UsedDatabase: "primary/app", DirName: "primary-app-new",
		FilePath: "/x/primary-app-new.tar.gz", Compression: model.CompressionGzip,
		Kind: model.BackupKindScheduled, CreatedAt: now.Add(-2 * 24 * time.Hour),
	}
	require.NoError(t, g.CreateArtifact(old))
	require.NoError(t, g.CreateArtifact(recent))

	stale, err := g.ArtifactsForTaskOlderThan(task.ID, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "primary-app-old", stale[0].DirName)
}
