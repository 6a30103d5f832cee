package retention

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/casparjones/rdumper/internal/model"
	"github.com/casparjones/rdumper/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestGateway(t *testing.T) *store.Gateway {
	t.Helper()
	g, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	return g
}

func TestSweepBackupRetention_DeletesOnlyStaleTaskArtifacts(t *testing.T) {
	g := openTestGateway(t)
	backupRoot := t.TempDir()

	conn := &model.DatabaseConnection{Name: "primary", Host: "127.0.0.1", Port: 3306, Username: "root"}
	require.NoError(t, g.CreateConnection(conn))

	task := &model.Task{Name: "nightly", ConnectionID: conn.ID, CronExpression: "0 2 * * *", CleanupDays: 7}
	require.NoError(t, g.CreateTask(task))

	now := time.Now().UTC()
	makeArtifact := func(name string, age time.Duration) model.Artifact {
		dirName := name
		dir := filepath.Join(backupRoot, dirName)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, dirName+".tar.gz"), []byte("x"), 0o644))
		a := model.Artifact{TaskID: &task.ID, UsedDatabase: "primary/app", DirName: dirName, FilePath: filepath.Join(dir, dirName+".tar.gz"), Compression: model.CompressionGzip, Kind: model.BackupKindScheduled, CreatedAt: now.Add(-age)}
		require.NoError(t, g.CreateArtifact(&a))
		return a
	}

	fresh := makeArtifact("fresh", 2*24*time.Hour)
	stale := makeArtifact("stale", 10*24*time.Hour)

	sweepBackupRetention(g, backupRoot)

	_, err := g.GetArtifact(fresh.ID)
	assert.NoError(t, err)

	_, err = g.GetArtifact(stale.ID)
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(backupRoot, stale.DirName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSweepLogRetention_SkipsNonTerminalJobs(t *testing.T) {
	g := openTestGateway(t)
	logRoot := t.TempDir()

	conn := &model.DatabaseConnection{Name: "primary", Host: "127.0.0.1", Port: 3306, Username: "root"}
	require.NoError(t, g.CreateConnection(conn))

	job := &model.Job{Type: model.JobTypeBackup, ConnectionID: conn.ID, UsedDatabase: "primary/app", Status: model.JobRunning}
	require.NoError(t, g.CreateJobIfNoLiveJob(job))

	jobLogDir := filepath.Join(logRoot, job.ID)
	require.NoError(t, os.MkdirAll(jobLogDir, 0o755))
	old := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(jobLogDir, old, old))

	sweepLogRetention(g, logRoot, 14)

	_, err := os.Stat(jobLogDir)
	assert.NoError(t, err, "log directory for a non-terminal job must survive the sweep")
}

func TestSweepLogRetention_DeletesOldTerminalJobLogs(t *testing.T) {
	g := openTestGateway(t)
	logRoot := t.TempDir()

	conn := &model.DatabaseConnection{Name: "primary", Host: "127.0.0.1", Port: 3306, Username: "root"}
	require.NoError(t, g.CreateConnection(conn))

	job := &model.Job{Type: model.JobTypeBackup, ConnectionID: conn.ID, UsedDatabase: "primary/app", Status: model.JobCompleted}
	require.NoError(t, g.CreateJobIfNoLiveJob(job))

	jobLogDir := filepath.Join(logRoot, job.ID)
	require.NoError(t, os.MkdirAll(jobLogDir, 0o755))
	old := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(jobLogDir, old, old))

	sweepLogRetention(g, logRoot, 14)

	_, err := os.Stat(jobLogDir)
	assert.True(t, os.IsNotExist(err))
}
