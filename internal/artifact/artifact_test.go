package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/casparjones/rdumper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_Idempotent(t *testing.T) {
	name := `weird/name:with*chars?"<>|`
	once := Sanitize(name)
	twice := Sanitize(once)
	assert.Equal(t, once, twice)
	assert.NotContains(t, once, "/")
	assert.NotContains(t, once, "*")
}

func TestDirName_RoundTrip(t *testing.T) {
	dirName := DirName("primary-conn", "app_db")
	require.Greater(t, len(dirName), uuidLength+1)
	assert.True(t, strings.HasPrefix(dirName, "primary-conn-app_db-"))
	uuidPart := dirName[len(dirName)-uuidLength:]
	assert.Len(t, uuidPart, 36)
	assert.Regexp(t, uuidPattern, uuidPart)
}

func TestSealAndReadMetadataSidecar(t *testing.T) {
	root := t.TempDir()
	sourceDir := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(sourceDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "t1-schema.sql"), []byte("CREATE TABLE t1(id int);"), 0o644))

	dirName := DirName("conn", "app")
	destDir := filepath.Join(root, "backups", dirName)

	meta := model.ArtifactMetadata{
		JobID:        "job-1",
		UsedDatabase: "conn/app",
		CreatedAt:    time.Now().UTC(),
		Compression:  model.CompressionGzip,
		Kind:         model.BackupKindScheduled,
	}

	path, size, err := Seal(sourceDir, destDir, dirName, model.CompressionGzip, meta)
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))
	assert.True(t, strings.HasSuffix(path, ".tar.gz"))

	read, err := ReadMetadataSidecar(destDir)
	require.NoError(t, err)
	assert.Equal(t, "conn/app", read.UsedDatabase)
}

func TestScan_FindsSealedArtifact(t *testing.T) {
	root := t.TempDir()
	sourceDir := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(sourceDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "data.sql"), []byte("x"), 0o644))

	backupRoot := filepath.Join(root, "backups")
	dirName := DirName("conn", "app")
	destDir := filepath.Join(backupRoot, dirName)

	_, _, err := Seal(sourceDir, destDir, dirName, model.CompressionGzip, model.ArtifactMetadata{UsedDatabase: "conn/app"})
	require.NoError(t, err)

	discovered, err := Scan(backupRoot)
	require.NoError(t, err)
	require.Len(t, discovered, 1)
	assert.Equal(t, dirName, discovered[0].DirName)
	assert.False(t, discovered[0].Orphan)
}

func TestDelete_IdempotentOnMissingDirectory(t *testing.T) {
	root := t.TempDir()
	assert.NoError(t, Delete(root, "does-not-exist"))
}
