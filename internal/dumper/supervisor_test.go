package dumper

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupervisor_StreamsLinesAndExitsCleanly(t *testing.T) {
	dir := t.TempDir()
	script := `echo "table app.orders dump started"; echo "table app.orders dump completed"`

	sup, err := Spawn(context.Background(), "sh", []string{"-c", script},
		filepath.Join(dir, "stdout.log"), filepath.Join(dir, "stderr.log"), 10*time.Second)
	require.NoError(t, err)

	var seen []LogLine
	for line := range sup.Lines() {
		seen = append(seen, line)
	}

	result := sup.Wait()
	assert.Equal(t, 0, result.ExitCode)
	assert.False(t, result.Cancelled)
	require.Len(t, seen, 2)
	assert.Contains(t, seen[0].Text, "dump started")
}

func TestSupervisor_CancelTerminatesChild(t *testing.T) {
	dir := t.TempDir()

	sup, err := Spawn(context.Background(), "sh", []string{"-c", "sleep 30"},
		filepath.Join(dir, "stdout.log"), filepath.Join(dir, "stderr.log"), 2*time.Second)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		sup.Cancel()
	}()

	for range sup.Lines() {
	}

	result := sup.Wait()
	assert.True(t, result.Cancelled)
	assert.NotEqual(t, 0, result.ExitCode)
}

func TestSupervisor_LongLineTruncated(t *testing.T) {
	dir := t.TempDir()
	script := `printf '%*s\n' 70000 | tr ' ' 'x'`

	sup, err := Spawn(context.Background(), "sh", []string{"-c", script},
		filepath.Join(dir, "stdout.log"), filepath.Join(dir, "stderr.log"), 5*time.Second)
	require.NoError(t, err)

	var longest int
	for line := range sup.Lines() {
		if len(line.Text) > longest {
			longest = len(line.Text)
		}
	}
	sup.Wait()

	assert.LessOrEqual(t, longest, maxLineBytes+len(truncateMarker))
}
