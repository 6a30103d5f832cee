package dumper

import (
	"testing"
	"time"

	"github.com/casparjones/rdumper/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestParser_DumpLifecycle(t *testing.T) {
	p := NewParser()
	now := time.Now().UTC()

	assert.True(t, p.Feed(LogLine{Text: "table app.orders dump started", At: now}))
	assert.True(t, p.Feed(LogLine{Text: "table app.orders progress 50%", At: now}))
	assert.True(t, p.Feed(LogLine{Text: "table app.orders dump completed", At: now}))
	assert.False(t, p.Feed(LogLine{Text: "some unrelated line nobody cares about"}))

	assert.Equal(t, 100, p.OverallPercent())
	rows := p.Snapshot("job-1")
	assert.Len(t, rows, 1)
	assert.Equal(t, model.TableProgressCompleted, rows[0].Status)
}

func TestParser_SkippedCountsAsComplete(t *testing.T) {
	p := NewParser()
	p.Feed(LogLine{Text: "table app.orders dump started"})
	p.Feed(LogLine{Text: "table app.orders dump completed"})
	p.Feed(LogLine{Text: "non-innodb table `legacy_sessions` skipped"})

	assert.Equal(t, 100, p.OverallPercent())
}

func TestParser_OverallPercentIsMeanAcrossTables(t *testing.T) {
	p := NewParser()
	p.Feed(LogLine{Text: "table app.a dump started"})
	p.Feed(LogLine{Text: "table app.a progress 100%"})
	p.Feed(LogLine{Text: "table app.b dump started"})
	p.Feed(LogLine{Text: "table app.b progress 0%"})

	assert.Equal(t, 50, p.OverallPercent())
}

func TestParser_ErrorLineMarksTableError(t *testing.T) {
	p := NewParser()
	p.Feed(LogLine{Text: "table app.orders dump started"})
	p.Feed(LogLine{Text: "ERROR: connection lost while dumping `orders`", Level: "error"})

	rows := p.Snapshot("job-1")
	require := assert.New(t)
	require.Len(rows, 1)
	require.Equal(model.TableProgressError, rows[0].Status)
}

func TestInferLevel(t *testing.T) {
	assert.Equal(t, "error", InferLevel("ERROR: could not connect"))
	assert.Equal(t, "error", InferLevel("operation failed unexpectedly"))
	assert.Equal(t, "debug", InferLevel("table app.orders dump started"))
}

func TestParser_ShouldPersistRateLimiting(t *testing.T) {
	p := NewParser()
	assert.False(t, p.ShouldPersist())

	p.Feed(LogLine{Text: "table app.orders dump started"})
	assert.True(t, p.ShouldPersist())

	p.MarkPersisted()
	assert.False(t, p.ShouldPersist())

	p.Feed(LogLine{Text: "some unrelated chatter"})
	assert.False(t, p.ShouldPersist())
}
