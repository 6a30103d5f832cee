package cronexpr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextAfter_DailyAtTwoAM(t *testing.T) {
	after := time.Date(2026, 1, 1, 1, 59, 0, 0, time.UTC)
	next, err := NextAfter("0 2 * * *", after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 2, 0, 0, 0, time.UTC), next)
}

func TestNextAfter_StepMinutes(t *testing.T) {
	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next, err := NextAfter("*/15 * * * *", after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 15, 0, 0, time.UTC), next)
}

func TestNextAfter_CommaList(t *testing.T) {
	after := time.Date(2026, 1, 1, 0, 10, 0, 0, time.UTC)
	next, err := NextAfter("0,30 * * * *", after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 30, 0, 0, time.UTC), next)
}

func TestNextAfter_DayOfWeekOrDayOfMonth(t *testing.T) {
	// 2026-01-01 is a Thursday (weekday=4). Expression fires on day 15 OR on
	// Mondays (weekday=1); OR semantics means both accepted independently.
	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next, err := NextAfter("0 0 15 * 1", after)
	require.NoError(t, err)
	// 2026-01-05 is the first Monday after Jan 1.
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), next)
}

func TestNextAfter_StepZeroRejected(t *testing.T) {
	_, err := NextAfter("*/0 * * * *", time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCron)
}

func TestNextAfter_WrongFieldCount(t *testing.T) {
	_, err := NextAfter("* * *", time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCron)
}

func TestNextAfter_StrictMonotonicity(t *testing.T) {
	exprs := []string{"0 2 * * *", "*/5 * * * *", "0 0 1 * *", "30 8 * * 1"}
	after := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, expr := range exprs {
		first, err := NextAfter(expr, after)
		require.NoError(t, err)
		second, err := NextAfter(expr, first)
		require.NoError(t, err)
		assert.True(t, second.After(first), "expr %q: %s should be after %s", expr, second, first)
	}
}
