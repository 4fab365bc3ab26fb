package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

	require.Equal(t, 0, DaysUntil(now, time.Date(2024, 5, 10, 1, 0, 0, 0, time.UTC)))
	require.Equal(t, 1, DaysUntil(now, time.Date(2024, 5, 11, 23, 59, 0, 0, time.UTC)))
	require.Equal(t, 2, DaysUntil(now, time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, -1, DaysUntil(now, time.Date(2024, 5, 9, 23, 0, 0, 0, time.UTC)))
}

func TestNextDailyTrigger(t *testing.T) {
	loc := time.UTC

	t.Run("before the hour fires today", func(t *testing.T) {
		now := time.Date(2024, 5, 10, 4, 0, 0, 0, loc)
		next := NextDailyTrigger(now, 6, loc)
		require.Equal(t, time.Date(2024, 5, 10, 6, 0, 0, 0, loc), next)
	})

	t.Run("past the hour fires tomorrow", func(t *testing.T) {
		now := time.Date(2024, 5, 10, 6, 0, 1, 0, loc)
		next := NextDailyTrigger(now, 6, loc)
		require.Equal(t, time.Date(2024, 5, 11, 6, 0, 0, 0, loc), next)
	})

	t.Run("exactly on the hour fires tomorrow", func(t *testing.T) {
		now := time.Date(2024, 5, 10, 6, 0, 0, 0, loc)
		next := NextDailyTrigger(now, 6, loc)
		require.Equal(t, time.Date(2024, 5, 11, 6, 0, 0, 0, loc), next)
	})
}
