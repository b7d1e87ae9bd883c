package usage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestApplyResets(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	base := Record{
		UserID:             uuid.New(),
		DebatesToday:       4,
		DailyResetAt:       now.Add(-1 * time.Hour),
		DebatesThisMonth:   20,
		MonthlyResetAt:     now.Add(-48 * time.Hour),
		RequestsThisMinute: 2,
		MinuteWindowStart:  now.Add(-10 * time.Second),
		TotalDebates:       100,
	}

	t.Run("nothing elapsed", func(t *testing.T) {
		got := base.ApplyResets(now)
		assert.Equal(t, base, got)
	})

	t.Run("minute window elapsed", func(t *testing.T) {
		r := base
		r.MinuteWindowStart = now.Add(-61 * time.Second)
		got := r.ApplyResets(now)
		assert.Zero(t, got.RequestsThisMinute)
		assert.Equal(t, now, got.MinuteWindowStart)
		assert.Equal(t, 4, got.DebatesToday)
		assert.Equal(t, 20, got.DebatesThisMonth)
	})

	t.Run("exactly at the boundary resets", func(t *testing.T) {
		r := base
		r.MinuteWindowStart = now.Add(-MinuteWindow)
		got := r.ApplyResets(now)
		assert.Zero(t, got.RequestsThisMinute)
	})

	t.Run("daily window elapsed", func(t *testing.T) {
		r := base
		r.DailyResetAt = now.Add(-25 * time.Hour)
		got := r.ApplyResets(now)
		assert.Zero(t, got.DebatesToday)
		assert.Equal(t, now, got.DailyResetAt)
		assert.Equal(t, 20, got.DebatesThisMonth)
	})

	t.Run("monthly window is a fixed 30 days", func(t *testing.T) {
		r := base
		r.MonthlyResetAt = now.Add(-29 * 24 * time.Hour)
		got := r.ApplyResets(now)
		assert.Equal(t, 20, got.DebatesThisMonth, "29 days must not reset")

		r.MonthlyResetAt = now.Add(-30 * 24 * time.Hour)
		got = r.ApplyResets(now)
		assert.Zero(t, got.DebatesThisMonth)
		assert.Equal(t, now, got.MonthlyResetAt)
	})

	t.Run("all windows elapsed at once", func(t *testing.T) {
		r := base
		r.MinuteWindowStart = now.Add(-40 * 24 * time.Hour)
		r.DailyResetAt = now.Add(-40 * 24 * time.Hour)
		r.MonthlyResetAt = now.Add(-40 * 24 * time.Hour)
		got := r.ApplyResets(now)
		assert.Zero(t, got.RequestsThisMinute)
		assert.Zero(t, got.DebatesToday)
		assert.Zero(t, got.DebatesThisMonth)
		assert.Equal(t, int64(100), got.TotalDebates, "lifetime counter never resets")
	})

	t.Run("future window start never resets", func(t *testing.T) {
		r := base
		r.MinuteWindowStart = now.Add(5 * time.Minute)
		r.DailyResetAt = now.Add(48 * time.Hour)
		r.MonthlyResetAt = now.Add(90 * 24 * time.Hour)
		got := r.ApplyResets(now)
		assert.Equal(t, 2, got.RequestsThisMinute)
		assert.Equal(t, 4, got.DebatesToday)
		assert.Equal(t, 20, got.DebatesThisMonth)
	})

	t.Run("pure: receiver unchanged", func(t *testing.T) {
		r := base
		r.MinuteWindowStart = now.Add(-2 * time.Minute)
		_ = r.ApplyResets(now)
		assert.Equal(t, 2, r.RequestsThisMinute)
	})
}
