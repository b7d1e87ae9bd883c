package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("known plans", func(t *testing.T) {
		for _, s := range []string{"free", "pro", "enterprise"} {
			p, err := Parse(s)
			require.NoError(t, err)
			assert.Equal(t, Plan(s), p)
		}
	})

	t.Run("empty defaults to free", func(t *testing.T) {
		p, err := Parse("")
		require.NoError(t, err)
		assert.Equal(t, Free, p)
	})

	t.Run("unknown plan is a configuration error", func(t *testing.T) {
		_, err := Parse("platinum")
		var unknownErr *UnknownPlanError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, "platinum", unknownErr.Plan)
	})
}

func TestLimitsFor(t *testing.T) {
	free, err := LimitsFor(Free)
	require.NoError(t, err)
	assert.Equal(t, 5, free.DailyDebates)
	assert.Equal(t, 50, free.MonthlyDebates)
	assert.Equal(t, 3, free.RatePerMinute)

	ent, err := LimitsFor(Enterprise)
	require.NoError(t, err)
	assert.Equal(t, Unlimited, ent.DailyDebates)
	assert.Equal(t, Unlimited, ent.MonthlyDebates)
	assert.Positive(t, ent.RatePerMinute)

	empty, err := LimitsFor("")
	require.NoError(t, err)
	assert.Equal(t, free, empty)

	_, err = LimitsFor("gold")
	assert.Error(t, err)
}

func TestUpgradable(t *testing.T) {
	assert.True(t, Free.Upgradable())
	assert.True(t, Pro.Upgradable())
	assert.False(t, Enterprise.Upgradable())
}
