package usage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurox-platform/nurox/internal/plans"
)

func TestCheckAndConsume_CreatesRecordOnFirstUse(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	snap, err := enf.CheckAndConsume(ctx, userID, plans.Free, now)
	require.NoError(t, err)
	assert.Equal(t, plans.Free, snap.Plan)
	assert.Equal(t, 1, snap.UsedToday)
	assert.Equal(t, 1, snap.UsedMonthly)
	assert.Equal(t, int64(1), snap.TotalDebates)
	assert.Equal(t, 5, snap.DailyLimit)

	rec, err := store.Get(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, now, rec.DailyResetAt)
	assert.Equal(t, now, rec.MonthlyResetAt)
	assert.Equal(t, now, rec.MinuteWindowStart)
}

func TestCheckAndConsume_TotalEqualsSuccesses(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	// Spread calls across many minute windows so only the daily limit binds.
	successes := 0
	for i := 0; i < 8; i++ {
		_, err := enf.CheckAndConsume(ctx, userID, plans.Free, now.Add(time.Duration(i)*2*time.Minute))
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 5, successes, "free daily limit")

	rec, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(successes), rec.TotalDebates)
}

func TestCheckAndConsume_MinuteWindowReset(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	rec := NewRecord(userID, now.Add(-61*time.Second))
	rec.RequestsThisMinute = 3 // at the free rate limit
	require.NoError(t, store.Create(ctx, rec))

	snap, err := enf.CheckAndConsume(ctx, userID, plans.Free, now)
	require.NoError(t, err, "elapsed window must reset before the check")

	stored, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.RequestsThisMinute)
	assert.Equal(t, now, stored.MinuteWindowStart)
	assert.Equal(t, 1, snap.UsedToday)
}

func TestCheckAndConsume_RateLimited(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	rec := NewRecord(userID, now.Add(-10*time.Second))
	rec.RequestsThisMinute = 3
	rec.DebatesToday = 2
	rec.DebatesThisMonth = 2
	rec.TotalDebates = 2
	require.NoError(t, store.Create(ctx, rec))

	_, err := enf.CheckAndConsume(ctx, userID, plans.Free, now)
	var limitErr *LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, KindRateLimit, limitErr.Kind)
	assert.Equal(t, 3, limitErr.Limit)
	assert.Equal(t, 3, limitErr.Used)
	assert.True(t, limitErr.Upgrade)

	// A failed check persists nothing.
	stored, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.RequestsThisMinute)
	assert.Equal(t, 2, stored.DebatesToday)
	assert.Equal(t, int64(2), stored.TotalDebates)
	assert.Equal(t, now.Add(-10*time.Second), stored.MinuteWindowStart)
}

func TestCheckAndConsume_Precedence(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	// Over the rate limit AND the daily limit at once.
	rec := NewRecord(userID, now)
	rec.RequestsThisMinute = 3
	rec.DebatesToday = 5
	require.NoError(t, store.Create(ctx, rec))

	_, err := enf.CheckAndConsume(ctx, userID, plans.Free, now)
	var limitErr *LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, KindRateLimit, limitErr.Kind, "rate outranks daily")
}

func TestCheckAndConsume_DailyLimit(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	rec := NewRecord(userID, now)
	rec.DebatesToday = 5
	require.NoError(t, store.Create(ctx, rec))

	_, err := enf.CheckAndConsume(ctx, userID, plans.Free, now)
	var limitErr *LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, KindDailyLimit, limitErr.Kind)
	assert.Equal(t, 5, limitErr.Used)
}

func TestCheckAndConsume_MonthlyLimit(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	rec := NewRecord(userID, now)
	rec.DebatesThisMonth = 50
	require.NoError(t, store.Create(ctx, rec))

	_, err := enf.CheckAndConsume(ctx, userID, plans.Free, now)
	var limitErr *LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, KindMonthlyLimit, limitErr.Kind)
	assert.True(t, limitErr.Upgrade, "free plan is upgradable")
}

func TestCheckAndConsume_EnterpriseUnlimitedDaily(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	rec := NewRecord(userID, now)
	rec.DebatesToday = 10_000
	rec.DebatesThisMonth = 100_000
	require.NoError(t, store.Create(ctx, rec))

	snap, err := enf.CheckAndConsume(ctx, userID, plans.Enterprise, now)
	require.NoError(t, err)
	assert.Equal(t, plans.Unlimited, snap.DailyLimit)
	assert.Equal(t, 10_001, snap.UsedToday)
}

func TestCheckAndConsume_EnterpriseStillRateLimited(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	rec := NewRecord(userID, now)
	rec.RequestsThisMinute = 30
	require.NoError(t, store.Create(ctx, rec))

	_, err := enf.CheckAndConsume(ctx, userID, plans.Enterprise, now)
	var limitErr *LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, KindRateLimit, limitErr.Kind)
	assert.False(t, limitErr.Upgrade, "no tier above enterprise")
}

func TestCheckAndConsume_UnknownPlan(t *testing.T) {
	enf := NewEnforcer(NewMemoryStore())

	_, err := enf.CheckAndConsume(context.Background(), uuid.New(), "platinum", time.Now())
	var unknownErr *plans.UnknownPlanError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestCheckAndConsume_EmptyPlanDefaultsToFree(t *testing.T) {
	enf := NewEnforcer(NewMemoryStore())

	snap, err := enf.CheckAndConsume(context.Background(), uuid.New(), "", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, plans.Free, snap.Plan)
}

func TestCheckAndConsume_ConcurrentNoOverAdmission(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	userID := uuid.New()
	now := time.Now().UTC()

	// 2x the free rate limit within one minute window.
	const calls = 6
	var wg sync.WaitGroup
	results := make(chan error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := enf.CheckAndConsume(context.Background(), userID, plans.Free, now)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, rateDenied := 0, 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var limitErr *LimitError
		if assert.ErrorAs(t, err, &limitErr) {
			assert.Equal(t, KindRateLimit, limitErr.Kind)
			rateDenied++
		}
	}
	assert.Equal(t, 3, successes, "exactly the rate limit admitted")
	assert.Equal(t, 3, rateDenied)

	rec, err := store.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.TotalDebates)
}

func TestCheckAndConsume_ConcurrentFirstCallsCreateOneRecord(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	userID := uuid.New()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := enf.CheckAndConsume(context.Background(), userID, plans.Pro, now)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	rec, err := store.Get(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(2), rec.TotalDebates, "both calls consumed against the single record")
	assert.Equal(t, 2, rec.DebatesToday)
}

// conflictStore always loses the write race, driving the enforcer's retry
// budget to exhaustion.
type conflictStore struct {
	*MemoryStore
}

func (s *conflictStore) Save(context.Context, *Record) error {
	return ErrVersionConflict
}

func TestCheckAndConsume_ContentionExhaustsRetries(t *testing.T) {
	store := &conflictStore{MemoryStore: NewMemoryStore()}
	enf := NewEnforcer(store)

	_, err := enf.CheckAndConsume(context.Background(), uuid.New(), plans.Free, time.Now().UTC())
	assert.ErrorIs(t, err, ErrContention)
}

func TestSnapshot_DoesNotConsumeOrCreate(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	snap, err := enf.Snapshot(ctx, userID, plans.Free, now)
	require.NoError(t, err)
	assert.Zero(t, snap.UsedToday)
	assert.Equal(t, 5, snap.DailyLimit)

	rec, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, rec, "snapshot must not create a record")
}

func TestSnapshot_AppliesResetsToViewOnly(t *testing.T) {
	store := NewMemoryStore()
	enf := NewEnforcer(store)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	rec := NewRecord(userID, now.Add(-25*time.Hour))
	rec.DebatesToday = 5
	rec.TotalDebates = 5
	require.NoError(t, store.Create(ctx, rec))

	snap, err := enf.Snapshot(ctx, userID, plans.Free, now)
	require.NoError(t, err)
	assert.Zero(t, snap.UsedToday, "elapsed daily window shows as zero")
	assert.Equal(t, int64(5), snap.TotalDebates)

	stored, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.DebatesToday, "read path persists nothing")
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 30, 15, 123456789, time.UTC)

	rec := NewRecord(uuid.New(), now)
	rec.DebatesToday = 7
	rec.TotalDebates = 42
	require.NoError(t, store.Create(ctx, rec))

	got, err := store.Get(ctx, rec.UserID)
	require.NoError(t, err)
	assert.Equal(t, *rec, *got)
}
