package usage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nurox-platform/nurox/internal/plans"
)

// maxRetries bounds the optimistic-concurrency loop before the call fails
// with ErrContention.
const maxRetries = 3

// Enforcer gates chargeable work behind the per-user quota windows. It owns
// every read-modify-write transition of a user's Record; callers invoke
// CheckAndConsume synchronously before any LLM call, and no store state is
// held across that downstream work.
type Enforcer struct {
	store Store
}

func NewEnforcer(store Store) *Enforcer {
	return &Enforcer{store: store}
}

// CheckAndConsume applies window resets, checks the plan's limits in fixed
// precedence order (rate, daily, monthly), and on success consumes one unit,
// persisting resets and increments atomically. A failed check persists
// nothing. Concurrent calls for one user are serialized by the store's
// version check: a lost write race re-reads and reapplies, bounded by
// maxRetries.
func (e *Enforcer) CheckAndConsume(ctx context.Context, userID uuid.UUID, plan plans.Plan, now time.Time) (*Snapshot, error) {
	if plan == "" {
		plan = plans.Free
	}
	limits, err := plans.LimitsFor(plan)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		rec, err := e.fetchOrCreate(ctx, userID, now)
		if err != nil {
			return nil, err
		}

		next := rec.ApplyResets(now)

		if err := checkLimits(&next, plan, limits); err != nil {
			return nil, err
		}

		next.DebatesToday++
		next.DebatesThisMonth++
		next.RequestsThisMinute++
		next.TotalDebates++
		next.UpdatedAt = now

		err = e.store.Save(ctx, &next)
		if errors.Is(err, ErrVersionConflict) {
			slog.Debug("usage: save conflict, retrying", "user_id", userID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		return snapshot(&next, plan, limits), nil
	}

	return nil, ErrContention
}

// Snapshot reports current usage without consuming a unit. Window resets are
// applied to the view only; nothing is persisted and no record is created
// for a user who has never debated.
func (e *Enforcer) Snapshot(ctx context.Context, userID uuid.UUID, plan plans.Plan, now time.Time) (*Snapshot, error) {
	if plan == "" {
		plan = plans.Free
	}
	limits, err := plans.LimitsFor(plan)
	if err != nil {
		return nil, err
	}

	rec, err := e.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &Snapshot{Plan: plan, DailyLimit: limits.DailyDebates, MonthlyLimit: limits.MonthlyDebates}, nil
	}

	view := rec.ApplyResets(now)
	return snapshot(&view, plan, limits), nil
}

// fetchOrCreate resolves the create race by re-reading after an idempotent
// insert: two concurrent first-calls converge on the single stored row.
func (e *Enforcer) fetchOrCreate(ctx context.Context, userID uuid.UUID, now time.Time) (*Record, error) {
	rec, err := e.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}

	if err := e.store.Create(ctx, NewRecord(userID, now)); err != nil {
		return nil, err
	}

	rec, err = e.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("usage record for %s missing after create", userID)
	}
	return rec, nil
}

// checkLimits fails fast on the first violated limit: a rate violation is
// reported even when the daily or monthly window is also exhausted.
func checkLimits(rec *Record, plan plans.Plan, limits plans.Limits) error {
	if rec.RequestsThisMinute >= limits.RatePerMinute {
		return &LimitError{
			Kind:    KindRateLimit,
			Plan:    plan,
			Limit:   limits.RatePerMinute,
			Used:    rec.RequestsThisMinute,
			Upgrade: plan.Upgradable(),
		}
	}
	if limits.DailyDebates != plans.Unlimited && rec.DebatesToday >= limits.DailyDebates {
		return &LimitError{
			Kind:    KindDailyLimit,
			Plan:    plan,
			Limit:   limits.DailyDebates,
			Used:    rec.DebatesToday,
			Upgrade: plan.Upgradable(),
		}
	}
	if limits.MonthlyDebates != plans.Unlimited && rec.DebatesThisMonth >= limits.MonthlyDebates {
		return &LimitError{
			Kind:    KindMonthlyLimit,
			Plan:    plan,
			Limit:   limits.MonthlyDebates,
			Used:    rec.DebatesThisMonth,
			Upgrade: plan.Upgradable(),
		}
	}
	return nil
}

func snapshot(rec *Record, plan plans.Plan, limits plans.Limits) *Snapshot {
	return &Snapshot{
		Plan:         plan,
		UsedToday:    rec.DebatesToday,
		DailyLimit:   limits.DailyDebates,
		UsedMonthly:  rec.DebatesThisMonth,
		MonthlyLimit: limits.MonthlyDebates,
		TotalDebates: rec.TotalDebates,
	}
}
