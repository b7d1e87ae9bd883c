package plans

import "fmt"

// Plan is a service tier determining quota limits.
type Plan string

const (
	Free       Plan = "free"
	Pro        Plan = "pro"
	Enterprise Plan = "enterprise"
)

// Unlimited disables a limit check entirely.
const Unlimited = -1

// Limits holds the quota ceilings for a plan.
type Limits struct {
	DailyDebates   int `json:"daily_debates"`
	MonthlyDebates int `json:"monthly_debates"`
	RatePerMinute  int `json:"rate_per_minute"`
}

// catalog is immutable reference data. Daily and monthly windows are rolling
// (24h / 30d), not calendar-aligned.
var catalog = map[Plan]Limits{
	Free:       {DailyDebates: 5, MonthlyDebates: 50, RatePerMinute: 3},
	Pro:        {DailyDebates: 50, MonthlyDebates: 1000, RatePerMinute: 10},
	Enterprise: {DailyDebates: Unlimited, MonthlyDebates: Unlimited, RatePerMinute: 30},
}

// UnknownPlanError reports a plan value outside the catalog. It is a
// configuration problem, not a user error.
type UnknownPlanError struct {
	Plan string
}

func (e *UnknownPlanError) Error() string {
	return fmt.Sprintf("unknown plan %q", e.Plan)
}

// Parse validates a stored plan string. An empty value defaults to the free
// tier; anything else outside the catalog is an UnknownPlanError.
func Parse(s string) (Plan, error) {
	if s == "" {
		return Free, nil
	}
	p := Plan(s)
	if _, ok := catalog[p]; !ok {
		return "", &UnknownPlanError{Plan: s}
	}
	return p, nil
}

// LimitsFor returns the limits for a plan. An empty plan defaults to free.
func LimitsFor(p Plan) (Limits, error) {
	if p == "" {
		p = Free
	}
	limits, ok := catalog[p]
	if !ok {
		return Limits{}, &UnknownPlanError{Plan: string(p)}
	}
	return limits, nil
}

// Upgradable reports whether a higher tier exists for the plan.
func (p Plan) Upgradable() bool {
	return p != Enterprise
}

// All returns the catalog's plans in tier order.
func All() []Plan {
	return []Plan{Free, Pro, Enterprise}
}
