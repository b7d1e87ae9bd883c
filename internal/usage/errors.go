package usage

import (
	"errors"
	"fmt"

	"github.com/nurox-platform/nurox/internal/plans"
)

// LimitKind names the quota window that rejected a request.
type LimitKind string

const (
	KindRateLimit    LimitKind = "rate_limit_exceeded"
	KindDailyLimit   LimitKind = "daily_limit_exceeded"
	KindMonthlyLimit LimitKind = "monthly_limit_exceeded"
)

// ResetsIn is the human-readable window length reported to the caller.
func (k LimitKind) ResetsIn() string {
	switch k {
	case KindRateLimit:
		return "1 minute"
	case KindDailyLimit:
		return "24 hours"
	default:
		return "30 days"
	}
}

// LimitError is returned when a quota check fails. It carries everything the
// HTTP layer needs to render a 429 response and is never swallowed.
type LimitError struct {
	Kind    LimitKind  `json:"error"`
	Plan    plans.Plan `json:"plan"`
	Limit   int        `json:"limit"`
	Used    int        `json:"used"`
	Upgrade bool       `json:"upgrade"`
}

func (e *LimitError) Error() string {
	switch e.Kind {
	case KindRateLimit:
		return fmt.Sprintf("slow down: max %d requests per minute on %s plan", e.Limit, e.Plan)
	case KindDailyLimit:
		return fmt.Sprintf("daily limit of %d debates reached on %s plan", e.Limit, e.Plan)
	default:
		return fmt.Sprintf("monthly limit of %d debates reached on %s plan", e.Limit, e.Plan)
	}
}

// ErrVersionConflict is returned by Store.Save when the record changed since
// it was read. The enforcer re-reads and reapplies on conflict.
var ErrVersionConflict = errors.New("usage record version conflict")

// ErrContention is returned when the enforcer's bounded retry budget is
// exhausted. The whole call may be retried by the caller.
var ErrContention = errors.New("usage record contention, retry")
