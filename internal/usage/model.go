package usage

import (
	"time"

	"github.com/google/uuid"

	"github.com/nurox-platform/nurox/internal/plans"
)

// Record matches the usage_records table schema. One row per user, created
// lazily on the first quota check. TotalDebates is monotonic and survives
// every window reset.
type Record struct {
	UserID             uuid.UUID `json:"user_id"`
	DebatesToday       int       `json:"debates_today"`
	DailyResetAt       time.Time `json:"daily_reset_at"`
	DebatesThisMonth   int       `json:"debates_this_month"`
	MonthlyResetAt     time.Time `json:"monthly_reset_at"`
	RequestsThisMinute int       `json:"requests_this_minute"`
	MinuteWindowStart  time.Time `json:"minute_window_start"`
	TotalDebates       int64     `json:"total_debates"`
	Version            int64     `json:"-"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewRecord returns a fresh record with all counters zero and every window
// anchored at now.
func NewRecord(userID uuid.UUID, now time.Time) *Record {
	return &Record{
		UserID:            userID,
		DailyResetAt:      now,
		MonthlyResetAt:    now,
		MinuteWindowStart: now,
		UpdatedAt:         now,
	}
}

// Snapshot is the usage summary returned on a successful quota check and by
// the usage endpoint.
type Snapshot struct {
	Plan         plans.Plan `json:"plan"`
	UsedToday    int        `json:"used_today"`
	DailyLimit   int        `json:"daily_limit"`
	UsedMonthly  int        `json:"used_monthly"`
	MonthlyLimit int        `json:"monthly_limit"`
	TotalDebates int64      `json:"total_debates"`
}
