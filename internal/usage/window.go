package usage

import "time"

// Window durations. The monthly window is a fixed 30 days, not a calendar
// month; callers depend on this exact behavior.
const (
	MinuteWindow  = time.Minute
	DailyWindow   = 24 * time.Hour
	MonthlyWindow = 30 * 24 * time.Hour
)

// ApplyResets returns a copy of the record with every elapsed window zeroed
// and its start advanced to now. The three rules are independent and all
// evaluated against the same now. A window start in the future (clock skew,
// manual edit) yields a negative elapsed time and never resets.
func (r Record) ApplyResets(now time.Time) Record {
	if now.Sub(r.MinuteWindowStart) >= MinuteWindow {
		r.RequestsThisMinute = 0
		r.MinuteWindowStart = now
	}
	if now.Sub(r.DailyResetAt) >= DailyWindow {
		r.DebatesToday = 0
		r.DailyResetAt = now
	}
	if now.Sub(r.MonthlyResetAt) >= MonthlyWindow {
		r.DebatesThisMonth = 0
		r.MonthlyResetAt = now
	}
	return r
}
