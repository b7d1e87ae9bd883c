package events

import (
	"time"

	"github.com/google/uuid"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// StreamEvents holds the platform event trail.
const StreamEvents = "NUROX_EVENTS"

// Subject constants.
const (
	SubjectDebateCompleted = "nurox.events.debate"
	SubjectQuotaDenied     = "nurox.events.quota"
	SubjectPlanChanged     = "nurox.events.plan"
)

// Event types persisted into the audit log.
const (
	TypeDebateCompleted = "debate_completed"
	TypeQuotaDenied     = "quota_denied"
	TypePlanChanged     = "plan_changed"
)

// DebateCompleted is published after a debate run is persisted.
type DebateCompleted struct {
	UserID    uuid.UUID `json:"user_id"`
	DebateID  uuid.UUID `json:"debate_id"`
	Mode      string    `json:"mode"`
	Authority string    `json:"authority"`
	Timestamp time.Time `json:"timestamp"`
}

// QuotaDenied is published when a debate attempt is rejected by the limiter.
type QuotaDenied struct {
	UserID    uuid.UUID `json:"user_id"`
	Plan      string    `json:"plan"`
	LimitKind string    `json:"limit_kind"`
	Limit     int       `json:"limit"`
	Used      int       `json:"used"`
	Timestamp time.Time `json:"timestamp"`
}

// PlanChanged is published when an admin changes a user's plan.
type PlanChanged struct {
	UserID    uuid.UUID `json:"user_id"`
	OldPlan   string    `json:"old_plan"`
	NewPlan   string    `json:"new_plan"`
	Timestamp time.Time `json:"timestamp"`
}
