package debate

import (
	"time"

	"github.com/google/uuid"

	"github.com/nurox-platform/nurox/internal/usage"
)

// Mode classifies a question as quantitative or general discussion.
type Mode string

const (
	ModeQuant   Mode = "quant"
	ModeGeneral Mode = "general"
)

type Request struct {
	Question string `json:"question" validate:"required"`
}

// TranscriptMessage is one labeled turn of the debate.
type TranscriptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Response struct {
	Mode           Mode                `json:"mode"`
	Transcript     []TranscriptMessage `json:"transcript"`
	Deterministic  *string             `json:"deterministic"`
	Simulation     *string             `json:"simulation"`
	SimulationData []float64           `json:"simulation_data"`
	RiskAlerts     *string             `json:"risk_alerts"`
	FinalAnswer    string              `json:"final_answer"`
	Authority      string              `json:"authority"`
	Confidence     string              `json:"confidence"`
	Usage          usage.Snapshot      `json:"usage"`
}

// HistoryEntry is a persisted debate outcome.
type HistoryEntry struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Question    string    `json:"question"`
	FinalAnswer string    `json:"final_answer"`
	Mode        Mode      `json:"mode"`
	CreatedAt   time.Time `json:"created_at"`
}
