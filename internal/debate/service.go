package debate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nurox-platform/nurox/internal/events"
	"github.com/nurox-platform/nurox/internal/llm"
	"github.com/nurox-platform/nurox/internal/metrics"
	"github.com/nurox-platform/nurox/internal/plans"
	"github.com/nurox-platform/nurox/internal/usage"
)

const (
	promptBuilder = "You are a professional analyst. Use emojis. Use **bold** for key concepts. Use structured sections. Avoid text walls."
	promptAuditor = "Provide a decisive final professional conclusion. Use emojis. Use **bold**. Keep it clean and structured."

	roleBuilder = "builder"
)

// Completer abstracts the chat completion backend.
type Completer interface {
	Complete(ctx context.Context, apiKey, systemPrompt string, messages []llm.Message) (string, error)
}

type Service struct {
	enforcer   *usage.Enforcer
	repo       Repository
	llm        Completer
	publisher  *events.Publisher
	builderKey string
	auditorKey string
}

func NewService(enforcer *usage.Enforcer, repo Repository, completer Completer, publisher *events.Publisher, builderKey, auditorKey string) *Service {
	return &Service{
		enforcer:   enforcer,
		repo:       repo,
		llm:        completer,
		publisher:  publisher,
		builderKey: builderKey,
		auditorKey: auditorKey,
	}
}

// Run executes the two-stage debate for one question. Quota is consumed up
// front and never refunded: a failed LLM call still counts against the user.
func (s *Service) Run(ctx context.Context, userID uuid.UUID, plan plans.Plan, question string) (*Response, error) {
	snap, err := s.enforcer.CheckAndConsume(ctx, userID, plan, time.Now())
	if err != nil {
		var limitErr *usage.LimitError
		if errors.As(err, &limitErr) {
			metrics.QuotaDeniedTotal.WithLabelValues(string(limitErr.Kind)).Inc()
			if pubErr := s.publisher.PublishQuotaDenied(ctx, events.QuotaDenied{
				UserID:    userID,
				Plan:      string(limitErr.Plan),
				LimitKind: string(limitErr.Kind),
				Limit:     limitErr.Limit,
				Used:      limitErr.Used,
				Timestamp: time.Now().UTC(),
			}); pubErr != nil {
				slog.Warn("publishing quota denied event", "error", pubErr)
			}
		}
		return nil, err
	}

	mode := DetectMode(question)

	builderStart := time.Now()
	builderAnswer, err := s.llm.Complete(ctx, s.builderKey, promptBuilder, []llm.Message{
		{Role: "user", Content: question},
	})
	metrics.LLMRequestDuration.WithLabelValues("builder").Observe(time.Since(builderStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("builder pass: %w", err)
	}

	resp := &Response{
		Mode:       mode,
		Transcript: []TranscriptMessage{{Role: roleBuilder, Content: builderAnswer}},
		Authority:  "LLM",
		Confidence: "Medium",
		Usage:      *snap,
	}

	if mode == ModeQuant {
		if p, ev, ok := BreakEven(question); ok {
			deterministic := fmt.Sprintf("🎯 **Break-even** = %.4f (%.2f%%) | **EV** = %.4f", p, p*100, ev)
			curve := MonteCarloEquity(p)
			simulation := fmt.Sprintf("📊 **Equity Curve Generated** with %d trades.", len(curve))
			riskAlerts := "🔴 **High Risk Profile**"
			if p > 0.4 {
				riskAlerts = "🟢 **Stable Risk Profile**"
			}

			resp.Deterministic = &deterministic
			resp.Simulation = &simulation
			resp.SimulationData = curve
			resp.RiskAlerts = &riskAlerts
			resp.Authority = "Deterministic + LLM"
			resp.Confidence = "High"
		}
	}

	auditorStart := time.Now()
	finalAnswer, err := s.llm.Complete(ctx, s.auditorKey, promptAuditor, []llm.Message{
		{Role: "user", Content: builderAnswer},
	})
	metrics.LLMRequestDuration.WithLabelValues("auditor").Observe(time.Since(auditorStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("auditor pass: %w", err)
	}
	resp.FinalAnswer = finalAnswer

	entry := &HistoryEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Question:    question,
		FinalAnswer: finalAnswer,
		Mode:        mode,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("persisting debate: %w", err)
	}

	metrics.DebatesTotal.WithLabelValues(string(mode)).Inc()
	if err := s.publisher.PublishDebateCompleted(ctx, events.DebateCompleted{
		UserID:    userID,
		DebateID:  entry.ID,
		Mode:      string(mode),
		Authority: resp.Authority,
		Timestamp: entry.CreatedAt,
	}); err != nil {
		slog.Warn("publishing debate completed event", "error", err)
	}

	return resp, nil
}

// History returns the caller's past debates, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]HistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// Usage reports the caller's current counters without consuming quota.
func (s *Service) Usage(ctx context.Context, userID uuid.UUID, plan plans.Plan) (*usage.Snapshot, error) {
	return s.enforcer.Snapshot(ctx, userID, plan, time.Now())
}
