package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nurox-platform/nurox/internal/api"
	"github.com/nurox-platform/nurox/internal/audit"
	"github.com/nurox-platform/nurox/internal/debate"
	"github.com/nurox-platform/nurox/internal/events"
	"github.com/nurox-platform/nurox/internal/usage"
	"github.com/nurox-platform/nurox/internal/users"
)

type Handler struct {
	userSvc    *users.Service
	enforcer   *usage.Enforcer
	debateRepo debate.Repository
	auditRepo  audit.Repository
	publisher  *events.Publisher
	validate   *validator.Validate
}

func NewHandler(userSvc *users.Service, enforcer *usage.Enforcer, debateRepo debate.Repository, auditRepo audit.Repository, publisher *events.Publisher) *Handler {
	return &Handler{
		userSvc:    userSvc,
		enforcer:   enforcer,
		debateRepo: debateRepo,
		auditRepo:  auditRepo,
		publisher:  publisher,
		validate:   validator.New(),
	}
}

// UserReport is one row of the admin user listing.
type UserReport struct {
	ID        uuid.UUID      `json:"id"`
	Username  string         `json:"username"`
	Email     string         `json:"email"`
	Plan      string         `json:"plan"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	Usage     usage.Snapshot `json:"usage"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	list, err := h.userSvc.List(r.Context(), limit, offset)
	if err != nil {
		slog.Error("listing users", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	now := time.Now()
	reports := make([]UserReport, 0, len(list))
	for _, u := range list {
		snap, err := h.enforcer.Snapshot(r.Context(), u.ID, u.Plan, now)
		if err != nil {
			slog.Error("reading usage snapshot", "error", err, "user_id", u.ID)
			api.HandleError(w, api.ErrInternalServer)
			return
		}
		reports = append(reports, UserReport{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Plan:      string(u.Plan),
			IsActive:  u.IsActive,
			CreatedAt: u.CreatedAt,
			Usage:     *snap,
		})
	}

	total, err := h.userSvc.Count(r.Context())
	if err != nil {
		slog.Error("counting users", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, reports, total, offset/limit+1, limit)
}

type UpgradeRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Plan   string    `json:"plan" validate:"required"`
}

func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	var req UpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	user, err := h.userSvc.GetByID(r.Context(), req.UserID)
	if err != nil {
		slog.Error("loading user", "error", err, "user_id", req.UserID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if user == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	newPlan, err := h.userSvc.ChangePlan(r.Context(), req.UserID, req.Plan)
	if err != nil {
		api.HandleError(w, api.NewBadRequestError(err.Error()))
		return
	}

	if err := h.publisher.PublishPlanChanged(r.Context(), events.PlanChanged{
		UserID:    req.UserID,
		OldPlan:   string(user.Plan),
		NewPlan:   string(newPlan),
		Timestamp: time.Now().UTC(),
	}); err != nil {
		slog.Warn("publishing plan changed event", "error", err)
	}

	slog.Info("plan changed", "user_id", req.UserID, "old", user.Plan, "new", newPlan)
	api.JSONMessage(w, http.StatusOK, "plan updated")
}

type DisableRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	var req DisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	if err := h.userSvc.Disable(r.Context(), req.UserID); err != nil {
		slog.Error("disabling user", "error", err, "user_id", req.UserID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	slog.Info("user disabled", "user_id", req.UserID)
	api.JSONMessage(w, http.StatusOK, "user disabled")
}

type StatsResponse struct {
	TotalUsers   int64             `json:"total_users"`
	TotalDebates int64             `json:"total_debates"`
	PlanCounts   []users.PlanCount `json:"plan_counts"`
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	totalUsers, err := h.userSvc.Count(r.Context())
	if err != nil {
		slog.Error("counting users", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	totalDebates, err := h.debateRepo.Count(r.Context())
	if err != nil {
		slog.Error("counting debates", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	planCounts, err := h.userSvc.CountByPlan(r.Context())
	if err != nil {
		slog.Error("counting by plan", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, StatsResponse{
		TotalUsers:   totalUsers,
		TotalDebates: totalDebates,
		PlanCounts:   planCounts,
	})
}

func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	filter := audit.Filter{
		EventType: q.Get("event_type"),
		Limit:     limit,
		Offset:    offset,
	}
	if from := q.Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			api.HandleError(w, api.NewBadRequestError("invalid from timestamp"))
			return
		}
		filter.From = t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			api.HandleError(w, api.NewBadRequestError("invalid to timestamp"))
			return
		}
		filter.To = t
	}

	logs, total, err := h.auditRepo.List(r.Context(), filter)
	if err != nil {
		slog.Error("listing audit logs", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if logs == nil {
		logs = []audit.Log{}
	}

	pageSize := filter.Limit
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	api.JSONPaginated(w, http.StatusOK, logs, total, offset/pageSize+1, pageSize)
}
