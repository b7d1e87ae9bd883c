package debate

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nurox-platform/nurox/internal/api"
	"github.com/nurox-platform/nurox/internal/auth"
	"github.com/nurox-platform/nurox/internal/usage"
	"github.com/nurox-platform/nurox/internal/users"
)

type Handler struct {
	svc     *Service
	userSvc *users.Service
}

func NewHandler(svc *Service, userSvc *users.Service) *Handler {
	return &Handler{svc: svc, userSvc: userSvc}
}

// quotaExceededBody mirrors the limiter error onto the wire for 429 responses.
type quotaExceededBody struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Used     int    `json:"used"`
	Limit    int    `json:"limit"`
	ResetsIn string `json:"resets_in"`
	Upgrade  bool   `json:"upgrade"`
}

// currentUser resolves the authenticated user from claims, re-reading the
// row so plan changes and disabling take effect on the next request.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) *users.User {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return nil
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return nil
	}

	user, err := h.userSvc.GetByID(r.Context(), userID)
	if err != nil {
		slog.Error("loading user", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrInternalServer)
		return nil
	}
	if user == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return nil
	}
	if !user.IsActive {
		api.HandleError(w, api.ErrAccountDisabled)
		return nil
	}
	return user
}

func (h *Handler) Debate(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		api.HandleError(w, api.ErrEmptyQuestion)
		return
	}

	resp, err := h.svc.Run(r.Context(), user.ID, user.Plan, question)
	if err != nil {
		var limitErr *usage.LimitError
		switch {
		case errors.As(err, &limitErr):
			api.JSONRaw(w, http.StatusTooManyRequests, quotaExceededBody{
				Error:    string(limitErr.Kind),
				Message:  limitErr.Error(),
				Used:     limitErr.Used,
				Limit:    limitErr.Limit,
				ResetsIn: limitErr.Kind.ResetsIn(),
				Upgrade:  limitErr.Upgrade,
			})
		case errors.Is(err, usage.ErrContention):
			api.JSONErrorMessage(w, http.StatusServiceUnavailable, "usage check contended, retry")
		default:
			slog.Error("running debate", "error", err, "user_id", user.ID)
			api.HandleError(w, api.ErrInternalServer)
		}
		return
	}

	api.JSON(w, http.StatusOK, resp)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.svc.History(r.Context(), user.ID, limit, offset)
	if err != nil {
		slog.Error("listing debate history", "error", err, "user_id", user.ID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}

	api.JSON(w, http.StatusOK, entries)
}

func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}

	snap, err := h.svc.Usage(r.Context(), user.ID, user.Plan)
	if err != nil {
		slog.Error("reading usage snapshot", "error", err, "user_id", user.ID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, snap)
}
