package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nurox-platform/nurox/internal/api"
	"github.com/nurox-platform/nurox/internal/users"
)

type Handler struct {
	authSvc  *Service
	userSvc  *users.Service
	validate *validator.Validate
}

func NewHandler(authSvc *Service, userSvc *users.Service) *Handler {
	return &Handler{
		authSvc:  authSvc,
		userSvc:  userSvc,
		validate: validator.New(),
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	exists, err := h.userSvc.ExistsByUsernameOrEmail(r.Context(), req.Username, req.Email)
	if err != nil {
		slog.Error("checking user existence", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if exists {
		api.HandleError(w, api.ErrUserAlreadyExists)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		slog.Error("hashing password", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	user, err := h.userSvc.Create(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		slog.Error("creating user", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	tokens, err := h.authSvc.GenerateTokens(r.Context(), user.ID.String(), user.Username)
	if err != nil {
		slog.Error("generating tokens", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusCreated, tokens)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	user, err := h.userSvc.GetByUsername(r.Context(), req.Username)
	if err != nil {
		slog.Error("getting user by username", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if user == nil {
		api.HandleError(w, api.ErrInvalidCredentials)
		return
	}

	if err := ComparePassword(user.PasswordHash, req.Password); err != nil {
		api.HandleError(w, api.ErrInvalidCredentials)
		return
	}

	if !user.IsActive {
		api.HandleError(w, api.ErrAccountDisabled)
		return
	}

	tokens, err := h.authSvc.GenerateTokens(r.Context(), user.ID.String(), user.Username)
	if err != nil {
		slog.Error("generating tokens", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, tokens)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	tokens, err := h.authSvc.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		slog.Error("refreshing tokens", "error", err)
		api.HandleError(w, api.ErrInvalidToken)
		return
	}

	api.JSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	if err := h.authSvc.Logout(r.Context(), claims.UserID); err != nil {
		slog.Error("logging out", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "logged out successfully")
}
