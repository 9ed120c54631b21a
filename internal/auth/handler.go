package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the login flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/google", h.loginStart)
	r.Get("/google/callback", h.loginReturn)
	r.Post("/login", h.passwordLogin)
}

func (h *Handler) loginStart(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.LoginStart(r.Context())
	if err != nil {
		h.logger.Error("oauth login start", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *Handler) loginReturn(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	token, err := h.service.LoginReturn(r.Context(), code, state)
	if err != nil {
		h.logger.Warn("oauth login return", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{Token: token})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) passwordLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	token, err := h.service.PasswordLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{Token: token})
}
