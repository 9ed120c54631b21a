package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/policy"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Handler wires the admin-only account management endpoints.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	authorizer *policy.Authorizer
	validator  *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authorizer *policy.Authorizer) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		authorizer: authorizer,
		validator:  validator.New(),
	}
}

// MountRoutes registers account routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/teachers", func(r chi.Router) {
		r.Get("/", h.listRole(shared.RoleTeacher))
		r.Post("/", h.createTeacher)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	r.Route("/students", func(r chi.Router) {
		r.Get("/", h.listRole(shared.RoleStudent))
		r.Post("/", h.createStudent)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) authorize(r *http.Request, action policy.Action) error {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		return err
	}
	return h.authorizer.Check(r.Context(), actor, policy.KindAccount, action, policy.Ref{})
}

func (h *Handler) listRole(role shared.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.authorize(r, policy.ActionList); err != nil {
			httpx.RespondError(w, err)
			return
		}
		principals, err := h.service.List(r.Context(), role)
		if err != nil {
			h.logger.Error("list accounts", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, principals)
	}
}

type createTeacherRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) createTeacher(w http.ResponseWriter, r *http.Request) {
	if err := h.authorize(r, policy.ActionCreate); err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createTeacherRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.CreateTeacher(r.Context(), req.Name, req.Email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

type createStudentRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	CampusID string `json:"campus_id" validate:"required"`
}

func (h *Handler) createStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.authorize(r, policy.ActionCreate); err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createStudentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.CreateStudent(r.Context(), req.Name, req.Email, req.CampusID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

type updateAccountRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	CampusID string `json:"campus_id"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if err := h.authorize(r, policy.ActionUpdate); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account id")
		return
	}
	var req updateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.Update(r.Context(), id, req.Name, req.Email, req.CampusID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.authorize(r, policy.ActionDelete); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
