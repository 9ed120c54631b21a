package subjects

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

// Handler wires subject endpoints.
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

// MountRoutes registers subject routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/subjects", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)

		r.Get("/{id}/members", h.members)
		r.Post("/{id}/members", h.addMember)
		r.Delete("/{id}/members/{userID}", h.removeMember)
	})
}

type subjectRequest struct {
	Name     string `json:"name" validate:"required"`
	Year     int    `json:"year" validate:"required"`
	Semester string `json:"semester" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubject, policy.ActionList, policy.Ref{}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	listed, err := h.service.List(r.Context(), policy.SubjectListScope(actor))
	if err != nil {
		h.logger.Error("list subjects", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listed)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubject, policy.ActionRead, policy.Ref{Subject: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	subject, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, subject)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubject, policy.ActionCreate, policy.Ref{}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	req, ok := h.decodeSubject(w, r)
	if !ok {
		return
	}
	semester, err := ParseSemester(req.Semester)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), req.Name, req.Year, semester)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubject, policy.ActionUpdate, policy.Ref{Subject: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	req, ok := h.decodeSubject(w, r)
	if !ok {
		return
	}
	semester, err := ParseSemester(req.Semester)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.Update(r.Context(), id, req.Name, req.Year, semester); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubject, policy.ActionDelete, policy.Ref{Subject: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) members(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubject, policy.ActionRead, policy.Ref{Subject: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	members, err := h.service.Members(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, members)
}

type memberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubject, policy.ActionRelate, policy.Ref{Subject: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req memberRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	userID, err := shared.ParseID(req.UserID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}

	if err := h.service.AddMember(r.Context(), id, userID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubject, policy.ActionRelate, policy.Ref{Subject: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}
	userID, err := shared.ParseID(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}

	if err := h.service.RemoveMember(r.Context(), id, userID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (auth.Context, shared.ID, bool) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return auth.Context{}, "", false
	}
	id, err := shared.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid subject id")
		return auth.Context{}, "", false
	}
	return actor, id, true
}

func (h *Handler) decodeSubject(w http.ResponseWriter, r *http.Request) (subjectRequest, bool) {
	var req subjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return req, false
	}
	return req, true
}
