package assessments

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/policy"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Handler wires assessment endpoints. Creation and listing are scoped under
// the parent subject; record operations address the assessment directly.
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

// MountRoutes registers assessment routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/subjects/{subjectID}/assessments", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
	})
	r.Route("/assessments", func(r chi.Router) {
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type assessmentRequest struct {
	Title     string     `json:"title" validate:"required"`
	Questions string     `json:"questions"`
	Marks     int        `json:"marks" validate:"gte=0"`
	DueAt     *time.Time `json:"due_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	subjectID, err := shared.ParseID(chi.URLParam(r, "subjectID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid subject id")
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindAssessment, policy.ActionList, policy.Ref{Subject: subjectID}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	listed, err := h.service.ListFor(r.Context(), actor, subjectID)
	if err != nil {
		h.logger.Error("list assessments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listed)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	subjectID, err := shared.ParseID(chi.URLParam(r, "subjectID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid subject id")
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindAssessment, policy.ActionCreate, policy.Ref{Subject: subjectID}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), subjectID, req.Title, req.Questions, req.Marks, req.DueAt)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindAssessment, policy.ActionRead, policy.Ref{Assessment: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	assessment, err := h.service.GetFor(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, assessment)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindAssessment, policy.ActionUpdate, policy.Ref{Assessment: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, req.Title, req.Questions, req.Marks, req.DueAt); err != nil {
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
	if err := h.authorizer.Check(r.Context(), actor, policy.KindAssessment, policy.ActionDelete, policy.Ref{Assessment: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid assessment id")
		return auth.Context{}, "", false
	}
	return actor, id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (assessmentRequest, bool) {
	var req assessmentRequest
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
