package submissions

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

// Handler wires submission endpoints.
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

// MountRoutes registers submission routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/assessments/{assessmentID}/submissions", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
	})
	r.Route("/submissions", func(r chi.Router) {
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/grade", h.grade)
	})
}

type createRequest struct {
	// StudentID defaults to the caller; the policy rejects any mismatch.
	StudentID string `json:"student_id"`
	Repo      string `json:"repo" validate:"required"`
	Note      string `json:"note"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	assessmentID, err := shared.ParseID(chi.URLParam(r, "assessmentID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid assessment id")
		return
	}

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	owner := actor.UserID
	if req.StudentID != "" {
		owner, err = shared.ParseID(req.StudentID)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid student id")
			return
		}
	}

	ref := policy.Ref{Assessment: assessmentID, Owner: owner}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubmission, policy.ActionCreate, ref); err != nil {
		httpx.RespondError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), assessmentID, owner, req.Repo, req.Note)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.FromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	assessmentID, err := shared.ParseID(chi.URLParam(r, "assessmentID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid assessment id")
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubmission, policy.ActionList, policy.Ref{Assessment: assessmentID}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	listed, err := h.service.List(r.Context(), assessmentID, policy.SubmissionListScope(actor))
	if err != nil {
		h.logger.Error("list submissions", slog.Any("error", err))
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
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubmission, policy.ActionRead, policy.Ref{Submission: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	submission, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, submission)
}

type updateRequest struct {
	Repo string `json:"repo" validate:"required"`
	Note string `json:"note"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubmission, policy.ActionUpdate, policy.Ref{Submission: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.Update(r.Context(), id, req.Repo, req.Note); err != nil {
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
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubmission, policy.ActionDelete, policy.Ref{Submission: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type gradeRequest struct {
	Grade int `json:"grade" validate:"gte=0"`
}

func (h *Handler) grade(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.authorizer.Check(r.Context(), actor, policy.KindSubmission, policy.ActionGrade, policy.Ref{Submission: id}); err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req gradeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.Grade(r.Context(), id, req.Grade, actor.UserID); err != nil {
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid submission id")
		return auth.Context{}, "", false
	}
	return actor, id, true
}
