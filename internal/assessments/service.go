package assessments

import (
	"context"
	"fmt"
	"time"

	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Service wraps assessment business rules, including the student redaction
// applied on reads.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetFor fetches one assessment in the actor's view. Students receive the
// redacted form; teachers and admins the full record. The policy has already
// decided whether the actor may read at all.
func (s *Service) GetFor(ctx context.Context, actor auth.Context, id shared.ID) (Assessment, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return Assessment{}, err
	}
	return viewFor(actor, a), nil
}

// ListFor returns a subject's assessments in the actor's view.
func (s *Service) ListFor(ctx context.Context, actor auth.Context, subjectID shared.ID) ([]Assessment, error) {
	listed, err := s.repo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	for i := range listed {
		listed[i] = viewFor(actor, listed[i])
	}
	return listed, nil
}

// Create registers a new assessment under a subject.
func (s *Service) Create(ctx context.Context, subjectID shared.ID, title, questions string, marks int, dueAt *time.Time) (Assessment, error) {
	if err := validate(title, marks); err != nil {
		return Assessment{}, err
	}
	return s.repo.Create(ctx, Assessment{
		SubjectID: subjectID,
		Title:     title,
		Questions: questions,
		Marks:     marks,
		DueAt:     dueAt,
	})
}

// Update rewrites an assessment's attributes.
func (s *Service) Update(ctx context.Context, id shared.ID, title, questions string, marks int, dueAt *time.Time) error {
	if err := validate(title, marks); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, title, questions, marks, dueAt)
}

// Delete removes an assessment.
func (s *Service) Delete(ctx context.Context, id shared.ID) error {
	return s.repo.Delete(ctx, id)
}

func viewFor(actor auth.Context, a Assessment) Assessment {
	if actor.Role == shared.RoleStudent {
		return a.Redacted()
	}
	return a
}

func validate(title string, marks int) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", httpx.ErrValidation)
	}
	if marks < 0 {
		return fmt.Errorf("%w: marks cannot be negative", httpx.ErrValidation)
	}
	return nil
}
