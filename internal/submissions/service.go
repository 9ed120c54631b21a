package submissions

import (
	"context"
	"fmt"
	"time"

	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/policy"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Service wraps submission business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get fetches one submission.
func (s *Service) Get(ctx context.Context, id shared.ID) (Submission, error) {
	return s.repo.Get(ctx, id)
}

// List returns an assessment's submissions in the given scope.
func (s *Service) List(ctx context.Context, assessmentID shared.ID, scope policy.ListScope) ([]Submission, error) {
	return s.repo.ListByAssessment(ctx, assessmentID, scope)
}

// Create registers a submission for a student.
func (s *Service) Create(ctx context.Context, assessmentID, studentID shared.ID, repo, note string) (Submission, error) {
	if repo == "" {
		return Submission{}, fmt.Errorf("%w: repo is required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, Submission{
		AssessmentID: assessmentID,
		StudentID:    studentID,
		Repo:         repo,
		Note:         note,
	})
}

// Update rewrites the owner-mutable fields.
func (s *Service) Update(ctx context.Context, id shared.ID, repo, note string) error {
	if repo == "" {
		return fmt.Errorf("%w: repo is required", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, repo, note)
}

// Delete removes a submission.
func (s *Service) Delete(ctx context.Context, id shared.ID) error {
	return s.repo.Delete(ctx, id)
}

// Grade records a grade on a submission, stamped with the grader and time.
func (s *Service) Grade(ctx context.Context, id shared.ID, grade int, gradedBy shared.ID) error {
	if grade < 0 {
		return fmt.Errorf("%w: grade cannot be negative", httpx.ErrValidation)
	}
	return s.repo.Grade(ctx, id, grade, gradedBy, s.now())
}
