package subjects

import (
	"context"
	"fmt"

	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/policy"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Service wraps subject business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get fetches one subject.
func (s *Service) Get(ctx context.Context, id shared.ID) (Subject, error) {
	return s.repo.Get(ctx, id)
}

// List returns the subjects visible in the scope.
func (s *Service) List(ctx context.Context, scope policy.ListScope) ([]Subject, error) {
	return s.repo.List(ctx, scope)
}

// Create registers a new subject.
func (s *Service) Create(ctx context.Context, name string, year int, semester Semester) (Subject, error) {
	if err := validate(name, year); err != nil {
		return Subject{}, err
	}
	return s.repo.Create(ctx, Subject{Name: name, Year: year, Semester: semester})
}

// Update rewrites a subject's attributes.
func (s *Service) Update(ctx context.Context, id shared.ID, name string, year int, semester Semester) error {
	if err := validate(name, year); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, name, year, semester)
}

// Delete removes a subject.
func (s *Service) Delete(ctx context.Context, id shared.ID) error {
	return s.repo.Delete(ctx, id)
}

// Members returns the subject's membership set.
func (s *Service) Members(ctx context.Context, subjectID shared.ID) ([]Member, error) {
	return s.repo.Members(ctx, subjectID)
}

// AddMember enrolls a principal in the subject.
func (s *Service) AddMember(ctx context.Context, subjectID, userID shared.ID) error {
	return s.repo.AddMember(ctx, subjectID, userID)
}

// RemoveMember drops a principal from the subject.
func (s *Service) RemoveMember(ctx context.Context, subjectID, userID shared.ID) error {
	return s.repo.RemoveMember(ctx, subjectID, userID)
}

func validate(name string, year int) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", httpx.ErrValidation)
	}
	if year < 1900 || year > 3000 {
		return fmt.Errorf("%w: implausible year %d", httpx.ErrValidation, year)
	}
	return nil
}
