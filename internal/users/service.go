package users

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Service wraps directory business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get fetches a principal by id.
func (s *Service) Get(ctx context.Context, id shared.ID) (Principal, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns principals holding the given role.
func (s *Service) List(ctx context.Context, role shared.Role) ([]Principal, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role", httpx.ErrValidation)
	}
	return s.repo.List(ctx, role)
}

// CreateTeacher provisions a teacher account.
func (s *Service) CreateTeacher(ctx context.Context, name, email string) (Principal, error) {
	return s.create(ctx, Principal{Name: name, Email: email, Role: shared.RoleTeacher})
}

// CreateStudent provisions a student account. Students carry the external
// campus identifier.
func (s *Service) CreateStudent(ctx context.Context, name, email, campusID string) (Principal, error) {
	if campusID == "" {
		return Principal{}, fmt.Errorf("%w: campus_id is required for students", httpx.ErrValidation)
	}
	return s.create(ctx, Principal{Name: name, Email: email, CampusID: campusID, Role: shared.RoleStudent})
}

// CreateAdmin provisions an administrator with a password for the bootstrap
// login. Used by seeding, not exposed over HTTP.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (Principal, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Principal{}, err
	}
	return s.create(ctx, Principal{Name: name, Email: email, Role: shared.RoleAdmin, PasswordHash: string(hash)})
}

func (s *Service) create(ctx context.Context, p Principal) (Principal, error) {
	if p.Name == "" || p.Email == "" {
		return Principal{}, fmt.Errorf("%w: name and email are required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, p)
}

// Update rewrites a principal's mutable attributes. The role cannot change
// after creation.
func (s *Service) Update(ctx context.Context, id shared.ID, name, email, campusID string) error {
	if name == "" || email == "" {
		return fmt.Errorf("%w: name and email are required", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, name, email, campusID)
}

// Delete removes a principal.
func (s *Service) Delete(ctx context.Context, id shared.ID) error {
	return s.repo.Delete(ctx, id)
}
