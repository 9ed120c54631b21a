package users_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/shared"
	"github.com/lyceum-sis/lyceum/internal/users"
	_ "github.com/lyceum-sis/lyceum/testing"
)

type stubRepo struct {
	records map[shared.ID]users.Principal
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[shared.ID]users.Principal)}
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (users.Principal, error) {
	for _, p := range r.records {
		if p.Email == email {
			return p, nil
		}
	}
	return users.Principal{}, fmt.Errorf("%w: email %s", httpx.ErrNotFound, email)
}

func (r *stubRepo) FindByID(ctx context.Context, id shared.ID) (users.Principal, error) {
	p, ok := r.records[id]
	if !ok {
		return users.Principal{}, fmt.Errorf("%w: principal %s", httpx.ErrNotFound, id)
	}
	return p, nil
}

func (r *stubRepo) Create(ctx context.Context, p users.Principal) (users.Principal, error) {
	if _, err := r.FindByEmail(ctx, p.Email); err == nil {
		return users.Principal{}, fmt.Errorf("%w: email taken", httpx.ErrDuplicate)
	}
	p.ID = shared.NewID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.records[p.ID] = p
	return p, nil
}

func (r *stubRepo) Update(ctx context.Context, id shared.ID, name, email, campusID string) error {
	p, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: principal %s", httpx.ErrNotFound, id)
	}
	p.Name, p.Email, p.CampusID = name, email, campusID
	r.records[id] = p
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, id shared.ID) error {
	delete(r.records, id)
	return nil
}

func (r *stubRepo) List(ctx context.Context, role shared.Role) ([]users.Principal, error) {
	var out []users.Principal
	for _, p := range r.records {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestCreateTeacher(t *testing.T) {
	service := users.NewService(newStubRepo())

	teacher, err := service.CreateTeacher(context.Background(), "Dana Hall", "dana@lyceum.local")
	require.NoError(t, err)
	require.Equal(t, shared.RoleTeacher, teacher.Role)
	require.Empty(t, teacher.PasswordHash)

	_, err = service.CreateTeacher(context.Background(), "", "x@lyceum.local")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateStudentRequiresCampusID(t *testing.T) {
	service := users.NewService(newStubRepo())

	_, err := service.CreateStudent(context.Background(), "Kim Lee", "kim@lyceum.local", "")
	require.ErrorIs(t, err, httpx.ErrValidation)

	student, err := service.CreateStudent(context.Background(), "Kim Lee", "kim@lyceum.local", "C-1042")
	require.NoError(t, err)
	require.Equal(t, shared.RoleStudent, student.Role)
	require.Equal(t, "C-1042", student.CampusID)
}

func TestCreateAdminHashesPassword(t *testing.T) {
	repo := newStubRepo()
	service := users.NewService(repo)

	admin, err := service.CreateAdmin(context.Background(), "Root", "root@lyceum.local", "opensesame")
	require.NoError(t, err)
	require.Equal(t, shared.RoleAdmin, admin.Role)
	require.NotEmpty(t, admin.PasswordHash)
	require.NotEqual(t, "opensesame", admin.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("opensesame")))
}

func TestDuplicateEmailRejected(t *testing.T) {
	service := users.NewService(newStubRepo())

	_, err := service.CreateTeacher(context.Background(), "Dana Hall", "dana@lyceum.local")
	require.NoError(t, err)

	_, err = service.CreateTeacher(context.Background(), "Other Dana", "dana@lyceum.local")
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestListValidatesRole(t *testing.T) {
	service := users.NewService(newStubRepo())

	_, err := service.List(context.Background(), shared.Role("superuser"))
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDirectoryAdapter(t *testing.T) {
	repo := newStubRepo()
	service := users.NewService(repo)

	created, err := service.CreateTeacher(context.Background(), "Dana Hall", "dana@lyceum.local")
	require.NoError(t, err)

	directory := users.NewDirectory(repo)
	principal, err := directory.FindByEmail(context.Background(), "dana@lyceum.local")
	require.NoError(t, err)
	require.Equal(t, created.ID, principal.ID)
	require.Equal(t, shared.RoleTeacher, principal.Role)

	byID, err := directory.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, principal, byID)
}
