package assessments_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lyceum-sis/lyceum/internal/assessments"
	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/shared"
	_ "github.com/lyceum-sis/lyceum/testing"
)

type stubRepo struct {
	records map[shared.ID]assessments.Assessment
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[shared.ID]assessments.Assessment)}
}

func (r *stubRepo) Get(ctx context.Context, id shared.ID) (assessments.Assessment, error) {
	a, ok := r.records[id]
	if !ok {
		return assessments.Assessment{}, fmt.Errorf("%w: assessment %s", httpx.ErrNotFound, id)
	}
	return a, nil
}

func (r *stubRepo) ListBySubject(ctx context.Context, subjectID shared.ID) ([]assessments.Assessment, error) {
	var out []assessments.Assessment
	for _, a := range r.records {
		if a.SubjectID == subjectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubRepo) Create(ctx context.Context, a assessments.Assessment) (assessments.Assessment, error) {
	a.ID = shared.NewID()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.records[a.ID] = a
	return a, nil
}

func (r *stubRepo) Update(ctx context.Context, id shared.ID, title, questions string, marks int, dueAt *time.Time) error {
	a, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: assessment %s", httpx.ErrNotFound, id)
	}
	a.Title, a.Questions, a.Marks, a.DueAt = title, questions, marks, dueAt
	r.records[id] = a
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, id shared.ID) error {
	delete(r.records, id)
	return nil
}

func (r *stubRepo) ParentSubject(ctx context.Context, assessmentID shared.ID) (shared.ID, error) {
	a, ok := r.records[assessmentID]
	if !ok {
		return "", fmt.Errorf("%w: assessment %s", httpx.ErrNotFound, assessmentID)
	}
	return a.SubjectID, nil
}

func seedAssessment(t *testing.T, repo *stubRepo) assessments.Assessment {
	t.Helper()
	service := assessments.NewService(repo)
	created, err := service.Create(context.Background(), shared.NewID(), "Midterm", "Q1: explain paging", 100, nil)
	require.NoError(t, err)
	return created
}

func TestStudentViewIsRedacted(t *testing.T) {
	repo := newStubRepo()
	created := seedAssessment(t, repo)
	service := assessments.NewService(repo)
	student := auth.Context{UserID: shared.NewID(), Role: shared.RoleStudent}

	got, err := service.GetFor(context.Background(), student, created.ID)
	require.NoError(t, err)
	require.Empty(t, got.Questions)
	require.Zero(t, got.Marks)
	require.Equal(t, created.Title, got.Title)

	listed, err := service.ListFor(context.Background(), student, created.SubjectID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Empty(t, listed[0].Questions)
	require.Zero(t, listed[0].Marks)
}

func TestTeacherViewIsFull(t *testing.T) {
	repo := newStubRepo()
	created := seedAssessment(t, repo)
	service := assessments.NewService(repo)

	for _, role := range []shared.Role{shared.RoleTeacher, shared.RoleAdmin} {
		got, err := service.GetFor(context.Background(), auth.Context{UserID: shared.NewID(), Role: role}, created.ID)
		require.NoError(t, err)
		require.Equal(t, "Q1: explain paging", got.Questions)
		require.Equal(t, 100, got.Marks)
	}
}

func TestCreateValidation(t *testing.T) {
	service := assessments.NewService(newStubRepo())

	_, err := service.Create(context.Background(), shared.NewID(), "", "", 10, nil)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = service.Create(context.Background(), shared.NewID(), "Quiz", "", -1, nil)
	require.ErrorIs(t, err, httpx.ErrValidation)
}
