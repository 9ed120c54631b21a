package submissions_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/policy"
	"github.com/lyceum-sis/lyceum/internal/shared"
	"github.com/lyceum-sis/lyceum/internal/submissions"
	_ "github.com/lyceum-sis/lyceum/testing"
)

type stubRepo struct {
	records map[shared.ID]submissions.Submission
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[shared.ID]submissions.Submission)}
}

func (r *stubRepo) Get(ctx context.Context, id shared.ID) (submissions.Submission, error) {
	s, ok := r.records[id]
	if !ok {
		return submissions.Submission{}, fmt.Errorf("%w: submission %s", httpx.ErrNotFound, id)
	}
	return s, nil
}

func (r *stubRepo) ListByAssessment(ctx context.Context, assessmentID shared.ID, scope policy.ListScope) ([]submissions.Submission, error) {
	var out []submissions.Submission
	for _, s := range r.records {
		if s.AssessmentID != assessmentID {
			continue
		}
		if !scope.All && s.StudentID != scope.UserID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *stubRepo) Create(ctx context.Context, s submissions.Submission) (submissions.Submission, error) {
	for _, existing := range r.records {
		if existing.AssessmentID == s.AssessmentID && existing.StudentID == s.StudentID {
			return submissions.Submission{}, fmt.Errorf("%w: already submitted", httpx.ErrDuplicate)
		}
	}
	s.ID = shared.NewID()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	r.records[s.ID] = s
	return s, nil
}

func (r *stubRepo) Update(ctx context.Context, id shared.ID, repo, note string) error {
	s, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: submission %s", httpx.ErrNotFound, id)
	}
	s.Repo, s.Note = repo, note
	r.records[id] = s
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, id shared.ID) error {
	delete(r.records, id)
	return nil
}

func (r *stubRepo) Grade(ctx context.Context, id shared.ID, grade int, gradedBy shared.ID, gradedAt time.Time) error {
	s, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: submission %s", httpx.ErrNotFound, id)
	}
	s.Grade, s.GradedBy, s.GradedAt = &grade, &gradedBy, &gradedAt
	r.records[id] = s
	return nil
}

func (r *stubRepo) Provenance(ctx context.Context, submissionID shared.ID) (shared.ID, shared.ID, error) {
	s, ok := r.records[submissionID]
	if !ok {
		return "", "", fmt.Errorf("%w: submission %s", httpx.ErrNotFound, submissionID)
	}
	return s.StudentID, s.AssessmentID, nil
}

func TestCreateRequiresRepo(t *testing.T) {
	service := submissions.NewService(newStubRepo())

	_, err := service.Create(context.Background(), shared.NewID(), shared.NewID(), "", "note")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsSecondSubmission(t *testing.T) {
	service := submissions.NewService(newStubRepo())
	assessmentID, studentID := shared.NewID(), shared.NewID()

	_, err := service.Create(context.Background(), assessmentID, studentID, "https://git.local/work", "")
	require.NoError(t, err)

	_, err = service.Create(context.Background(), assessmentID, studentID, "https://git.local/work-v2", "")
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestGradeStampsGraderAndTime(t *testing.T) {
	repo := newStubRepo()
	service := submissions.NewService(repo)
	teacherID := shared.NewID()

	created, err := service.Create(context.Background(), shared.NewID(), shared.NewID(), "https://git.local/work", "")
	require.NoError(t, err)

	before := time.Now()
	require.NoError(t, service.Grade(context.Background(), created.ID, 85, teacherID))

	got, err := service.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Grade)
	require.Equal(t, 85, *got.Grade)
	require.NotNil(t, got.GradedBy)
	require.Equal(t, teacherID, *got.GradedBy)
	require.NotNil(t, got.GradedAt)
	require.WithinDuration(t, before, *got.GradedAt, 5*time.Second)
}

func TestGradeRejectsNegative(t *testing.T) {
	service := submissions.NewService(newStubRepo())

	err := service.Grade(context.Background(), shared.NewID(), -1, shared.NewID())
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestListScopeNarrowsToOwnRows(t *testing.T) {
	repo := newStubRepo()
	service := submissions.NewService(repo)
	assessmentID := shared.NewID()
	mine, other := shared.NewID(), shared.NewID()

	_, err := service.Create(context.Background(), assessmentID, mine, "https://git.local/mine", "")
	require.NoError(t, err)
	_, err = service.Create(context.Background(), assessmentID, other, "https://git.local/other", "")
	require.NoError(t, err)

	all, err := service.List(context.Background(), assessmentID, policy.ListScope{All: true})
	require.NoError(t, err)
	require.Len(t, all, 2)

	own, err := service.List(context.Background(), assessmentID, policy.ListScope{UserID: mine})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, mine, own[0].StudentID)
}
