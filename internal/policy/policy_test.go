package policy_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/policy"
	"github.com/lyceum-sis/lyceum/internal/shared"
	_ "github.com/lyceum-sis/lyceum/testing"
)

// memberKey identifies one (subject, user) membership edge.
type memberKey struct {
	subject shared.ID
	user    shared.ID
}

// stubLookups is an in-memory relational world for the authorizer.
type stubLookups struct {
	subjects    map[shared.ID]bool
	members     map[memberKey]bool
	parents     map[shared.ID]shared.ID // assessment -> subject
	submissions map[shared.ID][2]shared.ID
	calls       int
}

func (s *stubLookups) Exists(ctx context.Context, subjectID shared.ID) (bool, error) {
	s.calls++
	return s.subjects[subjectID], nil
}

func (s *stubLookups) IsMember(ctx context.Context, subjectID, userID shared.ID) (bool, error) {
	s.calls++
	return s.members[memberKey{subjectID, userID}], nil
}

func (s *stubLookups) ParentSubject(ctx context.Context, assessmentID shared.ID) (shared.ID, error) {
	s.calls++
	subjectID, ok := s.parents[assessmentID]
	if !ok {
		return "", fmt.Errorf("%w: assessment %s", httpx.ErrNotFound, assessmentID)
	}
	return subjectID, nil
}

func (s *stubLookups) Provenance(ctx context.Context, submissionID shared.ID) (shared.ID, shared.ID, error) {
	s.calls++
	rec, ok := s.submissions[submissionID]
	if !ok {
		return "", "", fmt.Errorf("%w: submission %s", httpx.ErrNotFound, submissionID)
	}
	return rec[0], rec[1], nil
}

// world builds a fixture: one subject taught by teacher, with student
// enrolled, one assessment under it, and one submission by student.
type world struct {
	lookups    *stubLookups
	authorizer *policy.Authorizer

	subject    shared.ID
	assessment shared.ID
	submission shared.ID

	admin    auth.Context
	teacher  auth.Context
	student  auth.Context
	outsider auth.Context // enrolled in nothing
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		subject:    shared.NewID(),
		assessment: shared.NewID(),
		submission: shared.NewID(),
		admin:      auth.Context{UserID: shared.NewID(), Role: shared.RoleAdmin},
		teacher:    auth.Context{UserID: shared.NewID(), Role: shared.RoleTeacher},
		student:    auth.Context{UserID: shared.NewID(), Role: shared.RoleStudent},
		outsider:   auth.Context{UserID: shared.NewID(), Role: shared.RoleStudent},
	}
	w.lookups = &stubLookups{
		subjects: map[shared.ID]bool{w.subject: true},
		members: map[memberKey]bool{
			{w.subject, w.teacher.UserID}: true,
			{w.subject, w.student.UserID}: true,
		},
		parents: map[shared.ID]shared.ID{w.assessment: w.subject},
		submissions: map[shared.ID][2]shared.ID{
			w.submission: {w.student.UserID, w.assessment},
		},
	}
	w.authorizer = policy.NewAuthorizer(w.lookups, w.lookups, w.lookups)
	return w
}

func (w *world) decide(t *testing.T, actor auth.Context, kind policy.Kind, action policy.Action, ref policy.Ref) policy.Decision {
	t.Helper()
	decision, err := w.authorizer.Authorize(context.Background(), actor, kind, action, ref)
	require.NoError(t, err)
	return decision
}

func TestAdminDominance(t *testing.T) {
	w := newWorld(t)

	kinds := []policy.Kind{policy.KindSubject, policy.KindAssessment, policy.KindSubmission, policy.KindAccount}
	actions := []policy.Action{
		policy.ActionCreate, policy.ActionRead, policy.ActionList,
		policy.ActionUpdate, policy.ActionDelete, policy.ActionRelate, policy.ActionGrade,
	}
	for _, kind := range kinds {
		for _, action := range actions {
			decision := w.decide(t, w.admin, kind, action, policy.Ref{})
			require.True(t, decision.Allowed, "admin %s %s", action, kind)
		}
	}
	// Dominance short-circuits before any relational lookup.
	require.Zero(t, w.lookups.calls)
}

func TestSubjectDecisions(t *testing.T) {
	w := newWorld(t)
	ref := policy.Ref{Subject: w.subject}

	require.True(t, w.decide(t, w.student, policy.KindSubject, policy.ActionRead, ref).Allowed)
	require.True(t, w.decide(t, w.teacher, policy.KindSubject, policy.ActionRead, ref).Allowed)
	require.False(t, w.decide(t, w.outsider, policy.KindSubject, policy.ActionRead, ref).Allowed)

	// Writes and membership changes are admin-only regardless of membership.
	for _, action := range []policy.Action{policy.ActionCreate, policy.ActionUpdate, policy.ActionDelete, policy.ActionRelate} {
		require.False(t, w.decide(t, w.teacher, policy.KindSubject, action, ref).Allowed, "teacher %s", action)
		require.False(t, w.decide(t, w.student, policy.KindSubject, action, ref).Allowed, "student %s", action)
	}

	// Listing is always allowed; narrowing is the scope's job.
	require.True(t, w.decide(t, w.outsider, policy.KindSubject, policy.ActionList, policy.Ref{}).Allowed)
}

func TestSubjectListScope(t *testing.T) {
	w := newWorld(t)

	require.True(t, policy.SubjectListScope(w.admin).All)

	scope := policy.SubjectListScope(w.student)
	require.False(t, scope.All)
	require.Equal(t, w.student.UserID, scope.UserID)
}

func TestAssessmentDecisions(t *testing.T) {
	w := newWorld(t)
	bySubject := policy.Ref{Subject: w.subject}
	byID := policy.Ref{Assessment: w.assessment}

	// Members read and list; only teaching members write.
	require.True(t, w.decide(t, w.student, policy.KindAssessment, policy.ActionRead, byID).Allowed)
	require.True(t, w.decide(t, w.student, policy.KindAssessment, policy.ActionList, bySubject).Allowed)
	require.True(t, w.decide(t, w.teacher, policy.KindAssessment, policy.ActionCreate, bySubject).Allowed)
	require.True(t, w.decide(t, w.teacher, policy.KindAssessment, policy.ActionUpdate, byID).Allowed)
	require.True(t, w.decide(t, w.teacher, policy.KindAssessment, policy.ActionDelete, byID).Allowed)

	require.False(t, w.decide(t, w.student, policy.KindAssessment, policy.ActionCreate, bySubject).Allowed)
	require.False(t, w.decide(t, w.student, policy.KindAssessment, policy.ActionUpdate, byID).Allowed)
	require.False(t, w.decide(t, w.outsider, policy.KindAssessment, policy.ActionRead, byID).Allowed)
	require.False(t, w.decide(t, w.outsider, policy.KindAssessment, policy.ActionList, bySubject).Allowed)

	// A teacher who is not a member of the subject has no standing either.
	otherTeacher := auth.Context{UserID: shared.NewID(), Role: shared.RoleTeacher}
	require.False(t, w.decide(t, otherTeacher, policy.KindAssessment, policy.ActionCreate, bySubject).Allowed)
}

func TestSubmissionCreateDecisions(t *testing.T) {
	w := newWorld(t)
	own := policy.Ref{Assessment: w.assessment, Owner: w.student.UserID}

	require.True(t, w.decide(t, w.student, policy.KindSubmission, policy.ActionCreate, own).Allowed)

	// Teachers do not submit work.
	asTeacher := policy.Ref{Assessment: w.assessment, Owner: w.teacher.UserID}
	require.False(t, w.decide(t, w.teacher, policy.KindSubmission, policy.ActionCreate, asTeacher).Allowed)

	// A student cannot submit on behalf of another student.
	forged := policy.Ref{Assessment: w.assessment, Owner: w.outsider.UserID}
	require.False(t, w.decide(t, w.student, policy.KindSubmission, policy.ActionCreate, forged).Allowed)

	// Enrollment in the parent subject is required.
	notEnrolled := policy.Ref{Assessment: w.assessment, Owner: w.outsider.UserID}
	require.False(t, w.decide(t, w.outsider, policy.KindSubmission, policy.ActionCreate, notEnrolled).Allowed)
}

func TestSubmissionRecordDecisions(t *testing.T) {
	w := newWorld(t)
	ref := policy.Ref{Submission: w.submission}

	// Owner reads and updates; nobody but admins deletes.
	require.True(t, w.decide(t, w.student, policy.KindSubmission, policy.ActionRead, ref).Allowed)
	require.True(t, w.decide(t, w.student, policy.KindSubmission, policy.ActionUpdate, ref).Allowed)
	require.False(t, w.decide(t, w.student, policy.KindSubmission, policy.ActionDelete, ref).Allowed)
	require.False(t, w.decide(t, w.teacher, policy.KindSubmission, policy.ActionDelete, ref).Allowed)

	// Teachers of the parent subject read and grade.
	require.True(t, w.decide(t, w.teacher, policy.KindSubmission, policy.ActionRead, ref).Allowed)
	require.True(t, w.decide(t, w.teacher, policy.KindSubmission, policy.ActionGrade, ref).Allowed)

	// Students never grade, not even their own work.
	require.False(t, w.decide(t, w.student, policy.KindSubmission, policy.ActionGrade, ref).Allowed)

	// Another enrolled student sees nothing.
	peer := auth.Context{UserID: shared.NewID(), Role: shared.RoleStudent}
	w.lookups.members[memberKey{w.subject, peer.UserID}] = true
	require.False(t, w.decide(t, peer, policy.KindSubmission, policy.ActionRead, ref).Allowed)

	// A teacher of an unrelated subject has no standing.
	otherTeacher := auth.Context{UserID: shared.NewID(), Role: shared.RoleTeacher}
	require.False(t, w.decide(t, otherTeacher, policy.KindSubmission, policy.ActionGrade, ref).Allowed)
}

func TestSubmissionListScope(t *testing.T) {
	w := newWorld(t)

	require.True(t, policy.SubmissionListScope(w.teacher).All)
	require.True(t, policy.SubmissionListScope(w.admin).All)

	scope := policy.SubmissionListScope(w.student)
	require.False(t, scope.All)
	require.Equal(t, w.student.UserID, scope.UserID)
}

func TestAccountDecisions(t *testing.T) {
	w := newWorld(t)

	for _, actor := range []auth.Context{w.teacher, w.student} {
		for _, action := range []policy.Action{policy.ActionCreate, policy.ActionRead, policy.ActionList, policy.ActionUpdate, policy.ActionDelete} {
			require.False(t, w.decide(t, actor, policy.KindAccount, action, policy.Ref{}).Allowed,
				"%s %s account", actor.Role, action)
		}
	}
}

func TestBrokenParentChainIsNotFound(t *testing.T) {
	// A dangling reference is an integrity failure surfaced as not-found,
	// never silently converted into a deny.
	w := newWorld(t)

	_, err := w.authorizer.Authorize(context.Background(), w.teacher,
		policy.KindAssessment, policy.ActionRead, policy.Ref{Assessment: shared.NewID()})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = w.authorizer.Authorize(context.Background(), w.teacher,
		policy.KindSubmission, policy.ActionGrade, policy.Ref{Submission: shared.NewID()})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestMissingSubjectReadIsNotFound(t *testing.T) {
	// Reading a subject that does not exist reports not-found; reading one
	// that exists without membership is a plain deny.
	w := newWorld(t)

	_, err := w.authorizer.Authorize(context.Background(), w.outsider,
		policy.KindSubject, policy.ActionRead, policy.Ref{Subject: shared.NewID()})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	decision := w.decide(t, w.outsider, policy.KindSubject, policy.ActionRead, policy.Ref{Subject: w.subject})
	require.False(t, decision.Allowed)
}

func TestCheckWrapsForbidden(t *testing.T) {
	w := newWorld(t)

	err := w.authorizer.Check(context.Background(), w.student,
		policy.KindSubject, policy.ActionCreate, policy.Ref{})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	err = w.authorizer.Check(context.Background(), w.admin,
		policy.KindSubject, policy.ActionCreate, policy.Ref{})
	require.NoError(t, err)
}

func TestDecisionsAreDeterministic(t *testing.T) {
	w := newWorld(t)
	ref := policy.Ref{Submission: w.submission}

	first := w.decide(t, w.teacher, policy.KindSubmission, policy.ActionGrade, ref)
	for i := 0; i < 10; i++ {
		again := w.decide(t, w.teacher, policy.KindSubmission, policy.ActionGrade, ref)
		require.Equal(t, first, again)
	}
}
