// Package policy is the single authorization decision point. Handlers never
// branch on roles themselves; they ask the Authorizer whether an actor may
// perform an action on a resource and short-circuit on deny.
//
// Decisions are pure: for a given (actor, kind, action, ref) the outcome is
// identical on repeated evaluation, with no hidden time dependence. The only
// I/O is the relational lookups (membership, parent chain) behind the lookup
// interfaces.
package policy

import (
	"context"
	"fmt"

	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Action enumerates the operations the policy rules on.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionList   Action = "list"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionRelate covers membership changes on a subject.
	ActionRelate Action = "relate"
	// ActionGrade covers recording a grade on a submission.
	ActionGrade Action = "grade"
)

// Kind enumerates the gated resource kinds.
type Kind string

const (
	KindSubject    Kind = "subject"
	KindAssessment Kind = "assessment"
	KindSubmission Kind = "submission"
	// KindAccount covers teacher and student account management.
	KindAccount Kind = "account"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Ref identifies the target resource for relational predicates. Only the
// fields relevant to the (kind, action) pair need to be set.
type Ref struct {
	// Subject is the target subject, for subject operations and for creating
	// or listing resources scoped under a subject.
	Subject shared.ID
	// Assessment is the target assessment, or the parent assessment of a
	// submission being created.
	Assessment shared.ID
	// Submission is the target submission for read/update/delete/grade.
	Submission shared.ID
	// Owner is the student a new submission is being created for.
	Owner shared.ID
}

// SubjectLookup answers membership questions about subjects.
type SubjectLookup interface {
	Exists(ctx context.Context, subjectID shared.ID) (bool, error)
	IsMember(ctx context.Context, subjectID, userID shared.ID) (bool, error)
}

// AssessmentLookup resolves an assessment to its parent subject. A missing
// assessment reports httpx.ErrNotFound.
type AssessmentLookup interface {
	ParentSubject(ctx context.Context, assessmentID shared.ID) (shared.ID, error)
}

// SubmissionLookup resolves a submission to its owner and parent assessment.
// A missing submission reports httpx.ErrNotFound.
type SubmissionLookup interface {
	Provenance(ctx context.Context, submissionID shared.ID) (owner, assessment shared.ID, err error)
}

// Authorizer evaluates the decision table.
type Authorizer struct {
	subjects    SubjectLookup
	assessments AssessmentLookup
	submissions SubmissionLookup
}

// NewAuthorizer constructs an Authorizer over the relational lookups.
func NewAuthorizer(subjects SubjectLookup, assessments AssessmentLookup, submissions SubmissionLookup) *Authorizer {
	return &Authorizer{subjects: subjects, assessments: assessments, submissions: submissions}
}

// Authorize decides whether the actor may perform action on the resource.
// Admin dominance is applied first and short-circuits every other predicate.
// A broken parent-chain reference surfaces as an error wrapping
// httpx.ErrNotFound: a resource integrity failure, never a deny.
func (a *Authorizer) Authorize(ctx context.Context, actor auth.Context, kind Kind, action Action, ref Ref) (Decision, error) {
	if actor.Role == shared.RoleAdmin {
		return allow(), nil
	}

	switch kind {
	case KindSubject:
		return a.subjectDecision(ctx, actor, action, ref)
	case KindAssessment:
		return a.assessmentDecision(ctx, actor, action, ref)
	case KindSubmission:
		return a.submissionDecision(ctx, actor, action, ref)
	case KindAccount:
		return accountDecision(actor, action), nil
	}
	return deny(fmt.Sprintf("unknown resource kind %q", kind)), nil
}

// Check runs Authorize and converts a deny into an error wrapping
// httpx.ErrForbidden, which handlers pass straight to the responder.
func (a *Authorizer) Check(ctx context.Context, actor auth.Context, kind Kind, action Action, ref Ref) error {
	decision, err := a.Authorize(ctx, actor, kind, action, ref)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return fmt.Errorf("%w: %s %s: %s", httpx.ErrForbidden, action, kind, decision.Reason)
	}
	return nil
}

// parentOfAssessment walks one link of the chain, preserving the not-found
// distinction from the lookup.
func (a *Authorizer) parentOfAssessment(ctx context.Context, assessmentID shared.ID) (shared.ID, error) {
	subjectID, err := a.assessments.ParentSubject(ctx, assessmentID)
	if err != nil {
		return "", fmt.Errorf("policy: resolve assessment %s: %w", assessmentID, err)
	}
	return subjectID, nil
}
