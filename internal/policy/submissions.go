package policy

import (
	"context"
	"fmt"

	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// submissionDecision implements the submission rows of the decision table.
// Authorization is always resolved transitively through the parent chain
// Submission -> Assessment -> Subject; a submission carries no membership of
// its own.
func (a *Authorizer) submissionDecision(ctx context.Context, actor auth.Context, action Action, ref Ref) (Decision, error) {
	switch action {
	case ActionCreate:
		return a.submissionCreateDecision(ctx, actor, ref)

	case ActionList:
		// Per-assessment listing: members of the parent subject may list;
		// students are narrowed to their own rows by SubmissionListScope.
		subjectID, err := a.parentOfAssessment(ctx, ref.Assessment)
		if err != nil {
			return Decision{}, err
		}
		member, err := a.subjects.IsMember(ctx, subjectID, actor.UserID)
		if err != nil {
			return Decision{}, err
		}
		if !member {
			return deny("not a member of the parent subject"), nil
		}
		return allow(), nil

	case ActionRead, ActionUpdate, ActionDelete, ActionGrade:
		owner, assessmentID, err := a.submissions.Provenance(ctx, ref.Submission)
		if err != nil {
			return Decision{}, fmt.Errorf("policy: resolve submission %s: %w", ref.Submission, err)
		}
		return a.submissionRecordDecision(ctx, actor, action, owner, assessmentID)
	}
	return deny("unsupported submission action"), nil
}

func (a *Authorizer) submissionCreateDecision(ctx context.Context, actor auth.Context, ref Ref) (Decision, error) {
	if actor.Role != shared.RoleStudent {
		return deny("only students submit work"), nil
	}
	if ref.Owner != actor.UserID {
		return deny("submission owner must be the caller"), nil
	}

	subjectID, err := a.parentOfAssessment(ctx, ref.Assessment)
	if err != nil {
		return Decision{}, err
	}
	enrolled, err := a.subjects.IsMember(ctx, subjectID, actor.UserID)
	if err != nil {
		return Decision{}, err
	}
	if !enrolled {
		return deny("not enrolled in the parent subject"), nil
	}
	return allow(), nil
}

func (a *Authorizer) submissionRecordDecision(ctx context.Context, actor auth.Context, action Action, owner, assessmentID shared.ID) (Decision, error) {
	isOwner := actor.UserID == owner && actor.Role == shared.RoleStudent

	switch action {
	case ActionUpdate:
		if isOwner {
			return allow(), nil
		}
		return deny("only the owner updates a submission"), nil

	case ActionDelete:
		return deny("submissions are removed by administrators"), nil

	case ActionRead, ActionGrade:
		if action == ActionRead && isOwner {
			return allow(), nil
		}
		if actor.Role != shared.RoleTeacher {
			return deny("not the owner"), nil
		}
		subjectID, err := a.parentOfAssessment(ctx, assessmentID)
		if err != nil {
			return Decision{}, err
		}
		teaches, err := a.subjects.IsMember(ctx, subjectID, actor.UserID)
		if err != nil {
			return Decision{}, err
		}
		if !teaches {
			return deny("not a teacher of the parent subject"), nil
		}
		return allow(), nil
	}
	return deny("unsupported submission action"), nil
}

// SubmissionListScope narrows a per-assessment submission listing: teachers
// and admins see every row, students only their own.
func SubmissionListScope(actor auth.Context) ListScope {
	if actor.Role == shared.RoleStudent {
		return ListScope{UserID: actor.UserID}
	}
	return ListScope{All: true}
}
