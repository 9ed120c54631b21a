package policy

import (
	"context"

	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// assessmentDecision implements the assessment rows of the decision table.
// Everything hinges on membership in the parent subject: members may read,
// teaching members may also write. Student reads are additionally redacted by
// the assessments service; redaction is presentation, not a policy outcome.
func (a *Authorizer) assessmentDecision(ctx context.Context, actor auth.Context, action Action, ref Ref) (Decision, error) {
	switch action {
	case ActionCreate, ActionList:
		// Target subject is known directly; no chain walk needed.
		return a.assessmentSubjectDecision(ctx, actor, action, ref.Subject)

	case ActionRead, ActionUpdate, ActionDelete:
		subjectID, err := a.parentOfAssessment(ctx, ref.Assessment)
		if err != nil {
			return Decision{}, err
		}
		return a.assessmentSubjectDecision(ctx, actor, action, subjectID)
	}
	return deny("unsupported assessment action"), nil
}

func (a *Authorizer) assessmentSubjectDecision(ctx context.Context, actor auth.Context, action Action, subjectID shared.ID) (Decision, error) {
	member, err := a.subjects.IsMember(ctx, subjectID, actor.UserID)
	if err != nil {
		return Decision{}, err
	}
	if !member {
		return deny("not a member of the parent subject"), nil
	}

	switch action {
	case ActionRead, ActionList:
		return allow(), nil
	case ActionCreate, ActionUpdate, ActionDelete:
		if actor.Role != shared.RoleTeacher {
			return deny("only teachers manage assessments"), nil
		}
		return allow(), nil
	}
	return deny("unsupported assessment action"), nil
}
