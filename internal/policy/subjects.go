package policy

import (
	"context"
	"fmt"

	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

// subjectDecision implements the subject rows of the decision table. Subjects
// and their membership sets are admin-managed; non-admins only ever read the
// subjects they belong to.
func (a *Authorizer) subjectDecision(ctx context.Context, actor auth.Context, action Action, ref Ref) (Decision, error) {
	switch action {
	case ActionCreate, ActionUpdate, ActionDelete, ActionRelate:
		return deny("subjects are managed by administrators"), nil

	case ActionList:
		// Listing is narrowed to the actor's memberships by ListScope, never
		// rejected outright.
		return allow(), nil

	case ActionRead:
		member, err := a.subjects.IsMember(ctx, ref.Subject, actor.UserID)
		if err != nil {
			return Decision{}, err
		}
		if member {
			return allow(), nil
		}
		// A subject that does not exist is reported as missing, not as a
		// membership denial.
		exists, err := a.subjects.Exists(ctx, ref.Subject)
		if err != nil {
			return Decision{}, err
		}
		if !exists {
			return Decision{}, fmt.Errorf("%w: subject %s", httpx.ErrNotFound, ref.Subject)
		}
		return deny("not a member of the subject"), nil
	}
	return deny("unsupported subject action"), nil
}

// ListScope describes how a listing must be narrowed for the actor.
type ListScope struct {
	// All is true when the actor sees every record (admins).
	All bool
	// UserID narrows the listing to this member when All is false.
	UserID shared.ID
}

// SubjectListScope returns the membership filter for subject listings.
func SubjectListScope(actor auth.Context) ListScope {
	if actor.Role == shared.RoleAdmin {
		return ListScope{All: true}
	}
	return ListScope{UserID: actor.UserID}
}
