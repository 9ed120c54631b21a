package policy

import "github.com/lyceum-sis/lyceum/internal/auth"

// accountDecision implements the account rows of the decision table. Teacher
// and student accounts are provisioned, changed, and listed by administrators
// only; admin dominance has already been applied by Authorize.
func accountDecision(_ auth.Context, _ Action) Decision {
	return deny("accounts are managed by administrators")
}
