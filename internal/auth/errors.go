package auth

import (
	"fmt"

	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
)

// Authentication failures. All wrap the httpx sentinels so RespondError maps
// them to the right status without handlers repeating the taxonomy.
var (
	// ErrMissingContext is returned when a handler requires an authenticated
	// context and the request carried no bearer credential.
	ErrMissingContext = fmt.Errorf("%w: no authentication context", httpx.ErrUnauthorized)

	// ErrInvalidToken is returned when a bearer credential is present but does
	// not validate. The request is aborted rather than downgraded to anonymous.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", httpx.ErrUnauthorized)

	// ErrUnknownPrincipal is returned when a valid token references an account
	// that no longer exists.
	ErrUnknownPrincipal = fmt.Errorf("%w: unknown principal", httpx.ErrUnauthorized)

	// ErrNoSuchPrincipal is returned at login time when the external identity
	// matches no local account. Accounts are provisioned by admins, never
	// auto-created from an external profile.
	ErrNoSuchPrincipal = fmt.Errorf("%w: no account for identity", httpx.ErrForbidden)
)

// Token validation failures, each a refinement of ErrInvalidToken.
var (
	ErrTokenMalformed    = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenBadSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenExpired      = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// OAuth flow failures.
var (
	// ErrMissingParameter is returned when the provider callback lacks `code`
	// or `state`. No outbound call is attempted in that case.
	ErrMissingParameter = fmt.Errorf("%w: missing oauth callback parameter", httpx.ErrValidation)

	// ErrStateMismatch is returned when the callback state token was never
	// issued by this process or has already been consumed.
	ErrStateMismatch = fmt.Errorf("%w: oauth state mismatch", httpx.ErrValidation)

	// ErrExchangeFailed covers network and protocol errors during the
	// authorization-code exchange.
	ErrExchangeFailed = fmt.Errorf("%w: code exchange failed", httpx.ErrUpstream)

	// ErrProfileFetchFailed covers transport errors and non-2xx responses from
	// the userinfo endpoint.
	ErrProfileFetchFailed = fmt.Errorf("%w: profile fetch failed", httpx.ErrUpstream)

	// ErrProfileParseFailed is returned on a malformed userinfo body.
	ErrProfileParseFailed = fmt.Errorf("%w: profile parse failed", httpx.ErrUpstream)
)
