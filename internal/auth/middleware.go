package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/lyceum-sis/lyceum/internal/platform/httpx"
)

// Middleware resolves the per-request authentication context from the bearer
// credential before any handler runs.
type Middleware struct {
	logger    *slog.Logger
	codec     *Codec
	directory Directory
}

// NewMiddleware constructs the context resolver middleware.
func NewMiddleware(logger *slog.Logger, codec *Codec, directory Directory) *Middleware {
	return &Middleware{logger: logger, codec: codec, directory: directory}
}

// Resolve attaches a Context for requests carrying a valid bearer token.
// Requests without a credential continue anonymously. Requests with a bad
// credential are aborted: downgrading an expired or forged token to anonymous
// would let it slip past endpoints that treat anonymous callers differently.
func (m *Middleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, present := bearerToken(r)
		if !present {
			next.ServeHTTP(w, r)
			return
		}
		if raw == "" {
			httpx.RespondError(w, ErrInvalidToken)
			return
		}

		claims, err := m.codec.Validate(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}

		// The role is read fresh on every request rather than trusted from the
		// token, so a role change takes effect on the holder's next request.
		principal, err := m.directory.FindByID(r.Context(), claims.UserID)
		if err != nil {
			m.logger.Warn("token for unknown principal",
				slog.String("user_id", claims.UserID.String()))
			httpx.RespondError(w, ErrUnknownPrincipal)
			return
		}

		ctx := WithContext(r.Context(), Context{UserID: principal.ID, Role: principal.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireContext guards routes that must not be reached anonymously.
func RequireContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := FromContext(r.Context()); err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from the Authorization header. The second
// return distinguishes "no credential" from "credential present but empty or
// not a bearer scheme".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}
