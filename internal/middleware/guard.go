package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/auth"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const accountKey contextKey = "account"

// Messages flashed by the guard.
const (
	MsgLoginRequired = "Please log in to continue."
	MsgWrongRole     = "You do not have permission to access that page."
)

// WithAccount stores the acting account on ctx.
func WithAccount(ctx context.Context, acct models.Account) context.Context {
	return context.WithValue(ctx, accountKey, acct)
}

// AccountFrom returns the acting account placed by the guard.
func AccountFrom(ctx context.Context) (models.Account, bool) {
	acct, ok := ctx.Value(accountKey).(models.Account)
	return acct, ok
}

// AccountLoader is what the guard needs to resolve a session.
type AccountLoader interface {
	GetAccount(ctx context.Context, id int64) (models.Account, error)
}

// Guard resolves the session on every protected request.
type Guard struct {
	tokens *auth.TokenManager
	store  AccountLoader
	secure bool
	logger *slog.Logger
}

func NewGuard(tokens *auth.TokenManager, store AccountLoader, secureCookies bool, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{tokens: tokens, store: store, secure: secureCookies, logger: logger}
}

// Admin restricts next to administrators.
func (g *Guard) Admin(next http.HandlerFunc) http.Handler {
	return g.RequireRole(models.RoleAdmin, next)
}

// Member restricts next to members.
func (g *Guard) Member(next http.HandlerFunc) http.Handler {
	return g.RequireRole(models.RoleMember, next)
}

// Any admits every signed-in account with a profile.
func (g *Guard) Any(next http.HandlerFunc) http.Handler {
	return g.RequireAccount(models.RoleMember, next)
}

// RequireRole admits only accounts whose resolved role is role. Anyone else
// signed in is sent to their own portal's login with a warning.
func (g *Guard) RequireRole(role models.Role, next http.Handler) http.Handler {
	return g.RequireAccount(role, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct, _ := AccountFrom(r.Context())
		if acct.Profile.Role != role {
			respond.Redirect(w, acct.Profile.Role.LoginPath(), MsgWrongRole)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequireAccount resolves the session and puts the account on the context.
// loginRole picks the login page unauthenticated requests are sent to.
func (g *Guard) RequireAccount(loginRole models.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := g.tokens.Parse(auth.TokenFromRequest(r))
		if err != nil {
			g.signOut(w, loginRole.LoginPath(), MsgLoginRequired, !errors.Is(err, auth.ErrMissingToken))
			return
		}
		acct, err := g.store.GetAccount(r.Context(), claims.AccountID)
		if errors.Is(err, storage.ErrNotFound) {
			g.signOut(w, loginRole.LoginPath(), MsgLoginRequired, true)
			return
		}
		if err != nil {
			g.logger.Error("guard: load account", "account_id", claims.AccountID, "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to load account")
			return
		}

		if auth.ResolveRole(acct) == auth.MissingProfile {
			g.logger.Warn("guard: account without profile", "account_id", acct.ID, "username", acct.Username)
			g.signOut(w, models.RoleMember.LoginPath(), auth.MsgMissingProfile, true)
			return
		}
		if !acct.Profile.Active {
			g.signOut(w, acct.Profile.Role.LoginPath(), auth.MsgInactive, true)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), acct)))
	})
}

func (g *Guard) signOut(w http.ResponseWriter, location, message string, clear bool) {
	if clear {
		auth.ClearSessionCookie(w, g.secure)
	}
	respond.Redirect(w, location, message)
}
