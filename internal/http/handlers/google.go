package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/accounts"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/auth"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

const (
	oauthStateCookie = "mess_oauth_state"
	oauthStatePath   = "/accounts/google"
	oauthStateMaxAge = 600
)

// GoogleHandler signs members in with Google. There is no admin
// counterpart: administrators only use the password portal.
type GoogleHandler struct {
	deps *Deps
}

func NewGoogleHandler(deps *Deps) *GoogleHandler {
	return &GoogleHandler{deps: deps}
}

func (h *GoogleHandler) Register(mux *http.ServeMux) {
	if h.deps.Google == nil {
		return
	}
	mux.HandleFunc("GET /accounts/google/login", h.start)
	mux.HandleFunc("GET /accounts/google/callback", h.callback)
}

func (h *GoogleHandler) start(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	h.stateCookie(w, state, oauthStateMaxAge)
	respond.Redirect(w, h.deps.Google.AuthCodeURL(state), "")
}

func (h *GoogleHandler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cookie, err := r.Cookie(oauthStateCookie)
	h.stateCookie(w, "", -1)
	if err != nil || cookie.Value == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(q.Get("state"))) != 1 {
		respond.Error(w, http.StatusBadRequest, "The sign-in request expired. Please try again.")
		return
	}
	if reason := q.Get("error"); reason != "" {
		respond.Redirect(w, models.RoleMember.LoginPath(), "Google sign-in was cancelled.")
		return
	}
	code := q.Get("code")
	if code == "" {
		respond.Error(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	ctx := r.Context()
	provider := h.deps.Google
	ident, err := provider.Identity(ctx, code)
	if errors.Is(err, auth.ErrUnverifiedEmail) {
		respond.Error(w, http.StatusForbidden, "Your Google account has no verified email address.")
		return
	}
	if err != nil {
		h.deps.logger().Warn("google sign-in failed", "error", err)
		respond.Error(w, http.StatusBadGateway, "Could not reach Google. Please try again.")
		return
	}

	res, created, err := h.deps.Accounts.ExternalSignIn(ctx, provider.Name(), ident)
	switch {
	case err == nil:
	case errors.Is(err, accounts.ErrRegistrationClosed):
		respond.Error(w, http.StatusForbidden, "Self registration is currently disabled. Please contact the administrator.")
		return
	case errors.Is(err, accounts.ErrUserLimitReached):
		respond.Error(w, http.StatusConflict, "The mess has reached its maximum number of members.")
		return
	default:
		h.deps.internalError(w, r, "failed to sign in with Google", err)
		return
	}

	switch res.Outcome {
	case auth.Allow:
		auth.SetSessionCookie(w, res.Token, res.TTL, h.deps.SecureCookies)
		msg := "Welcome back, " + res.Account.GreetingName() + "!"
		if created {
			msg = "Your account has been created with Google Sign-In."
		}
		respond.Redirect(w, models.RoleMember.DashboardPath(), msg)
	case auth.RejectInactive:
		if created {
			respond.JSON(w, http.StatusAccepted, "Account created. An administrator must approve it before you can log in.", res.Account)
			return
		}
		respond.Error(w, http.StatusForbidden, res.Outcome.Message())
	case auth.RejectInvalidCredentials:
		respond.Error(w, http.StatusUnauthorized, res.Outcome.Message())
	case auth.RejectLocked:
		respond.Error(w, http.StatusLocked, res.Outcome.Message())
	default:
		respond.Error(w, http.StatusForbidden, res.Outcome.Message())
	}
}

func (h *GoogleHandler) stateCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    value,
		Path:     oauthStatePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
