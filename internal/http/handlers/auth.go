package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/accounts"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/auth"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/middleware"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models/dto"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

// MsgResetSent is answered whether or not the address is known.
const MsgResetSent = "If the address is registered you will receive a password reset link shortly. Otherwise we have sent instructions for getting an account."

// AuthHandler owns both login portals, signup, logout and password resets.
type AuthHandler struct {
	deps *Deps
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(deps *Deps) *AuthHandler {
	return &AuthHandler{deps: deps}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /accounts/login", h.portalLogin(auth.PortalMember))
	mux.HandleFunc("POST /manage/login", h.portalLogin(auth.PortalAdmin))
	mux.HandleFunc("POST /accounts/logout", h.handleLogout)
	mux.HandleFunc("POST /accounts/signup", h.handleSignup)
	mux.HandleFunc("POST /accounts/password/reset", h.handleResetRequest)
	mux.HandleFunc("GET /accounts/password/reset/confirm", h.handleResetLink)
	mux.HandleFunc("POST /accounts/password/reset/confirm", h.handleResetConfirm)
	mux.HandleFunc("GET /csrf", h.handleCSRF)
	mux.Handle("GET /dashboard", h.deps.Guard.Any(h.handleDashboard))
}

func (h *AuthHandler) portalLogin(portal auth.Portal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Login() == "" || strings.TrimSpace(req.Password) == "" {
			respond.Validation(w, "identifier and password are required", map[string]string{
				"identifier": "this field is required",
				"password":   "this field is required",
			})
			return
		}

		res, err := h.deps.Accounts.Login(r.Context(), portal, req.Login(), req.Password)
		if err != nil {
			h.deps.internalError(w, r, "failed to log in", err)
			return
		}

		switch res.Outcome {
		case auth.Allow:
			auth.SetSessionCookie(w, res.Token, res.TTL, h.deps.SecureCookies)
			role, _ := auth.ResolveRole(res.Account).Role()
			respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{
				Token:    res.Token,
				Account:  res.Account,
				Redirect: role.DashboardPath(),
			})
		case auth.RedirectToMemberPortal:
			respond.Redirect(w, models.RoleMember.LoginPath(), res.Outcome.Message())
		case auth.RejectInvalidCredentials:
			respond.Error(w, http.StatusUnauthorized, res.Outcome.Message())
		case auth.RejectLocked:
			respond.Error(w, http.StatusLocked, res.Outcome.Message())
		default:
			respond.Error(w, http.StatusForbidden, res.Outcome.Message())
		}
	}
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.deps.SecureCookies)
	respond.JSON(w, http.StatusOK, "You have been logged out.", nil)
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.deps.Accounts.Signup(r.Context(), req)
	switch {
	case err == nil:
	case invalid(w, err):
		return
	case errors.Is(err, accounts.ErrRegistrationClosed):
		respond.Error(w, http.StatusForbidden, "Self registration is currently disabled. Please contact the administrator.")
		return
	case errors.Is(err, accounts.ErrUserLimitReached):
		respond.Error(w, http.StatusConflict, "The mess has reached its maximum number of members.")
		return
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, "A user with that username or email already exists.")
		return
	default:
		h.deps.internalError(w, r, "failed to create account", err)
		return
	}

	msg := "Account created successfully. You can now log in."
	if created.Profile != nil && !created.Profile.Active {
		msg = "Account created. An administrator must approve it before you can log in."
	}
	respond.JSON(w, http.StatusCreated, msg, created)
}

func (h *AuthHandler) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.deps.Accounts.RequestPasswordReset(r.Context(), req)
	if invalid(w, err) {
		return
	}
	if err != nil {
		h.deps.internalError(w, r, "failed to start password reset", err)
		return
	}
	respond.JSON(w, http.StatusOK, MsgResetSent, nil)
}

// handleResetLink is where the emailed link lands. It only checks the token;
// the new password is posted to the same path.
func (h *AuthHandler) handleResetLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	acct, err := h.deps.Accounts.CheckResetToken(r.Context(), token)
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, "Choose a new password.", map[string]any{
			"token":    token,
			"username": acct.Username,
		})
	case errors.Is(err, accounts.ErrInvalidResetToken):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.deps.internalError(w, r, "failed to check reset link", err)
	}
}

func (h *AuthHandler) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetConfirm
	if !decodeJSON(w, r, &req) {
		return
	}
	_, err := h.deps.Accounts.ConfirmPasswordReset(r.Context(), req)
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, "Your password has been reset. You can now log in.", nil)
	case invalid(w, err):
	case errors.Is(err, accounts.ErrInvalidResetToken):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.deps.internalError(w, r, "failed to reset password", err)
	}
}

func (h *AuthHandler) handleCSRF(w http.ResponseWriter, r *http.Request) {
	token := middleware.CSRFToken(r)
	w.Header().Set(middleware.CSRFHeader, token)
	respond.JSON(w, http.StatusOK, "ok", map[string]string{"csrf_token": token})
}

func (h *AuthHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	role := actor(r).Profile.Role
	respond.Redirect(w, role.DashboardPath(), "")
}
