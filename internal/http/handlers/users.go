package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/accounts"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models/dto"
)

// UserHandler is the admin's user management.
type UserHandler struct {
	deps *Deps
}

func NewUserHandler(deps *Deps) *UserHandler {
	return &UserHandler{deps: deps}
}

func (h *UserHandler) Register(mux *http.ServeMux) {
	g := h.deps.Guard
	mux.Handle("GET /manage/users", g.Admin(h.list))
	mux.Handle("POST /manage/users/create", g.Admin(h.create))
	mux.Handle("GET /manage/users/{id}", g.Admin(h.detail))
	mux.Handle("POST /manage/users/{id}/edit", g.Admin(h.edit))
	mux.Handle("POST /manage/users/{id}/password", g.Admin(h.setPassword))
	mux.Handle("POST /manage/users/{id}/delete", g.Admin(h.delete))
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("role"))
	if role != "" && !role.Valid() {
		respond.Validation(w, "Please correct the errors below.", map[string]string{"role": "unknown role"})
		return
	}
	users, err := h.deps.Store.ListAccounts(r.Context(), role)
	if err != nil {
		h.deps.internalError(w, r, "failed to list users", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"users": users, "count": len(users)})
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.deps.Accounts.Create(r.Context(), req)
	switch {
	case err == nil:
		h.deps.record(r.Context(), actor(r).ID, models.ActivityOther, "Created user "+created.Username, ref(created.ID))
		respond.JSON(w, http.StatusCreated, "User "+created.Username+" created successfully.", created)
	case invalid(w, err):
	case errors.Is(err, accounts.ErrUserLimitReached):
		respond.Error(w, http.StatusConflict, "Maximum number of users reached.")
	default:
		h.deps.storeError(w, r, "user", err)
	}
}

func (h *UserHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	ctx := r.Context()
	acct, err := h.deps.Store.GetAccount(ctx, id)
	if err != nil {
		h.deps.storeError(w, r, "user", err)
		return
	}
	payments, err := h.deps.Store.ListPayments(ctx, models.PaymentFilter{AccountID: id})
	if err != nil {
		h.deps.internalError(w, r, "failed to list payments", err)
		return
	}
	activity, err := h.deps.Store.RecentActivity(ctx, id, 20)
	if err != nil {
		h.deps.internalError(w, r, "failed to load activity", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"user":     acct,
		"payments": payments,
		"activity": activity,
	})
}

func (h *UserHandler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	ctx := r.Context()
	acct, err := h.deps.Store.GetAccount(ctx, id)
	if err != nil {
		h.deps.storeError(w, r, "user", err)
		return
	}
	if acct.ID == actor(r).ID && (req.Role != models.RoleAdmin || (req.Active != nil && !*req.Active)) {
		respond.Error(w, http.StatusBadRequest, "You cannot demote or deactivate your own account.")
		return
	}
	req.Apply(&acct)
	updated, err := h.deps.Store.UpdateAccount(ctx, acct)
	if err != nil {
		h.deps.storeError(w, r, "user", err)
		return
	}
	h.deps.record(ctx, actor(r).ID, models.ActivityOther, "Updated user "+updated.Username, ref(updated.ID))
	respond.JSON(w, http.StatusOK, "User "+updated.Username+" updated successfully.", updated)
}

func (h *UserHandler) setPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.deps.Accounts.ChangePassword(r.Context(), id, req.Password)
	switch {
	case err == nil:
		h.deps.record(r.Context(), actor(r).ID, models.ActivityOther, fmt.Sprintf("Set a new password for user #%d", id), ref(id))
		respond.JSON(w, http.StatusOK, "Password updated.", nil)
	case invalid(w, err):
	default:
		h.deps.storeError(w, r, "user", err)
	}
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	if id == actor(r).ID {
		respond.Error(w, http.StatusBadRequest, "You cannot delete your own account.")
		return
	}
	ctx := r.Context()
	acct, err := h.deps.Store.GetAccount(ctx, id)
	if err != nil {
		h.deps.storeError(w, r, "user", err)
		return
	}
	if err := h.deps.Store.DeleteAccount(ctx, id); err != nil {
		h.deps.storeError(w, r, "user", err)
		return
	}
	if acct.Profile != nil && acct.Profile.AvatarPath != "" {
		if err := h.deps.Uploads.Remove(acct.Profile.AvatarPath); err != nil {
			h.deps.logger().Warn("delete user: avatar cleanup failed", "path", acct.Profile.AvatarPath, "error", err)
		}
	}
	h.deps.record(ctx, actor(r).ID, models.ActivityOther, "Deleted user "+acct.Username, nil)
	respond.JSON(w, http.StatusOK, "User "+acct.Username+" deleted successfully.", nil)
}
