package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models/dto"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/uploads"
)

// SettingsHandler serves member preferences, the mess-wide settings and the
// member's own profile.
type SettingsHandler struct {
	deps *Deps
}

func NewSettingsHandler(deps *Deps) *SettingsHandler {
	return &SettingsHandler{deps: deps}
}

func (h *SettingsHandler) Register(mux *http.ServeMux) {
	g := h.deps.Guard
	mux.Handle("GET /user/settings", g.Member(h.userSettings))
	mux.Handle("POST /user/settings", g.Member(h.updateUserSettings))
	mux.Handle("POST /user/save-theme-preference", g.Any(h.saveTheme))
	mux.Handle("GET /user/profile-settings", g.Any(h.profile))
	mux.Handle("POST /user/profile-settings", g.Any(h.updateProfile))
	mux.Handle("POST /user/profile-settings/avatar", g.Any(h.uploadAvatar))

	mux.Handle("GET /manage/settings", g.Admin(h.messSettings))
	mux.Handle("POST /manage/settings", g.Admin(h.updateMessSettings))
	mux.Handle("POST /manage/settings/upi-qr", g.Admin(h.uploadQR))
}

// readSection returns the raw body and the section it names.
func readSection(w http.ResponseWriter, r *http.Request) ([]byte, models.SettingsSection, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return nil, "", false
	}
	return sectionOf(w, body)
}

func sectionOf(w http.ResponseWriter, body []byte) ([]byte, models.SettingsSection, bool) {
	var sub dto.SettingsSubmission
	if err := json.Unmarshal(body, &sub); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return nil, "", false
	}
	return body, sub.Section, true
}

func (h *SettingsHandler) userSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Store.GetOrCreateUserSettings(r.Context(), actor(r).ID)
	if err != nil {
		h.deps.internalError(w, r, "failed to load settings", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"settings": s,
		"sections": models.UserSettingsSections,
	})
}

func (h *SettingsHandler) updateUserSettings(w http.ResponseWriter, r *http.Request) {
	body, section, ok := readSection(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	acct := actor(r)
	current, err := h.deps.Store.GetOrCreateUserSettings(ctx, acct.ID)
	if err != nil {
		h.deps.internalError(w, r, "failed to load settings", err)
		return
	}
	next, err := dto.ApplyUserSettings(section, body, current)
	if invalid(w, err) {
		return
	}
	saved, err := h.deps.Store.UpdateUserSettings(ctx, section, next)
	if err != nil {
		h.deps.internalError(w, r, "failed to save settings", err)
		return
	}
	h.deps.record(ctx, acct.ID, models.ActivityProfile, "Updated "+string(section)+" settings", nil)
	respond.JSON(w, http.StatusOK, "Settings saved successfully.", saved)
}

func (h *SettingsHandler) saveTheme(w http.ResponseWriter, r *http.Request) {
	var req dto.ThemeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.deps.Store.UpdateTheme(r.Context(), actor(r).ID, req.DarkMode); err != nil {
		h.deps.storeError(w, r, "profile", err)
		return
	}
	respond.JSON(w, http.StatusOK, "Theme preference saved.", req)
}

func (h *SettingsHandler) profile(w http.ResponseWriter, r *http.Request) {
	acct, err := h.deps.Store.GetAccount(r.Context(), actor(r).ID)
	if err != nil {
		h.deps.storeError(w, r, "profile", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", acct)
}

func (h *SettingsHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	ctx := r.Context()
	acct, err := h.deps.Store.GetAccount(ctx, actor(r).ID)
	if err != nil {
		h.deps.storeError(w, r, "profile", err)
		return
	}
	acct.FirstName = req.FirstName
	acct.LastName = req.LastName
	acct.Email = req.Email
	if acct.Profile != nil {
		acct.Profile.Phone = req.Phone
		acct.Profile.RoomNo = req.RoomNo
	}
	updated, err := h.deps.Store.UpdateAccount(ctx, acct)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Validation(w, "Please correct the errors below.", map[string]string{"email": "This email is already in use."})
		return
	default:
		h.deps.storeError(w, r, "profile", err)
		return
	}
	h.deps.record(ctx, acct.ID, models.ActivityProfile, "Updated profile information", nil)
	respond.JSON(w, http.StatusOK, "Profile updated successfully.", updated)
}

func (h *SettingsHandler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r) {
		return
	}
	path, err := h.deps.Uploads.FromRequest(r, "avatar", uploads.KindAvatar)
	if err != nil {
		h.deps.uploadError(w, r, "avatar", err)
		return
	}
	if path == "" {
		respond.Validation(w, "Please correct the errors below.", map[string]string{"avatar": "this field is required"})
		return
	}
	ctx := r.Context()
	acct := actor(r)
	if err := h.deps.Store.UpdateAvatar(ctx, acct.ID, path); err != nil {
		h.deps.Uploads.Remove(path)
		h.deps.storeError(w, r, "profile", err)
		return
	}
	if acct.Profile != nil && acct.Profile.AvatarPath != "" {
		if err := h.deps.Uploads.Remove(acct.Profile.AvatarPath); err != nil {
			h.deps.logger().Warn("avatar: old file cleanup failed", "path", acct.Profile.AvatarPath, "error", err)
		}
	}
	h.deps.record(ctx, acct.ID, models.ActivityProfile, "Updated profile picture", nil)
	respond.JSON(w, http.StatusOK, "Profile picture updated.", map[string]string{"avatar_path": path})
}

func (h *SettingsHandler) messSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.messSettings(r.Context())
	if err != nil {
		h.deps.internalError(w, r, "failed to load settings", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"settings": s,
		"sections": models.MessSettingsSections,
	})
}

// updateMessSettings takes a JSON body, or a multipart form whose "settings"
// field holds the JSON and whose "upi_qr_code" file replaces the QR image.
func (h *SettingsHandler) updateMessSettings(w http.ResponseWriter, r *http.Request) {
	var (
		body    []byte
		section models.SettingsSection
		ok      bool
		qr      string
	)
	if isMultipart(r) {
		if !parseMultipart(w, r) {
			return
		}
		if body, section, ok = sectionOf(w, []byte(r.FormValue("settings"))); !ok {
			return
		}
		if section == models.SectionPayment {
			path, err := h.deps.Uploads.FromRequest(r, "upi_qr_code", uploads.KindUPIQR)
			if err != nil {
				h.deps.uploadError(w, r, "upi_qr_code", err)
				return
			}
			qr = path
		}
	} else if body, section, ok = readSection(w, r); !ok {
		return
	}

	ctx := r.Context()
	current, err := h.deps.messSettings(ctx)
	if err != nil {
		h.deps.internalError(w, r, "failed to load settings", err)
		return
	}
	next, err := dto.ApplyMessSettings(section, body, current)
	if invalid(w, err) {
		h.deps.Uploads.Remove(qr)
		return
	}
	saved, err := h.deps.Store.UpdateMessSettings(ctx, section, next)
	if err != nil {
		h.deps.Uploads.Remove(qr)
		h.deps.internalError(w, r, "failed to save settings", err)
		return
	}
	if qr != "" {
		if saved, err = h.replaceQR(r, saved, qr); err != nil {
			h.deps.internalError(w, r, "failed to save QR code", err)
			return
		}
	}
	h.deps.record(ctx, actor(r).ID, models.ActivityOther, "Updated "+string(section)+" settings", nil)
	respond.JSON(w, http.StatusOK, "Settings saved successfully.", saved)
}

func (h *SettingsHandler) uploadQR(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r) {
		return
	}
	path, err := h.deps.Uploads.FromRequest(r, "upi_qr_code", uploads.KindUPIQR)
	if err != nil {
		h.deps.uploadError(w, r, "upi_qr_code", err)
		return
	}
	if path == "" {
		respond.Validation(w, "Please correct the errors below.", map[string]string{"upi_qr_code": "this field is required"})
		return
	}
	current, err := h.deps.messSettings(r.Context())
	if err != nil {
		h.deps.Uploads.Remove(path)
		h.deps.internalError(w, r, "failed to save QR code", err)
		return
	}
	saved, err := h.replaceQR(r, current, path)
	if err != nil {
		h.deps.internalError(w, r, "failed to save QR code", err)
		return
	}
	respond.JSON(w, http.StatusOK, "UPI QR code updated.", saved)
}

// replaceQR points the settings at path and drops the previous image.
func (h *SettingsHandler) replaceQR(r *http.Request, s models.MessSettings, path string) (models.MessSettings, error) {
	if err := h.deps.Store.SetUPIQRCode(r.Context(), path); err != nil {
		h.deps.Uploads.Remove(path)
		return s, err
	}
	if old := s.UPIQRCodePath; old != "" && old != path {
		if err := h.deps.Uploads.Remove(old); err != nil {
			h.deps.logger().Warn("upi qr: old file cleanup failed", "path", old, "error", err)
		}
	}
	s.UPIQRCodePath = path
	return s, nil
}
