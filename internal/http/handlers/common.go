package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/accounts"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/auth"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/middleware"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models/dto"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/notify"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/uploads"
)

const (
	maxJSONBody      = 1 << 20
	maxMultipartBody = uploads.MaxSize + 1<<20
)

// Deps are shared by every handler.
type Deps struct {
	Store         storage.Store
	Accounts      *accounts.Service
	Google        *auth.OAuthProvider
	Tokens        *auth.TokenManager
	Notifier      *notify.Notifier
	Uploads       *uploads.Store
	Guard         *middleware.Guard
	Logger        *slog.Logger
	SecureCookies bool
	Now           func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// internalError logs the real error and returns a generic message to the client.
func (d *Deps) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	d.logger().Error(msg, "error", err, "method", r.Method, "path", r.URL.Path, "request_id", middleware.RequestID(r.Context()))
	respond.Error(w, http.StatusInternalServerError, msg)
}

// storeError maps storage sentinels onto responses. what names the record.
func (d *Deps) storeError(w http.ResponseWriter, r *http.Request, what string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respond.NotFound(w, what+" not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, what+" already exists")
	default:
		d.internalError(w, r, "failed to process "+what, err)
	}
}

// invalid answers validation failures and reports whether err was one.
func invalid(w http.ResponseWriter, err error) bool {
	var fe dto.FieldErrors
	if errors.As(err, &fe) {
		respond.Validation(w, "Please correct the errors below.", fe)
		return true
	}
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, what string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.NotFound(w, what+" not found")
		return 0, false
	}
	return id, true
}

// actor is the account the guard admitted.
func actor(r *http.Request) models.Account {
	acct, _ := middleware.AccountFrom(r.Context())
	return acct
}

// period reads ?month=YYYY-MM, defaulting to the current period.
func (d *Deps) period(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, err := models.PeriodOrCurrent(r.URL.Query().Get("month"), d.now())
	if err != nil {
		respond.Validation(w, "Please correct the errors below.", map[string]string{"month": err.Error()})
		return "", false
	}
	return p, true
}

// calendar reads ?year=&month= as a calendar month, defaulting to now.
func (d *Deps) calendar(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	now := d.now()
	year, month := now.Year(), now.Month()
	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 9999 {
			respond.Validation(w, "Please correct the errors below.", map[string]string{"year": "invalid year"})
			return 0, 0, false
		}
		year = y
	}
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			respond.Validation(w, "Please correct the errors below.", map[string]string{"month": "invalid month"})
			return 0, 0, false
		}
		month = time.Month(m)
	}
	return year, month, true
}

func (d *Deps) messSettings(ctx context.Context) (models.MessSettings, error) {
	s, err := d.Store.GetMessSettings(ctx)
	if err != nil {
		return models.MessSettings{}, fmt.Errorf("load mess settings: %w", err)
	}
	return s, nil
}

// record appends to the activity log when enabled. Failures never fail the request.
func (d *Deps) record(ctx context.Context, accountID int64, kind models.ActivityType, description string, relatedID *int64) {
	s, err := d.messSettings(ctx)
	if err != nil {
		d.logger().Warn("activity log skipped", "error", err)
		return
	}
	d.Accounts.Record(ctx, s, accountID, kind, description, relatedID)
}

func limitParam(r *http.Request, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func ref(id int64) *int64 {
	return &id
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid multipart payload")
		return false
	}
	return true
}

// uploadError answers a rejected attachment as a field error.
func (d *Deps) uploadError(w http.ResponseWriter, r *http.Request, field string, err error) {
	switch {
	case errors.Is(err, uploads.ErrTooLarge):
		respond.Validation(w, "Please correct the errors below.", map[string]string{field: "file must be at most 5 MB"})
	case errors.Is(err, uploads.ErrUnsupportedType):
		respond.Validation(w, "Please correct the errors below.", map[string]string{field: "upload a JPEG, PNG, GIF or WebP image"})
	default:
		d.internalError(w, r, "failed to store upload", err)
	}
}
