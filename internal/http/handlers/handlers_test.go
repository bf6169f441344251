package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/accounts"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/auth"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/export"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/metrics"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/middleware"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models/dto"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/notify"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage/sqlite"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/uploads"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/pkg/logging"
)

const testPassword = "Secret123"

var pngPixel, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

type fixture struct {
	t      *testing.T
	store  *sqlite.Store
	mailer *notify.RecordingMailer
	alerts *notify.RecordingAlerter
	tokens *auth.TokenManager
	deps   *Deps
	mux    *http.ServeMux
	now    time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "mess.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	logger := logging.Discard()
	f := &fixture{
		t:      t,
		store:  store,
		mailer: &notify.RecordingMailer{},
		alerts: &notify.RecordingAlerter{},
		tokens: auth.NewTokenManager("test-secret", "mess-test", time.Hour),
		now:    time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
	}
	notifier := notify.NewNotifier(f.mailer, f.alerts, metrics.New(), logger, "http://mess.test")
	f.deps = &Deps{
		Store:    store,
		Accounts: accounts.NewService(store, f.tokens, notifier, logger),
		Tokens:   f.tokens,
		Notifier: notifier,
		Uploads:  uploads.New(t.TempDir()),
		Guard:    middleware.NewGuard(f.tokens, store, false, logger),
		Logger:   logger,
		Now:      func() time.Time { return f.now },
	}

	f.mux = http.NewServeMux()
	for _, h := range []interface{ Register(*http.ServeMux) }{
		NewHealthHandler(f.now, f.deps),
		NewAuthHandler(f.deps),
		NewUserHandler(f.deps),
		NewPaymentHandler(f.deps),
		NewLedgerHandler(f.deps),
		NewMealHandler(f.deps),
		NewMessageHandler(f.deps),
		NewSettingsHandler(f.deps),
		NewDashboardHandler(f.deps),
		NewReportHandler(f.deps),
		NewMediaHandler(f.deps),
	} {
		h.Register(f.mux)
	}
	return f
}

// account creates a user through the service and returns it with a session token.
func (f *fixture) account(username string, role models.Role) (models.Account, string) {
	f.t.Helper()
	acct, err := f.deps.Accounts.Create(context.Background(), dto.CreateAccountRequest{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		LastName:  "Tester",
		Phone:     "9999999999",
		RoomNo:    "101",
		Role:      role,
		Password:  testPassword,
	})
	require.NoError(f.t, err)
	token, err := f.tokens.Generate(acct, time.Hour)
	require.NoError(f.t, err)
	return acct, token
}

func (f *fixture) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) do(method, target, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return f.serve(req, token)
}

func (f *fixture) upload(target, token, field string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(f.t, mw.WriteField(k, v))
	}
	if content != nil {
		part, err := mw.CreateFormFile(field, "image.png")
		require.NoError(f.t, err)
		_, err = part.Write(content)
		require.NoError(f.t, err)
	}
	require.NoError(f.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return f.serve(req, token)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) (envelope, T) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	var data T
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &data), string(env.Data))
	}
	return env, data
}

func TestAliceWalkthrough(t *testing.T) {
	f := setup(t)
	_, admin := f.account("warden", models.RoleAdmin)

	rec := f.do(http.MethodPost, "/manage/users/create", admin, dto.CreateAccountRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Phone:     "9000000001",
		RoomNo:    "12",
		Password:  testPassword,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, alice := decode[models.Account](t, rec)
	require.NotNil(t, alice.Profile)
	assert.Equal(t, models.RoleMember, alice.Profile.Role)
	assert.True(t, alice.Profile.Active)

	rec = f.do(http.MethodPost, "/accounts/login", "", dto.LoginRequest{Identifier: "alice", Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, login := decode[dto.LoginResponse](t, rec)
	assert.Equal(t, "/user/dashboard", login.Redirect)
	token := login.Token

	type paymentPage struct {
		Payment models.Payment `json:"payment"`
		Created bool           `json:"created"`
		UPIID   string         `json:"upi_id"`
	}
	rec = f.do(http.MethodGet, "/user/payment?month=2025-06", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, page := decode[paymentPage](t, rec)
	assert.True(t, page.Created)
	assert.True(t, page.Payment.Amount.IsZero())
	assert.Equal(t, models.PaymentPending, page.Payment.Status)
	assert.Equal(t, "Not configured", page.UPIID)

	rec = f.do(http.MethodGet, "/user/payment?month=2025-06", token, nil)
	_, again := decode[paymentPage](t, rec)
	assert.False(t, again.Created)
	assert.Equal(t, page.Payment.ID, again.Payment.ID)

	rec = f.do(http.MethodPost, "/user/payment?month=2025-06", token, dto.PaymentSubmission{TransactionID: "TXN1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, submitted := decode[models.Payment](t, rec)
	assert.Equal(t, models.PaymentPending, submitted.Status)
	assert.Equal(t, "TXN1", submitted.TransactionID)
	require.NotNil(t, submitted.PaidAt)
	assert.True(t, submitted.PaidAt.Equal(f.now))
	assert.True(t, submitted.Amount.IsZero())

	require.Len(t, f.alerts.Alerts(), 1)
	assert.Contains(t, f.alerts.Alerts()[0], "TXN1")

	activity, err := f.store.RecentActivity(context.Background(), alice.ID, 10)
	require.NoError(t, err)
	var kinds []models.ActivityType
	for _, a := range activity {
		kinds = append(kinds, a.Type)
	}
	assert.Contains(t, kinds, models.ActivityLogin)
	assert.Contains(t, kinds, models.ActivityPayment)
}

func TestPortals(t *testing.T) {
	f := setup(t)
	f.account("warden", models.RoleAdmin)
	f.account("alice", models.RoleMember)

	rec := f.do(http.MethodPost, "/accounts/login", "", dto.LoginRequest{Identifier: "warden", Password: testPassword})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env, _ := decode[any](t, rec)
	assert.Equal(t, auth.MsgInvalidCredentials, env.Message)

	rec = f.do(http.MethodPost, "/manage/login", "", dto.LoginRequest{Identifier: "warden@example.com", Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	rec = f.do(http.MethodPost, "/manage/login", "", dto.LoginRequest{Identifier: "alice", Password: testPassword})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts/login", rec.Header().Get("Location"))

	rec = f.do(http.MethodPost, "/accounts/login", "", dto.LoginRequest{Identifier: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/accounts/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuards(t *testing.T) {
	f := setup(t)
	_, admin := f.account("warden", models.RoleAdmin)
	_, alice := f.account("alice", models.RoleMember)

	rec := f.do(http.MethodGet, "/manage/dashboard", "", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/manage/login", rec.Header().Get("Location"))

	rec = f.do(http.MethodGet, "/manage/payments", alice, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts/login", rec.Header().Get("Location"))

	rec = f.do(http.MethodGet, "/user/payment", admin, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/manage/login", rec.Header().Get("Location"))

	rec = f.do(http.MethodGet, "/dashboard", admin, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/manage/dashboard", rec.Header().Get("Location"))

	rec = f.do(http.MethodGet, "/user/data", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodGet, "/user/data", alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminPaymentsAndReminders(t *testing.T) {
	f := setup(t)
	_, admin := f.account("warden", models.RoleAdmin)
	alice, aliceToken := f.account("alice", models.RoleMember)
	bob, _ := f.account("bob", models.RoleMember)

	req := dto.PaymentRequest{
		AccountID: alice.ID,
		Period:    "2025-06",
		Amount:    decimal.RequireFromString("1500"),
		Status:    models.PaymentPending,
	}
	rec := f.do(http.MethodPost, "/manage/payments/create", admin, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, created := decode[models.Payment](t, rec)

	rec = f.do(http.MethodPost, "/manage/payments/create", admin, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	paid := req
	paid.AccountID = bob.ID
	paid.Status = models.PaymentPaid
	rec = f.do(http.MethodPost, "/manage/payments/create", admin, paid)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/manage/payments/create", admin, dto.PaymentRequest{Period: "June", Status: "lost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, errs := decode[respondErrors](t, rec)
	assert.Contains(t, errs.Errors, "user")
	assert.Contains(t, errs.Errors, "month_year")
	assert.Contains(t, errs.Errors, "status")

	type reminder struct {
		Message models.Message `json:"message"`
		Emailed bool           `json:"emailed"`
	}
	before := len(f.mailer.Sent())
	rec = f.do(http.MethodPost, "/manage/payments/"+itoa(created.ID)+"/remind", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, sent := decode[reminder](t, rec)
	assert.True(t, sent.Emailed)
	assert.Equal(t, models.MessageSystem, sent.Message.Type)
	assert.Equal(t, "Payment Reminder - 2025-06", sent.Message.Subject)
	assert.Contains(t, sent.Message.Body, "Payment Amount: ₹1500.00")
	assert.Contains(t, sent.Message.Body, "UPI ID: Not configured")
	assert.Len(t, f.mailer.Sent(), before+1)

	unchanged, err := f.store.GetPayment(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, unchanged.Status)

	rec = f.do(http.MethodPost, "/user/settings", aliceToken, map[string]any{
		"section":                 "notifications",
		"email_payment_reminders": false,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/manage/reminders/run?month=2025-06", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, run := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, run["sent"])
	assert.EqualValues(t, 0, run["emailed"])
	assert.Len(t, f.mailer.Sent(), before+1)

	rec = f.do(http.MethodGet, "/user/messages", aliceToken, nil)
	_, inbox := decode[map[string][]models.Message](t, rec)
	assert.Len(t, inbox["messages"], 2)

	rec = f.do(http.MethodGet, "/manage/payments?month=2025-06", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, list := decode[struct {
		Summary models.PaymentSummary `json:"summary"`
		Periods []string              `json:"periods"`
	}](t, rec)
	assert.True(t, list.Summary.Collected.Equal(decimal.RequireFromString("1500")))
	assert.Equal(t, 1, list.Summary.Pending)
	assert.Equal(t, []string{"2025-06"}, list.Periods)
}

type respondErrors struct {
	Errors map[string]string `json:"errors"`
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestMessaging(t *testing.T) {
	f := setup(t)
	_, admin := f.account("warden", models.RoleAdmin)
	_, alice := f.account("alice", models.RoleMember)
	_, bob := f.account("bob", models.RoleMember)

	rec := f.do(http.MethodPost, "/user/messages/send", alice, dto.MessageRequest{Subject: "Water", Body: "The tap is broken"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, msg := decode[models.Message](t, rec)
	assert.Equal(t, models.MessageFromUser, msg.Type)
	assert.Equal(t, models.MessagePending, msg.Status)
	assert.Len(t, f.alerts.Alerts(), 1)

	_, err := f.store.CreateMessage(context.Background(), models.Message{
		AccountID: msg.AccountID, Subject: "Payment Reminder - 2025-06", Body: "x",
		Type: models.MessageSystem, Status: models.MessagePending,
	})
	require.NoError(t, err)

	id := itoa(msg.ID)
	rec = f.do(http.MethodPost, "/manage/messages/"+id+"/reply", admin, dto.AdminReplyRequest{AdminReply: "Plumber comes tomorrow"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, replied := decode[models.Message](t, rec)
	assert.Equal(t, models.MessagePending, replied.Status)
	assert.NotNil(t, replied.RepliedAt)

	rec = f.do(http.MethodPost, "/user/messages/"+id+"/reply", alice, dto.UserReplyRequest{UserReply: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(http.MethodPost, "/user/messages/"+id+"/reply", bob, dto.UserReplyRequest{UserReply: "me too"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(http.MethodPost, "/user/messages/"+id+"/reply", alice, dto.UserReplyRequest{UserReply: "Thanks"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/manage/messages/"+id+"/resolve", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, resolved := decode[models.Message](t, rec)
	assert.Equal(t, models.MessageResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, "Plumber comes tomorrow", resolved.AdminReply)
	assert.Equal(t, "Thanks", resolved.UserReply)

	type queue struct {
		Messages []models.Message `json:"messages"`
		Pending  int              `json:"pending_count"`
	}
	rec = f.do(http.MethodGet, "/manage/messages?status=all", admin, nil)
	_, all := decode[queue](t, rec)
	require.Len(t, all.Messages, 1)
	assert.Equal(t, models.MessageFromUser, all.Messages[0].Type)
	assert.Zero(t, all.Pending)

	rec = f.do(http.MethodGet, "/manage/messages?status=pending", admin, nil)
	_, pending := decode[queue](t, rec)
	assert.Empty(t, pending.Messages)

	rec = f.do(http.MethodGet, "/manage/messages?status=archived", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsAreSectionScoped(t *testing.T) {
	f := setup(t)
	_, admin := f.account("warden", models.RoleAdmin)

	rec := f.do(http.MethodPost, "/manage/settings", admin, map[string]any{
		"section":             "general",
		"mess_name":           "Green Mess",
		"default_monthly_fee": "999",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, saved := decode[models.MessSettings](t, rec)
	assert.Equal(t, "Green Mess", saved.MessName)
	assert.True(t, saved.DefaultMonthlyFee.IsZero())

	rec = f.do(http.MethodPost, "/manage/settings", admin, map[string]any{"section": "payment", "default_monthly_fee": "2500", "admin_upi_id": "mess@upi"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/manage/settings", admin, map[string]any{"section": "billing"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(http.MethodPost, "/manage/settings", admin, map[string]any{"section": "security", "session_timeout_minutes": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	first, err := f.store.GetMessSettings(context.Background())
	require.NoError(t, err)
	second, err := f.store.GetMessSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.MessName, second.MessName)
	assert.Equal(t, "Green Mess", first.MessName)
	assert.True(t, first.DefaultMonthlyFee.Equal(decimal.RequireFromString("2500")))
	assert.Equal(t, "mess@upi", first.AdminUPIID)

	rec = f.upload("/manage/settings/upi-qr", admin, "upi_qr_code", pngPixel, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, withQR := decode[models.MessSettings](t, rec)
	assert.True(t, strings.HasPrefix(withQR.UPIQRCodePath, uploads.KindUPIQR+"/"))

	rec = f.upload("/manage/settings/upi-qr", admin, "upi_qr_code", []byte("not an image"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserSettingsAndProfile(t *testing.T) {
	f := setup(t)
	_, alice := f.account("alice", models.RoleMember)
	f.account("bob", models.RoleMember)

	rec := f.do(http.MethodPost, "/user/settings", alice, map[string]any{
		"section":                "display",
		"dashboard_default_view": "all",
		"payment_history_months": 12,
		"email_payment_reminders": false,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, s := decode[models.UserSettings](t, rec)
	assert.Equal(t, "all", s.DashboardDefaultView)
	assert.Equal(t, 12, s.PaymentHistoryMonths)
	assert.True(t, s.EmailPaymentReminders)

	rec = f.do(http.MethodPost, "/user/settings", alice, map[string]any{"section": "display", "dashboard_default_view": "weekly"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/user/profile-settings", alice, dto.ProfileSettingsRequest{
		FirstName: "Alicia", LastName: "Smith", Email: "bob@example.com", Phone: "1", RoomNo: "7",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/user/profile-settings", alice, dto.ProfileSettingsRequest{
		FirstName: "Alicia", LastName: "Smith", Email: "alicia@example.com", Phone: "1", RoomNo: "7",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, updated := decode[models.Account](t, rec)
	assert.Equal(t, "Alicia", updated.FirstName)
	require.NotNil(t, updated.Profile)
	assert.Equal(t, "7", updated.Profile.RoomNo)
	assert.Equal(t, models.RoleMember, updated.Profile.Role)

	rec = f.do(http.MethodPost, "/user/save-theme-preference", alice, dto.ThemeRequest{DarkMode: true})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodGet, "/user/profile-settings", alice, nil)
	_, profile := decode[models.Account](t, rec)
	assert.True(t, profile.Profile.DarkMode)
}

func TestMediaAccess(t *testing.T) {
	f := setup(t)
	_, admin := f.account("warden", models.RoleAdmin)
	_, alice := f.account("alice", models.RoleMember)
	_, bob := f.account("bob", models.RoleMember)

	rec := f.upload("/user/profile-settings/avatar", alice, "avatar", pngPixel, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, avatar := decode[map[string]string](t, rec)
	avatarURL := "/media/" + avatar["avatar_path"]

	rec = f.upload("/user/payment?month=2025-06", alice, "payment_proof", pngPixel, map[string]string{"transaction_id": "TXN9"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, p := decode[models.Payment](t, rec)
	require.NotEmpty(t, p.ProofPath)
	proofURL := "/media/" + p.ProofPath

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, avatarURL, alice, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, proofURL, alice, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, proofURL, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, avatarURL, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, proofURL, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/media/payment_proofs/missing.png", admin, nil).Code)
	assert.Equal(t, http.StatusSeeOther, f.do(http.MethodGet, avatarURL, "", nil).Code)
}

func TestLedgerMealsAndReports(t *testing.T) {
	f := setup(t)
	_, admin := f.account("warden", models.RoleAdmin)
	alice, aliceToken := f.account("alice", models.RoleMember)

	rec := f.do(http.MethodPost, "/manage/groceries/create", admin, dto.GroceryRequest{
		Name: "Rice", Category: models.CategoryGrains, Quantity: "10 kg",
		Price: decimal.RequireFromString("650.50"), PurchaseDate: "2025-06-02", Period: "2025-06",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	expense := dto.FixedExpenseRequest{
		Period:      "2025-06",
		KitchenRent: decimal.RequireFromString("3000"),
		MaidSalary:  decimal.RequireFromString("2000"),
	}
	rec = f.do(http.MethodPost, "/manage/expenses/create", admin, expense)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, view := decode[models.FixedExpenseView](t, rec)
	assert.True(t, view.TotalFixed.Equal(decimal.RequireFromString("5000")))
	rec = f.do(http.MethodPost, "/manage/expenses/create", admin, expense)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodGet, "/user/data?month=2025-06", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, report := decode[export.MonthlyReport](t, rec)
	assert.True(t, report.GroceryTotal.Equal(decimal.RequireFromString("650.50")))
	assert.True(t, report.Expenses.Equal(decimal.RequireFromString("5650.50")))

	rec = f.do(http.MethodPost, "/manage/meals/create", admin, dto.MealPlanRequest{Date: "2025-06-20", Lunch: "Dal rice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = f.do(http.MethodGet, "/user/meals?year=2025&month=6", aliceToken, nil)
	_, cal := decode[struct {
		Plans []models.MealPlan `json:"meal_plans"`
	}](t, rec)
	require.Len(t, cal.Plans, 1)
	assert.Equal(t, "Dal rice", cal.Plans[0].Lunch)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/user/meals?month=13", aliceToken, nil).Code)

	rec = f.do(http.MethodGet, "/user/receipt?month=2025-06", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	_, _, err := f.store.GetOrCreatePayment(context.Background(), alice.ID, "2025-06", decimal.RequireFromString("1500"))
	require.NoError(t, err)
	rec = f.do(http.MethodGet, "/user/receipt?month=2025-06", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentTypePDF, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	for _, target := range []string{
		"/manage/export/payments?month=2025-06",
		"/manage/export/groceries?month=2025-06",
		"/manage/export/monthly-report?month=2025-06",
	} {
		rec = f.do(http.MethodGet, target, admin, nil)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, export.ContentTypeXLSX, rec.Header().Get("Content-Type"), target)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "2025-06.xlsx")
	}
	rec = f.do(http.MethodGet, "/manage/reports/monthly?month=2025-06", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentTypePDF, rec.Header().Get("Content-Type"))
}

func TestDashboards(t *testing.T) {
	f := setup(t)
	_, admin := f.account("warden", models.RoleAdmin)
	alice, aliceToken := f.account("alice", models.RoleMember)

	_, _, err := f.store.GetOrCreatePayment(context.Background(), alice.ID, "2025-06", decimal.RequireFromString("1200"))
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/manage/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, board := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, board["total_users"])
	assert.EqualValues(t, 1, board["pending_payments"])

	rec = f.do(http.MethodGet, "/user/dashboard", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, mine := decode[struct {
		Payment *models.Payment `json:"current_payment"`
	}](t, rec)
	require.NotNil(t, mine.Payment)
	assert.Equal(t, "2025-06", mine.Payment.Period)

	rec = f.do(http.MethodGet, "/manage/activity", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserManagement(t *testing.T) {
	f := setup(t)
	warden, admin := f.account("warden", models.RoleAdmin)
	alice, _ := f.account("alice", models.RoleMember)

	rec := f.do(http.MethodPost, "/manage/users/"+itoa(warden.ID)+"/delete", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	inactive := false
	rec = f.do(http.MethodPost, "/manage/users/"+itoa(alice.ID)+"/edit", admin, dto.UpdateAccountRequest{
		Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Tester",
		Role: models.RoleMember, Active: &inactive,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/accounts/login", "", dto.LoginRequest{Identifier: "alice", Password: testPassword})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPost, "/manage/users/"+itoa(alice.ID)+"/delete", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodGet, "/manage/users/"+itoa(alice.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/accounts/signup", "", dto.SignupRequest{
		Username: "carol", Email: "carol@example.com", FirstName: "Carol", LastName: "T",
		Phone: "1", RoomNo: "3", Password: testPassword,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmissionResetsToPending(t *testing.T) {
	f := setup(t)
	_, admin := f.account("warden", models.RoleAdmin)
	alice, aliceToken := f.account("alice", models.RoleMember)

	rec := f.do(http.MethodPost, "/manage/payments/create", admin, dto.PaymentRequest{
		AccountID: alice.ID,
		Period:    "2025-06",
		Amount:    decimal.RequireFromString("1800"),
		Status:    models.PaymentPaid,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, paid := decode[models.Payment](t, rec)
	require.NotNil(t, paid.PaidAt)

	f.now = f.now.Add(48 * time.Hour)
	rec = f.do(http.MethodPost, "/user/payment?month=2025-06", aliceToken, dto.PaymentSubmission{TransactionID: "  TXN2  "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, resubmitted := decode[models.Payment](t, rec)
	assert.Equal(t, paid.ID, resubmitted.ID)
	assert.Equal(t, models.PaymentPending, resubmitted.Status)
	assert.Equal(t, "TXN2", resubmitted.TransactionID)
	assert.True(t, resubmitted.PaidAt.Equal(f.now))
	assert.True(t, resubmitted.Amount.Equal(decimal.RequireFromString("1800")))

	rec = f.do(http.MethodPost, "/user/payment?month=2025-06", aliceToken, dto.PaymentSubmission{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/user/payments", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, history := decode[struct {
		Payments []models.Payment `json:"payments"`
	}](t, rec)
	assert.Len(t, history.Payments, 1)
}

func TestPasswordResetLinkOpens(t *testing.T) {
	f := setup(t)
	f.account("alice", models.RoleMember)

	rec := f.do(http.MethodPost, "/accounts/password/reset", "", dto.PasswordResetRequest{Email: "alice@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	mail, ok := f.mailer.Last("alice@example.com")
	require.True(t, ok)

	var link *url.URL
	for _, field := range strings.Fields(mail.Text) {
		if strings.Contains(field, "/accounts/password/reset/confirm?token=") {
			u, err := url.Parse(field)
			require.NoError(t, err)
			link = u
			break
		}
	}
	require.NotNil(t, link, mail.Text)

	rec = f.do(http.MethodGet, link.RequestURI(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, page := decode[map[string]string](t, rec)
	assert.Equal(t, "alice", page["username"])
	token := page["token"]
	require.Equal(t, link.Query().Get("token"), token)

	rec = f.do(http.MethodPost, "/accounts/password/reset/confirm", "", dto.PasswordResetConfirm{Token: token, Password: "NewSecret9"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, link.RequestURI(), "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a used link no longer opens")
	rec = f.do(http.MethodGet, "/accounts/password/reset/confirm?token=garbage", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminActionsAreLogged(t *testing.T) {
	f := setup(t)
	warden, admin := f.account("warden", models.RoleAdmin)
	alice, aliceToken := f.account("alice", models.RoleMember)
	bob, _ := f.account("bob", models.RoleMember)

	rec := f.do(http.MethodPost, "/manage/payments/create", admin, dto.PaymentRequest{
		AccountID: alice.ID, Period: "2025-06", Amount: decimal.RequireFromString("1800"), Status: models.PaymentPending,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, p := decode[models.Payment](t, rec)
	pid := itoa(p.ID)

	rec = f.do(http.MethodPost, "/manage/payments/"+pid+"/remind", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(http.MethodPost, "/manage/payments/"+pid+"/edit", admin, dto.PaymentRequest{
		AccountID: alice.ID, Period: "2025-06", Amount: decimal.RequireFromString("1800"), Status: models.PaymentPaid,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(http.MethodPost, "/manage/payments/"+pid+"/delete", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/user/messages/send", aliceToken, dto.MessageRequest{Subject: "Water", Body: "Tap is broken"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, msg := decode[models.Message](t, rec)
	rec = f.do(http.MethodPost, "/manage/messages/"+itoa(msg.ID)+"/reply", admin, dto.AdminReplyRequest{AdminReply: "On it"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(http.MethodPost, "/manage/messages/"+itoa(msg.ID)+"/resolve", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/manage/users/"+itoa(bob.ID)+"/delete", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	entries, err := f.store.RecentActivity(context.Background(), warden.ID, 50)
	require.NoError(t, err)
	related := map[string]*int64{}
	for _, e := range entries {
		assert.Equal(t, warden.ID, e.AccountID)
		related[e.Description] = e.RelatedID
	}
	for desc, want := range map[string]*int64{
		"Created pending payment for user #" + itoa(alice.ID) + " (2025-06)": &p.ID,
		"Sent payment reminder to user #" + itoa(alice.ID) + " for 2025-06":  &p.ID,
		"Marked payment for user #" + itoa(alice.ID) + " (2025-06) as paid":  &p.ID,
		"Deleted payment for user #" + itoa(alice.ID) + " (2025-06)":         &p.ID,
		"Answered message: Water":                                            &msg.ID,
		"Resolved message: Water":                                            &msg.ID,
		"Deleted user bob":                                                   nil,
	} {
		got, ok := related[desc]
		if assert.True(t, ok, "missing activity %q", desc) && want != nil {
			require.NotNil(t, got, desc)
			assert.Equal(t, *want, *got, desc)
		}
	}
}
