package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/accounts"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/auth"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/config"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/handlers"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/metrics"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/middleware"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models/dto"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/notify"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage/sqlite"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/uploads"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/pkg/logging"
)

func newTestServer(t *testing.T) (*httptest.Server, *handlers.Deps) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "mess.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	logger := logging.Discard()
	m := metrics.New()
	tokens := auth.NewTokenManager("test-secret", "mess-test", time.Hour)
	notifier := notify.NewNotifier(&notify.RecordingMailer{}, &notify.RecordingAlerter{}, m, logger, "http://mess.test")
	deps := &handlers.Deps{
		Store:    store,
		Accounts: accounts.NewService(store, tokens, notifier, logger),
		Tokens:   tokens,
		Notifier: notifier,
		Uploads:  uploads.New(t.TempDir()),
		Guard:    middleware.NewGuard(tokens, store, false, logger),
		Logger:   logger,
	}
	cfg := config.Config{
		CSRFEnabled: true,
		CSRFKey:     strings.Repeat("k", 32),
		CORSOrigins: []string{"http://localhost:3000"},
	}
	ts := httptest.NewServer(Handler(cfg, deps, m))
	t.Cleanup(ts.Close)
	return ts, deps
}

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func call(t *testing.T, c *http.Client, method, url string, body string, header map[string]string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(raw)
}

func TestCookieSessionNeedsCSRFToken(t *testing.T) {
	ts, deps := newTestServer(t)
	_, created, err := deps.Accounts.BootstrapAdmin(context.Background(), "warden", "warden@example.com", "Secret123")
	require.NoError(t, err)
	require.True(t, created)

	c := newClient(t)
	login := `{"identifier":"warden","password":"Secret123"}`

	res, _ := call(t, c, http.MethodPost, ts.URL+"/manage/login", login, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get(middleware.RequestIDHeader))

	res, body := call(t, c, http.MethodGet, ts.URL+"/csrf", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var env struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	token := env.Data["csrf_token"]
	require.NotEmpty(t, token)

	csrfHeader := map[string]string{middleware.CSRFHeader: token}
	res, body = call(t, c, http.MethodPost, ts.URL+"/manage/login", login, csrfHeader)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	res, _ = call(t, c, http.MethodGet, ts.URL+"/manage/dashboard", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	settings := `{"section":"general","mess_name":"Hill Mess"}`
	res, _ = call(t, c, http.MethodPost, ts.URL+"/manage/settings", settings, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res, body = call(t, c, http.MethodPost, ts.URL+"/manage/settings", settings, csrfHeader)
	assert.Equal(t, http.StatusOK, res.StatusCode, body)
}

func TestBearerClientsSkipCSRF(t *testing.T) {
	ts, deps := newTestServer(t)
	acct, err := deps.Accounts.Create(context.Background(), dto.CreateAccountRequest{
		Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Smith",
		Phone: "9000000001", RoomNo: "12", Role: models.RoleMember, Password: "Secret123",
	})
	require.NoError(t, err)
	token, err := deps.Tokens.Generate(acct, time.Hour)
	require.NoError(t, err)

	c := newClient(t)
	res, body := call(t, c, http.MethodPost, ts.URL+"/user/messages/send",
		`{"subject":"Menu","message":"More rice please"}`,
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusCreated, res.StatusCode, body)

	res, _ = call(t, c, http.MethodGet, ts.URL+"/manage/dashboard", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/accounts/login", res.Header.Get("Location"))

	res, body = call(t, c, http.MethodGet, ts.URL+"/metrics", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `mess_http_requests_total{method="POST",route="POST /user/messages/send",status="201"} 1`)
	assert.Contains(t, body, `mess_notifications_total{channel="telegram",kind="member_message",outcome="sent"} 1`)
}
