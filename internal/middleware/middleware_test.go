package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/auth"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/metrics"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage/sqlite"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage/storagetest"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/pkg/logging"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	acct, _ := AccountFrom(r.Context())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(acct.Username))
}

type guardFixture struct {
	store  *sqlite.Store
	tokens *auth.TokenManager
	guard  *Guard
}

func newGuardFixture(t *testing.T) guardFixture {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "mess.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	tokens := auth.NewTokenManager("secret", "mess-test", time.Hour)
	return guardFixture{store: store, tokens: tokens, guard: NewGuard(tokens, store, false, logging.Discard())}
}

func (f guardFixture) request(t *testing.T, h http.Handler, acct *models.Account) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	if acct != nil {
		token, err := f.tokens.Generate(*acct, 0)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuardRedirectsAnonymous(t *testing.T) {
	f := newGuardFixture(t)
	rec := f.request(t, f.guard.Admin(okHandler), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/manage/login", rec.Header().Get("Location"))

	rec = f.request(t, f.guard.Member(okHandler), nil)
	assert.Equal(t, "/accounts/login", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies(), "nothing to clear without a session")
}

func TestGuardRoles(t *testing.T) {
	f := newGuardFixture(t)
	alice := storagetest.NewMember(t, f.store, "alice")

	rec := f.request(t, f.guard.Member(okHandler), &alice)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	rec = f.request(t, f.guard.Admin(okHandler), &alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts/login", rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), MsgWrongRole)

	rec = f.request(t, f.guard.Any(okHandler), &alice)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardMissingProfileClearsSession(t *testing.T) {
	f := newGuardFixture(t)
	alice := storagetest.NewMember(t, f.store, "alice")
	_, err := f.store.DB().ExecContext(context.Background(), `DELETE FROM profiles WHERE account_id = ?`, alice.ID)
	require.NoError(t, err)

	rec := f.request(t, f.guard.Any(okHandler), &alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts/login", rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), auth.MsgMissingProfile)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookie, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestGuardInactiveAccount(t *testing.T) {
	f := newGuardFixture(t)
	alice := storagetest.NewMember(t, f.store, "alice")
	alice.Profile.Active = false
	_, err := f.store.UpdateAccount(context.Background(), alice)
	require.NoError(t, err)

	rec := f.request(t, f.guard.Member(okHandler), &alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Body.String(), auth.MsgInactive)
}

func TestGuardDeletedAccount(t *testing.T) {
	f := newGuardFixture(t)
	ghost := models.Account{ID: 999, Username: "ghost"}
	rec := f.request(t, f.guard.Member(okHandler), &ghost)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/user/payment", nil)
	req.Header.Set("Origin", "https://APP.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://APP.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-CSRF-Token")

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardNeverAllowsCredentials(t *testing.T) {
	h := CORS([]string{"*", "https://app.example"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/user/dashboard", nil)
	req.Header.Set("Origin", "https://sub.mess.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/user/dashboard", nil)
	req.Header.Set("Origin", "https://app.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	none := CORS(nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec = httptest.NewRecorder()
	none.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggingAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, 0)
	var seen string
	h := Logging(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		http.NotFound(w, r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), "/nope")

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	m := metrics.New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /manage/payments/{id}", func(w http.ResponseWriter, r *http.Request) {})
	h := Metrics(m, mux, mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/manage/payments/7", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/manage/payments/8", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `mess_http_requests_total{method="GET",route="GET /manage/payments/{id}",status="200"} 2`)
}

func TestCSRFRequiresTokenForCookieRequests(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /csrf", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"token": CSRFToken(r)})
	})
	mux.HandleFunc("POST /act", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	srv := httptest.NewServer(CSRF(key, false, nil, mux))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/act", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, err = http.Get(srv.URL + "/csrf")
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	res.Body.Close()
	require.NotEmpty(t, got["token"])

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/act", strings.NewReader("{}"))
	req.Header.Set(CSRFHeader, got["token"])
	for _, c := range res.Cookies() {
		req.AddCookie(c)
	}
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/act", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer whatever")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}
