package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

func member(active bool) models.Account {
	return models.Account{ID: 7, Username: "alice", PasswordHash: "h1",
		Profile: &models.Profile{AccountID: 7, Role: models.RoleMember, Active: active}}
}

func admin() models.Account {
	return models.Account{ID: 1, Username: "boss", PasswordHash: "h0",
		Profile: &models.Profile{AccountID: 1, Role: models.RoleAdmin, Active: true}}
}

func TestResolveRole(t *testing.T) {
	assert.Equal(t, ResolvedAdmin, ResolveRole(admin()))
	assert.Equal(t, ResolvedMember, ResolveRole(member(true)))
	assert.Equal(t, MissingProfile, ResolveRole(models.Account{ID: 3}))
	assert.Equal(t, MissingProfile, ResolveRole(models.Account{ID: 3, Profile: &models.Profile{Role: "chef"}}))

	role, ok := ResolvedAdmin.Role()
	assert.True(t, ok)
	assert.Equal(t, models.RoleAdmin, role)
	_, ok = MissingProfile.Role()
	assert.False(t, ok)
}

func TestPortalDecision(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Minute)
	earlier := now.Add(-time.Minute)

	tests := []struct {
		name   string
		portal Portal
		res    Resolution
		active bool
		locked *time.Time
		want   Outcome
	}{
		{"member at member portal", PortalMember, ResolvedMember, true, nil, Allow},
		{"admin at admin portal", PortalAdmin, ResolvedAdmin, true, nil, Allow},
		{"admin at member portal", PortalMember, ResolvedAdmin, true, nil, RejectInvalidCredentials},
		{"member at admin portal", PortalAdmin, ResolvedMember, true, nil, RedirectToMemberPortal},
		{"missing profile", PortalMember, MissingProfile, true, nil, RejectMissingProfile},
		{"inactive member", PortalMember, ResolvedMember, false, nil, RejectInactive},
		{"locked member", PortalMember, ResolvedMember, true, &later, RejectLocked},
		{"expired lock", PortalMember, ResolvedMember, true, &earlier, Allow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PortalDecision(tc.portal, tc.res, tc.active, tc.locked, now))
		})
	}

	assert.Equal(t, RejectMissingProfile, DecideFor(PortalAdmin, models.Account{ID: 9}, now))
	assert.Equal(t, Allow, DecideFor(PortalAdmin, admin(), now))
	assert.NotEmpty(t, RedirectToMemberPortal.Message())
	assert.Empty(t, Allow.Message())
}

func TestSessionToken(t *testing.T) {
	tm := NewTokenManager("secret", "mess-test", time.Hour)

	token, err := tm.Generate(member(true), 0)
	require.NoError(t, err)
	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.AccountID)
	assert.Equal(t, models.RoleMember, claims.Role)
	assert.Equal(t, "7", claims.Subject)

	_, err = NewTokenManager("other", "mess-test", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = NewTokenManager("secret", "someone-else", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := tm.Generate(member(true), -time.Minute)
	require.NoError(t, err)
	_, err = tm.Parse(expired)
	assert.NoError(t, err, "non-positive ttl falls back to the default")

	_, err = tm.Parse("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestResetTokenIsNotASession(t *testing.T) {
	tm := NewTokenManager("secret", "mess-test", time.Hour)
	acct := member(true)

	reset, err := tm.GenerateReset(acct, time.Hour)
	require.NoError(t, err)
	_, err = tm.Parse(reset)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := tm.ParseReset(reset)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint(acct.PasswordHash), claims.Fingerprint)
	assert.NotEqual(t, Fingerprint("h2"), claims.Fingerprint)

	session, err := tm.Generate(acct, time.Hour)
	require.NoError(t, err)
	_, err = tm.ParseReset(session)
	assert.ErrorIs(t, err, ErrInvalidToken)

	stale, err := tm.GenerateReset(acct, -time.Minute)
	require.NoError(t, err)
	_, err = tm.ParseReset(stale)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordPolicy(t *testing.T) {
	strong := PasswordPolicy{MinLength: 8, RequireStrong: true}
	assert.NoError(t, strong.Validate("Secret123"))
	assert.ErrorIs(t, strong.Validate("Sec1"), ErrWeakPassword)
	assert.ErrorIs(t, strong.Validate("secret123"), ErrWeakPassword)
	assert.ErrorIs(t, strong.Validate("SecretPass"), ErrWeakPassword)

	relaxed := PolicyFromSettings(models.MessSettings{MinPasswordLength: 4})
	assert.NoError(t, relaxed.Validate("abcd"))
	assert.ErrorIs(t, relaxed.Validate("abc"), ErrWeakPassword)

	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Secret123"))
	assert.False(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword("", "anything"))
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(r))

	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", TokenFromRequest(r))

	w := httptest.NewRecorder()
	SetSessionCookie(w, "tok", time.Hour, true)
	ClearSessionCookie(w, true)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.Equal(t, -1, cookies[1].MaxAge)
}
