package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

const (
	purposeSession = "session"
	purposeReset   = "password_reset"
)

// Claims are carried by every token this package issues.
type Claims struct {
	AccountID   int64       `json:"uid"`
	Username    string      `json:"username,omitempty"`
	Role        models.Role `json:"role,omitempty"`
	Purpose     string      `json:"purpose"`
	Fingerprint string      `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues signed JWTs for sessions and password resets.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a manager with the provided secret, issuer, and default lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// DefaultTTL is the session lifetime used when settings do not override it.
func (t *TokenManager) DefaultTTL() time.Duration {
	return t.ttl
}

// Generate issues a session token for acct. A zero ttl uses the default.
func (t *TokenManager) Generate(acct models.Account, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = t.ttl
	}
	claims := Claims{
		AccountID: acct.ID,
		Username:  acct.Username,
		Purpose:   purposeSession,
	}
	if acct.Profile != nil {
		claims.Role = acct.Profile.Role
	}
	return t.sign(claims, acct.ID, ttl)
}

// Parse validates a session token.
func (t *TokenManager) Parse(token string) (*Claims, error) {
	return t.parse(token, purposeSession)
}

// GenerateReset issues a password reset token. It stops validating as soon as
// the account's password hash changes.
func (t *TokenManager) GenerateReset(acct models.Account, ttl time.Duration) (string, error) {
	claims := Claims{
		AccountID:   acct.ID,
		Purpose:     purposeReset,
		Fingerprint: Fingerprint(acct.PasswordHash),
	}
	return t.sign(claims, acct.ID, ttl)
}

// ParseReset validates a reset token. Callers compare the fingerprint with
// the account's current hash.
func (t *TokenManager) ParseReset(token string) (*Claims, error) {
	return t.parse(token, purposeReset)
}

// Fingerprint is a short digest of a password hash.
func Fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}

func (t *TokenManager) sign(claims Claims, id int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   strconv.FormatInt(id, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenManager) parse(tokenString, purpose string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Purpose != purpose || claims.AccountID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
