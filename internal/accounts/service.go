package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/auth"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models/dto"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/notify"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

var (
	ErrRegistrationClosed = errors.New("self registration is disabled")
	ErrUserLimitReached   = errors.New("maximum number of users reached")
	ErrInvalidResetToken  = errors.New("the reset link is invalid or has expired")
)

// ResetTokenTTL is how long a password reset link stays usable.
const ResetTokenTTL = time.Hour

// Store is the part of the backend account workflows touch.
type Store interface {
	storage.AccountStore
	storage.SettingsStore
	storage.ActivityStore
}

// Service owns account creation, login and password resets.
type Service struct {
	store    Store
	tokens   *auth.TokenManager
	notifier *notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(store Store, tokens *auth.TokenManager, notifier *notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, tokens: tokens, notifier: notifier, logger: logger, now: time.Now}
}

// Create adds an account of any role on behalf of an admin.
func (s *Service) Create(ctx context.Context, req dto.CreateAccountRequest) (models.Account, error) {
	if err := req.Validate(); err != nil {
		return models.Account{}, err
	}
	settings, err := s.store.GetMessSettings(ctx)
	if err != nil {
		return models.Account{}, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	acct := models.Account{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Profile: &models.Profile{
			Role:   role,
			Phone:  strings.TrimSpace(req.Phone),
			RoomNo: strings.TrimSpace(req.RoomNo),
			Active: true,
		},
	}
	return s.create(ctx, settings, acct, req.Password)
}

// Signup registers a member through the public form.
func (s *Service) Signup(ctx context.Context, req dto.SignupRequest) (models.Account, error) {
	if err := req.Validate(); err != nil {
		return models.Account{}, err
	}
	settings, err := s.store.GetMessSettings(ctx)
	if err != nil {
		return models.Account{}, err
	}
	if !settings.AllowSelfRegistration {
		return models.Account{}, ErrRegistrationClosed
	}
	acct := models.Account{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Profile: &models.Profile{
			Role:   models.RoleMember,
			Phone:  strings.TrimSpace(req.Phone),
			RoomNo: strings.TrimSpace(req.RoomNo),
			Active: !settings.RequireAdminApproval,
		},
	}
	return s.create(ctx, settings, acct, req.Password)
}

func (s *Service) create(ctx context.Context, settings models.MessSettings, acct models.Account, password string) (models.Account, error) {
	if err := auth.PolicyFromSettings(settings).Validate(password); err != nil {
		return models.Account{}, weakPassword(err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.Account{}, err
	}
	acct.PasswordHash = hash
	return s.insert(ctx, settings, acct)
}

// insert stores acct, which already carries its password hash, and sends
// the welcome email.
func (s *Service) insert(ctx context.Context, settings models.MessSettings, acct models.Account) (models.Account, error) {
	if acct.Profile.Role == models.RoleMember && settings.MaxUsersAllowed > 0 {
		n, err := s.store.CountAccounts(ctx, models.RoleMember, false)
		if err != nil {
			return models.Account{}, err
		}
		if n >= settings.MaxUsersAllowed {
			return models.Account{}, ErrUserLimitReached
		}
	}

	created, err := s.store.CreateAccount(ctx, acct)
	if err != nil {
		return models.Account{}, fmt.Errorf("create account %s: %w", acct.Username, err)
	}
	s.logger.Info("account created", "id", created.ID, "username", created.Username, "role", acct.Profile.Role)
	s.notifier.Welcome(ctx, settings, created)
	return created, nil
}

// BootstrapAdmin makes sure an administrator exists. An existing account
// with the given username is repaired with an admin profile when it has none.
func (s *Service) BootstrapAdmin(ctx context.Context, username, email, password string) (models.Account, bool, error) {
	existing, err := s.store.FindAccountByIdentifier(ctx, username)
	switch {
	case err == nil:
		_, created, err := s.store.EnsureProfile(ctx, existing.ID, models.RoleAdmin)
		if err != nil {
			return models.Account{}, false, err
		}
		if created {
			s.logger.Warn("bootstrap: attached missing admin profile", "username", username)
			existing, err = s.store.GetAccount(ctx, existing.ID)
			if err != nil {
				return models.Account{}, false, err
			}
		}
		return existing, created, nil
	case !errors.Is(err, storage.ErrNotFound):
		return models.Account{}, false, err
	}

	admins, err := s.store.CountAccounts(ctx, models.RoleAdmin, false)
	if err != nil {
		return models.Account{}, false, err
	}
	if admins > 0 {
		return models.Account{}, false, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.Account{}, false, err
	}
	created, err := s.store.CreateAccount(ctx, models.Account{
		Username:     username,
		Email:        email,
		FirstName:    "Admin",
		PasswordHash: hash,
		Profile:      &models.Profile{Role: models.RoleAdmin, RoomNo: "Admin", Active: true},
	})
	if err != nil {
		return models.Account{}, false, fmt.Errorf("bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap: admin created", "username", username)
	return created, true, nil
}

// LoginResult is what a login attempt produced.
type LoginResult struct {
	Account models.Account
	Outcome auth.Outcome
	Token   string
	TTL     time.Duration
}

// Login checks credentials and applies the portal policy. The lock is checked
// before the password so a locked account reveals nothing about it.
func (s *Service) Login(ctx context.Context, portal auth.Portal, identifier, password string) (LoginResult, error) {
	now := s.now()
	acct, err := s.store.FindAccountByIdentifier(ctx, identifier)
	if errors.Is(err, storage.ErrNotFound) {
		return LoginResult{Outcome: auth.RejectInvalidCredentials}, nil
	}
	if err != nil {
		return LoginResult{}, err
	}
	settings, err := s.store.GetMessSettings(ctx)
	if err != nil {
		return LoginResult{}, err
	}

	if acct.Profile != nil && acct.Profile.Locked(now) {
		return LoginResult{Account: acct, Outcome: auth.RejectLocked}, nil
	}
	if !auth.CheckPassword(acct.PasswordHash, password) {
		if acct.Profile != nil {
			lockFor := time.Duration(settings.LockoutDurationMinutes) * time.Minute
			profile, err := s.store.RecordLoginFailure(ctx, acct.ID, settings.MaxLoginAttempts, lockFor, now)
			if err != nil {
				return LoginResult{}, err
			}
			if profile.Locked(now) {
				s.logger.Warn("login: account locked", "username", acct.Username, "until", profile.LockedUntil)
			}
		}
		return LoginResult{Account: acct, Outcome: auth.RejectInvalidCredentials}, nil
	}
	if acct.Profile != nil && acct.Profile.FailedLogins > 0 {
		if err := s.store.ResetLoginFailures(ctx, acct.ID); err != nil {
			return LoginResult{}, err
		}
		acct.Profile.FailedLogins = 0
		acct.Profile.LockedUntil = nil
	}

	outcome := auth.DecideFor(portal, acct, now)
	if outcome != auth.Allow {
		return LoginResult{Account: acct, Outcome: outcome}, nil
	}

	ttl := settings.SessionTTL(s.tokens.DefaultTTL())
	token, err := s.tokens.Generate(acct, ttl)
	if err != nil {
		return LoginResult{}, err
	}
	s.Record(ctx, settings, acct.ID, models.ActivityLogin, fmt.Sprintf("Logged in via %s portal", portal), nil)
	return LoginResult{Account: acct, Outcome: auth.Allow, Token: token, TTL: ttl}, nil
}

// ExternalSignIn signs a member in through an identity provider, creating
// the account on first use. Creation is a signup, so it never consults the
// portal policy; existing accounts are held to the member portal like a
// password login.
func (s *Service) ExternalSignIn(ctx context.Context, provider string, ident auth.ExternalIdentity) (LoginResult, bool, error) {
	if ident.Email == "" || !ident.EmailVerified {
		return LoginResult{}, false, auth.ErrUnverifiedEmail
	}
	settings, err := s.store.GetMessSettings(ctx)
	if err != nil {
		return LoginResult{}, false, err
	}
	now := s.now()

	created := false
	acct, err := s.store.FindAccountByEmail(ctx, ident.Email)
	switch {
	case err == nil:
		if acct.Profile == nil {
			if _, _, err := s.store.EnsureProfile(ctx, acct.ID, models.RoleMember); err != nil {
				return LoginResult{}, false, err
			}
			if acct, err = s.store.GetAccount(ctx, acct.ID); err != nil {
				return LoginResult{}, false, err
			}
		}
		if outcome := auth.DecideFor(auth.PortalMember, acct, now); outcome != auth.Allow {
			return LoginResult{Account: acct, Outcome: outcome}, false, nil
		}
	case errors.Is(err, storage.ErrNotFound):
		if !settings.AllowSelfRegistration {
			return LoginResult{}, false, ErrRegistrationClosed
		}
		username, err := s.freeUsername(ctx, ident.Email)
		if err != nil {
			return LoginResult{}, false, err
		}
		acct, err = s.insert(ctx, settings, models.Account{
			Username:     username,
			Email:        ident.Email,
			FirstName:    strings.TrimSpace(ident.GivenName),
			LastName:     strings.TrimSpace(ident.FamilyName),
			PasswordHash: auth.UnusablePassword,
			Profile: &models.Profile{
				Role:   models.RoleMember,
				Active: !settings.RequireAdminApproval,
			},
		})
		if err != nil {
			return LoginResult{}, false, err
		}
		created = true
		if !acct.Profile.Active {
			return LoginResult{Account: acct, Outcome: auth.RejectInactive}, true, nil
		}
	default:
		return LoginResult{}, false, err
	}

	ttl := settings.SessionTTL(s.tokens.DefaultTTL())
	token, err := s.tokens.Generate(acct, ttl)
	if err != nil {
		return LoginResult{}, created, err
	}
	s.Record(ctx, settings, acct.ID, models.ActivityLogin, "Logged in with "+provider, nil)
	return LoginResult{Account: acct, Outcome: auth.Allow, Token: token, TTL: ttl}, created, nil
}

// freeUsername derives a username from the local part of email, adding a
// number when it is taken.
func (s *Service) freeUsername(ctx context.Context, email string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, local)
	if base == "" {
		base = "member"
	}
	for i := 1; i <= 100; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}
		_, err := s.store.FindAccountByIdentifier(ctx, candidate)
		if errors.Is(err, storage.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free username for %s", email)
}

// Record appends an activity entry when activity logging is enabled. Failures
// are logged only.
func (s *Service) Record(ctx context.Context, settings models.MessSettings, accountID int64, kind models.ActivityType, description string, relatedID *int64) {
	if !settings.EnableActivityLogging {
		return
	}
	_, err := s.store.LogActivity(ctx, models.Activity{
		AccountID:   accountID,
		Type:        kind,
		Description: description,
		RelatedID:   relatedID,
	})
	if err != nil {
		s.logger.Warn("activity log failed", "account_id", accountID, "type", kind, "error", err)
	}
}

// RequestPasswordReset mails a reset link, or an account-not-found notice
// for unknown addresses. Callers answer identically either way.
func (s *Service) RequestPasswordReset(ctx context.Context, req dto.PasswordResetRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	settings, err := s.store.GetMessSettings(ctx)
	if err != nil {
		return err
	}
	email := strings.TrimSpace(req.Email)
	acct, err := s.store.FindAccountByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		s.notifier.AccountNotFound(ctx, settings, email)
		return nil
	}
	if err != nil {
		return err
	}
	token, err := s.tokens.GenerateReset(acct, ResetTokenTTL)
	if err != nil {
		return err
	}
	link := s.notifier.BaseURL() + "/accounts/password/reset/confirm?token=" + url.QueryEscape(token)
	s.notifier.PasswordReset(ctx, settings, acct, link, "1 hour")
	return nil
}

// CheckResetToken returns the account a reset token was issued for, or
// ErrInvalidResetToken once it is expired, forged or already used.
func (s *Service) CheckResetToken(ctx context.Context, token string) (models.Account, error) {
	claims, err := s.tokens.ParseReset(token)
	if err != nil {
		return models.Account{}, ErrInvalidResetToken
	}
	acct, err := s.store.GetAccount(ctx, claims.AccountID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, ErrInvalidResetToken
	}
	if err != nil {
		return models.Account{}, err
	}
	if claims.Fingerprint != auth.Fingerprint(acct.PasswordHash) {
		return models.Account{}, ErrInvalidResetToken
	}
	return acct, nil
}

// ConfirmPasswordReset sets a new password from a reset token. The token is
// single use since it is bound to the password hash it was issued against.
func (s *Service) ConfirmPasswordReset(ctx context.Context, req dto.PasswordResetConfirm) (models.Account, error) {
	if err := req.Validate(); err != nil {
		return models.Account{}, err
	}
	acct, err := s.CheckResetToken(ctx, req.Token)
	if err != nil {
		return models.Account{}, err
	}
	settings, err := s.store.GetMessSettings(ctx)
	if err != nil {
		return models.Account{}, err
	}
	if err := auth.PolicyFromSettings(settings).Validate(req.Password); err != nil {
		return models.Account{}, weakPassword(err)
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.Account{}, err
	}
	if err := s.store.UpdatePassword(ctx, acct.ID, hash); err != nil {
		return models.Account{}, err
	}
	if acct.Profile != nil {
		if err := s.store.ResetLoginFailures(ctx, acct.ID); err != nil {
			return models.Account{}, err
		}
	}
	acct.PasswordHash = hash
	s.Record(ctx, settings, acct.ID, models.ActivityProfile, "Password reset", nil)
	s.notifier.PasswordChanged(ctx, settings, acct)
	return acct, nil
}

// ChangePassword is used by admins resetting a user's password directly.
func (s *Service) ChangePassword(ctx context.Context, id int64, password string) error {
	settings, err := s.store.GetMessSettings(ctx)
	if err != nil {
		return err
	}
	if err := auth.PolicyFromSettings(settings).Validate(password); err != nil {
		return weakPassword(err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, id, hash)
}

func weakPassword(err error) error {
	return dto.FieldErrors{"password": err.Error()}
}
