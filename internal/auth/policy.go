package auth

import (
	"time"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

// Resolution is the role an account acts under, or the absence of one.
type Resolution int

const (
	MissingProfile Resolution = iota
	ResolvedAdmin
	ResolvedMember
)

// ResolveRole derives the acting role from the account's profile.
func ResolveRole(acct models.Account) Resolution {
	if acct.Profile == nil {
		return MissingProfile
	}
	switch acct.Profile.Role {
	case models.RoleAdmin:
		return ResolvedAdmin
	case models.RoleMember:
		return ResolvedMember
	}
	return MissingProfile
}

// Role returns the models.Role for a resolved account.
func (r Resolution) Role() (models.Role, bool) {
	switch r {
	case ResolvedAdmin:
		return models.RoleAdmin, true
	case ResolvedMember:
		return models.RoleMember, true
	}
	return "", false
}

// Portal is the login surface a credential was submitted to.
type Portal string

const (
	PortalMember Portal = "member"
	PortalAdmin  Portal = "admin"
)

// Outcome is what a portal login attempt leads to once credentials are known
// to be correct.
type Outcome int

const (
	Allow Outcome = iota
	RejectInvalidCredentials
	RedirectToMemberPortal
	RejectMissingProfile
	RejectInactive
	RejectLocked
)

// Messages shown for each rejected outcome.
const (
	MsgInvalidCredentials = "Please enter a correct username and password."
	MsgUseMemberPortal    = "This login is for administrators only. Please use the member login."
	MsgMissingProfile     = "Your account is not set up correctly. Please contact the administrator."
	MsgInactive           = "This account is inactive. Please contact the administrator."
	MsgLocked             = "Too many failed login attempts. Please try again later."
)

// Message is the user-facing text for o.
func (o Outcome) Message() string {
	switch o {
	case RejectInvalidCredentials:
		return MsgInvalidCredentials
	case RedirectToMemberPortal:
		return MsgUseMemberPortal
	case RejectMissingProfile:
		return MsgMissingProfile
	case RejectInactive:
		return MsgInactive
	case RejectLocked:
		return MsgLocked
	}
	return ""
}

// PortalDecision is the single login policy for both portals. Admins signing
// in at the member portal are told their credentials are wrong; members at
// the admin portal are sent to their own portal.
func PortalDecision(portal Portal, res Resolution, active bool, lockedUntil *time.Time, now time.Time) Outcome {
	if res == MissingProfile {
		return RejectMissingProfile
	}
	if lockedUntil != nil && now.Before(*lockedUntil) {
		return RejectLocked
	}
	switch {
	case portal == PortalMember && res == ResolvedAdmin:
		return RejectInvalidCredentials
	case portal == PortalAdmin && res == ResolvedMember:
		return RedirectToMemberPortal
	}
	if !active {
		return RejectInactive
	}
	return Allow
}

// DecideFor applies PortalDecision to an account.
func DecideFor(portal Portal, acct models.Account, now time.Time) Outcome {
	res := ResolveRole(acct)
	if res == MissingProfile {
		return RejectMissingProfile
	}
	return PortalDecision(portal, res, acct.Profile.Active, acct.Profile.LockedUntil, now)
}
