package models

import (
	"strings"
	"time"
)

// Account captures the identity of someone who can sign in.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Profile      *Profile  `json:"profile,omitempty"`
}

// FullName joins first and last name, falling back to the username.
func (a Account) FullName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Username
	}
	return name
}

// GreetingName is the name used at the top of emails and reminders.
func (a Account) GreetingName() string {
	if a.FirstName != "" {
		return a.FirstName
	}
	return a.Username
}

// Profile holds the role and contact data attached to every account.
type Profile struct {
	AccountID    int64      `json:"account_id"`
	Role         Role       `json:"role"`
	Phone        string     `json:"phone"`
	RoomNo       string     `json:"room_no"`
	AvatarPath   string     `json:"avatar_path,omitempty"`
	DarkMode     bool       `json:"dark_mode"`
	Active       bool       `json:"is_active"`
	FailedLogins int        `json:"-"`
	LockedUntil  *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Locked reports whether the lockout window is still open at now.
func (p Profile) Locked(now time.Time) bool {
	return p.LockedUntil != nil && now.Before(*p.LockedUntil)
}
