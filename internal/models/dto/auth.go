package dto

import (
	"net/mail"
	"strings"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// Login returns the identifier, accepting the legacy "username" field.
func (r LoginRequest) Login() string {
	if s := strings.TrimSpace(r.Identifier); s != "" {
		return s
	}
	return strings.TrimSpace(r.Username)
}

type LoginResponse struct {
	Token    string         `json:"token"`
	Account  models.Account `json:"account"`
	Redirect string         `json:"redirect"`
}

type SignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	RoomNo    string `json:"room_no"`
	Password  string `json:"password"`
}

func (r SignupRequest) Validate() error {
	errs := FieldErrors{}
	validateIdentity(errs, r.Username, r.Email)
	required(errs, "password", r.Password)
	maxLen(errs, "first_name", r.FirstName, 150)
	maxLen(errs, "last_name", r.LastName, 150)
	maxLen(errs, "phone", r.Phone, 15)
	maxLen(errs, "room_no", r.RoomNo, 20)
	return errs.Err()
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

func (r PasswordResetRequest) Validate() error {
	errs := FieldErrors{}
	validateEmail(errs, r.Email)
	return errs.Err()
}

type PasswordResetConfirm struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r PasswordResetConfirm) Validate() error {
	errs := FieldErrors{}
	required(errs, "token", r.Token)
	required(errs, "password", r.Password)
	return errs.Err()
}

func validateIdentity(errs FieldErrors, username, email string) {
	required(errs, "username", username)
	maxLen(errs, "username", username, 150)
	if strings.ContainsAny(username, " \t@") {
		errs.Add("username", "may not contain spaces or @")
	}
	validateEmail(errs, email)
}

func validateEmail(errs FieldErrors, email string) {
	required(errs, "email", email)
	if strings.TrimSpace(email) == "" {
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "enter a valid email address")
	}
}
