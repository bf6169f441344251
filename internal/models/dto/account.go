package dto

import "github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"

// CreateAccountRequest is the admin form for adding a user of any role.
type CreateAccountRequest struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Phone     string      `json:"phone"`
	RoomNo    string      `json:"room_no"`
	Role      models.Role `json:"role"`
	Password  string      `json:"password"`
}

func (r CreateAccountRequest) Validate() error {
	errs := FieldErrors{}
	validateIdentity(errs, r.Username, r.Email)
	required(errs, "first_name", r.FirstName)
	required(errs, "last_name", r.LastName)
	required(errs, "phone", r.Phone)
	required(errs, "room_no", r.RoomNo)
	required(errs, "password", r.Password)
	maxLen(errs, "phone", r.Phone, 15)
	maxLen(errs, "room_no", r.RoomNo, 20)
	if r.Role != "" && !r.Role.Valid() {
		errs.Add("role", "unknown role")
	}
	return errs.Err()
}

// UpdateAccountRequest is the admin edit form.
type UpdateAccountRequest struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Phone     string      `json:"phone"`
	RoomNo    string      `json:"room_no"`
	Role      models.Role `json:"role"`
	Active    *bool       `json:"is_active"`
}

func (r UpdateAccountRequest) Validate() error {
	errs := FieldErrors{}
	validateIdentity(errs, r.Username, r.Email)
	required(errs, "first_name", r.FirstName)
	required(errs, "last_name", r.LastName)
	maxLen(errs, "phone", r.Phone, 15)
	maxLen(errs, "room_no", r.RoomNo, 20)
	if !r.Role.Valid() {
		errs.Add("role", "unknown role")
	}
	return errs.Err()
}

// Apply copies the form onto an existing account and its profile.
func (r UpdateAccountRequest) Apply(acct *models.Account) {
	acct.Username = r.Username
	acct.Email = r.Email
	acct.FirstName = r.FirstName
	acct.LastName = r.LastName
	if acct.Profile == nil {
		acct.Profile = &models.Profile{AccountID: acct.ID, Active: true}
	}
	acct.Profile.Phone = r.Phone
	acct.Profile.RoomNo = r.RoomNo
	acct.Profile.Role = r.Role
	if r.Active != nil {
		acct.Profile.Active = *r.Active
	}
}

// ProfileSettingsRequest is what members may change about themselves.
type ProfileSettingsRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	RoomNo    string `json:"room_no"`
}

func (r ProfileSettingsRequest) Validate() error {
	errs := FieldErrors{}
	required(errs, "first_name", r.FirstName)
	required(errs, "last_name", r.LastName)
	validateEmail(errs, r.Email)
	maxLen(errs, "phone", r.Phone, 15)
	maxLen(errs, "room_no", r.RoomNo, 20)
	return errs.Err()
}

type ThemeRequest struct {
	DarkMode bool `json:"dark_mode"`
}
