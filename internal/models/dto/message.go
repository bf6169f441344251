package dto

import "strings"

type MessageRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"message"`
}

func (r MessageRequest) Validate() error {
	errs := FieldErrors{}
	required(errs, "subject", r.Subject)
	maxLen(errs, "subject", r.Subject, 200)
	required(errs, "message", r.Body)
	return errs.Err()
}

type AdminReplyRequest struct {
	AdminReply string `json:"admin_reply"`
}

func (r AdminReplyRequest) Validate() error {
	errs := FieldErrors{}
	required(errs, "admin_reply", r.AdminReply)
	return errs.Err()
}

type UserReplyRequest struct {
	UserReply string `json:"user_reply"`
}

func (r UserReplyRequest) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(r.UserReply) == "" {
		errs.Add("user_reply", "Reply cannot be empty.")
	}
	return errs.Err()
}
