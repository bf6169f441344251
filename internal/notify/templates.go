package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

// Raw HTML in markdown input is escaped since WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="margin:0;padding:0;font-family:Arial,Helvetica,sans-serif;background-color:#f4f7fa;">
<table role="presentation" style="width:100%;border-collapse:collapse;"><tr><td align="center" style="padding:40px 0;">
<table role="presentation" style="width:600px;max-width:100%;background-color:#ffffff;border-radius:10px;">
<tr><td style="padding:32px 40px;background:#667eea;border-radius:10px 10px 0 0;color:#ffffff;text-align:center;">
<h1 style="margin:0;font-size:26px;">{{.Brand}}</h1></td></tr>
<tr><td style="padding:40px;color:#333333;line-height:1.6;">{{.Body}}</td></tr>
<tr><td style="padding:20px 40px;color:#888888;font-size:12px;text-align:center;">{{.Footer}}</td></tr>
</table></td></tr></table>
</body>
</html>`))

// Branding is the mess identity stamped on every email.
type Branding struct {
	Name      string
	Signature string
	BaseURL   string
}

func (b Branding) name() string {
	if b.Name == "" {
		return "Mess Management System"
	}
	return b.Name
}

func (b Branding) signOff() string {
	if strings.TrimSpace(b.Signature) != "" {
		return b.Signature
	}
	return "Best regards,\nMess Management Team"
}

func (b Branding) url(path string) string {
	return strings.TrimRight(b.BaseURL, "/") + path
}

// render produces both alternatives from one markdown source.
func render(b Branding, to, subject, markdown string) (Email, error) {
	var body bytes.Buffer
	if err := mdRenderer.Convert([]byte(markdown), &body); err != nil {
		return Email{}, fmt.Errorf("render %q: %w", subject, err)
	}
	var page bytes.Buffer
	err := layout.Execute(&page, map[string]any{
		"Title":  subject,
		"Brand":  b.name(),
		"Body":   template.HTML(body.String()),
		"Footer": "This is an automated message from " + b.name() + ".",
	})
	if err != nil {
		return Email{}, fmt.Errorf("layout %q: %w", subject, err)
	}
	return Email{To: to, Subject: subject, Text: markdown, HTML: page.String()}, nil
}

// WelcomeEmail greets a newly created account.
func WelcomeEmail(b Branding, acct models.Account) (Email, error) {
	md := fmt.Sprintf(`Dear %s,

Congratulations! Your account has been successfully created.

Your Account Details:

- Name: %s
- Username: %s
- Email: %s

Login here: %s

%s`, acct.GreetingName(), acct.FullName(), acct.Username, acct.Email,
		b.url(models.RoleMember.LoginPath()), b.signOff())
	return render(b, acct.Email, "Welcome to "+b.name()+"!", md)
}

// PasswordResetEmail carries the reset link.
func PasswordResetEmail(b Branding, acct models.Account, link string, validFor string) (Email, error) {
	md := fmt.Sprintf(`Hi %s,

We received a request to reset your password for your Mess Management account. Open the link below to create a new password:

%s

This link will expire in %s. If you didn't request this password reset, you can safely ignore this email.

%s`, acct.GreetingName(), link, validFor, b.signOff())
	return render(b, acct.Email, "Password Reset Request - "+b.name(), md)
}

// AccountNotFoundEmail answers a reset request for an unknown address.
func AccountNotFoundEmail(b Branding, email string) (Email, error) {
	md := fmt.Sprintf(`Hello,

We received a password reset request for this email address (%s).

However, we couldn't find an account associated with this email in our Mess Management System.

To use our system, please:

1. Contact the mess admin to register your account
2. Or ask the admin to add your email to the system
3. Once registered, you can use the password reset feature

If you believe this is an error or need assistance, please contact the mess administrator.

%s`, email, b.signOff())
	return render(b, email, "Account Not Found - "+b.name(), md)
}

// PasswordChangedEmail confirms a completed reset.
func PasswordChangedEmail(b Branding, acct models.Account) (Email, error) {
	md := fmt.Sprintf(`Hi %s,

Your password has been successfully reset.

You can now login to your account using your new password.

If you did not perform this password reset, please contact us immediately.

Login here: %s

%s`, acct.GreetingName(), b.url(models.RoleMember.LoginPath()), b.signOff())
	return render(b, acct.Email, "Password Reset Successful - "+b.name(), md)
}

// ReminderSubject is shared by the in-app message and the email.
func ReminderSubject(period string) string {
	return "Payment Reminder - " + period
}

// ReminderText is the frozen snapshot stored in the reminder message.
func ReminderText(acct models.Account, p models.Payment, s models.MessSettings) string {
	return fmt.Sprintf(`Dear %s,

This is a friendly reminder that your mess payment for %s is currently %s.

Payment Amount: ₹%s
Status: %s

Please pay your bill on time to avoid any inconvenience.

Payment Details:
UPI ID: %s

Thank you for your cooperation!

- Mess Management`, acct.GreetingName(), p.Period, strings.ToLower(p.Status.Label()),
		p.Amount.StringFixed(2), p.Status.Label(), s.UPIOrPlaceholder())
}

// ReminderEmail wraps a reminder snapshot for delivery.
func ReminderEmail(b Branding, acct models.Account, period, text string) (Email, error) {
	return render(b, acct.Email, ReminderSubject(period), text)
}
