package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/metrics"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

// Notification kinds, used as the metrics label.
const (
	KindWelcome          = "welcome"
	KindPasswordReset    = "password_reset"
	KindAccountNotFound  = "account_not_found"
	KindPasswordChanged  = "password_changed"
	KindPaymentReminder  = "payment_reminder"
	KindPaymentSubmitted = "payment_submitted"
	KindMemberMessage    = "member_message"
)

// DefaultSendTimeout caps each delivery attempt on any channel.
const DefaultSendTimeout = 30 * time.Second

// Notifier delivers best-effort notifications. Failures are logged and
// counted, never returned, so workflows proceed regardless.
type Notifier struct {
	mailer   Mailer
	alerter  Alerter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	branding Branding
	timeout  time.Duration
}

// NewNotifier wires the channels. A nil alerter disables Telegram alerts.
func NewNotifier(mailer Mailer, alerter Alerter, m *metrics.Metrics, logger *slog.Logger, baseURL string) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if alerter == nil {
		alerter = LogAlerter{Logger: logger}
	}
	return &Notifier{
		mailer:   mailer,
		alerter:  alerter,
		metrics:  m,
		logger:   logger,
		branding: Branding{BaseURL: baseURL},
		timeout:  DefaultSendTimeout,
	}
}

// BaseURL is the public origin links in emails point at.
func (n *Notifier) BaseURL() string {
	return strings.TrimRight(n.branding.BaseURL, "/")
}

func (n *Notifier) brand(s models.MessSettings) Branding {
	b := n.branding
	b.Name = s.MessName
	b.Signature = s.EmailSignature
	return b
}

func (n *Notifier) deliver(ctx context.Context, kind string, build func() (Email, error)) bool {
	msg, err := build()
	if err == nil && strings.TrimSpace(msg.To) == "" {
		err = ErrNoRecipient
	}
	if err == nil {
		sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
		err = n.mailer.Send(sendCtx, msg)
		cancel()
	}
	if err != nil {
		n.logger.Warn("notify: email failed", "kind", kind, "to", msg.To, "error", err)
		n.metrics.ObserveNotification("email", kind, metrics.OutcomeFailed)
		return false
	}
	n.metrics.ObserveNotification("email", kind, metrics.OutcomeSent)
	return true
}

func (n *Notifier) alert(ctx context.Context, kind, text string) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if err := n.alerter.Alert(ctx, text); err != nil {
		n.logger.Warn("notify: alert failed", "kind", kind, "error", err)
		n.metrics.ObserveNotification("telegram", kind, metrics.OutcomeFailed)
		return
	}
	n.metrics.ObserveNotification("telegram", kind, metrics.OutcomeSent)
}

// Welcome greets a new account.
func (n *Notifier) Welcome(ctx context.Context, s models.MessSettings, acct models.Account) bool {
	return n.deliver(ctx, KindWelcome, func() (Email, error) {
		return WelcomeEmail(n.brand(s), acct)
	})
}

// PasswordReset mails the reset link.
func (n *Notifier) PasswordReset(ctx context.Context, s models.MessSettings, acct models.Account, link, validFor string) bool {
	return n.deliver(ctx, KindPasswordReset, func() (Email, error) {
		return PasswordResetEmail(n.brand(s), acct, link, validFor)
	})
}

// AccountNotFound tells an unknown address how to get an account.
func (n *Notifier) AccountNotFound(ctx context.Context, s models.MessSettings, email string) bool {
	return n.deliver(ctx, KindAccountNotFound, func() (Email, error) {
		return AccountNotFoundEmail(n.brand(s), email)
	})
}

// PasswordChanged confirms a completed reset.
func (n *Notifier) PasswordChanged(ctx context.Context, s models.MessSettings, acct models.Account) bool {
	return n.deliver(ctx, KindPasswordChanged, func() (Email, error) {
		return PasswordChangedEmail(n.brand(s), acct)
	})
}

// PaymentReminder emails the reminder snapshot when the member wants reminders.
func (n *Notifier) PaymentReminder(ctx context.Context, s models.MessSettings, prefs models.UserSettings, acct models.Account, period, text string) bool {
	if !prefs.EmailPaymentReminders {
		n.metrics.ObserveNotification("email", KindPaymentReminder, metrics.OutcomeSkipped)
		return false
	}
	return n.deliver(ctx, KindPaymentReminder, func() (Email, error) {
		return ReminderEmail(n.brand(s), acct, period, text)
	})
}

// PaymentSubmitted alerts admins about a member's submission.
func (n *Notifier) PaymentSubmitted(ctx context.Context, acct models.Account, p models.Payment) {
	text := fmt.Sprintf("Payment submitted by %s (%s) for %s: ₹%s, transaction %s",
		acct.FullName(), acct.Username, p.Period, p.Amount.StringFixed(2), p.TransactionID)
	n.alert(ctx, KindPaymentSubmitted, text)
}

// MemberMessage alerts admins about a new message.
func (n *Notifier) MemberMessage(ctx context.Context, acct models.Account, m models.Message) {
	text := fmt.Sprintf("New message from %s (%s): %s", acct.FullName(), acct.Username, m.Subject)
	n.alert(ctx, KindMemberMessage, text)
}
