package notify

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/metrics"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/pkg/logging"
)

var alice = models.Account{ID: 7, Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Rao"}

func TestReminderText(t *testing.T) {
	p := models.Payment{Period: "2025-06", Amount: decimal.RequireFromString("3000"), Status: models.PaymentPending}
	s := models.DefaultMessSettings()

	text := ReminderText(alice, p, s)
	assert.True(t, strings.HasPrefix(text, "Dear Alice,\n\n"))
	assert.Contains(t, text, "your mess payment for 2025-06 is currently pending.")
	assert.Contains(t, text, "Payment Amount: ₹3000.00\nStatus: Pending")
	assert.Contains(t, text, "UPI ID: Not configured")
	assert.True(t, strings.HasSuffix(text, "- Mess Management"))

	s.AdminUPIID = "mess@upi"
	p.Status = models.PaymentPartial
	text = ReminderText(alice, p, s)
	assert.Contains(t, text, "UPI ID: mess@upi")
	assert.Contains(t, text, "is currently partial.")
	assert.Equal(t, "Payment Reminder - 2025-06", ReminderSubject("2025-06"))
}

func TestTemplatesEscapeMarkup(t *testing.T) {
	acct := alice
	acct.FirstName = "<script>x</script>"
	msg, err := WelcomeEmail(Branding{BaseURL: "https://mess.example"}, acct)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Contains(t, msg.Text, "https://mess.example/accounts/login")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "Mess Management System")
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage("Mess <noreply@mess.example>", Email{
		To: "alice@example.com", Subject: "Payment Reminder - 2025-06", Text: "plain", HTML: "<p>rich</p>",
	})
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	s := strings.ToLower(buf.String())
	assert.Contains(t, s, "multipart/alternative")
	assert.Contains(t, s, "text/plain; charset=utf-8")
	assert.Contains(t, s, "text/html; charset=utf-8")
	assert.Contains(t, s, "alice@example.com")
	assert.Contains(t, s, "payment reminder - 2025-06")

	_, err = NewMessage("not an address", Email{To: "alice@example.com"})
	assert.Error(t, err)
}

func TestSMTPSendGivesUpOnSilentRelay(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range conns {
			conn.Close()
		}
	})
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	m := NewSMTPMailer("127.0.0.1", addr.Port, "", "", "Mess <noreply@mess.example>")
	m.timeout = 200 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		done <- m.Send(context.Background(), Email{To: "alice@example.com", Subject: "hi", Text: "hi"})
	}()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("send still blocked on a relay that never greets")
	}
}

func TestNotifierIsBestEffort(t *testing.T) {
	m := metrics.New()
	mailer := &RecordingMailer{Err: errors.New("smtp down")}
	n := NewNotifier(mailer, nil, m, logging.Discard(), "http://localhost:8080")

	ok := n.Welcome(context.Background(), models.DefaultMessSettings(), alice)
	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(counter(m, "email", KindWelcome, metrics.OutcomeFailed)))

	mailer.Err = nil
	assert.True(t, n.PasswordChanged(context.Background(), models.DefaultMessSettings(), alice))
	last, found := mailer.Last("alice@example.com")
	require.True(t, found)
	assert.Contains(t, last.Subject, "Password Reset Successful")
}

type stalledMailer struct{}

func (stalledMailer) Send(ctx context.Context, _ Email) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestNotifierBoundsEachSend(t *testing.T) {
	m := metrics.New()
	n := NewNotifier(stalledMailer{}, nil, m, logging.Discard(), "http://localhost:8080")
	n.timeout = 50 * time.Millisecond

	start := time.Now()
	assert.False(t, n.Welcome(context.Background(), models.DefaultMessSettings(), alice))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(counter(m, "email", KindWelcome, metrics.OutcomeFailed)))
}

func TestPaymentReminderHonoursPreference(t *testing.T) {
	mailer := &RecordingMailer{}
	n := NewNotifier(mailer, nil, nil, logging.Discard(), "")
	prefs := models.DefaultUserSettings(alice.ID)
	prefs.EmailPaymentReminders = false

	assert.False(t, n.PaymentReminder(context.Background(), models.DefaultMessSettings(), prefs, alice, "2025-06", "body"))
	assert.Empty(t, mailer.Sent())

	prefs.EmailPaymentReminders = true
	assert.True(t, n.PaymentReminder(context.Background(), models.DefaultMessSettings(), prefs, alice, "2025-06", "body"))
	require.Len(t, mailer.Sent(), 1)
	assert.Equal(t, "Payment Reminder - 2025-06", mailer.Sent()[0].Subject)
}

func TestAlertsGoThroughAlerter(t *testing.T) {
	alerter := &RecordingAlerter{}
	n := NewNotifier(&RecordingMailer{}, alerter, nil, logging.Discard(), "")
	n.PaymentSubmitted(context.Background(), alice, models.Payment{Period: "2025-06", Amount: decimal.RequireFromString("3000"), TransactionID: "UPI123"})
	n.MemberMessage(context.Background(), alice, models.Message{Subject: "Dinner"})

	alerts := alerter.Alerts()
	require.Len(t, alerts, 2)
	assert.Contains(t, alerts[0], "UPI123")
	assert.Contains(t, alerts[1], "Dinner")

	alerter.Err = errors.New("telegram down")
	assert.NotPanics(t, func() { n.MemberMessage(context.Background(), alice, models.Message{}) })
}

func TestLogMailerRequiresRecipient(t *testing.T) {
	assert.ErrorIs(t, LogMailer{Logger: logging.Discard()}.Send(context.Background(), Email{}), ErrNoRecipient)
}

func counter(m *metrics.Metrics, channel, kind, outcome string) prometheus.Counter {
	return m.Notifications().WithLabelValues(channel, kind, outcome)
}
