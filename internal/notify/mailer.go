package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	mail "github.com/wneessen/go-mail"
)

// ErrNoRecipient is returned when an email has nowhere to go.
var ErrNoRecipient = errors.New("email has no recipient")

// DefaultSMTPTimeout bounds the dial and the whole SMTP conversation.
const DefaultSMTPTimeout = 15 * time.Second

// Email is a rendered multipart/alternative message.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers emails.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// SMTPMailer sends through an SMTP relay, upgrading with STARTTLS when the
// relay offers it and using PLAIN auth when credentials are set. Port 465
// speaks implicit TLS.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
}

// NewSMTPMailer builds a mailer for host:port.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		timeout:  DefaultSMTPTimeout,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Email) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	out, err := NewMessage(m.from, msg)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(m.host, m.options()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTimeout(m.timeout),
		mail.WithDialContextFunc(m.dial),
	}
	if m.port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}
	return opts
}

// dial puts a deadline on the connection itself so a relay that accepts
// and then stays silent cannot hold the send open.
func (m *SMTPMailer) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	conn, err := (&net.Dialer{Timeout: m.timeout}).DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if err := conn.SetDeadline(time.Now().Add(m.timeout)); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// NewMessage renders msg with text and HTML alternatives.
func NewMessage(from string, msg Email) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(from); err != nil {
		return nil, fmt.Errorf("parse sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("parse recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetDate()
	switch {
	case msg.Text != "" && msg.HTML != "":
		out.SetBodyString(mail.TypeTextPlain, msg.Text)
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		out.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		out.SetBodyString(mail.TypeTextPlain, msg.Text)
	}
	return out, nil
}

// LogMailer only logs what would have been sent. It is used when no SMTP host is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(_ context.Context, msg Email) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("email (not sent, smtp disabled)", "to", msg.To, "subject", msg.Subject)
	return nil
}

// RecordingMailer keeps every email in memory. Err, when set, fails every send.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []Email
	Err  error
}

func (m *RecordingMailer) Send(_ context.Context, msg Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the delivered emails.
func (m *RecordingMailer) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Email(nil), m.sent...)
}

// Last returns the most recent email sent to addr.
func (m *RecordingMailer) Last(addr string) (Email, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if strings.EqualFold(m.sent[i].To, addr) {
			return m.sent[i], true
		}
	}
	return Email{}, false
}
