package infra

import (
	"fmt"
	"net/smtp"

	"haccptrace/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for recall alerts.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	from     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:     cfg.SMTPUser,
	}
}

// Configured reports whether an SMTP host was set.
func (m *Mailer) Configured() bool { return m.host != "" }

// SendRecallAlert mails a plain-text recall notice.
func (m *Mailer) SendRecallAlert(to []string, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("mailer: SMTP_HOST not set")
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send recall alert: %w", err)
	}
	return nil
}
