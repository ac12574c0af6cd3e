package smtp

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/greenunimind/api/internal/config"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	appName  string
	username string
	password string
}

// NewMailer returns the SMTP-backed Mailer, or a log-only Mailer when SMTP is
// not configured so local development never blocks on mail delivery.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		slog.Warn("SMTP not configured, verification codes will only be logged")
		return &logMailer{}
	}
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		appName:  cfg.AppName,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendEmail(to, subject, body string) error {
	msg := fmt.Sprintf("From: %q <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.appName, m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

// logMailer is the dev implementation: it logs instead of sending and always
// succeeds.
type logMailer struct{}

func (l *logMailer) SendEmail(to, subject, body string) error {
	slog.Info("email not sent (SMTP disabled)", "to", to, "subject", subject, "body", body)
	return nil
}
