package notify

import (
	"crypto/tls"
	"fmt"
	"net/url"

	"gopkg.in/gomail.v2"

	"github.com/iliyamo/parkseva/internal/config"
	"github.com/iliyamo/parkseva/internal/logger"
)

// Mailer sends password-reset links over SMTP.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	linkBase string
}

// NewMailer builds a mailer from the notification config.
func NewMailer(cfg config.NotifyConfig) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
		linkBase: cfg.ResetLinkBase,
	}
}

func (m *Mailer) Configured() bool { return m.host != "" }

// ResetLink is the URL embedded in the mail.
func (m *Mailer) ResetLink(token string) string {
	return m.linkBase + "?token=" + url.QueryEscape(token)
}

// SendPasswordReset mails the reset link for token to the address.
func (m *Mailer) SendPasswordReset(to, token string) error {
	if !m.Configured() {
		return fmt.Errorf("mail: %w", ErrNotConfigured)
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Reset your ParkSeva password")
	msg.SetBody("text/plain", fmt.Sprintf(
		"We received a request to reset your ParkSeva password.\n\nOpen this link to choose a new one:\n%s\n\nIf you did not ask for this, ignore this email.\n",
		m.ResetLink(token)))

	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	d.TLSConfig = &tls.Config{ServerName: m.host}
	if err := d.DialAndSend(msg); err != nil {
		logger.ErrorLogger.Errorf("mail: password reset to %s failed: %v", to, err)
		return fmt.Errorf("mail: %w", err)
	}
	logger.InfoLogger.Infof("mail: password reset sent to %s", to)
	return nil
}
