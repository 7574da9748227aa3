package controllers

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"Gin_postgres_redis_library_api/config"

	"github.com/rs/zerolog"
)

type Mailer interface {
	SendPasswordReset(to, link string, ttl time.Duration) error
}

// SMTPMailer sends through the configured relay. Without SMTP settings it
// only logs the link, which is enough for local development.
type SMTPMailer struct {
	conf    config.SMTP
	appName string
	log     zerolog.Logger
}

func NewSMTPMailer(cfg config.Config, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{conf: cfg.SMTP, appName: cfg.AppName, log: log}
}

func (m *SMTPMailer) SendPasswordReset(to, link string, ttl time.Duration) error {
	if !m.conf.Enabled() {
		m.log.Info().Str("to", to).Str("link", link).Dur("ttl", ttl).Msg("[DEV] password reset link")
		return nil
	}

	fromAddr := m.conf.From
	if fromAddr == "" {
		fromAddr = m.conf.Username
	}

	subject := fmt.Sprintf("%s password reset", m.appName)
	htmlBody := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>Hello,</p>
  <p>Someone asked to reset the password of your <b>%s</b> account. Use the link below to choose a new one:</p>
  <p><a href="%s">%s</a></p>
  <p>The link expires in %s and works once.</p>
  <hr/>
  <p style="color:#666">If you did not ask for this, you can ignore this email.</p>
</div>
`, m.appName, link, link, ttl)

	msg := buildMIMEWithFromName(m.appName, fromAddr, to, subject, htmlBody)

	auth := smtp.PlainAuth("", m.conf.Username, m.conf.Password, m.conf.Host)
	addr := m.conf.Host + ":" + m.conf.Port
	return smtp.SendMail(addr, auth, fromAddr, []string{to}, []byte(msg))
}

func buildMIMEWithFromName(fromName, fromAddr, to, subject, html string) string {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", fromName, fromAddr),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + html
}
