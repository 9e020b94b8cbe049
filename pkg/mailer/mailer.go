// Package mailer delivers verification and password-reset mail over SMTP.
package mailer

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"mercadito-backend/pkg/config"
)

type Mailer struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

func New(cfg *config.MailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

func (m *Mailer) SendVerificationCode(email, code string) error {
	return m.send(email, "Verification code",
		fmt.Sprintf("Your verification code is: %s", code))
}

func (m *Mailer) SendResetToken(email, token string) error {
	return m.send(email, "Password recovery",
		fmt.Sprintf("Your password reset token is: %s", token))
}

func (m *Mailer) send(to, subject, body string) error {
	// With no SMTP host configured the mailer logs the message instead of
	// sending, which keeps local development working without a mail account.
	if m.cfg.Host == "" {
		m.logger.Info("mail delivery disabled, skipping send",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return err
	}
	m.logger.Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
