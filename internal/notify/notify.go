// Package notify delivers verification codes to users. Delivery is an
// external collaborator to the auth flow: the default sender only logs
// the code to the console, a real SMTP sender is available when mail
// settings are configured.
package notify

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// CodeSender delivers a one-time verification code to an email address.
type CodeSender interface {
	SendCode(email, code string) error
}

// LogSender writes the code to the log instead of sending it anywhere.
type LogSender struct {
	Logger zerolog.Logger
}

func (s LogSender) SendCode(email, code string) error {
	s.Logger.Info().
		Str("email", email).
		Str("code", code).
		Msg("verification code issued")
	return nil
}

// SMTPSender emails the code via an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) SendCode(email, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your verification code")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your verification code is %s. It expires in 30 minutes.", code))

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}
