// Package mailer delivers verification codes by email.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"net/textproto"

	"github.com/jordan-wright/email"
	"github.com/voicebridge/apiv1/config"
)

type Sender interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
}

// SMTPSender sends through an SMTP relay.
type SMTPSender struct {
	log  *slog.Logger
	cfg  config.MailConfig
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewSMTPSender(log *slog.Logger, cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		log: log,
		cfg: cfg,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

func (s *SMTPSender) SendVerificationCode(ctx context.Context, to, name, code string) error {
	const op = "mailer.SendVerificationCode"

	e := &email.Email{
		To:      []string{to},
		From:    s.cfg.From,
		Subject: "Your VoiceBridge verification code",
		Text:    []byte(verificationText(name, code)),
		HTML:    []byte(verificationHTML(name, code)),
		Headers: textproto.MIMEHeader{},
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(e, addr, auth); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.InfoContext(ctx, "verification email sent", slog.String("op", op), slog.String("to", to))
	return nil
}

// LogSender is used when no SMTP host is configured; the code ends up in the
// server log so local development still works.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendVerificationCode(ctx context.Context, to, _ string, code string) error {
	s.log.WarnContext(ctx, "smtp not configured, verification code logged instead",
		slog.String("op", "mailer.LogSender"),
		slog.String("to", to),
		slog.String("code", code),
	)
	return nil
}

func New(log *slog.Logger, cfg config.MailConfig) Sender {
	if cfg.Host == "" {
		return NewLogSender(log)
	}
	return NewSMTPSender(log, cfg)
}

func verificationText(name, code string) string {
	return fmt.Sprintf("Hi %s,\n\nYour VoiceBridge verification code is %s.\nIt expires soon, so enter it in the app right away.\n", greetingName(name), code)
}

func verificationHTML(name, code string) string {
	return fmt.Sprintf("<p>Hi %s,</p><p>Your VoiceBridge verification code is <strong style=\"font-size:1.5em\">%s</strong>.</p><p>It expires soon, so enter it in the app right away.</p>", greetingName(name), code)
}

func greetingName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
