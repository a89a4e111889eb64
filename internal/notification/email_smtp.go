package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"
)

// SMTPConfig is the connection data for the outbound mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// smtpEmailSender is the concrete implementation for sending emails via SMTP.
type smtpEmailSender struct {
	client *mail.SMTPServer
	from   string
	log    *slog.Logger
}

// NewSMTPEmailSender creates a new sender that uses an SMTP server.
func NewSMTPEmailSender(cfg SMTPConfig, log *slog.Logger) EmailSender {
	server := mail.NewSMTPClient()
	server.Host = cfg.Host
	server.Port = cfg.Port
	server.Username = cfg.Username
	server.Password = cfg.Password
	server.Encryption = mail.EncryptionSTARTTLS
	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	return &smtpEmailSender{
		client: server,
		from:   cfg.From,
		log:    log,
	}
}

func (s *smtpEmailSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	smtpClient, err := s.client.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer smtpClient.Close()

	email := buildMessage(s.from, msg)
	if email.Error != nil {
		return fmt.Errorf("failed to build email: %w", email.Error)
	}
	if err = email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Info("email sent via smtp", "to", msg.To)
	return nil
}

func buildMessage(from string, msg Message) *mail.Email {
	email := mail.NewMSG()
	email.SetFrom(from).AddTo(msg.To).SetSubject(msg.Subject)
	switch {
	case msg.Text != "" && msg.HTML != "":
		email.SetBody(mail.TextPlain, msg.Text)
		email.AddAlternative(mail.TextHTML, msg.HTML)
	case msg.HTML != "":
		email.SetBody(mail.TextHTML, msg.HTML)
	default:
		email.SetBody(mail.TextPlain, msg.Text)
	}
	return email
}
