package notification

import (
	"context"
	"errors"
	"log/slog"
)

// Message is a single outbound email with plain-text and HTML parts.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// EmailSender delivers one message. Implemented by the SMTP sender.
type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

// Service is the main interface for the notification system.
type Service interface {
	Send(ctx context.Context, msg Message) error
}

type service struct {
	log         *slog.Logger
	emailSender EmailSender
}

// NewService creates a new notification service.
func NewService(log *slog.Logger, emailSender EmailSender) Service {
	return &service{
		log:         log,
		emailSender: emailSender,
	}
}

// Send delivers msg synchronously so the caller can observe delivery failures.
func (s *service) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("notification: recipient is empty")
	}
	if msg.HTML == "" && msg.Text == "" {
		return errors.New("notification: message has no body")
	}

	s.log.Info("dispatching email notification", "recipient", msg.To)
	if err := s.emailSender.Send(ctx, msg); err != nil {
		s.log.Error("failed to send notification", "recipient", msg.To, "error", err)
		return err
	}
	return nil
}
