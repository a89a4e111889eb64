package notification

import (
	"context"
	"fmt"

	"github.com/delordemm1/dealer-dashboard/internal/notification/templates"
)

// LoginMailer renders the login email and hands it to the notification service.
type LoginMailer struct {
	engine  *templates.Engine
	service Service
}

func NewLoginMailer(engine *templates.Engine, service Service) *LoginMailer {
	return &LoginMailer{engine: engine, service: service}
}

// SendLoginCode delivers the code and the magic link in a single email.
func (m *LoginMailer) SendLoginCode(ctx context.Context, to string, data templates.LoginCodeData) error {
	out, err := templates.Render(ctx, m.engine, templates.LoginCode, data)
	if err != nil {
		return fmt.Errorf("render login email: %w", err)
	}
	return m.service.Send(ctx, Message{
		To:      to,
		Subject: out.Subject,
		Text:    out.EmailText,
		HTML:    out.EmailHTML,
	})
}
