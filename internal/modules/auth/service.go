package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/delordemm1/dealer-dashboard/internal/cache"
	"github.com/delordemm1/dealer-dashboard/internal/contextx"
	"github.com/delordemm1/dealer-dashboard/internal/metrics"
	"github.com/delordemm1/dealer-dashboard/internal/modules/account"
	"github.com/delordemm1/dealer-dashboard/internal/notification/templates"
	"github.com/delordemm1/dealer-dashboard/internal/session"
	"github.com/delordemm1/dealer-dashboard/internal/validation"
)

// Mailer delivers the login email carrying both the code and the magic link.
type Mailer interface {
	SendLoginCode(ctx context.Context, to string, data templates.LoginCodeData) error
}

// Service runs the passwordless login flows.
type Service interface {
	RequestCode(ctx context.Context, in RequestCodeInput) (*RequestCodeResult, error)
	VerifyCode(ctx context.Context, in VerifyCodeInput) (*SessionResult, error)
	VerifyMagicLink(ctx context.Context, token string) (*SessionResult, error)
	// Wait blocks until queued login emails have been handled.
	Wait()
}

// RequestCodeInput starts a login (FullName empty) or a signup.
type RequestCodeInput struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName"`
}

type RequestCodeResult struct {
	Message string
	// Dev is set when delivery was skipped in dev mode.
	Dev bool
}

type VerifyCodeInput struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"otp" validate:"required,len=6,numeric"`
	FullName string `json:"fullName"`
}

// SessionResult is a freshly minted session for Account.
type SessionResult struct {
	Account   *account.Account
	Token     string
	ExpiresAt time.Time
	TTL       time.Duration
}

const (
	flowLogin  = "login"
	flowSignup = "signup"

	methodCode      = "otp"
	methodMagicLink = "magic_link"
)

// Config holds the dependencies for the auth service.
type Config struct {
	Accounts    account.Service
	Credentials *Credentials
	Codec       *session.Codec
	Mailer      Mailer
	Cooldown    cache.Cooldown
	Metrics     *metrics.Auth
	Logger      *slog.Logger

	// BaseURL is the public origin used to build magic-link URLs.
	BaseURL        string
	DevMode        bool
	ResendCooldown time.Duration
	CodeTTL        time.Duration
	MagicLinkTTL   time.Duration
}

// deliveryTimeout bounds a queued lookup, issuance and send.
const deliveryTimeout = 30 * time.Second

type service struct {
	cfg Config
	log *slog.Logger
	wg  sync.WaitGroup
}

func NewService(cfg Config) Service {
	if cfg.Cooldown == nil {
		cfg.Cooldown = cache.NewMemoryCooldown()
	}
	return &service{cfg: cfg, log: cfg.Logger}
}

// RequestCode issues a code and a sibling magic link. Outside dev mode the
// issuance and delivery are queued and the response never reveals whether
// the account exists or the email went out.
func (s *service) RequestCode(ctx context.Context, in RequestCodeInput) (*RequestCodeResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}

	flow := flowLogin
	if in.FullName != "" {
		name, err := account.NormalizeFullName(in.FullName)
		if err != nil {
			return nil, err
		}
		in.FullName = name
		flow = flowSignup
	}

	ok, err := s.cfg.Cooldown.Acquire(ctx, in.Email, s.cfg.ResendCooldown)
	if err != nil {
		s.log.Warn("resend cooldown unavailable", "error", err)
	} else if !ok {
		return nil, ErrResendTooSoon
	}

	if s.cfg.DevMode {
		code, _, err := s.issue(ctx, in, flow)
		if err != nil {
			return nil, err
		}
		if code == nil {
			return &RequestCodeResult{Message: GenericRequestMessage}, nil
		}
		s.log.Info("[dev mode] login code issued", "email", in.Email, "otp", code.Code, "flow", flow)
		return &RequestCodeResult{Message: "OTP generated successfully", Dev: true}, nil
	}

	// The account lookup and the SMTP round trip run after the reply so that
	// response time does not depend on whether the email is registered.
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	s.wg.Go(func() {
		defer cancel()
		s.deliver(bg, in, flow)
	})
	return &RequestCodeResult{Message: GenericRequestMessage}, nil
}

// Wait blocks until every login email queued by RequestCode has been handled.
func (s *service) Wait() {
	s.wg.Wait()
}

func (s *service) deliver(ctx context.Context, in RequestCodeInput, flow string) {
	code, link, err := s.issue(ctx, in, flow)
	if err != nil || code == nil {
		return
	}

	err = s.cfg.Mailer.SendLoginCode(ctx, in.Email, templates.LoginCodeData{
		FullName:            in.FullName,
		Code:                code.Code,
		MagicLinkURL:        s.magicLinkURL(link.Token),
		CodeTTLMinutes:      int(s.cfg.CodeTTL / time.Minute),
		MagicLinkTTLMinutes: int(s.cfg.MagicLinkTTL / time.Minute),
	})
	s.cfg.Metrics.Delivery(err == nil)
	if err != nil {
		s.log.Error("login email delivery failed", "error", err)
	}
}

// issue stores a code and a magic link for in.Email. It returns nil
// credentials when a login names an unknown email. On failure the resend
// window is released so the user can retry at once.
func (s *service) issue(ctx context.Context, in RequestCodeInput, flow string) (*IssuedCode, *IssuedMagicLink, error) {
	if flow == flowLogin {
		if _, err := s.cfg.Accounts.FindByEmail(ctx, in.Email); err != nil {
			if errors.Is(err, account.ErrNotFound) {
				s.log.Info("login code requested for unknown email")
				return nil, nil, nil
			}
			s.log.Error("lookup account failed", "error", err)
			s.releaseCooldown(ctx, in.Email)
			return nil, nil, err
		}
	}

	code, err := s.cfg.Credentials.IssueCode(ctx, in.Email)
	if err != nil {
		s.log.Error("issue login code failed", "error", err)
		s.releaseCooldown(ctx, in.Email)
		return nil, nil, ErrInternal.WithCause(err)
	}
	link, err := s.cfg.Credentials.IssueMagicLink(ctx, in.Email)
	if err != nil {
		s.log.Error("issue magic link failed", "error", err)
		s.releaseCooldown(ctx, in.Email)
		return nil, nil, ErrInternal.WithCause(err)
	}
	s.cfg.Metrics.CodeIssued(flow)
	return code, link, nil
}

func (s *service) releaseCooldown(ctx context.Context, email string) {
	if err := s.cfg.Cooldown.Release(ctx, email); err != nil {
		s.log.Warn("release resend cooldown failed", "error", err)
	}
}

// VerifyCode consumes the code before touching accounts, then resolves or
// creates the account and mints a CodeSessionTTL session.
func (s *service) VerifyCode(ctx context.Context, in VerifyCodeInput) (*SessionResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}

	ok, err := s.cfg.Credentials.VerifyCode(ctx, in.Email, in.Code)
	if err != nil {
		s.log.Error("verify code failed", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	s.cfg.Metrics.Verification(methodCode, ok)
	if !ok {
		return nil, ErrInvalidCode
	}

	acct, err := s.resolveAccount(ctx, in.Email, in.FullName)
	if err != nil {
		return nil, err
	}
	return s.mint(acct, session.CodeSessionTTL)
}

// VerifyMagicLink consumes token and logs in its existing account. Links never create accounts.
func (s *service) VerifyMagicLink(ctx context.Context, token string) (*SessionResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, validation.NewFieldError("token", "is required")
	}

	email, ok, err := s.cfg.Credentials.VerifyMagicLink(ctx, token)
	if err != nil {
		s.log.Error("verify magic link failed", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	s.cfg.Metrics.Verification(methodMagicLink, ok)
	if !ok {
		return nil, ErrInvalidLink
	}

	acct, err := s.cfg.Accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrSignupRequired
		}
		return nil, err
	}
	return s.mint(acct, session.MagicLinkSessionTTL)
}

func (s *service) resolveAccount(ctx context.Context, email, fullName string) (*account.Account, error) {
	acct, err := s.cfg.Accounts.FindByEmail(ctx, email)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, account.ErrNotFound) {
		return nil, err
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, ErrFullNameRequired
	}

	acct, err = s.cfg.Accounts.Create(ctx, account.CreateInput{Email: email, FullName: fullName})
	if errors.Is(err, account.ErrEmailExists) {
		// Created concurrently by another verification.
		return s.cfg.Accounts.FindByEmail(ctx, email)
	}
	return acct, err
}

func (s *service) mint(acct *account.Account, ttl time.Duration) (*SessionResult, error) {
	token, exp, err := s.cfg.Codec.Sign(contextx.Identity{
		AccountID: acct.ID,
		Email:     acct.Email,
		Roles:     acct.Roles,
	}, ttl)
	if err != nil {
		s.log.Error("sign session failed", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	s.log.Info("session issued", "account_id", acct.ID, "ttl", ttl)
	return &SessionResult{Account: acct, Token: token, ExpiresAt: exp, TTL: ttl}, nil
}

func (s *service) magicLinkURL(token string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/auth/magic-link?token=" + url.QueryEscape(token)
}
