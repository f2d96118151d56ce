// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email delivers magic link emails.
package email

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/envios/portal/internal/config"
	"codeberg.org/envios/portal/internal/i18n"
	"github.com/wneessen/go-mail"
)

// sendTimeout bounds a single SMTP delivery.
const sendTimeout = 30 * time.Second

var htmlBody = template.Must(template.New("magic_link").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<body style="font-family: sans-serif; color: #1f2937;">
<h1 style="font-size: 20px;">{{.AppName}}</h1>
<p>{{.Intro}}</p>
<p><a href="{{.Link}}" style="display: inline-block; padding: 10px 18px; background: #1d4ed8; color: #ffffff; text-decoration: none; border-radius: 6px;">{{.Button}}</a></p>
<p style="font-size: 13px; color: #6b7280;">{{.Footer}}</p>
<p style="font-size: 12px; color: #9ca3af; word-break: break-all;">{{.Link}}</p>
</body>
</html>`))

// Service sends magic link emails through SMTP.
type Service struct {
	cfg      *config.SMTPConfig
	tokenTTL time.Duration
}

// NewService creates a new email service. tokenTTL is only used to tell the
// recipient how long the link stays valid.
func NewService(cfg *config.SMTPConfig, tokenTTL time.Duration) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{
		cfg:      cfg,
		tokenTTL: tokenTTL,
	}, nil
}

// SendMagicLink sends the sign-in link to the given address, localized for
// the locale stored in ctx.
func (s *Service) SendMagicLink(ctx context.Context, to, link string) error {
	msg, err := s.buildMessage(ctx, to, link)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	slog.Debug("magic_link_sent", "to", to)
	return nil
}

func (s *Service) buildMessage(ctx context.Context, to, link string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	data := map[string]any{
		"Link":    link,
		"Minutes": int(s.tokenTTL.Minutes()),
	}

	msg.Subject(i18n.T(ctx, "email_magic_link_subject"))
	msg.SetBodyString(mail.TypeTextPlain, i18n.TData(ctx, "email_magic_link_body", data))

	var html strings.Builder
	err := htmlBody.Execute(&html, map[string]any{
		"Lang":    i18n.GetLocale(ctx),
		"AppName": i18n.T(ctx, "app_name"),
		"Intro":   i18n.T(ctx, "email_magic_link_html_intro"),
		"Button":  i18n.T(ctx, "email_magic_link_button"),
		"Footer":  i18n.TData(ctx, "email_magic_link_html_footer", data),
		"Link":    link,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering html body: %w", err)
	}
	msg.AddAlternativeString(mail.TypeTextHTML, html.String())

	return msg, nil
}

func (s *Service) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Implicit TLS on 465, STARTTLS elsewhere
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	return opts
}

// LogService writes magic links to the log instead of sending them.
// It is meant for development setups without SMTP.
type LogService struct{}

// SendMagicLink logs the link.
func (LogService) SendMagicLink(_ context.Context, to, link string) error {
	slog.Info("magic_link_not_mailed", "to", to, "link", link)
	return nil
}
