package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"courier/internal/api/models"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"
)

// MailTransport hands a composed message to an SMTP server
type MailTransport interface {
	Send(ctx context.Context, msg models.ComposedMessage, server models.ResolvedServer) error
}

type GoMailTransport struct {
	logger      zerolog.Logger
	dialTimeout time.Duration
}

func NewGoMailTransport(dialTimeout time.Duration, logger zerolog.Logger) *GoMailTransport {
	if dialTimeout <= 0 {
		dialTimeout = 30 * time.Second
	}
	return &GoMailTransport{logger: logger, dialTimeout: dialTimeout}
}

// Send returns go-mail's error unchanged so its text reaches the caller as is
func (slf *GoMailTransport) Send(ctx context.Context, msg models.ComposedMessage, server models.ResolvedServer) error {
	m, err := buildMsg(msg)
	if err != nil {
		return err
	}

	client, err := slf.newClient(server)
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return err
	}

	slf.logger.Info().Str("host", server.Host).Str("to", msg.To).Str("subject", msg.Subject).Msg("Message handed to SMTP server")
	return nil
}

// Verify dials and authenticates without sending anything
func (slf *GoMailTransport) Verify(ctx context.Context, server models.ResolvedServer) error {
	client, err := slf.newClient(server)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, slf.dialTimeout)
	defer cancel()
	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("SMTP connection failed: %w", err)
	}
	_ = client.Close()

	return nil
}

func (slf *GoMailTransport) newClient(server models.ResolvedServer) (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(server.Port),
		gomail.WithTimeout(slf.dialTimeout),
	}
	if server.Security == models.SecuritySSL {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	if server.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(server.Username),
			gomail.WithPassword(server.Password),
		)
	}

	client, err := gomail.NewClient(server.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client, nil
}

func buildMsg(msg models.ComposedMessage) (*gomail.Msg, error) {
	m := gomail.NewMsg(gomail.WithCharset(gomail.Charset(msg.Charset)))

	if msg.FromName != "" {
		if err := m.FromFormat(msg.FromName, msg.From); err != nil {
			return nil, fmt.Errorf("failed to set from: %w", err)
		}
	} else if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("failed to set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("failed to set to: %w", err)
	}
	for _, cc := range msg.CC {
		if err := m.AddCc(cc); err != nil {
			return nil, fmt.Errorf("failed to add cc: %w", err)
		}
	}
	for _, bcc := range msg.BCC {
		if err := m.AddBcc(bcc); err != nil {
			return nil, fmt.Errorf("failed to add bcc: %w", err)
		}
	}

	m.Subject(msg.Subject)
	m.SetImportance(gomail.ImportanceNormal)

	body := strings.Join(msg.Lines, "\r\n")
	if msg.HTML {
		m.SetBodyString(gomail.TypeTextHTML, body)
	} else {
		m.SetBodyString(gomail.TypeTextPlain, body)
	}

	for _, path := range msg.Attachments {
		m.AttachFile(path)
	}
	return m, nil
}
