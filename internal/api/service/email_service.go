package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"courier/internal/api/models"
	"courier/internal/latent"
	"courier/pkg"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

const providerPort = 587

var providerHosts = map[models.EmailProvider]string{
	models.ProviderGmail:   "smtp.gmail.com",
	models.ProviderOutlook: "smtp.office365.com",
	models.ProviderYahoo:   "smtp.mail.yahoo.com",
}

// ConnectivityChecker reports whether the host currently has a usable network
type ConnectivityChecker interface {
	Online() bool
}

type EmailOption func(*EmailService)

func WithConnectivityChecker(checker ConnectivityChecker) EmailOption {
	return func(s *EmailService) { s.connectivity = checker }
}

// WithHTMLPolicy sanitizes HTML bodies with policy before they are sent
func WithHTMLPolicy(policy *bluemonday.Policy) EmailOption {
	return func(s *EmailService) { s.htmlPolicy = policy }
}

type EmailService struct {
	logger       zerolog.Logger
	runtime      *TaskRuntime
	transport    MailTransport
	files        FileProvider
	connectivity ConnectivityChecker
	htmlPolicy   *bluemonday.Policy
}

func NewEmailService(runtime *TaskRuntime, transport MailTransport, files FileProvider, logger zerolog.Logger, opts ...EmailOption) *EmailService {
	if files == nil {
		files = OSFileProvider{}
	}
	s := &EmailService{
		logger:    logger,
		runtime:   runtime,
		transport: transport,
		files:     files,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendEmail schedules one message and returns the task id.
// Validation runs on the first tick, before anything touches the network; every failure is reported through onComplete.
func (slf *EmailService) SendEmail(details models.EmailDetails, target models.ServerTarget, charset models.Charset, security models.SecurityType, onComplete func(models.EmailOutcome)) (string, error) {
	action := &sendEmailAction{
		service:    slf,
		details:    details,
		target:     target,
		charset:    charset,
		security:   security,
		onComplete: onComplete,
	}
	id, err := slf.runtime.dispatch(models.TaskKindEmail, action)
	if err != nil {
		return "", err
	}
	slf.logger.Info().Str("taskId", id).Str("to", details.ReceiverEmail).Str("subject", details.Subject).Msg("Email scheduled")
	return id, nil
}

// prepare runs the local checks in order and returns what the transport needs.
// The connectivity check dials out, so it runs in the pool job instead.
func (slf *EmailService) prepare(details models.EmailDetails, target models.ServerTarget, charset models.Charset, security models.SecurityType) (models.ComposedMessage, models.ResolvedServer, error) {
	for _, attachment := range details.Attachments {
		if attachment != "" && !slf.files.Exists(attachment) {
			return models.ComposedMessage{}, models.ResolvedServer{}, fmt.Errorf("could not send email, %w with path %s", ErrAttachmentNotFound, attachment)
		}
	}

	if !pkg.IsEmail(details.SenderEmail) {
		return models.ComposedMessage{}, models.ResolvedServer{}, fmt.Errorf("%w for sender: %q", ErrInvalidEmailAddress, details.SenderEmail)
	}
	if !pkg.IsEmail(details.ReceiverEmail) {
		return models.ComposedMessage{}, models.ResolvedServer{}, fmt.Errorf("%w for receiver: %q", ErrInvalidEmailAddress, details.ReceiverEmail)
	}

	server, err := ResolveServer(target, details.SenderEmail)
	if err != nil {
		return models.ComposedMessage{}, models.ResolvedServer{}, err
	}
	server.Password = details.Password
	server.Security = NormalizeSecurity(security)

	if details.UseHTML && slf.htmlPolicy != nil {
		details.Message = slf.htmlPolicy.Sanitize(details.Message)
	}
	return ComposeMessage(details, charset), server, nil
}

// ResolveServer picks the custom server when one is given, the provider's fixed endpoint otherwise.
// A custom server without username logs in as the sender.
func ResolveServer(target models.ServerTarget, senderEmail string) (models.ResolvedServer, error) {
	if custom := target.Custom; custom != nil {
		if strings.TrimSpace(custom.Host) == "" {
			return models.ResolvedServer{}, fmt.Errorf("%w: custom server has no host", ErrUnspecifiedService)
		}
		port := custom.Port
		if port <= 0 {
			port = providerPort
		}
		username := custom.Username
		if username == "" {
			username = senderEmail
		}
		return models.ResolvedServer{Host: custom.Host, Port: port, Username: username}, nil
	}

	host, ok := providerHosts[target.Provider]
	if !ok {
		return models.ResolvedServer{}, ErrUnspecifiedService
	}
	return models.ResolvedServer{Host: host, Port: providerPort, Username: senderEmail}, nil
}

// ComposeMessage drops empty CC, BCC and attachment entries and splits the body into lines
func ComposeMessage(details models.EmailDetails, charset models.Charset) models.ComposedMessage {
	msg := models.ComposedMessage{
		From:     details.SenderEmail,
		FromName: details.SenderName,
		To:       details.ReceiverEmail,
		Subject:  details.Subject,
		Lines:    ConvertToArrayLines(details.Message),
		HTML:     details.UseHTML,
		Charset:  normalizeCharset(charset),
	}
	for _, cc := range details.CC {
		if cc != "" {
			msg.CC = append(msg.CC, cc)
		}
	}
	for _, bcc := range details.BCC {
		if bcc != "" {
			msg.BCC = append(msg.BCC, bcc)
		}
	}
	for _, attachment := range details.Attachments {
		if attachment != "" {
			msg.Attachments = append(msg.Attachments, filepath.FromSlash(attachment))
		}
	}
	return msg
}

func normalizeCharset(charset models.Charset) models.Charset {
	switch models.Charset(strings.ToLower(string(charset))) {
	case models.CharsetUTF8:
		return models.CharsetUTF8
	case models.CharsetGB2312:
		return models.CharsetGB2312
	default:
		return models.CharsetUSASCII
	}
}

// NormalizeSecurity maps anything but SSL, in any case, to TLS
func NormalizeSecurity(security models.SecurityType) models.SecurityType {
	if models.SecurityType(strings.ToUpper(string(security))) == models.SecuritySSL {
		return models.SecuritySSL
	}
	return models.SecurityTLS
}

// sendStage tells which step of the send job produced its outcome
type sendStage int

const (
	stageSend sendStage = iota
	stageOffline
)

type sendEmailAction struct {
	service    *EmailService
	details    models.EmailDetails
	target     models.ServerTarget
	charset    models.Charset
	security   models.SecurityType
	onComplete func(models.EmailOutcome)
	task       *latent.Task[sendStage]
	finished   bool
}

func (a *sendEmailAction) Update(t *latent.Tick) {
	if t.First() {
		msg, server, err := a.service.prepare(a.details, a.target, a.charset, a.security)
		if err != nil {
			a.finish(t, models.EmailOutcome{Result: models.EmailFail, Error: err.Error(), Err: err})
			return
		}
		transport, connectivity := a.service.transport, a.service.connectivity
		a.task = latent.Go(a.service.runtime.Pool, func(ctx context.Context) (sendStage, error) {
			if connectivity != nil && !connectivity.Online() {
				return stageOffline, ErrNoConnectivity
			}
			return stageSend, transport.Send(ctx, msg, server)
		}, t.Wake())
		return
	}

	if !t.Woken() || !a.task.IsReady() {
		return
	}
	out, err := a.task.Consume()
	if err != nil {
		return
	}
	if out.Failed() && out.Value == stageOffline {
		a.finish(t, models.EmailOutcome{Result: models.EmailFail, Error: out.Err, Err: ErrNoConnectivity})
		return
	}
	if out.Failed() {
		a.finish(t, models.EmailOutcome{
			Result: models.EmailFail,
			Error:  out.Err,
			Err:    fmt.Errorf("%w: %s", ErrTransportFailure, out.Err),
		})
		return
	}
	a.finish(t, models.EmailOutcome{Result: models.EmailSuccess})
}

func (a *sendEmailAction) Abort(t *latent.Tick, reason string) {
	a.finish(t, models.EmailOutcome{Result: models.EmailFail, Error: reason, Err: errors.New(reason)})
}

func (a *sendEmailAction) finish(t *latent.Tick, outcome models.EmailOutcome) {
	if a.finished {
		return
	}
	a.finished = true
	if outcome.Failed() {
		a.service.logger.Warn().Str("taskId", t.ID()).Str("error", outcome.Error).Msg("Email not sent")
	} else {
		a.service.logger.Info().Str("taskId", t.ID()).Str("to", a.details.ReceiverEmail).Msg("Email sent successfully")
	}

	a.service.runtime.complete(t.ID(), models.TaskKindEmail, func(record *models.TaskRecord) {
		record.Error = outcome.Error
		if outcome.Failed() {
			record.Status = models.TaskStatusFailed
		} else {
			record.Status = models.TaskStatusSucceeded
		}
	})

	if a.onComplete != nil {
		a.onComplete(outcome)
	}
	t.Finish()
}
