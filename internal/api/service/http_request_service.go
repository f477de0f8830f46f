package service

import (
	"context"

	"courier/internal/api/models"
	"courier/internal/latent"

	"github.com/rs/zerolog"
)

type HTTPRequestService struct {
	logger    zerolog.Logger
	runtime   *TaskRuntime
	transport HTTPTransport
	config    *ClientConfig
}

func NewHTTPRequestService(runtime *TaskRuntime, transport HTTPTransport, config *ClientConfig, logger zerolog.Logger) *HTTPRequestService {
	if config == nil {
		config = NewClientConfig(DefaultTimeoutSeconds)
	}
	return &HTTPRequestService{
		logger:    logger,
		runtime:   runtime,
		transport: transport,
		config:    config,
	}
}

func (slf *HTTPRequestService) Config() *ClientConfig {
	return slf.config
}

// MakeRequest builds the request and schedules it, returning the task id.
// Invalid input is reported here and nothing is sent. Otherwise onComplete runs exactly once from the manager loop.
func (slf *HTTPRequestService) MakeRequest(method models.Method, url string, params []models.QueryParam, headers []models.Header, body string, onComplete func(models.HTTPResult)) (string, error) {
	desc, err := BuildRequest(method, url, params, headers, body, slf.config)
	if err != nil {
		slf.logger.Error().Err(err).Str("url", url).Msg("Rejected http request")
		return "", err
	}

	action := &httpRequestAction{
		service:    slf,
		request:    desc,
		onComplete: onComplete,
	}
	id, err := slf.runtime.dispatch(models.TaskKindHTTP, action)
	if err != nil {
		return "", err
	}
	slf.logger.Info().Str("taskId", id).Str("method", desc.Method.String()).Str("url", desc.URL).Msg("Http request scheduled")
	return id, nil
}

type httpRequestAction struct {
	service    *HTTPRequestService
	request    models.RequestDescriptor
	onComplete func(models.HTTPResult)
	task       *latent.Task[models.HTTPResult]
	finished   bool
}

func (a *httpRequestAction) Update(t *latent.Tick) {
	if t.First() {
		transport, req := a.service.transport, a.request
		a.task = latent.Go(a.service.runtime.Pool, func(ctx context.Context) (models.HTTPResult, error) {
			return transport.Submit(ctx, req)
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

	result := out.Value
	if out.Failed() {
		result = models.HTTPResult{Err: out.Err}
	}
	a.finish(t, result)
}

func (a *httpRequestAction) Abort(t *latent.Tick, reason string) {
	a.finish(t, models.HTTPResult{Err: reason})
}

func (a *httpRequestAction) finish(t *latent.Tick, result models.HTTPResult) {
	if a.finished {
		return
	}
	a.finished = true
	if result.Failed() {
		a.service.logger.Warn().Str("taskId", t.ID()).Str("error", result.Err).Msg("Http request failed")
	} else {
		a.service.logger.Info().Str("taskId", t.ID()).Int("status", result.StatusCode).Msg("Http request completed")
	}

	a.service.runtime.complete(t.ID(), models.TaskKindHTTP, func(record *models.TaskRecord) {
		record.StatusCode = result.StatusCode
		record.Body = result.Body
		record.ContentType = result.ContentType
		record.Error = result.Err
		if result.Failed() {
			record.Status = models.TaskStatusFailed
		} else {
			record.Status = models.TaskStatusSucceeded
		}
	})

	if a.onComplete != nil {
		a.onComplete(result)
	}
	t.Finish()
}
