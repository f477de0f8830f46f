package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"courier/internal/api/models"
)

// HTTPTransport performs the network exchange for a built request
type HTTPTransport interface {
	Submit(ctx context.Context, req models.RequestDescriptor) (models.HTTPResult, error)
}

// HTTPDoer is satisfied by *http.Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NetHTTPTransport sends descriptors through net/http. The descriptor's timeout bounds the whole exchange.
type NetHTTPTransport struct {
	client      HTTPDoer
	maxBodySize int64
}

func NewNetHTTPTransport(client HTTPDoer) *NetHTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &NetHTTPTransport{client: client, maxBodySize: 32 << 20}
}

func (slf *NetHTTPTransport) Submit(ctx context.Context, req models.RequestDescriptor) (models.HTTPResult, error) {
	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = DefaultTimeoutSeconds * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method.String(), req.URL, body)
	if err != nil {
		return models.HTTPResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	resp, err := slf.client.Do(httpReq)
	if err != nil {
		return models.HTTPResult{}, fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, slf.maxBodySize+1))
	if err != nil {
		return models.HTTPResult{}, fmt.Errorf("%w: failed to read response: %v", ErrTransportFailure, err)
	}
	if int64(len(data)) > slf.maxBodySize {
		return models.HTTPResult{}, fmt.Errorf("%w: response too large (limit %d bytes)", ErrTransportFailure, slf.maxBodySize)
	}

	return models.HTTPResult{
		StatusCode:  resp.StatusCode,
		Body:        string(data),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
