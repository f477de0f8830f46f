package service

import (
	"fmt"
	"strings"
	"sync"

	"courier/internal/api/models"
)

const (
	DefaultTimeoutSeconds = 60
	MinTimeoutSeconds     = 3
)

// ClientConfig holds settings read by every request a service builds
type ClientConfig struct {
	mu             sync.RWMutex
	timeoutSeconds int
}

// NewClientConfig uses DefaultTimeoutSeconds when timeoutSeconds is not positive
func NewClientConfig(timeoutSeconds int) *ClientConfig {
	cfg := &ClientConfig{timeoutSeconds: DefaultTimeoutSeconds}
	if timeoutSeconds > 0 {
		cfg.SetTimeout(timeoutSeconds)
	}
	return cfg
}

// SetTimeout stores seconds, raised to MinTimeoutSeconds when below it
func (c *ClientConfig) SetTimeout(seconds int) {
	if seconds < MinTimeoutSeconds {
		seconds = MinTimeoutSeconds
	}
	c.mu.Lock()
	c.timeoutSeconds = seconds
	c.mu.Unlock()
}

func (c *ClientConfig) Timeout() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeoutSeconds
}

// BuildRequest validates the method and url and assembles a descriptor.
// Query parameters are appended in slice order without any encoding; use URLEncode on values beforehand.
func BuildRequest(method models.Method, url string, params []models.QueryParam, headers []models.Header, body string, cfg *ClientConfig) (models.RequestDescriptor, error) {
	if method.String() == "" {
		return models.RequestDescriptor{}, fmt.Errorf("%w: %d", ErrInvalidMethod, int(method))
	}

	base := strings.TrimSpace(url)
	if base == "" {
		return models.RequestDescriptor{}, ErrEmptyURL
	}

	var sb strings.Builder
	sb.WriteString(base)
	for i, param := range params {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(param.Key)
		sb.WriteByte('=')
		sb.WriteString(param.Value)
	}

	timeout := DefaultTimeoutSeconds
	if cfg != nil {
		timeout = cfg.Timeout()
	}

	return models.RequestDescriptor{
		Method:         method,
		URL:            sb.String(),
		Headers:        append([]models.Header(nil), headers...),
		Body:           body,
		TimeoutSeconds: timeout,
	}, nil
}

var urlEscapes = map[byte]string{
	' ': "%20", '!': "%21", '"': "%22", '#': "%23", '$': "%24", '&': "%26", '\'': "%27",
	'(': "%28", ')': "%29", '*': "%2A", '+': "%2B", ',': "%2C", '-': "%2D", '.': "%2E",
	'/': "%2F", ':': "%3A", ';': "%3B", '<': "%3C", '=': "%3D", '>': "%3E", '?': "%3F",
	'@': "%40", '[': "%5B", '\\': "%5C", ']': "%5D", '^': "%5E", '_': "%5F", '`': "%60",
	'{': "%7B", '|': "%7C", '}': "%7D", '~': "%7E",
}

// URLEncode percent-encodes space and ASCII punctuation. Letters, digits, '%' and non-ASCII bytes pass through.
func URLEncode(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if escaped, ok := urlEscapes[s[i]]; ok {
			sb.WriteString(escaped)
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
