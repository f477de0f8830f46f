package models

import (
	"fmt"
	"strings"
)

// Method is an HTTP verb understood by the request builder
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodPatch
	MethodDelete
	MethodCopy
	MethodHead
	MethodOptions
	MethodLink
	MethodUnlink
	MethodLock
	MethodUnlock
	MethodPropfind
	MethodView
)

var methodVerbs = map[Method]string{
	MethodGet:      "GET",
	MethodPost:     "POST",
	MethodPut:      "PUT",
	MethodPatch:    "PATCH",
	MethodDelete:   "DELETE",
	MethodCopy:     "COPY",
	MethodHead:     "HEAD",
	MethodOptions:  "OPTIONS",
	MethodLink:     "LINK",
	MethodUnlink:   "UNLINK",
	MethodLock:     "LOCK",
	MethodUnlock:   "UNLOCK",
	MethodPropfind: "PROPFIND",
	MethodView:     "VIEW",
}

// String returns the wire verb, or "" when m is not a known method
func (m Method) String() string {
	return methodVerbs[m]
}

// ParseMethod is case-insensitive and also accepts the short form DEL
func ParseMethod(s string) (Method, bool) {
	verb := strings.ToUpper(strings.TrimSpace(s))
	if verb == "DEL" {
		return MethodDelete, true
	}
	for m, v := range methodVerbs {
		if v == verb {
			return m, true
		}
	}
	return 0, false
}

func (m Method) MarshalText() ([]byte, error) {
	verb := m.String()
	if verb == "" {
		return nil, fmt.Errorf("unknown method %d", int(m))
	}
	return []byte(verb), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	parsed, ok := ParseMethod(string(text))
	if !ok {
		return fmt.Errorf("unknown method %q", string(text))
	}
	*m = parsed
	return nil
}

type QueryParam struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

type Header struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

// RequestDescriptor is a fully assembled request, ready for a transport.
// URL already carries the query string; Headers keep duplicates in order.
type RequestDescriptor struct {
	Method         Method   `json:"method"`
	URL            string   `json:"url"`
	Headers        []Header `json:"headers"`
	Body           string   `json:"body"`
	TimeoutSeconds int      `json:"timeoutSeconds"`
}

// HTTPResult is what a request callback receives. A non-empty Err means the exchange never completed.
type HTTPResult struct {
	StatusCode  int    `json:"statusCode"`
	Body        string `json:"body"`
	ContentType string `json:"contentType,omitempty"`
	Err         string `json:"error,omitempty"`
}

func (r HTTPResult) Failed() bool {
	return r.Err != ""
}
