package endpoints

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"courier"
	"courier/internal/api/handler/response"
	"courier/internal/api/models"
	"courier/internal/api/repo"
	"courier/internal/api/service"
	"courier/internal/latent"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []models.ResolvedServer
}

func (m *recordingMailer) Send(_ context.Context, _ models.ComposedMessage, server models.ResolvedServer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, server)
	return nil
}

func (m *recordingMailer) Verify(_ context.Context, server models.ResolvedServer) error {
	if server.Password == "" {
		return service.ErrTransportFailure
	}
	return nil
}

type testServer struct {
	router     *gin.Engine
	attachRoot string
	tasks      *repo.TaskRepository
	mailer     *recordingMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	pool := latent.NewPool(4, zerolog.Nop())
	manager := latent.NewManager(5*time.Millisecond, zerolog.Nop())
	manager.Start()
	t.Cleanup(func() {
		cancel()
		manager.Stop()
		pool.Stop()
	})

	var cfg courier.AppConfig
	cfg.Mode = "dev"
	cfg.SmtpConfig.AttachmentRoot = t.TempDir()

	tasks := repo.NewTaskRepository(nil, time.Minute)
	runtime := service.NewTaskRuntime(pool, manager, tasks, zerolog.Nop())
	mailer := &recordingMailer{}

	deps := Dependencies{
		Ctx:      ctx,
		Config:   cfg,
		Logger:   zerolog.Nop(),
		Requests: service.NewHTTPRequestService(runtime, service.NewNetHTTPTransport(&http.Client{}), service.NewClientConfig(10), zerolog.Nop()),
		Emails:   service.NewEmailService(runtime, mailer, service.OSFileProvider{}, zerolog.Nop()),
		Captures: service.NewCaptureService(runtime, zerolog.Nop()),
		Tasks:    tasks,
		Verifier: mailer,
	}

	router := gin.New()
	AuthHandler(router, deps)
	RequestHandler(router, deps)
	TaskHandler(router, deps)
	EmailHandler(router, deps)
	UtilHandler(router, deps)
	CaptureHandler(router, deps)
	return &testServer{router: router, attachRoot: cfg.SmtpConfig.AttachmentRoot, tasks: tasks, mailer: mailer}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) accepted(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var accepted response.TaskAccepted
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.TaskID)
	return accepted.TaskID
}

func (s *testServer) waitDone(t *testing.T, id string) models.TaskRecord {
	t.Helper()
	var record models.TaskRecord
	require.Eventually(t, func() bool {
		w := s.do(t, http.MethodGet, "/api/v1/tasks/"+id, nil)
		if w.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
			return false
		}
		return record.Done()
	}, 3*time.Second, 10*time.Millisecond)
	return record
}

func TestRequestHandler_CreateAndReadField(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"` + r.URL.Query().Get("name") + `","count":3}`))
	}))
	defer upstream.Close()

	s := newTestServer(t)
	id := s.accepted(t, s.do(t, http.MethodPost, "/api/v1/requests", gin.H{
		"method": "get",
		"url":    upstream.URL,
		"params": []gin.H{{"key": "name", "value": "ada"}},
	}))

	record := s.waitDone(t, id)
	assert.Equal(t, models.TaskStatusSucceeded, record.Status)
	assert.Equal(t, http.StatusOK, record.StatusCode)

	w := s.do(t, http.MethodGet, "/api/v1/tasks/"+id+"/field?key=name&type=string", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var field service.FieldValue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &field))
	assert.True(t, field.Found)
	assert.Equal(t, "ada", field.Value)

	w = s.do(t, http.MethodGet, "/api/v1/tasks/"+id+"/field?key=count&type=list", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRequestHandler_Rejects(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"unknown method", gin.H{"method": "FETCH", "url": "http://localhost"}},
		{"missing url", gin.H{"method": "GET"}},
		{"empty header name", gin.H{"method": "GET", "url": "http://localhost", "headers": []gin.H{{"value": "x"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/requests", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRequestHandler_Timeout(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPut, "/api/v1/config/timeout", gin.H{"timeoutSeconds": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/config/timeout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var timeout response.TimeoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &timeout))
	assert.Equal(t, 3, timeout.TimeoutSeconds)
}

func TestTaskHandler_NotFound(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/tasks/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_FieldRequiresFinishedHTTPTask(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.tasks.Save(ctx, models.TaskRecord{ID: "pending", Kind: models.TaskKindHTTP, Status: models.TaskStatusPending}))
	require.NoError(t, s.tasks.Save(ctx, models.TaskRecord{ID: "mail", Kind: models.TaskKindEmail, Status: models.TaskStatusSucceeded}))

	w := s.do(t, http.MethodGet, "/api/v1/tasks/pending/field?key=a", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/tasks/mail/field?key=a", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmailHandler_Send(t *testing.T) {
	s := newTestServer(t)

	id := s.accepted(t, s.do(t, http.MethodPost, "/api/v1/emails", gin.H{
		"senderEmail":   "me@example.com",
		"password":      "pw",
		"receiverEmail": "you@example.com",
		"subject":       "hi",
		"message":       "line one\nline two",
		"provider":      "gmail",
	}))

	record := s.waitDone(t, id)
	assert.Equal(t, models.TaskStatusSucceeded, record.Status, record.Error)

	s.mailer.mu.Lock()
	defer s.mailer.mu.Unlock()
	require.Len(t, s.mailer.sent, 1)
	assert.Equal(t, "smtp.gmail.com", s.mailer.sent[0].Host)
}

func TestEmailHandler_Attachments(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.attachRoot, "report.txt"), []byte("q3"), 0o600))

	tests := []struct {
		name       string
		attachment string
		want       int
	}{
		{"file under root", "report.txt", http.StatusAccepted},
		{"absolute path", "/etc/passwd", http.StatusBadRequest},
		{"parent escape", "../report.txt", http.StatusBadRequest},
		{"nested escape", "a/../../etc/passwd", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/emails", gin.H{
				"senderEmail":   "me@example.com",
				"password":      "pw",
				"receiverEmail": "you@example.com",
				"subject":       "report",
				"message":       "attached",
				"provider":      "gmail",
				"attachments":   []string{tt.attachment},
			})
			require.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.want != http.StatusAccepted {
				return
			}
			record := s.waitDone(t, s.accepted(t, w))
			assert.Equal(t, models.TaskStatusSucceeded, record.Status, record.Error)
		})
	}
}

func TestEmailHandler_Verify(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"accepted", gin.H{"senderEmail": "me@example.com", "password": "pw", "provider": "OUTLOOK"}, http.StatusOK},
		{"rejected credentials", gin.H{"senderEmail": "me@example.com", "provider": "OUTLOOK"}, http.StatusBadGateway},
		{"no server", gin.H{"senderEmail": "me@example.com", "password": "pw"}, http.StatusBadRequest},
		{"bad sender", gin.H{"senderEmail": "nope", "password": "pw", "provider": "GMAIL"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/smtp/verify", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestUtilHandler(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/util/urlencode?value=a%20b%26c", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var encoded response.URLEncodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &encoded))
	assert.Equal(t, "a b&c", encoded.Value)
	assert.Equal(t, "a%20b%26c", encoded.Encoded)

	w = s.do(t, http.MethodPost, "/api/v1/util/json/field", gin.H{
		"body": `{"tags":["a","b"]}`,
		"key":  "tags",
		"type": "strings",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var field service.FieldValue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &field))
	assert.Equal(t, []any{"a", "b"}, field.Value)

	w = s.do(t, http.MethodPost, "/api/v1/util/email/image", gin.H{"source": "logo.png", "embedded": true, "width": 10, "height": 20})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cid:logo.png")
}

func TestCaptureHandler_Save(t *testing.T) {
	s := newTestServer(t)
	path := filepath.Join(t.TempDir(), "frame.png")

	id := s.accepted(t, s.do(t, http.MethodPost, "/api/v1/captures", gin.H{
		"width":  1,
		"height": 1,
		"pixels": []byte{0, 0, 255, 255},
		"path":   path,
	}))

	record := s.waitDone(t, id)
	assert.Equal(t, models.TaskStatusSucceeded, record.Status, record.Error)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
