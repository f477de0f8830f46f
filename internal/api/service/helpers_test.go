package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"courier/internal/api/models"
	"courier/internal/api/repo"
	"courier/internal/latent"

	"github.com/rs/zerolog"
)

// newTestRuntime returns a runtime whose manager is only driven by explicit Poll calls
func newTestRuntime(t *testing.T) (*TaskRuntime, *repo.TaskRepository) {
	t.Helper()
	pool := latent.NewPool(4, zerolog.Nop())
	manager := latent.NewManager(time.Hour, zerolog.Nop())
	store := repo.NewTaskRepository(nil, time.Minute)
	t.Cleanup(pool.Stop)
	return NewTaskRuntime(pool, manager, store, zerolog.Nop()), store
}

// newRunningRuntime returns a runtime with its manager loop started
func newRunningRuntime(t *testing.T) (*TaskRuntime, *repo.TaskRepository) {
	t.Helper()
	pool := latent.NewPool(4, zerolog.Nop())
	manager := latent.NewManager(5*time.Millisecond, zerolog.Nop())
	store := repo.NewTaskRepository(nil, time.Minute)
	manager.Start()
	t.Cleanup(func() {
		manager.Stop()
		pool.Stop()
	})
	return NewTaskRuntime(pool, manager, store, zerolog.Nop()), store
}

// pollUntil drives the manager by hand until done is closed
func pollUntil(t *testing.T, m *latent.Manager, done <-chan struct{}) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		m.Poll()
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("task never completed")
		case <-time.After(2 * time.Millisecond):
		}
	}
}

type fakeHTTPTransport struct {
	calls  atomic.Int32
	delays map[string]time.Duration
	err    error
}

func (f *fakeHTTPTransport) Submit(ctx context.Context, req models.RequestDescriptor) (models.HTTPResult, error) {
	f.calls.Add(1)
	if d, ok := f.delays[req.URL]; ok {
		time.Sleep(d)
	}
	if f.err != nil {
		return models.HTTPResult{}, f.err
	}
	return models.HTTPResult{StatusCode: 200, Body: `{"url":"` + req.URL + `"}`, ContentType: "application/json"}, nil
}

type sentMail struct {
	msg    models.ComposedMessage
	server models.ResolvedServer
}

type fakeMailTransport struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailTransport) Send(ctx context.Context, msg models.ComposedMessage, server models.ResolvedServer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{msg: msg, server: server})
	return f.err
}

func (f *fakeMailTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeFiles map[string]bool

func (f fakeFiles) Exists(path string) bool { return f[path] }
func (f fakeFiles) Delete(path string) bool {
	if !f[path] {
		return false
	}
	delete(f, path)
	return true
}

type fakeConnectivity bool

func (f fakeConnectivity) Online() bool { return bool(f) }

// slowConnectivity blocks like a real dial before answering
type slowConnectivity struct {
	delay  time.Duration
	online bool
	calls  atomic.Int32
}

func (s *slowConnectivity) Online() bool {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return s.online
}

type fakeDirectory struct {
	entries []models.UserDetails
	err     error
}

func (f fakeDirectory) List(ctx context.Context) ([]models.UserDetails, error) {
	return f.entries, f.err
}

var errBoom = errors.New("boom")

// panicOnFirstTick wraps an action whose update blows up before it dispatches anything
type panicOnFirstTick struct {
	*httpRequestAction
}

func (p *panicOnFirstTick) Update(t *latent.Tick) {
	panic("boom")
}
