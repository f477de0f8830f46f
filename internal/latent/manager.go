package latent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrDuplicateAction = errors.New("latent: an action with this id is already pending")

// Action is a deferred operation advanced one step per scheduling cycle.
// Update must not block; it calls Tick.Finish exactly once, when the operation is over.
type Action interface {
	Update(t *Tick)
}

// Aborter is implemented by actions that report their own terminal failure when Update panics.
type Aborter interface {
	Abort(t *Tick, reason string)
}

// Tick is the per-cycle view an Action gets of its scheduler
type Tick struct {
	id       string
	first    bool
	woken    bool
	finished bool
	manager  *Manager
}

func (t *Tick) ID() string {
	return t.id
}

// First is true only on the first cycle the action sees
func (t *Tick) First() bool {
	return t.first
}

// Woken is true when this update follows a wake-up, meaning the work behind the hook has been published.
// Actions consume results only on woken updates so callbacks follow completion order.
func (t *Tick) Woken() bool {
	return t.woken
}

// Finish marks the action complete; the manager drops it after this cycle
func (t *Tick) Finish() {
	t.finished = true
}

// Wake returns a ready hook that publishes a task outcome and queues this action, under the manager lock,
// so queue order is completion order.
func (t *Tick) Wake() ReadyHook {
	id, m := t.id, t.manager
	return func(publish func()) { m.wake(id, publish) }
}

type entry struct {
	action  Action
	started bool
}

// Manager owns pending actions and drives them, either from Poll calls or its own ticker loop.
type Manager struct {
	logger zerolog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	order   []string
	woken   []string

	pollMu sync.Mutex
	signal chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	tickInterval time.Duration
}

// NewManager creates a manager whose loop polls every tickInterval once started
func NewManager(tickInterval time.Duration, logger zerolog.Logger) *Manager {
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		logger:       logger,
		entries:      make(map[string]*entry),
		signal:       make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
		tickInterval: tickInterval,
	}
}

// Add registers an action under id. It is a no-op returning ErrDuplicateAction while id is pending.
func (slf *Manager) Add(id string, action Action) error {
	slf.mu.Lock()
	if _, exists := slf.entries[id]; exists {
		slf.mu.Unlock()
		return ErrDuplicateAction
	}
	slf.entries[id] = &entry{action: action}
	slf.order = append(slf.order, id)
	slf.mu.Unlock()

	slf.notify()
	return nil
}

// Pending returns the number of actions not yet finished
func (slf *Manager) Pending() int {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	return len(slf.entries)
}

// Poll runs one scheduling cycle. Woken actions go first, in wake order, then the rest in insertion order.
// Each pending action is updated at most once per cycle.
func (slf *Manager) Poll() {
	slf.pollMu.Lock()
	defer slf.pollMu.Unlock()

	slf.mu.Lock()
	woken := slf.woken
	slf.woken = nil
	order := make([]string, len(slf.order))
	copy(order, slf.order)
	slf.mu.Unlock()

	visited := make(map[string]bool, len(order))
	for _, id := range woken {
		slf.step(id, visited, true)
	}
	for _, id := range order {
		slf.step(id, visited, false)
	}
}

// Start launches the polling loop
func (slf *Manager) Start() {
	slf.logger.Info().Dur("tickInterval", slf.tickInterval).Msg("Starting latent action manager")
	slf.wg.Add(1)
	go slf.loop()
}

// Stop ends the polling loop. Pending actions are left untouched.
func (slf *Manager) Stop() {
	slf.logger.Info().Msg("Stopping latent action manager")
	slf.cancel()
	slf.wg.Wait()
	slf.logger.Info().Int("pending", slf.Pending()).Msg("Latent action manager stopped")
}

func (slf *Manager) loop() {
	defer slf.wg.Done()

	ticker := time.NewTicker(slf.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-slf.ctx.Done():
			return
		case <-ticker.C:
			slf.Poll()
		case <-slf.signal:
			slf.Poll()
		}
	}
}

func (slf *Manager) step(id string, visited map[string]bool, woken bool) {
	if visited[id] {
		return
	}
	visited[id] = true

	slf.mu.Lock()
	e, ok := slf.entries[id]
	slf.mu.Unlock()
	if !ok {
		return
	}

	tick := &Tick{id: id, first: !e.started, woken: woken, manager: slf}
	e.started = true
	slf.update(e.action, tick)

	if tick.finished {
		slf.remove(id)
	}
}

// update shields the loop from a panicking action by aborting and finishing it
func (slf *Manager) update(action Action, tick *Tick) {
	defer func() {
		if r := recover(); r != nil {
			slf.logger.Error().Interface("panic", r).Str("actionId", tick.id).Msg("Latent action panicked, dropping it")
			if aborter, ok := action.(Aborter); ok {
				slf.abort(aborter, tick, fmt.Sprintf("action panicked: %v", r))
			}
			tick.finished = true
		}
	}()
	action.Update(tick)
}

func (slf *Manager) abort(aborter Aborter, tick *Tick, reason string) {
	defer func() {
		if r := recover(); r != nil {
			slf.logger.Error().Interface("panic", r).Str("actionId", tick.id).Msg("Latent action abort panicked")
		}
	}()
	aborter.Abort(tick, reason)
}

func (slf *Manager) remove(id string) {
	slf.mu.Lock()
	defer slf.mu.Unlock()

	delete(slf.entries, id)
	for i, pending := range slf.order {
		if pending == id {
			slf.order = append(slf.order[:i], slf.order[i+1:]...)
			break
		}
	}
}

func (slf *Manager) wake(id string, publish func()) {
	slf.mu.Lock()
	publish()
	slf.woken = append(slf.woken, id)
	slf.mu.Unlock()
	slf.notify()
}

func (slf *Manager) notify() {
	select {
	case slf.signal <- struct{}{}:
	default:
	}
}
