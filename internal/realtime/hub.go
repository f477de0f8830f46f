package realtime

import (
	"context"
	"time"

	"courier/internal/api/models"

	"github.com/rs/zerolog"
)

// TaskLookup lets the hub answer subscriptions to tasks that already finished
type TaskLookup interface {
	Get(ctx context.Context, id string) (models.TaskRecord, error)
}

// Hub manages WebSocket clients and routes completions by task id.
// All maps are owned by the Run goroutine.
type Hub struct {
	logger zerolog.Logger
	lookup TaskLookup

	// Registered clients
	clients map[*Client]bool

	// taskID -> set of subscribed clients
	subscriptions map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscribeMsg
	unsubscribe chan subscribeMsg
	broadcast   chan broadcastMsg
	stats       chan chan int
	done        chan struct{}
}

type subscribeMsg struct {
	client *Client
	taskID string
}

type broadcastMsg struct {
	taskID  string
	payload []byte
}

// NewHub creates a hub; lookup may be nil
func NewHub(lookup TaskLookup, logger zerolog.Logger) *Hub {
	return &Hub{
		logger:        logger,
		lookup:        lookup,
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan subscribeMsg),
		unsubscribe:   make(chan subscribeMsg),
		broadcast:     make(chan broadcastMsg, 256),
		stats:         make(chan chan int),
		done:          make(chan struct{}),
	}
}

// Run processes hub events until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*Client]bool)
			h.subscriptions = make(map[string]map[*Client]bool)
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug().Int("total", len(h.clients)).Msg("Realtime client registered")

		case client := <-h.unregister:
			h.drop(client)

		case msg := <-h.subscribe:
			if !h.clients[msg.client] {
				continue
			}
			if _, ok := h.subscriptions[msg.taskID]; !ok {
				h.subscriptions[msg.taskID] = make(map[*Client]bool)
			}
			h.subscriptions[msg.taskID][msg.client] = true
			h.logger.Debug().Str("taskId", msg.taskID).Int("subscribers", len(h.subscriptions[msg.taskID])).Msg("Client subscribed to task")

			h.deliver(msg.client, TypeSubscribed, msg.taskID)
			h.replayIfDone(msg.client, msg.taskID)

		case msg := <-h.unsubscribe:
			if subs, ok := h.subscriptions[msg.taskID]; ok {
				delete(subs, msg.client)
				if len(subs) == 0 {
					delete(h.subscriptions, msg.taskID)
				}
			}

		case msg := <-h.broadcast:
			subs, ok := h.subscriptions[msg.taskID]
			if !ok {
				continue
			}
			for client := range subs {
				select {
				case client.send <- msg.payload:
				default:
					h.logger.Warn().Str("taskId", msg.taskID).Msg("Realtime client buffer full, dropping client")
					h.drop(client)
				}
			}
			// a task completes once, so its room is done
			delete(h.subscriptions, msg.taskID)

		case reply := <-h.stats:
			reply <- len(h.clients)
		}
	}
}

// TaskCompleted pushes record to every client subscribed to it. It never blocks the caller.
func (h *Hub) TaskCompleted(record models.TaskRecord) {
	payload, err := completionEnvelope(record)
	if err != nil {
		h.logger.Error().Err(err).Str("taskId", record.ID).Msg("Failed to encode task completion")
		return
	}
	h.Publish(record.ID, payload)
}

// Publish queues an already encoded envelope for the subscribers of taskID
func (h *Hub) Publish(taskID string, payload []byte) {
	select {
	case h.broadcast <- broadcastMsg{taskID: taskID, payload: payload}:
	default:
		h.logger.Warn().Str("taskId", taskID).Msg("Realtime broadcast queue full, completion dropped")
	}
}

// ClientCount returns the number of connected clients, or 0 once Run has returned
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.stats <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// send hands a client event to the Run goroutine unless it has stopped
func (h *Hub) send(ch chan subscribeMsg, msg subscribeMsg) bool {
	select {
	case ch <- msg:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	for taskID, subs := range h.subscriptions {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, taskID)
		}
	}
	h.logger.Debug().Int("total", len(h.clients)).Msg("Realtime client unregistered")
}

func (h *Hub) deliver(client *Client, kind, taskID string) {
	payload, err := encodeEnvelope(kind, taskID, nil)
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
	}
}

func (h *Hub) replayIfDone(client *Client, taskID string) {
	if h.lookup == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	record, err := h.lookup.Get(ctx, taskID)
	if err != nil || !record.Done() {
		return
	}
	payload, err := completionEnvelope(record)
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
	}
	if subs, ok := h.subscriptions[taskID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, taskID)
		}
	}
}
