package realtime

import (
	"fmt"
	"strings"

	"courier/internal/api/models"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const DefaultSubjectPrefix = "courier"

// completionSubject is "<prefix>.task.<taskID>.completed"
func completionSubject(prefix, taskID string) string {
	return fmt.Sprintf("%s.task.%s.completed", prefix, taskID)
}

// parseTaskIDFromSubject extracts the task id from "<prefix>.task.<taskID>.completed"
func parseTaskIDFromSubject(prefix, subject string) (string, error) {
	rest, ok := strings.CutPrefix(subject, prefix+".task.")
	if !ok {
		return "", fmt.Errorf("subject %q does not start with %q", subject, prefix+".task.")
	}
	taskID, ok := strings.CutSuffix(rest, ".completed")
	if !ok || taskID == "" || strings.Contains(taskID, ".") {
		return "", fmt.Errorf("invalid task id in subject %q", subject)
	}
	return taskID, nil
}

// NATSPublisher publishes every completed task record on its own subject
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger
}

func NewNATSPublisher(conn *nats.Conn, prefix string, logger zerolog.Logger) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}
}

func (p *NATSPublisher) TaskCompleted(record models.TaskRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		p.logger.Error().Err(err).Str("taskId", record.ID).Msg("Failed to encode task completion")
		return
	}
	subject := completionSubject(p.prefix, record.ID)
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("Failed to publish task completion")
	}
}

// NATSBridge subscribes to published completions and pushes them into the Hub.
type NATSBridge struct {
	conn   *nats.Conn
	hub    *Hub
	prefix string
	logger zerolog.Logger
}

func NewNATSBridge(natsURL, prefix string, hub *Hub, logger zerolog.Logger) (*NATSBridge, error) {
	nc, err := nats.Connect(natsURL, nats.Name("courier-realtime"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSBridge{conn: nc, hub: hub, prefix: prefix, logger: logger}, nil
}

// Subscribe listens on <prefix>.task.*.completed
func (b *NATSBridge) Subscribe() error {
	subject := completionSubject(b.prefix, "*")
	_, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		taskID, err := parseTaskIDFromSubject(b.prefix, msg.Subject)
		if err != nil {
			b.logger.Warn().Err(err).Msg("Ignoring nats message")
			return
		}

		envelope := Envelope{
			Type:    TypeTaskCompleted,
			TaskID:  taskID,
			Payload: json.RawMessage(msg.Data),
		}
		data, err := json.Marshal(envelope)
		if err != nil {
			b.logger.Error().Err(err).Msg("Failed to encode envelope")
			return
		}
		b.hub.Publish(taskID, data)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %q: %w", subject, err)
	}

	b.logger.Info().Str("subject", subject).Msg("NATS bridge subscribed")
	return nil
}

// Close drains the NATS connection.
func (b *NATSBridge) Close() {
	if err := b.conn.Drain(); err != nil {
		b.logger.Error().Err(err).Msg("NATS drain failed")
	}
}
