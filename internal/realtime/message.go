package realtime

import (
	"courier/internal/api/models"

	"github.com/goccy/go-json"
)

const (
	TypeTaskCompleted = "task.completed"
	TypeSubscribed    = "task.subscribed"
	TypeError         = "error"
)

// incomingMsg represents a command from the client.
type incomingMsg struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	TaskID string `json:"taskId"`
}

// Envelope is what clients receive
type Envelope struct {
	Type    string          `json:"type"`
	TaskID  string          `json:"taskId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func encodeEnvelope(kind, taskID string, payload any) ([]byte, error) {
	env := Envelope{Type: kind, TaskID: taskID}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

func completionEnvelope(record models.TaskRecord) ([]byte, error) {
	return encodeEnvelope(TypeTaskCompleted, record.ID, record)
}
