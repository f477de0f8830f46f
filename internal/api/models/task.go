package models

import "time"

type TaskKind string

const (
	TaskKindHTTP    TaskKind = "http"
	TaskKindEmail   TaskKind = "email"
	TaskKindCapture TaskKind = "capture"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusFailed    TaskStatus = "failed"
)

// TaskRecord is the externally visible state of a dispatched task
type TaskRecord struct {
	ID          string     `json:"id"`
	Kind        TaskKind   `json:"kind"`
	Status      TaskStatus `json:"status"`
	StatusCode  int        `json:"statusCode,omitempty"`
	Body        string     `json:"body,omitempty"`
	ContentType string     `json:"contentType,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (r TaskRecord) Done() bool {
	return r.Status == TaskStatusSucceeded || r.Status == TaskStatusFailed
}
