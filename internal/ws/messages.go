package ws

import (
	"time"

	"github.com/trego/provider/internal/job"
)

const (
	TypeAck        = "ack"
	TypeJobUpdated = "job_updated"
	TypeHeartbeat  = "heartbeat"
	TypeQuit       = "quit"
)

type BaseMessage struct {
	Type string `json:"type"`
}

// Client → Server

type HeartbeatMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Server → Client

type AckMessage struct {
	Type         string `json:"type"`
	SubscriberID string `json:"subscriber_id"`
	Message      string `json:"message"`
}

type JobUpdatedMessage struct {
	Type   string     `json:"type"`
	Action job.Action `json:"action"`
	Job    job.Job    `json:"job"`
}
