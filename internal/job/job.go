package job

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusEnRoute   Status = "en-route"
	StatusOnSite    Status = "on-site"
	StatusPaused    Status = "paused"
	StatusDelayed   Status = "delayed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusEnRoute,
	StatusOnSite,
	StatusPaused,
	StatusDelayed,
	StatusCompleted,
	StatusCancelled,
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further lifecycle operation applies.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
	PriorityNormal Priority = "normal"
)

type Kind string

const (
	KindFixed Kind = "fixed"
	KindBid   Kind = "bid"
)

// Notes decodes from either a single string or a list of strings.
type Notes []string

func (n *Notes) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*n = nil
		} else {
			*n = Notes{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*n = many
	return nil
}

func (n *Notes) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		if single != "" {
			*n = Notes{single}
		}
		return nil
	}
	var many []string
	if err := value.Decode(&many); err != nil {
		return err
	}
	*n = many
	return nil
}

type Job struct {
	ID                string   `json:"id" yaml:"id"`
	Title             string   `json:"title" yaml:"title"`
	Description       string   `json:"description" yaml:"description"`
	Category          string   `json:"category" yaml:"category"`
	Client            string   `json:"client" yaml:"client"`
	ClientRating      float64  `json:"clientRating,omitempty" yaml:"clientRating"`
	ClientNIF         string   `json:"clientNif,omitempty" yaml:"clientNif"`
	Avatar            string   `json:"avatar,omitempty" yaml:"avatar"`
	PhoneNumber       string   `json:"phoneNumber,omitempty" yaml:"phoneNumber"`
	Location          string   `json:"location" yaml:"location"` // distance label, e.g. "1.2 miles away"
	Address           string   `json:"address" yaml:"address"`
	BidAmount         string   `json:"bidAmount,omitempty" yaml:"bidAmount"`
	EstimatedPrice    string   `json:"estimatedPrice,omitempty" yaml:"estimatedPrice"`
	ActualPrice       string   `json:"actualPrice,omitempty" yaml:"actualPrice"`
	ScheduledDate     string   `json:"scheduledDate" yaml:"scheduledDate"`
	ScheduledTime     string   `json:"scheduledTime" yaml:"scheduledTime"`
	EstimatedDuration string   `json:"estimatedDuration,omitempty" yaml:"estimatedDuration"`
	Priority          Priority `json:"priority" yaml:"priority"`
	JobType           Kind     `json:"jobType,omitempty" yaml:"jobType"`
	TimePosted        string   `json:"timePosted,omitempty" yaml:"timePosted"`
	Notes             Notes    `json:"notes,omitempty" yaml:"notes"`

	Status         Status `json:"status" yaml:"status"`
	PreviousStatus Status `json:"previousStatus,omitempty" yaml:"previousStatus"` // only while paused

	DelayReason  string     `json:"delayReason,omitempty" yaml:"delayReason"`
	DelayedSince *time.Time `json:"delayedSince,omitempty" yaml:"-"`

	StartedAt     *time.Time `json:"startedAt,omitempty" yaml:"-"`
	OnSiteAt      *time.Time `json:"onSiteAt,omitempty" yaml:"-"`
	PausedAt      *time.Time `json:"pausedAt,omitempty" yaml:"-"`
	ResumedAt     *time.Time `json:"resumedAt,omitempty" yaml:"-"`
	CompletedAt   *time.Time `json:"completedAt,omitempty" yaml:"-"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty" yaml:"-"`
	RescheduledAt *time.Time `json:"rescheduledAt,omitempty" yaml:"-"`

	PauseReason         string `json:"pauseReason,omitempty" yaml:"-"`
	CancellationReason  string `json:"cancellationReason,omitempty" yaml:"-"`
	RecentlyRescheduled bool   `json:"recentlyRescheduled,omitempty" yaml:"-"`

	CreatedAt *time.Time `json:"createdAt,omitempty" yaml:"-"`
	UpdatedAt *time.Time `json:"updatedAt" yaml:"-"`
}

func timePtr(t time.Time) *time.Time {
	return &t
}
