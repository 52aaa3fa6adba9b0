// Package notify announces finished optimization runs to interested
// collaborators (dashboards, downstream reporting). The optimizer core never
// talks to the network; the service layer calls a Notifier after a run.
package notify

import (
	"time"

	"github.com/relayops/modbalance/core/balancer"
)

// RunSummary is the payload published for a completed run.
type RunSummary struct {
	RunID           string    `json:"run_id"`
	Status          string    `json:"status"`
	ProvenOptimal   bool      `json:"proven_optimal"`
	Objective       float64   `json:"objective"`
	MovedInstances  int       `json:"moved_instances"`
	TotalSlackHours float64   `json:"total_slack_hours"`
	TypeSlackHours  float64   `json:"type_slack_hours"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Summarize builds the notification payload from a run result.
func Summarize(res *balancer.Result, completedAt time.Time) RunSummary {
	return RunSummary{
		RunID:           res.RunID,
		Status:          res.Status.String(),
		ProvenOptimal:   res.ProvenOptimal,
		Objective:       res.Objective,
		MovedInstances:  res.MovedCount,
		TotalSlackHours: res.TotalSlackHours,
		TypeSlackHours:  res.TypeSlackHours,
		CompletedAt:     completedAt,
	}
}

// Notifier publishes run summaries.
type Notifier interface {
	NotifyRunComplete(RunSummary) error
	Close() error
}

// NopNotifier drops all notifications.
type NopNotifier struct{}

func (NopNotifier) NotifyRunComplete(RunSummary) error { return nil }
func (NopNotifier) Close() error                       { return nil }
