// Package events carries complaint lifecycle notifications from the wizard
// and the admin API to whoever is watching: dashboards over websocket and
// the per-reporter progress tracker.
package events

import (
	"context"
	"time"

	"civic-portal/internal/models"
)

type Kind string

const (
	ComplaintCreated Kind = "complaint.created"
	ComplaintUpdated Kind = "complaint.updated"
)

type Event struct {
	Kind        Kind            `json:"kind"`
	ComplaintID string          `json:"complaintId"`
	ReporterID  string          `json:"reporterId"`
	Status      models.Status   `json:"status"`
	Category    models.Category `json:"category"`
	At          time.Time       `json:"at"`
}

func FromComplaint(kind Kind, c *models.Complaint) Event {
	return Event{
		Kind:        kind,
		ComplaintID: c.ID,
		ReporterID:  c.ReporterID,
		Status:      c.Status,
		Category:    c.Category,
		At:          c.UpdatedAt,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Bus fans events out to subscribers. The returned cancel func must be
// called to release the subscription.
type Bus interface {
	Publisher
	Subscribe(ctx context.Context) (<-chan Event, func())
}
