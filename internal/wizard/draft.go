package wizard

import (
	"time"

	"civic-portal/internal/models"
)

type Step string

const (
	StepCapture    Step = "capture"
	StepDetails    Step = "details"
	StepLocation   Step = "location"
	StepSubmitting Step = "submitting"
	StepDone       Step = "done"
	StepFailed     Step = "failed"
)

// Draft is everything a citizen has entered so far. It lives in a
// DraftStore between API calls.
type Draft struct {
	ID             string                   `json:"id"`
	ReporterID     string                   `json:"reporterId"`
	Step           Step                     `json:"step"`
	Image          *models.Image            `json:"image,omitempty"`
	Classification *models.ClassifierResult `json:"classification,omitempty"`
	Category       models.Category          `json:"category"`
	Department     string                   `json:"department"`
	Description    string                   `json:"description"`
	Priority       models.Priority          `json:"priority"`
	Location       *models.Location         `json:"location,omitempty"`
	ImageURL       *string                  `json:"imageUrl,omitempty"`
	Warnings       []string                 `json:"warnings,omitempty"`
	LastError      string                   `json:"lastError,omitempty"`
	ComplaintID    string                   `json:"complaintId,omitempty"`
	CreatedAt      time.Time                `json:"createdAt"`
	UpdatedAt      time.Time                `json:"updatedAt"`
}

// View is the client-facing form of a draft, without image bytes.
type View struct {
	ID             string                   `json:"id"`
	Step           Step                     `json:"step"`
	HasImage       bool                     `json:"hasImage"`
	Classification *models.ClassifierResult `json:"classification,omitempty"`
	Category       models.Category          `json:"category"`
	Department     string                   `json:"department"`
	Description    string                   `json:"description"`
	Priority       models.Priority          `json:"priority"`
	Location       *models.Location         `json:"location,omitempty"`
	ImageURL       *string                  `json:"imageUrl,omitempty"`
	Warnings       []string                 `json:"warnings,omitempty"`
	LastError      string                   `json:"lastError,omitempty"`
	ComplaintID    string                   `json:"complaintId,omitempty"`
	CanAdvance     bool                     `json:"canAdvance"`
	UpdatedAt      time.Time                `json:"updatedAt"`
}

func (d *Draft) View() View {
	return View{
		ID:             d.ID,
		Step:           d.Step,
		HasImage:       d.Image != nil,
		Classification: d.Classification,
		Category:       d.Category,
		Department:     d.Department,
		Description:    d.Description,
		Priority:       d.Priority,
		Location:       d.Location,
		ImageURL:       d.ImageURL,
		Warnings:       d.Warnings,
		LastError:      d.LastError,
		ComplaintID:    d.ComplaintID,
		CanAdvance:     stepComplete(d) == nil,
		UpdatedAt:      d.UpdatedAt,
	}
}
