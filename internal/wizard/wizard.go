// Package wizard drives a citizen from photo capture to a persisted
// complaint: capture → details → location → submitting → done, with failed
// reachable from submitting and retryable.
package wizard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"civic-portal/internal/apperr"
	"civic-portal/internal/classify"
	"civic-portal/internal/complaint"
	"civic-portal/internal/events"
	"civic-portal/internal/models"
	"civic-portal/internal/repository"
)

var (
	ErrWrongStep        = errors.New("operation not allowed in the current step")
	ErrAlreadySubmitted = errors.New("draft already submitted")
	ErrSubmitInProgress = errors.New("draft submission already in progress")
)

// stepConflict explains why a draft could not be claimed for submission.
func stepConflict(s Step) error {
	switch s {
	case StepDone:
		return ErrAlreadySubmitted
	case StepSubmitting, "":
		return ErrSubmitInProgress
	}
	return ErrWrongStep
}

// Classifier is the slice of classify.Service the wizard needs.
type Classifier interface {
	Classify(ctx context.Context, img models.Image) (classify.Result, error)
}

// Locator resolves coordinates to a location that always carries an
// address, falling back to a coordinate string.
type Locator interface {
	Resolve(ctx context.Context, lat, lon float64) (models.Location, error)
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type DetailsInput struct {
	Category    models.Category `json:"category"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
}

type Wizard struct {
	classifier Classifier
	locator    Locator
	complaints repository.ComplaintRepository
	images     repository.ImageStore
	events     events.Publisher
	tracker    events.Tracker
	drafts     DraftStore
	log        zerolog.Logger
	now        func() time.Time
}

type Deps struct {
	Classifier Classifier
	Locator    Locator
	Complaints repository.ComplaintRepository
	Images     repository.ImageStore // optional
	Events     events.Publisher      // optional
	Tracker    events.Tracker        // optional
	// Drafts, when set, is where Submit claims the draft before uploading
	// and creating, so concurrent submits of one draft create one complaint.
	Drafts DraftStore
}

func New(log zerolog.Logger, d Deps) *Wizard {
	return &Wizard{
		classifier: d.Classifier,
		locator:    d.Locator,
		complaints: d.Complaints,
		images:     d.Images,
		events:     d.Events,
		tracker:    d.Tracker,
		drafts:     d.Drafts,
		log:        log.With().Str("component", "wizard").Logger(),
		now:        time.Now,
	}
}

// Start opens a draft. Device coordinates, when the client has them, are
// resolved right away so the location step starts pre-filled.
func (w *Wizard) Start(ctx context.Context, reporterID string, at *Coordinates) (*Draft, error) {
	reporterID = strings.TrimSpace(reporterID)
	if reporterID == "" {
		return nil, apperr.Invalid("reporterId", "is required")
	}
	now := w.now().UTC()
	d := &Draft{
		ID:         uuid.NewString(),
		ReporterID: reporterID,
		Step:       StepCapture,
		Priority:   models.PriorityMedium,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if at != nil {
		if err := w.setLocation(ctx, d, at.Latitude, at.Longitude); err != nil {
			w.log.Debug().Err(err).Msg("ignoring initial device location")
		}
	}
	return d, nil
}

// Capture stores the photo and asks the classifier for a category. A
// confident result fills category, department and a templated description
// only where the citizen has not typed anything yet.
func (w *Wizard) Capture(ctx context.Context, d *Draft, img models.Image) error {
	if d.Step != StepCapture {
		return ErrWrongStep
	}
	if len(img.Data) == 0 {
		return apperr.Invalid("image", "is required")
	}
	d.Image = &img
	d.ImageURL = nil
	d.Classification = nil
	w.touch(d)

	if w.classifier == nil {
		return nil
	}
	res, err := w.classifier.Classify(ctx, img)
	if err != nil {
		w.log.Warn().Err(err).Str("draft", d.ID).Msg("classification unavailable, manual entry")
		return nil
	}
	d.Classification = res.Record()
	if !res.Confident() {
		return nil
	}
	if d.Category == "" {
		d.Category = res.Category
		d.Department = complaint.Department(res.Category)
	}
	if strings.TrimSpace(d.Description) == "" {
		desc := classify.DescriptionTemplate(d.Category)
		if d.Location != nil {
			desc = classify.FillAddress(desc, d.Location.Address)
		}
		d.Description = desc
	}
	return nil
}

func (w *Wizard) SetDetails(d *Draft, in DetailsInput) error {
	if d.Step != StepDetails && d.Step != StepCapture && d.Step != StepLocation {
		return ErrWrongStep
	}
	if in.Category != "" {
		c, ok := complaint.ParseCategory(string(in.Category))
		if !ok {
			return apperr.Invalid("category", "unknown category "+string(in.Category))
		}
		d.Category = c
		d.Department = complaint.Department(c)
	}
	p, ok := complaint.ParsePriority(string(in.Priority))
	if !ok {
		return apperr.Invalid("priority", "unknown priority "+string(in.Priority))
	}
	if in.Priority != "" || d.Priority == "" {
		d.Priority = p
	}
	desc := strings.TrimSpace(in.Description)
	if desc != "" {
		if d.Location != nil {
			desc = classify.FillAddress(desc, d.Location.Address)
		}
		d.Description = desc
	}
	w.touch(d)
	return nil
}

// SetLocation handles a map click or marker drag.
func (w *Wizard) SetLocation(ctx context.Context, d *Draft, lat, lon float64) error {
	switch d.Step {
	case StepCapture, StepDetails, StepLocation:
	default:
		return ErrWrongStep
	}
	return w.setLocation(ctx, d, lat, lon)
}

func (w *Wizard) setLocation(ctx context.Context, d *Draft, lat, lon float64) error {
	loc, err := w.locator.Resolve(ctx, lat, lon)
	if err != nil {
		return err
	}
	d.Location = &loc
	d.Description = classify.FillAddress(d.Description, loc.Address)
	w.touch(d)
	return nil
}

// Next advances one step when the current one is complete.
func (w *Wizard) Next(d *Draft) error {
	if err := stepComplete(d); err != nil {
		return err
	}
	switch d.Step {
	case StepCapture:
		d.Step = StepDetails
	case StepDetails:
		d.Step = StepLocation
	default:
		return ErrWrongStep
	}
	w.touch(d)
	return nil
}

// Back moves one step towards capture and never clears entered fields.
func (w *Wizard) Back(d *Draft) error {
	switch d.Step {
	case StepDetails:
		d.Step = StepCapture
	case StepLocation:
		d.Step = StepDetails
	default:
		return ErrWrongStep
	}
	w.touch(d)
	return nil
}

// Submit persists the draft as one pending complaint. The stored draft is
// claimed first, so a second concurrent Submit gets ErrSubmitInProgress. An
// image upload failure only adds a warning. A repository failure leaves the
// draft in StepFailed with everything intact so Submit can be called again.
func (w *Wizard) Submit(ctx context.Context, d *Draft) (*models.Complaint, error) {
	if d.Step != StepLocation && d.Step != StepFailed {
		return nil, stepConflict(d.Step)
	}
	for _, check := range []func(*Draft) error{captureComplete, detailsComplete, locationComplete} {
		if err := check(d); err != nil {
			return nil, err
		}
	}
	if w.drafts != nil {
		cur, ok, err := w.drafts.Claim(ctx, d.ID, d.Step, StepSubmitting)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, stepConflict(cur)
		}
	}

	d.Step = StepSubmitting
	d.LastError = ""
	w.touch(d)

	if d.Image != nil && d.ImageURL == nil && w.images != nil {
		url, err := w.images.Upload(ctx, d.ReporterID, *d.Image)
		if err != nil {
			w.log.Warn().Err(err).Str("draft", d.ID).Msg("image upload failed, submitting without image")
			d.Warnings = append(d.Warnings, "Photo could not be uploaded; the complaint was filed without it.")
		} else {
			d.ImageURL = &url
		}
	}

	created, err := w.complaints.Create(ctx, &models.Complaint{
		ReporterID:       d.ReporterID,
		Category:         d.Category,
		Description:      classify.FillAddress(d.Description, d.Location.Address),
		Priority:         d.Priority,
		Location:         *d.Location,
		ImageURL:         d.ImageURL,
		ClassifierResult: d.Classification,
	})
	if err != nil {
		d.Step = StepFailed
		d.LastError = err.Error()
		w.touch(d)
		w.log.Error().Err(err).Str("draft", d.ID).Msg("complaint create failed")
		return nil, err
	}

	d.Step = StepDone
	d.ComplaintID = created.ID
	d.Image = nil // bytes are no longer needed once the complaint exists
	w.touch(d)
	w.announce(ctx, created)
	return created, nil
}

func (w *Wizard) announce(ctx context.Context, c *models.Complaint) {
	if w.events != nil {
		if err := w.events.Publish(ctx, events.FromComplaint(events.ComplaintCreated, c)); err != nil {
			w.log.Warn().Err(err).Str("complaint", c.ID).Msg("publish created event")
		}
	}
	if w.tracker != nil {
		if err := w.tracker.MarkSubmitted(ctx, c.ReporterID, c.CreatedAt); err != nil {
			w.log.Warn().Err(err).Str("complaint", c.ID).Msg("mark submitted")
		}
	}
}

func (w *Wizard) touch(d *Draft) { d.UpdatedAt = w.now().UTC() }
