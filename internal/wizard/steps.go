package wizard

import (
	"strings"

	"civic-portal/internal/apperr"
	"civic-portal/internal/complaint"
)

func captureComplete(d *Draft) error {
	if d.Image == nil || len(d.Image.Data) == 0 {
		return apperr.Invalid("image", "is required")
	}
	return nil
}

func detailsComplete(d *Draft) error {
	if !d.Category.Valid() {
		return apperr.Invalid("category", "is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		return apperr.Invalid("description", "is required")
	}
	return nil
}

func locationComplete(d *Draft) error {
	if d.Location == nil || strings.TrimSpace(d.Location.Address) == "" {
		return apperr.Invalid("location", "is required")
	}
	if !complaint.ValidCoordinates(d.Location.Latitude, d.Location.Longitude) {
		return apperr.Invalid("location", "latitude/longitude out of range")
	}
	return nil
}

// stepComplete reports whether the draft may leave its current step.
func stepComplete(d *Draft) error {
	switch d.Step {
	case StepCapture:
		return captureComplete(d)
	case StepDetails:
		return detailsComplete(d)
	case StepLocation:
		return locationComplete(d)
	}
	return ErrWrongStep
}
