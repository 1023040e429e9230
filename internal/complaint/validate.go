// Package complaint holds the rules every complaint obeys regardless of
// where it is stored: the category to department table, required fields
// and the status lifecycle.
package complaint

import (
	"math"
	"strings"
	"time"

	"civic-portal/internal/apperr"
	"civic-portal/internal/models"
)

func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Prepare normalizes a new complaint and checks its required fields. It sets
// the creation-time defaults: pending status, medium priority, derived
// department, timestamps and a nil resolvedAt. The id is left to the store.
func Prepare(c *models.Complaint, now time.Time) error {
	c.ReporterID = strings.TrimSpace(c.ReporterID)
	c.Description = strings.TrimSpace(c.Description)
	c.Location.Address = strings.TrimSpace(c.Location.Address)

	if c.ReporterID == "" {
		return apperr.Invalid("reporterId", "is required")
	}
	if !c.Category.Valid() {
		return apperr.Invalid("category", "is required")
	}
	if c.Description == "" {
		return apperr.Invalid("description", "is required")
	}
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	if !c.Priority.Valid() {
		return apperr.Invalid("priority", "unknown priority "+string(c.Priority))
	}
	if !ValidCoordinates(c.Location.Latitude, c.Location.Longitude) {
		return apperr.Invalid("location", "latitude/longitude out of range")
	}
	if c.Location.Address == "" {
		return apperr.Invalid("location.address", "is required")
	}
	if c.ImageURL != nil && strings.TrimSpace(*c.ImageURL) == "" {
		c.ImageURL = nil
	}

	c.Department = Department(c.Category)
	c.Status = models.StatusPending
	c.ResolvedAt = nil
	c.AdminNotes = nil
	c.AssignedTo = nil
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}
