package complaint

import (
	"strings"
	"time"

	"civic-portal/internal/apperr"
	"civic-portal/internal/models"
)

// transitions lists, per status, the statuses an admin may move it to.
// Self-transitions are always allowed so notes and assignment can change
// without touching status.
var transitions = map[models.Status][]models.Status{
	models.StatusPending:    {models.StatusInProgress, models.StatusResolved, models.StatusRejected},
	models.StatusInProgress: {models.StatusResolved, models.StatusRejected},
	models.StatusResolved:   nil,
	models.StatusRejected:   nil,
}

// ParseStatus normalizes user input. "registered" is the label some views
// use for a freshly created complaint and maps to pending.
func ParseStatus(s string) (models.Status, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "-", "_")
	v = strings.ReplaceAll(v, " ", "_")
	switch v {
	case "registered", "pending":
		return models.StatusPending, true
	case "in_progress", "inprogress":
		return models.StatusInProgress, true
	case "resolved":
		return models.StatusResolved, true
	case "rejected":
		return models.StatusRejected, true
	}
	return "", false
}

func CanTransition(from, to models.Status) bool {
	if from == to {
		_, known := transitions[from]
		return known
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyUpdate mutates c in place according to u, enforcing the status
// transition table and the resolvedAt/department invariants.
func ApplyUpdate(c *models.Complaint, u models.ComplaintUpdate, now time.Time) error {
	if u.Status != nil {
		to := *u.Status
		if _, ok := transitions[to]; !ok {
			return apperr.Invalid("status", "unknown status "+string(to))
		}
		if !CanTransition(c.Status, to) {
			return apperr.Invalid("status", "cannot move from "+string(c.Status)+" to "+string(to))
		}
	}
	if u.Priority != nil && !u.Priority.Valid() {
		return apperr.Invalid("priority", "unknown priority "+string(*u.Priority))
	}
	if u.Category != nil && !u.Category.Valid() {
		return apperr.Invalid("category", "unknown category "+string(*u.Category))
	}

	if u.Status != nil && *u.Status != c.Status {
		c.Status = *u.Status
		if c.Status == models.StatusResolved {
			t := now
			c.ResolvedAt = &t
		} else {
			c.ResolvedAt = nil
		}
	}
	if u.Priority != nil {
		c.Priority = *u.Priority
	}
	if u.Category != nil {
		c.Category = *u.Category
		c.Department = Department(c.Category)
	}
	if u.AdminNotes != nil {
		c.AdminNotes = trimmedOrNil(*u.AdminNotes)
	}
	if u.AssignedTo != nil {
		c.AssignedTo = trimmedOrNil(*u.AssignedTo)
	}
	c.UpdatedAt = now
	return nil
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
