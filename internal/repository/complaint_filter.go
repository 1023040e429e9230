package repository

import (
	"net/url"
	"strings"

	"civic-portal/internal/apperr"
	"civic-portal/internal/complaint"
	"civic-portal/internal/models"
	"civic-portal/internal/utils"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ComplaintFilter narrows ListAll. Zero values mean "no filter".
type ComplaintFilter struct {
	Status     models.Status
	Category   models.Category
	Department string
	SearchText string
	Limit      int
	Offset     int
}

// Validate rejects unknown enum values and clamps pagination.
func (f *ComplaintFilter) Validate() error {
	f.Department = strings.TrimSpace(f.Department)
	f.SearchText = strings.TrimSpace(f.SearchText)
	if f.Status != "" {
		s, ok := complaint.ParseStatus(string(f.Status))
		if !ok {
			return apperr.Invalid("status", "unknown status "+string(f.Status))
		}
		f.Status = s
	}
	if f.Category != "" {
		c, ok := complaint.ParseCategory(string(f.Category))
		if !ok {
			return apperr.Invalid("category", "unknown category "+string(f.Category))
		}
		f.Category = c
	}
	if f.Limit <= 0 || f.Limit > MaxLimit {
		f.Limit = DefaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return nil
}

// FilterFromQuery builds a validated filter from dashboard query params:
// status, category, department, q, limit, offset.
func FilterFromQuery(qv url.Values) (ComplaintFilter, error) {
	f := ComplaintFilter{
		Status:     models.Status(qv.Get("status")),
		Category:   models.Category(qv.Get("category")),
		Department: qv.Get("department"),
		SearchText: qv.Get("q"),
		Limit:      utils.QueryInt(qv, "limit", DefaultLimit),
		Offset:     utils.QueryInt(qv, "offset", 0),
	}
	// "all" is what the dashboard dropdowns send for no filter
	if strings.EqualFold(string(f.Status), "all") {
		f.Status = ""
	}
	if strings.EqualFold(string(f.Category), "all") {
		f.Category = ""
	}
	if err := f.Validate(); err != nil {
		return ComplaintFilter{}, err
	}
	return f, nil
}
