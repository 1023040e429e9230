package models

import "time"

type Category string

const (
	CategoryPothole     Category = "Pothole"
	CategoryGarbage     Category = "Garbage"
	CategorySewage      Category = "Sewage"
	CategoryStreetLight Category = "StreetLight"
	CategoryFallenTree  Category = "FallenTree"
)

// Categories lists every reportable category in display order.
var Categories = []Category{
	CategoryPothole,
	CategoryGarbage,
	CategorySewage,
	CategoryStreetLight,
	CategoryFallenTree,
}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// ClassifierResult is what the image model said at capture time.
type ClassifierResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type Complaint struct {
	ID               string            `json:"id"`
	ReporterID       string            `json:"reporterId"`
	Category         Category          `json:"category"`
	Description      string            `json:"description"`
	Priority         Priority          `json:"priority"`
	Department       string            `json:"department"`
	Location         Location          `json:"location"`
	ImageURL         *string           `json:"imageUrl"`
	ClassifierResult *ClassifierResult `json:"classifierResult,omitempty"`
	Status           Status            `json:"status"`
	AdminNotes       *string           `json:"adminNotes,omitempty"`
	AssignedTo       *string           `json:"assignedTo,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	ResolvedAt       *time.Time        `json:"resolvedAt"`
}

// ComplaintUpdate is a partial admin edit. Nil fields are left untouched.
type ComplaintUpdate struct {
	Status     *Status   `json:"status,omitempty"`
	Priority   *Priority `json:"priority,omitempty"`
	Category   *Category `json:"category,omitempty"`
	AdminNotes *string   `json:"adminNotes,omitempty"`
	AssignedTo *string   `json:"assignedTo,omitempty"`
}

type Stats struct {
	Total      int              `json:"total"`
	Pending    int              `json:"pending"`
	InProgress int              `json:"inProgress"`
	Resolved   int              `json:"resolved"`
	Rejected   int              `json:"rejected"`
	ByCategory map[Category]int `json:"byCategory"`
}
