package complaint

import (
	"strings"

	"civic-portal/internal/models"
)

var departments = map[models.Category]string{
	models.CategoryPothole:     "Road Authority",
	models.CategoryGarbage:     "Sanitation Department",
	models.CategorySewage:      "Water & Sewerage Board",
	models.CategoryStreetLight: "Electricity Department",
	models.CategoryFallenTree:  "Parks & Horticulture Department",
}

// Department returns the owning department for a category, or "" when the
// category is unknown.
func Department(c models.Category) string {
	return departments[c]
}

// ParseCategory accepts the canonical names case-insensitively, plus the
// spaced forms the dashboards display ("Street Light", "Fallen Tree").
func ParseCategory(s string) (models.Category, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	for _, c := range models.Categories {
		if strings.ToLower(string(c)) == key {
			return c, true
		}
	}
	return "", false
}

func ParsePriority(s string) (models.Priority, bool) {
	p := models.Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return models.PriorityMedium, true
	}
	return p, p.Valid()
}
