package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"civic-portal/internal/models"
	"civic-portal/internal/repository"
)

func TestBuildComplaintWhere_Empty(t *testing.T) {
	where, args := buildComplaintWhere(repository.ComplaintFilter{})
	assert.Equal(t, "WHERE 1=1", where)
	assert.Empty(t, args)
}

func TestBuildComplaintWhere_AllFilters(t *testing.T) {
	where, args := buildComplaintWhere(repository.ComplaintFilter{
		Status:     models.StatusPending,
		Category:   models.CategoryGarbage,
		Department: "Sanitation Department",
		SearchText: "100%_bin",
	})

	assert.Equal(t,
		"WHERE 1=1 AND (c.description ILIKE $1 OR c.address ILIKE $2) AND c.status = $3 AND c.category = $4 AND c.department = $5",
		where)
	assert.Equal(t, []any{
		`%100\%\_bin%`, `%100\%\_bin%`,
		models.StatusPending, models.CategoryGarbage, "Sanitation Department",
	}, args)
}

func TestAddStats(t *testing.T) {
	st := &models.Stats{ByCategory: map[models.Category]int{}}
	addStats(st, models.StatusPending, models.CategoryPothole, 3)
	addStats(st, models.StatusResolved, models.CategoryPothole, 2)
	addStats(st, models.StatusInProgress, models.CategoryGarbage, 1)

	assert.Equal(t, 6, st.Total)
	assert.Equal(t, 3, st.Pending)
	assert.Equal(t, 1, st.InProgress)
	assert.Equal(t, 2, st.Resolved)
	assert.Equal(t, 5, st.ByCategory[models.CategoryPothole])
}
