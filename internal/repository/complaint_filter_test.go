package repository

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-portal/internal/apperr"
	"civic-portal/internal/models"
)

func TestFilterFromQuery(t *testing.T) {
	f, err := FilterFromQuery(url.Values{
		"status":   {"in-progress"},
		"category": {"street light"},
		"q":        {"  garbage "},
		"limit":    {"5000"},
		"offset":   {"-3"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, f.Status)
	assert.Equal(t, models.CategoryStreetLight, f.Category)
	assert.Equal(t, "garbage", f.SearchText)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)
}

func TestFilterFromQuery_AllMeansNoFilter(t *testing.T) {
	f, err := FilterFromQuery(url.Values{"status": {"all"}, "category": {"All"}})
	require.NoError(t, err)
	assert.Empty(t, f.Status)
	assert.Empty(t, f.Category)
}

func TestFilterValidate_UnknownStatus(t *testing.T) {
	f := ComplaintFilter{Status: "closed"}
	err := f.Validate()
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status", ve.Field)
}
