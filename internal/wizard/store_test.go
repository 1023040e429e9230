package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-portal/internal/apperr"
	"civic-portal/internal/models"
)

func TestMemoryDraftStore_ExpiresIdleDrafts(t *testing.T) {
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryDraftStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &Draft{ID: "fresh", UpdatedAt: now.Add(-time.Hour)}))
	require.NoError(t, s.Save(ctx, &Draft{ID: "stale", UpdatedAt: now.Add(-DraftTTL)}))

	d, err := s.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", d.ID)

	_, err = s.Get(ctx, "stale")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Equal(t, 1, s.Purge())
	assert.Equal(t, 0, s.Purge())
}

func TestMemoryDraftStore_ClaimIsExclusive(t *testing.T) {
	s := NewMemoryDraftStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, &Draft{ID: "d-1", Step: StepLocation, UpdatedAt: time.Now()}))

	cur, ok, err := s.Claim(ctx, "d-1", StepLocation, StepSubmitting)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StepSubmitting, cur)

	cur, ok, err = s.Claim(ctx, "d-1", StepLocation, StepSubmitting)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StepSubmitting, cur)

	d, err := s.Get(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, StepSubmitting, d.Step)

	_, _, err = s.Claim(ctx, "missing", StepLocation, StepSubmitting)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDraftJSON_KeepsImageBytes(t *testing.T) {
	url := "https://img.example/u-1/a.jpg"
	in := &Draft{
		ID:         "d-7",
		ReporterID: "u-1",
		Step:       StepFailed,
		Image: &models.Image{
			Filename:    "hole.jpg",
			ContentType: "image/jpeg",
			Data:        []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'},
		},
		Classification: &models.ClassifierResult{Label: "pothole", Confidence: 0.91},
		Category:       models.CategoryPothole,
		Department:     "Road Authority",
		Description:    "deep hole",
		Priority:       models.PriorityHigh,
		Location:       &models.Location{Latitude: 12.97, Longitude: 77.59, Address: "MG Road"},
		ImageURL:       &url,
		Warnings:       []string{"image upload skipped"},
		LastError:      "connection refused",
		CreatedAt:      time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 7, 1, 9, 5, 0, 0, time.UTC),
	}

	raw, err := encodeDraft(in)
	require.NoError(t, err)
	out, err := decodeDraft(raw)
	require.NoError(t, err)

	assert.Equal(t, in, out)
	require.NotNil(t, out.Image)
	assert.Equal(t, in.Image.Data, out.Image.Data)

	_, err = decodeDraft([]byte("{not json"))
	assert.Error(t, err)
}
