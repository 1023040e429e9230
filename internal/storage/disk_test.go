package storage

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-portal/internal/apperr"
	"civic-portal/internal/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 120, G: 90, B: 60, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestDiskStore_UploadNamespacedByOwner(t *testing.T) {
	root := t.TempDir()
	s, err := NewDiskStore(root, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := s.Upload(context.Background(), "user-42", models.Image{Filename: "hole.png", Data: pngBytes(t, 3200, 800)})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/user-42/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	rel := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	stored, err := imaging.Open(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, MaxDimension, stored.Bounds().Dx(), "long side is scaled down")
	assert.Equal(t, 400, stored.Bounds().Dy())
}

func TestDiskStore_Rejections(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	cases := map[string]struct {
		owner string
		data  []byte
	}{
		"empty":          {"user-1", nil},
		"not an image":   {"user-1", []byte("%PDF-1.4 definitely a pdf")},
		"path traversal": {"../etc", pngBytes(t, 4, 4)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Upload(ctx, tc.owner, models.Image{Data: tc.data})
			var ue *apperr.UploadError
			assert.ErrorAs(t, err, &ue)
		})
	}
}

func TestNewDiskStore_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewDiskStore(root, "/uploads")
	require.NoError(t, err)
	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
