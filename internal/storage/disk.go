package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"civic-portal/internal/apperr"
	"civic-portal/internal/models"
)

// MaxDimension bounds the longer side of stored photos.
const MaxDimension = 1600

// DiskStore re-encodes photos as JPEG under Root and serves them from
// BaseURL (the router mounts Root at /uploads).
type DiskStore struct {
	Root    string
	BaseURL string
	now     func() time.Time
}

func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{Root: root, BaseURL: cleanBaseURL(baseURL), now: time.Now}, nil
}

func (s *DiskStore) Upload(ctx context.Context, ownerID string, img models.Image) (string, error) {
	if _, err := checkImage(ownerID, img); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", &apperr.UploadError{Reason: "cancelled", Err: err}
	}

	src, err := imaging.Decode(bytes.NewReader(img.Data), imaging.AutoOrientation(true))
	if err != nil {
		return "", &apperr.UploadError{Reason: "undecodable image", Err: err}
	}
	b := src.Bounds()
	if b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		src = imaging.Fit(src, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	name := objectName(ownerID, s.now()) + ".jpg"
	dst := filepath.Join(s.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", &apperr.UploadError{Reason: "create owner dir", Err: err}
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", &apperr.UploadError{Reason: "create file", Err: err}
	}
	if err := imaging.Encode(f, src, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", &apperr.UploadError{Reason: "encode jpeg", Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &apperr.UploadError{Reason: "close file", Err: err}
	}
	return s.BaseURL + "/" + name, nil
}
