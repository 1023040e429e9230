package storage

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"civic-portal/internal/apperr"
	"civic-portal/internal/models"
)

// CloudinaryStore uploads complaint photos to a Cloudinary folder.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	now    func() time.Time
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary configuration is missing")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	if folder == "" {
		folder = "complaints"
	}
	return &CloudinaryStore{cld: cld, folder: folder, now: time.Now}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, ownerID string, img models.Image) (string, error) {
	if _, err := checkImage(ownerID, img); err != nil {
		return "", err
	}
	overwrite := false
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(img.Data), uploader.UploadParams{
		PublicID:       objectName(ownerID, s.now()),
		Folder:         s.folder,
		Overwrite:      &overwrite,
		ResourceType:   "image",
		Transformation: "c_limit,h_1600,w_1600",
	})
	if err != nil {
		return "", &apperr.UploadError{Reason: "cloudinary upload", Err: err}
	}
	if res.Error.Message != "" {
		return "", &apperr.UploadError{Reason: "cloudinary rejected: " + res.Error.Message}
	}
	return res.SecureURL, nil
}
