// Package storage implements repository.ImageStore on Cloudinary and on the
// local filesystem.
package storage

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"civic-portal/internal/apperr"
	"civic-portal/internal/models"
)

const MaxImageBytes = 10 << 20

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// AllowedType reports whether a sniffed content type is an accepted photo
// format.
func AllowedType(ct string) bool {
	_, ok := allowedTypes[ct]
	return ok
}

var ownerPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// checkImage enforces the limits every backend shares and returns the
// sniffed content type.
func checkImage(ownerID string, img models.Image) (string, error) {
	if !ownerPattern.MatchString(ownerID) {
		return "", &apperr.UploadError{Reason: "invalid owner id"}
	}
	if len(img.Data) == 0 {
		return "", &apperr.UploadError{Reason: "empty file"}
	}
	if len(img.Data) > MaxImageBytes {
		return "", &apperr.UploadError{Reason: fmt.Sprintf("file larger than %d bytes", MaxImageBytes)}
	}
	ct := http.DetectContentType(img.Data)
	if !AllowedType(ct) {
		return "", &apperr.UploadError{Reason: "unsupported content type " + ct}
	}
	return ct, nil
}

// objectName builds "<ownerID>/<unix>-<uuid>", without extension.
func objectName(ownerID string, now time.Time) string {
	return ownerID + "/" + fmt.Sprintf("%d-%s", now.Unix(), uuid.NewString())
}

func cleanBaseURL(u string) string {
	return strings.TrimRight(u, "/")
}
