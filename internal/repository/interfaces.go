package repository

import (
	"context"

	"civic-portal/internal/models"
)

// ComplaintRepository is the only data-access surface the wizard and the
// dashboards use.
type ComplaintRepository interface {
	Create(ctx context.Context, c *models.Complaint) (*models.Complaint, error)
	Get(ctx context.Context, id string) (*models.Complaint, error)
	ListByReporter(ctx context.Context, reporterID string) ([]models.Complaint, error)
	ListAll(ctx context.Context, f ComplaintFilter) ([]models.Complaint, error)
	// CountAll is the total for f across all pages.
	CountAll(ctx context.Context, f ComplaintFilter) (int, error)
	UpdateStatus(ctx context.Context, id string, u models.ComplaintUpdate) (*models.Complaint, error)
	GetStats(ctx context.Context, reporterID string) (*models.Stats, error)
}

// ImageStore keeps complaint photos under a path namespaced by owner id.
// A failed Upload is an *apperr.UploadError and never blocks complaint
// creation.
type ImageStore interface {
	Upload(ctx context.Context, ownerID string, img models.Image) (url string, err error)
}

type UserRepository interface {
	Create(ctx context.Context, email, name, role, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, string /*passwordHash*/, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
