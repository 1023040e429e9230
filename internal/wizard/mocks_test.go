package wizard_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"civic-portal/internal/classify"
	"civic-portal/internal/models"
	"civic-portal/internal/repository"
)

type MockComplaints struct {
	mock.Mock
}

func (m *MockComplaints) Create(ctx context.Context, c *models.Complaint) (*models.Complaint, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(*models.Complaint)
	return out, args.Error(1)
}

func (m *MockComplaints) Get(ctx context.Context, id string) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Complaint)
	return out, args.Error(1)
}

func (m *MockComplaints) ListByReporter(ctx context.Context, reporterID string) ([]models.Complaint, error) {
	args := m.Called(ctx, reporterID)
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockComplaints) ListAll(ctx context.Context, f repository.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockComplaints) CountAll(ctx context.Context, f repository.ComplaintFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockComplaints) UpdateStatus(ctx context.Context, id string, u models.ComplaintUpdate) (*models.Complaint, error) {
	args := m.Called(ctx, id, u)
	out, _ := args.Get(0).(*models.Complaint)
	return out, args.Error(1)
}

func (m *MockComplaints) GetStats(ctx context.Context, reporterID string) (*models.Stats, error) {
	args := m.Called(ctx, reporterID)
	out, _ := args.Get(0).(*models.Stats)
	return out, args.Error(1)
}

type fixedClassifier struct {
	res classify.Result
	err error
}

func (f fixedClassifier) Classify(context.Context, models.Image) (classify.Result, error) {
	return f.res, f.err
}

type recordingImages struct {
	url   string
	err   error
	calls int
	owner string
}

func (r *recordingImages) Upload(_ context.Context, ownerID string, _ models.Image) (string, error) {
	r.calls++
	r.owner = ownerID
	return r.url, r.err
}
