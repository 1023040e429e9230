// Package memory is an in-process implementation of the repository
// interfaces, used by tests and by STORE=memory for local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"civic-portal/internal/apperr"
	"civic-portal/internal/complaint"
	"civic-portal/internal/models"
	"civic-portal/internal/repository"
)

type ComplaintStore struct {
	mu    sync.RWMutex
	items map[string]models.Complaint
	now   func() time.Time
}

func NewComplaintStore() *ComplaintStore {
	return &ComplaintStore{items: map[string]models.Complaint{}, now: time.Now}
}

// WithClock swaps the time source, mostly so tests get distinct createdAt
// values.
func (s *ComplaintStore) WithClock(now func() time.Time) *ComplaintStore {
	s.now = now
	return s
}

func (s *ComplaintStore) Create(_ context.Context, in *models.Complaint) (*models.Complaint, error) {
	c := *in
	if err := complaint.Prepare(&c, s.now().UTC()); err != nil {
		return nil, err
	}
	c.ID = uuid.NewString()

	s.mu.Lock()
	s.items[c.ID] = c
	s.mu.Unlock()
	return &c, nil
}

func (s *ComplaintStore) Get(_ context.Context, id string) (*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("complaint %s: %w", id, apperr.ErrNotFound)
	}
	return &c, nil
}

func (s *ComplaintStore) ListByReporter(_ context.Context, reporterID string) ([]models.Complaint, error) {
	return s.selectWhere(func(c *models.Complaint) bool { return c.ReporterID == reporterID }), nil
}

func (s *ComplaintStore) ListAll(_ context.Context, f repository.ComplaintFilter) ([]models.Complaint, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	out := s.matching(f)
	if f.Offset >= len(out) {
		return []models.Complaint{}, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// CountAll ignores Limit and Offset.
func (s *ComplaintStore) CountAll(_ context.Context, f repository.ComplaintFilter) (int, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	return len(s.matching(f)), nil
}

func (s *ComplaintStore) matching(f repository.ComplaintFilter) []models.Complaint {
	needle := strings.ToLower(f.SearchText)
	return s.selectWhere(func(c *models.Complaint) bool {
		if f.Status != "" && c.Status != f.Status {
			return false
		}
		if f.Category != "" && c.Category != f.Category {
			return false
		}
		if f.Department != "" && c.Department != f.Department {
			return false
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Description), needle) &&
			!strings.Contains(strings.ToLower(c.Location.Address), needle) {
			return false
		}
		return true
	})
}

func (s *ComplaintStore) UpdateStatus(_ context.Context, id string, u models.ComplaintUpdate) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("complaint %s: %w", id, apperr.ErrNotFound)
	}
	if err := complaint.ApplyUpdate(&c, u, s.now().UTC()); err != nil {
		return nil, err
	}
	s.items[id] = c
	return &c, nil
}

func (s *ComplaintStore) GetStats(_ context.Context, reporterID string) (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := &models.Stats{ByCategory: map[models.Category]int{}}
	for _, c := range s.items {
		if reporterID != "" && c.ReporterID != reporterID {
			continue
		}
		st.Total++
		st.ByCategory[c.Category]++
		switch c.Status {
		case models.StatusPending:
			st.Pending++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusResolved:
			st.Resolved++
		case models.StatusRejected:
			st.Rejected++
		}
	}
	return st, nil
}

// selectWhere returns matching complaints newest first.
func (s *ComplaintStore) selectWhere(keep func(*models.Complaint) bool) []models.Complaint {
	s.mu.RLock()
	out := make([]models.Complaint, 0, len(s.items))
	for _, c := range s.items {
		if keep(&c) {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

var _ repository.ComplaintRepository = (*ComplaintStore)(nil)
