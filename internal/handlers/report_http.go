package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"civic-portal/internal/middleware"
	"civic-portal/internal/models"
	"civic-portal/internal/repository"
	"civic-portal/internal/utils"
)

type ReportsHTTP struct {
	repo repository.ComplaintRepository
	log  zerolog.Logger
}

func NewReportsHTTP(r repository.ComplaintRepository, log zerolog.Logger) *ReportsHTTP {
	return &ReportsHTTP{repo: r, log: log}
}

// GET /api/complaints/stats
// Returns: { total, pending, inProgress, resolved, rejected, byCategory }
// Admins get totals across all complaints, or for one reporter with
// ?reporter=; citizens always get their own.
func (h *ReportsHTTP) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, role := middleware.Caller(r.Context())
		reporter := uid
		if role == models.RoleAdmin {
			reporter = r.URL.Query().Get("reporter")
		}
		st, err := h.repo.GetStats(r.Context(), reporter)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, st)
	}
}
