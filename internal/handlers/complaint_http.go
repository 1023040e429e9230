package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"civic-portal/internal/apperr"
	"civic-portal/internal/complaint"
	"civic-portal/internal/events"
	"civic-portal/internal/middleware"
	"civic-portal/internal/models"
	"civic-portal/internal/repository"
	"civic-portal/internal/utils"
)

// ComplaintHTTP serves both dashboards. Admins see every complaint and may
// edit; citizens only ever see their own.
type ComplaintHTTP struct {
	complaints repository.ComplaintRepository
	events     events.Publisher // optional
	log        zerolog.Logger
}

func NewComplaintHTTP(complaints repository.ComplaintRepository, pub events.Publisher, log zerolog.Logger) *ComplaintHTTP {
	return &ComplaintHTTP{complaints: complaints, events: pub, log: log}
}

// GET /api/complaints?status=&category=&department=&q=&limit=&offset=
func (h *ComplaintHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, role := middleware.Caller(r.Context())

		if role != models.RoleAdmin {
			items, err := h.complaints.ListByReporter(r.Context(), uid)
			if err != nil {
				writeErr(w, h.log, err)
				return
			}
			if items == nil {
				items = []models.Complaint{}
			}
			w.Header().Set("X-Total-Count", strconv.Itoa(len(items)))
			utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
			return
		}

		f, err := repository.FilterFromQuery(r.URL.Query())
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		items, err := h.complaints.ListAll(r.Context(), f)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		total, err := h.complaints.CountAll(r.Context(), f)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		utils.JSON(w, http.StatusOK, map[string]any{
			"items":  items,
			"total":  total,
			"limit":  f.Limit,
			"offset": f.Offset,
		})
	}
}

// GET /api/complaints/{id}
func (h *ComplaintHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := h.complaints.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		uid, role := middleware.Caller(r.Context())
		if role != models.RoleAdmin && c.ReporterID != uid {
			utils.Error(w, http.StatusForbidden, "forbidden")
			return
		}
		utils.JSON(w, http.StatusOK, c)
	}
}

// PATCH /api/complaints/{id}
// Body: any of {status, priority, category, adminNotes, assignedTo}.
func (h *ComplaintHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in complaintPatch
		if err := decode(r, &in); err != nil {
			writeErr(w, h.log, err)
			return
		}
		u, err := in.toUpdate()
		if err != nil {
			writeErr(w, h.log, err)
			return
		}

		c, err := h.complaints.UpdateStatus(r.Context(), chi.URLParam(r, "id"), u)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		if h.events != nil {
			if err := h.events.Publish(r.Context(), events.FromComplaint(events.ComplaintUpdated, c)); err != nil {
				h.log.Warn().Err(err).Str("complaint", c.ID).Msg("publish updated event")
			}
		}
		utils.JSON(w, http.StatusOK, c)
	}
}

type complaintPatch struct {
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	Category   *string `json:"category"`
	AdminNotes *string `json:"adminNotes"`
	AssignedTo *string `json:"assignedTo"`
}

// toUpdate accepts the same spellings the dashboards send ("registered",
// "In Progress", "street light") and normalizes them.
func (in complaintPatch) toUpdate() (models.ComplaintUpdate, error) {
	var u models.ComplaintUpdate
	if in.Status != nil {
		s, ok := complaint.ParseStatus(*in.Status)
		if !ok {
			return u, apperr.Invalid("status", "unknown status "+*in.Status)
		}
		u.Status = &s
	}
	if in.Priority != nil {
		p, ok := complaint.ParsePriority(*in.Priority)
		if !ok || *in.Priority == "" {
			return u, apperr.Invalid("priority", "unknown priority "+*in.Priority)
		}
		u.Priority = &p
	}
	if in.Category != nil {
		c, ok := complaint.ParseCategory(*in.Category)
		if !ok {
			return u, apperr.Invalid("category", "unknown category "+*in.Category)
		}
		u.Category = &c
	}
	u.AdminNotes = in.AdminNotes
	u.AssignedTo = in.AssignedTo
	return u, nil
}
