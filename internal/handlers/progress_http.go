package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"civic-portal/internal/events"
	"civic-portal/internal/middleware"
	"civic-portal/internal/utils"
)

type ProgressHTTP struct {
	tracker events.Tracker
	log     zerolog.Logger
}

func NewProgressHTTP(t events.Tracker, log zerolog.Logger) *ProgressHTTP {
	return &ProgressHTTP{tracker: t, log: log}
}

// GET /api/me/progress
// Returns: { show, lastSubmittedAt, windowHours }. The citizen dashboard
// shows its progress view while show is true.
func (h *ProgressHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.Caller(r.Context())
		at, show, err := h.tracker.LastSubmitted(r.Context(), uid)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		var last *time.Time
		if show {
			last = &at
		}
		utils.JSON(w, http.StatusOK, map[string]any{
			"show":            show,
			"lastSubmittedAt": last,
			"windowHours":     int(events.ProgressWindow / time.Hour),
		})
	}
}
