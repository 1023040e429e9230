package handlers

import (
	"context"
	"net/http"
	"time"

	"civic-portal/internal/utils"
)

// Pinger checks a backing dependency, e.g. the database pool.
type Pinger func(ctx context.Context) error

func Health(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		out := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				out[name] = err.Error()
				out["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			out[name] = "ok"
		}
		utils.JSON(w, code, out)
	}
}
