package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"civic-portal/internal/config"
	"civic-portal/internal/events"
	"civic-portal/internal/handlers"
	"civic-portal/internal/middleware"
	"civic-portal/internal/models"
	"civic-portal/internal/repository"
	"civic-portal/internal/service"
	"civic-portal/internal/wizard"
)

// Deps are the backends the API is served from; cmd/api picks postgres or
// memory, redis or in-process.
type Deps struct {
	Complaints repository.ComplaintRepository
	Users      repository.UserRepository
	Drafts     wizard.DraftStore
	Wizard     *wizard.Wizard
	Bus        events.Bus
	Tracker    events.Tracker
	Checks     map[string]handlers.Pinger
	UploadDir  string // served under /uploads when set
}

func New(log zerolog.Logger, cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Total-Count"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))
	r.Use(middleware.WithAuth(log, cfg.SessionSecret))

	// Health
	r.Get("/healthz", handlers.Health(d.Checks))

	if d.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))))
	}

	auth := service.NewAuthService(d.Users, cfg.SessionSecret)
	ah := handlers.NewAuthHTTP(auth, d.Users, cfg.Env != "dev", log)
	ch := handlers.NewComplaintHTTP(d.Complaints, d.Bus, log)
	rh := handlers.NewReportsHTTP(d.Complaints, log)
	wh := handlers.NewWizardHTTP(d.Wizard, d.Drafts, log)
	ph := handlers.NewProgressHTTP(d.Tracker, log)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// brute-force guard on top of the global limit
			r.With(httprate.LimitByIP(10, time.Minute)).Post("/login", ah.Login())
			r.Post("/register", ah.Register())
			r.Post("/logout", ah.Logout())
			r.With(middleware.RequireAuth).Get("/me", ah.Me())
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Route("/complaints", func(r chi.Router) {
				r.Get("/", ch.List())
				r.Get("/stats", rh.Stats())
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", ch.Get())
					r.With(middleware.RequireRoles(models.RoleAdmin)).Patch("/", ch.Update())
				})
			})

			r.Route("/wizard", func(r chi.Router) {
				r.Use(middleware.RequireRoles(models.RoleCitizen))
				r.Post("/", wh.Start())
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", wh.Get())
					r.Post("/image", wh.Image())
					r.Put("/details", wh.Details())
					r.Put("/location", wh.Location())
					r.Post("/next", wh.Next())
					r.Post("/back", wh.Back())
					r.Post("/submit", wh.Submit())
				})
			})

			r.Get("/me/progress", ph.Get())

			if d.Bus != nil {
				ws := handlers.NewEventsWS(d.Bus, cfg.Origin, log)
				r.With(middleware.RequireRoles(models.RoleAdmin)).Get("/events/ws", ws.Serve())
			}
		})
	})

	return r
}
