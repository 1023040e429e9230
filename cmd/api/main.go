package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"civic-portal/internal/classify"
	"civic-portal/internal/config"
	"civic-portal/internal/database"
	"civic-portal/internal/events"
	"civic-portal/internal/geocode"
	"civic-portal/internal/handlers"
	"civic-portal/internal/repository"
	"civic-portal/internal/repository/memory"
	"civic-portal/internal/repository/postgres"
	"civic-portal/internal/router"
	"civic-portal/internal/scheduler"
	"civic-portal/internal/service"
	"civic-portal/internal/storage"
	"civic-portal/internal/wizard"
	"civic-portal/pkg/logger"
)

func main() {
	// config + logger
	cfg := config.Load()
	l := logger.New(cfg.Env)
	if err := cfg.Validate(); err != nil {
		l.Fatal().Err(err).Str("env", cfg.Env).Msg("invalid config")
	}
	ctx := context.Background()

	deps := router.Deps{Checks: map[string]handlers.Pinger{}}
	var purge []scheduler.Job

	// complaints + users
	switch cfg.Store {
	case config.StoreMemory:
		l.Warn().Msg("using in-memory store; data is lost on restart")
		deps.Complaints = memory.NewComplaintStore()
		deps.Users = memory.NewUserStore()
	default:
		pool, err := database.Open(ctx, cfg)
		if err != nil {
			l.Fatal().Err(err).Msg("db connect failed")
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool, l); err != nil {
			l.Fatal().Err(err).Msg("db migrate failed")
		}
		deps.Complaints = postgres.NewComplaintRepo(pool)
		deps.Users = postgres.NewUserRepo(pool)
		deps.Checks["database"] = pool.Ping
	}

	// drafts + events + progress
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			l.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis connect failed")
		}
		deps.Drafts = wizard.NewRedisDraftStore(rdb)
		deps.Bus = events.NewRedisBus(rdb, l)
		deps.Tracker = events.NewRedisTracker(rdb)
		deps.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		drafts := wizard.NewMemoryDraftStore()
		tracker := events.NewMemoryTracker()
		deps.Drafts, deps.Tracker = drafts, tracker
		deps.Bus = events.NewMemoryBus()
		purge = append(purge,
			scheduler.Job{Name: "drafts", Purger: drafts},
			scheduler.Job{Name: "progress", Purger: tracker},
		)
	}

	images, err := imageStore(cfg, &deps)
	if err != nil {
		l.Fatal().Err(err).Msg("image store init failed")
	}

	deps.Wizard = wizard.New(l, wizard.Deps{
		Classifier: classifier(cfg, l),
		Locator:    locator(cfg, l),
		Complaints: deps.Complaints,
		Images:     images,
		Events:     deps.Bus,
		Tracker:    deps.Tracker,
		Drafts:     deps.Drafts,
	})

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		auth := service.NewAuthService(deps.Users, cfg.SessionSecret)
		if _, err := auth.EnsureAdmin(ctx, cfg.AdminEmail, "Administrator", cfg.AdminPassword); err != nil {
			l.Fatal().Err(err).Msg("bootstrap admin failed")
		}
	}

	if len(purge) > 0 {
		cron, err := scheduler.Start(l, cfg.PurgeSchedule, purge...)
		if err != nil {
			l.Fatal().Err(err).Msg("scheduler start failed")
		}
		defer cron.Stop()
	}

	// http
	r := router.New(l, cfg, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       30 * time.Second, // photo uploads
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Str("store", cfg.Store).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	l.Info().Msg("shutdown complete")
}

// imageStore prefers Cloudinary when configured, local disk otherwise. The
// disk store's directory is served by the router.
func imageStore(cfg config.Config, deps *router.Deps) (repository.ImageStore, error) {
	if cfg.UseCloudinary() {
		return storage.NewCloudinaryStore(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret, cfg.CloudinaryFolder)
	}
	deps.UploadDir = cfg.UploadDir
	return storage.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
}

func locator(cfg config.Config, l zerolog.Logger) *geocode.Resolver {
	nom := geocode.NewNominatim(cfg.NominatimURL)
	nom.Client.Timeout = cfg.GeocodeTimeout
	bdc := geocode.NewBigDataCloud(cfg.BigDataCloudURL)
	bdc.Client.Timeout = cfg.GeocodeTimeout
	return geocode.NewResolver(l, nom, bdc)
}

// classifier returns nil when no model endpoint is configured, which puts
// the wizard in manual-entry mode.
func classifier(cfg config.Config, l zerolog.Logger) wizard.Classifier {
	if len(cfg.ClassifierURLs) == 0 {
		l.Info().Msg("no classifier configured; categories are entered manually")
		return nil
	}
	providers := make([]classify.Provider, 0, len(cfg.ClassifierURLs))
	for i, u := range cfg.ClassifierURLs {
		providers = append(providers, classify.NewHTTPProvider("model-"+strconv.Itoa(i+1), u, cfg.ClassifierToken))
	}
	return classify.NewService(l, providers...)
}
