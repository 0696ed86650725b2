package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/openstay/marketplace/backend/internal/auth"
	"github.com/openstay/marketplace/backend/internal/config"
	"github.com/openstay/marketplace/backend/internal/geocode"
	"github.com/openstay/marketplace/backend/internal/interest"
	"github.com/openstay/marketplace/backend/internal/listing"
	"github.com/openstay/marketplace/backend/internal/middleware"
	"github.com/openstay/marketplace/backend/internal/observability"
	"github.com/openstay/marketplace/backend/internal/profile"
	"github.com/openstay/marketplace/backend/internal/store"
	"github.com/openstay/marketplace/backend/internal/taxonomy"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("postgres migrate failed")
	}

	// ── Redis: sessions + read cache ─────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb)
	cache := store.NewCache(rdb, cfg.CacheTTL)

	// ── MinIO: one bucket per image kind ─────────────────────
	listingImages, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey,
		cfg.MinioListingBucket, cfg.MinioUseSSL, cfg.MinioPublicBase,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("minio connect failed (listing bucket)")
	}
	profileImages, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey,
		cfg.MinioProfileBucket, cfg.MinioUseSSL, cfg.MinioPublicBase,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("minio connect failed (profile bucket)")
	}

	// ── Geocoder ─────────────────────────────────────────────
	geocoder, err := geocode.New(cfg.GeocoderBase, cfg.GeocoderKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("geocoder init failed")
	}

	// ── Handlers ─────────────────────────────────────────────
	authHandler := auth.NewHandler(pgStore, sessions)
	listingSvc := listing.NewService(pgStore, listingImages, cfg.UploadWorkers)
	listingHandler := listing.NewHandler(listingSvc, pgStore, cache, listingImages)
	taxonomyHandler := taxonomy.NewHandler(pgStore, cache)
	profileHandler := profile.NewHandler(pgStore, profileImages, geocoder)
	interestHandler := interest.NewHandler(pgStore, cache)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Metrics)
	r.Use(middleware.Logger(log.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	reg := observability.InitRegistry()
	r.Handle("/metrics", observability.MetricsHandler(reg))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	requireAuth := middleware.RequireAuth(sessions)

	// Auth routes (public)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.With(requireAuth).Get("/me", authHandler.Me)
	})

	// Public browsing routes
	r.Get("/api/listings", listingHandler.List)
	r.Get("/api/listings/{id}", listingHandler.Get)
	r.Get("/api/categories", taxonomyHandler.Categories)
	r.Get("/api/categories/{id}/subcategories", taxonomyHandler.Subcategories)
	r.Get("/api/amenities", taxonomyHandler.Amenities)
	r.Get("/api/currencies", taxonomyHandler.Currencies)
	r.Get("/api/interest-categories", interestHandler.Taxonomy)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/api/listings", listingHandler.Create)
		r.Delete("/api/listings/{id}", listingHandler.Delete)
		r.Get("/api/my/listings", listingHandler.Mine)

		r.Get("/api/profile", profileHandler.Get)
		r.Put("/api/profile", profileHandler.Upsert)
		r.Post("/api/profile/picture", profileHandler.UploadPicture)
		r.Get("/api/geocode", profileHandler.Autocomplete)

		r.Get("/api/my/interests", interestHandler.Mine)
		r.Put("/api/my/interests", interestHandler.Replace)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
