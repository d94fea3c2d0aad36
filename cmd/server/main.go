package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"Yatube/internal/api/middleware"
	"Yatube/internal/api/routes"
	"Yatube/internal/cache"
	"Yatube/internal/config"
	"Yatube/internal/core/feeds"
	"Yatube/internal/core/follows"
	"Yatube/internal/core/groups"
	"Yatube/internal/core/media"
	"Yatube/internal/core/posts"
	"Yatube/internal/core/users"
	"Yatube/internal/db"
	"Yatube/internal/db/migrations"
	"Yatube/internal/web"
)

func main() {
	config.LoadDotEnvs("")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeDB := openRepositories(ctx, cfg)
	defer closeDB()

	backend, closeCache := openCacheBackend(ctx, cfg)
	defer closeCache()
	indexCache := cache.NewPageCache(backend, logger)

	// Initialize services
	mediaStore := media.NewStore(cfg.MediaRoot)
	userService := users.NewUserService(repos.Users)
	groupService := groups.NewGroupService(repos.Groups)
	followService := follows.NewFollowService(repos.Follows, userService)
	postService := posts.NewPostService(repos.Posts, groupService, mediaStore)
	feedService := feeds.NewFeedService(repos.Posts, groupService, userService, followService, cfg.PageSize)

	templates, err := web.NewTemplates()
	if err != nil {
		log.Fatal("Failed to load web templates: ", err)
	}

	sessions := middleware.NewSessionAuth(
		middleware.NewCookieStore([]byte(cfg.SessionSecret), cfg.SecureCookies),
		userService,
	)

	handlers := web.NewHandlers(web.Deps{
		Templates:      templates,
		Feeds:          feedService,
		Posts:          postService,
		Groups:         groupService,
		Follows:        followService,
		Users:          userService,
		Sessions:       sessions,
		IndexCache:     indexCache,
		IndexTTL:       cfg.IndexCacheTTL,
		MaxUploadBytes: mediaStore.MaxUploadBytes(),
	})

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	r.Use(rateLimiter.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	routes.RegisterWebRoutes(r, handlers, sessions, mediaStore.FileServer())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Yatube starting", "port", cfg.Port, "env", cfg.Env, "index_cache_ttl", cfg.IndexCacheTTL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// openRepositories connects to Postgres and migrates it.
// In the dev environment an empty DATABASE_URL selects the in-process store.
func openRepositories(ctx context.Context, cfg *config.Config) (db.Repositories, func()) {
	if cfg.DatabaseURL == "" {
		if cfg.Env != "dev" {
			log.Fatal("DATABASE_URL is required outside the dev environment")
		}
		slog.Warn("DATABASE_URL not set, using the in-memory store; data is lost on exit")
		return db.NewMemoryRepositories(), func() {}
	}

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: ", err)
	}
	slog.Info("Connected to database")

	if err := migrations.Up(ctx, conn); err != nil {
		log.Fatal(err)
	}
	slog.Info("Migrations completed successfully")

	return db.NewPostgresRepositories(conn), func() { _ = conn.Close() }
}

// openCacheBackend uses Redis when REDIS_URL is set, else an in-process LRU
func openCacheBackend(ctx context.Context, cfg *config.Config) (cache.Backend, func()) {
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to redis: ", err)
		}
		slog.Info("Using redis page cache")
		return cache.NewRedisBackend(client, "yatube:"), func() { _ = client.Close() }
	}

	backend, err := cache.NewLRUBackend(cfg.CacheSize)
	if err != nil {
		log.Fatal("Failed to create page cache: ", err)
	}
	return backend, func() {}
}
