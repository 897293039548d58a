package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mini-twitter/internal/cache"
	"mini-twitter/internal/config"
	"mini-twitter/internal/handlers"
	"mini-twitter/internal/push"
	"mini-twitter/internal/repository"
	"mini-twitter/internal/services"
	"mini-twitter/internal/views"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Run starts the web server and blocks until SIGINT or SIGTERM
func Run() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx := context.Background()

	// Apply migrations
	if cfg.Database.Migrate {
		if err := repository.Migrate(cfg.Database.MigrateURL()); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	// Connect to database
	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Connect to Redis
	rds, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rds.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	friendShipRepo := repository.NewFriendShipRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	// Initialize push notifications
	var pusher services.Pusher
	if cfg.APNs.KeyPath != "" {
		apns, err := push.NewAPNsPusher(cfg.APNs)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs client")
		}
		pusher = apns
		log.Info().Bool("production", cfg.APNs.Production).Msg("APNs push enabled")
	}

	// Initialize services
	wsHub := services.NewWSHub()
	notifier := services.NewNotifier(wsHub, pusher, userRepo, friendShipRepo)
	userService := services.NewUserService(userRepo, friendShipRepo, tweetRepo, nil)
	sessionService := services.NewSessionService(cache.NewRedisSessionStore(rds), cfg.JWT.Secret, cfg.Session.TTL)
	followService := services.NewFollowService(friendShipRepo, userRepo, notifier)
	tweetService := services.NewTweetService(tweetRepo, notifier)
	likeService := services.NewLikeService(likeRepo, tweetRepo, notifier)

	var avatarService *services.AvatarService
	if cfg.AWS.S3Bucket != "" {
		avatarService, err = services.NewAvatarService(ctx, cfg.AWS, userRepo)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create avatar service")
		}
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	// Setup router
	r := handlers.NewRouter(handlers.Deps{
		Users:    userService,
		Sessions: sessionService,
		Follows:  followService,
		Tweets:   tweetService,
		Likes:    likeService,
		Avatars:  avatarService,
		Hub:      wsHub,
		Views:    renderer,
		Cookie: handlers.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.Secure,
		},
		Logger: log.Logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown
	log.Info().Int("connections", wsHub.OnlineCount()).Msg("Closing WebSocket connections")
	wsHub.CloseAll()

	// Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
