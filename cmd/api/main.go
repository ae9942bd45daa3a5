package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"reservio/internal/api"
	"reservio/internal/auth"
	"reservio/internal/config"
	"reservio/internal/database"
	"reservio/internal/events"
	"reservio/internal/logging"
	"reservio/internal/metrics"
	"reservio/internal/models"
	"reservio/internal/notify"
	"reservio/internal/report"
	"reservio/internal/repository"
	"reservio/internal/service"
	"reservio/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		stdlog.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	if err := seedCatalog(cfg, db, &logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}
	sessions := initSessions(redisClient, cfg, &logger)

	reporter := report.NewOccupancyReporter(db, cfg.Reports.Path, &logger)
	reportWorker := worker.NewReportWorker(db, reporter, redisClient, worker.DefaultReportRetryPolicy(), stdlog.Default())
	go reportWorker.Start(ctx)

	eventBus := events.NewEventBus()
	if err := subscribeNotifier(cfg, eventBus, &logger); err != nil {
		return err
	}

	bookingService := service.NewBookingService(db, eventBus, reportWorker, cfg.Booking.MaxAdvanceDays, cfg.Booking.MaxStayNights, &logger)
	roomService := service.NewRoomService(db, &logger)
	hotelService := service.NewHotelService(db)
	sessionTTL := time.Duration(cfg.Auth.SessionTTLSeconds) * time.Second
	authService := service.NewAuthService(db, sessions, cfg.Auth.JWTSecret, sessionTTL, &logger)

	httpServer := api.NewHTTPServer(cfg.API, bookingService, roomService, hotelService, authService, reportWorker)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("create database directory")
		return err
	}
	if err := os.MkdirAll(cfg.Reports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("create reports directory")
		return err
	}
	return nil
}

type seedHotel struct {
	Name     string        `yaml:"name"`
	Currency string        `yaml:"currency"`
	Timezone string        `yaml:"timezone"`
	Rooms    []models.Room `yaml:"rooms"`
}

type seedFile struct {
	Hotels []seedHotel `yaml:"hotels"`
	Admin  struct {
		Email    string `yaml:"email"`
		Name     string `yaml:"name"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
}

// seedCatalog loads hotels, rooms and the initial admin account from the
// seed YAML on an empty database. A populated database is left untouched.
func seedCatalog(cfg *config.Config, db *database.DB, logger *zerolog.Logger) error {
	seedPath := cfg.Seed.Path
	if seedPath == "" {
		seedPath = "configs/hotels.yaml"
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("seed_path", seedPath).Msg("seed file missing, skipping")
			return nil
		}
		return err
	}

	var seed seedFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &seed); err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("parse seed file")
		return err
	}

	ctx := context.Background()
	existing, err := db.GetActiveHotels(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, entry := range seed.Hotels {
		hotel := models.Hotel{
			Name:     entry.Name,
			Currency: entry.Currency,
			Timezone: entry.Timezone,
			IsActive: true,
		}
		if err := db.CreateHotel(ctx, &hotel); err != nil {
			return fmt.Errorf("seed hotel %q: %w", hotel.Name, err)
		}
		for _, room := range entry.Rooms {
			room.HotelID = hotel.ID
			room.IsActive = true
			if room.Status == "" {
				room.Status = models.RoomStatusAvailable
			}
			if err := db.CreateRoom(ctx, &room); err != nil {
				return fmt.Errorf("seed room %q: %w", room.Number, err)
			}
		}
		logger.Info().Str("hotel", hotel.Name).Int("rooms", len(entry.Rooms)).Msg("seeded hotel")
	}

	if seed.Admin.Email != "" && seed.Admin.Password != "" {
		hash, err := auth.HashPassword(seed.Admin.Password, cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		admin := &models.User{
			Email:        seed.Admin.Email,
			Name:         seed.Admin.Name,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
		}
		if err := db.CreateUser(ctx, admin); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		logger.Info().Str("email", admin.Email).Msg("seeded admin user")
	}

	return nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initSessions(redisClient *redis.Client, cfg *config.Config, logger *zerolog.Logger) *repository.FailoverSessionRepository {
	ttl := time.Duration(cfg.Auth.SessionTTLSeconds) * time.Second
	primary := repository.NewRedisSessionRepository(redisClient, ttl)
	fallback := repository.NewMemorySessionRepository(ttl)
	return repository.NewFailoverSessionRepository(primary, fallback, logger)
}

func subscribeNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) error {
	notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatIDs, cfg.Telegram.Debug, logger)
	if err != nil {
		logger.Error().Err(err).Msg("init telegram notifier")
		return err
	}
	notifier.SubscribeTo(bus)
	return nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
