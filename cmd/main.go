package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/chat-forum/docs"
	"github.com/sbilibin2017/chat-forum/internal/handlers"
	"github.com/sbilibin2017/chat-forum/internal/hasher"
	"github.com/sbilibin2017/chat-forum/internal/health"
	"github.com/sbilibin2017/chat-forum/internal/logger"
	"github.com/sbilibin2017/chat-forum/internal/middlewares"
	"github.com/sbilibin2017/chat-forum/internal/migrations"
	"github.com/sbilibin2017/chat-forum/internal/notifiers"
	"github.com/sbilibin2017/chat-forum/internal/repositories"
	"github.com/sbilibin2017/chat-forum/internal/services"
	"github.com/sbilibin2017/chat-forum/internal/tokens"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title chat-forum auth API
// @version 1.0.0
// @description Registration with email verification, login and server-side sessions for the chat forum
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s\nCommit: %s\nBuild: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

type config struct {
	AppHost      string
	AppPort      string
	LogLevel     string
	LogFormat    string
	CORSOrigins  []string
	CookieSecure bool

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int
	PGQueryTimeout time.Duration

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int

	RateLimitRequests int64
	RateLimitWindow   time.Duration

	SessionTTL      time.Duration
	CodeTTL         time.Duration
	LoginMinLatency time.Duration
	BcryptCost      int

	NotifierDriver    string
	NotifierWorkers   int
	NotifierQueueSize int
	NotifierTimeout   time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	KafkaBrokers []string
	KafkaTopic   string

	GRPCHealthPort string
}

// parseConfig loads environment variables from a file and returns the
// application, database, Redis, notifier and auth configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) (int, error) {
		v, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}
	getSeconds := func(key, defaultValue string) (time.Duration, error) {
		v, err := getInt(key, defaultValue)
		return time.Duration(v) * time.Second, err
	}
	getList := func(key, defaultValue string) []string {
		var out []string
		for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("APP_LOG_FORMAT", "json")
	cfg.CORSOrigins = getList("APP_CORS_ORIGINS", "http://127.0.0.1:5173,http://localhost:5173")
	if cfg.CookieSecure, err = strconv.ParseBool(getEnv("APP_COOKIE_SECURE", "false")); err != nil {
		return cfg, fmt.Errorf("APP_COOKIE_SECURE: %w", err)
	}

	// PostgreSQL config
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "database")
	if cfg.PGPort, err = getInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.PGMaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.PGMaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}
	if cfg.PGQueryTimeout, err = getSeconds("POSTGRES_QUERY_TIMEOUT_SECOND", "5"); err != nil {
		return
	}

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPort, err = getInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return
	}
	if cfg.RedisPoolSize, err = getInt("REDIS_POOL_SIZE", "10"); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", "2"); err != nil {
		return
	}

	// Rate limit config
	var requests int
	if requests, err = getInt("RATE_LIMIT_REQUESTS", "5"); err != nil {
		return
	}
	cfg.RateLimitRequests = int64(requests)
	if cfg.RateLimitWindow, err = getSeconds("RATE_LIMIT_WINDOW_SECOND", "60"); err != nil {
		return
	}

	// Auth config
	if cfg.SessionTTL, err = getSeconds("SESSION_TTL_SECOND", "86400"); err != nil {
		return
	}
	if cfg.CodeTTL, err = getSeconds("CODE_TTL_SECOND", "600"); err != nil {
		return
	}
	var latencyMs int
	if latencyMs, err = getInt("LOGIN_MIN_LATENCY_MS", "500"); err != nil {
		return
	}
	cfg.LoginMinLatency = time.Duration(latencyMs) * time.Millisecond
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", strconv.Itoa(hasher.DefaultCost)); err != nil {
		return
	}

	// Notifier config
	cfg.NotifierDriver = getEnv("NOTIFIER_DRIVER", "smtp")
	if cfg.NotifierWorkers, err = getInt("NOTIFIER_WORKERS", "4"); err != nil {
		return
	}
	if cfg.NotifierQueueSize, err = getInt("NOTIFIER_QUEUE_SIZE", "128"); err != nil {
		return
	}
	if cfg.NotifierTimeout, err = getSeconds("NOTIFIER_TIMEOUT_SECOND", "15"); err != nil {
		return
	}
	cfg.SMTPHost = getEnv("SMTP_HOST", "localhost")
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", "")
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SMTPFrom = getEnv("SMTP_FROM", "noreply@localhost")
	if cfg.SMTPPort, err = getInt("SMTP_PORT", "587"); err != nil {
		return
	}
	cfg.KafkaBrokers = getList("KAFKA_BROKERS", "localhost:9092")
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "email-notifications")

	// gRPC health config
	cfg.GRPCHealthPort = getEnv("GRPC_HEALTH_PORT", "50051")

	return cfg, nil
}

// newNotifier builds the notifier selected by NOTIFIER_DRIVER (smtp by
// default). The returned closer releases its resources.
func newNotifier(cfg config) (notifiers.Notifier, func() error, error) {
	noop := func() error { return nil }

	switch cfg.NotifierDriver {
	case "log":
		logger.Log.Warnw("NOTIFIER_DRIVER=log writes verification codes to the log; do not use outside local development")
		return notifiers.NewLogNotifier(), noop, nil
	case "smtp":
		return notifiers.NewSMTPNotifier(notifiers.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}), noop, nil
	case "kafka":
		n := notifiers.NewKafkaNotifier(&kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		})
		return n, n.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown notifier driver %q", cfg.NotifierDriver)
	}
}

// authAPI is the part of the auth service exposed over HTTP.
type authAPI interface {
	handlers.Registerer
	handlers.Loginer
	handlers.Logouter
	handlers.SessionChecker
}

// verificationAPI is the part of the verification service exposed over HTTP.
type verificationAPI interface {
	handlers.CodeSender
	handlers.CodeChecker
}

type routerDeps struct {
	auth         authAPI
	verification verificationAPI
	db           handlers.Pinger
	limiter      middlewares.RateCounter
	rateLimit    middlewares.RateLimitConfig
	cookie       handlers.CookieConfig
	corsOrigins  []string
	swaggerURL   string
}

// newRouter mounts the API under /api plus /metrics and /swagger.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)
	r.Use(middlewares.MetricsMiddleware)
	r.Use(middlewares.CORSMiddleware(d.corsOrigins))

	limit := func(scope string) func(http.Handler) http.Handler {
		return middlewares.RateLimitMiddleware(d.limiter, scope, d.rateLimit)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.NewHealthHandler(d.db))

		// Public routes
		r.With(limit("send-code")).Post("/send-code", handlers.NewSendCodeHandler(d.verification))
		r.With(limit("check-code")).Post("/check-code", handlers.NewCheckCodeHandler(d.verification))
		r.With(limit("register")).Post("/register", handlers.NewRegisterHandler(d.auth))
		r.Post("/login", handlers.NewLoginHandler(d.auth, d.cookie))
		r.Post("/logout", handlers.NewLogoutHandler(d.auth, d.cookie))
		r.Get("/check-session", handlers.NewCheckSessionHandler(d.auth))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(d.auth))
			r.Get("/me", handlers.NewMeHandler())
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(d.swaggerURL)))

	return r
}

// run initializes the logger, database, Redis, notifier and servers.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)
	logger.Log.Infow("Connecting to PostgreSQL", "host", cfg.PGHost, "port", cfg.PGPort, "db", cfg.PGDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)

	if err := migrations.Up(ctx, db.DB); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Warnw("Redis unavailable, rate limiting disabled until it recovers", "error", err)
	}

	// Notifier and dispatcher
	notifier, closeNotifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}
	defer closeNotifier()

	dispatcher := notifiers.NewDispatcher(notifier, cfg.NotifierWorkers, cfg.NotifierQueueSize, cfg.NotifierTimeout)
	dispatcher.Start()

	// Initialize repositories
	store := repositories.NewStore(db, cfg.PGQueryTimeout)
	userReadRepo := repositories.NewUserReadRepository(store)
	userWriteRepo := repositories.NewUserWriteRepository(store)
	sessionRepo := repositories.NewSessionRepository(store)
	codeRepo := repositories.NewVerificationCodeRepository(store, cfg.CodeTTL)
	rateLimitRepo := repositories.NewRateLimitRepository(rdb, "ratelimit")

	// Initialize services
	bcryptHasher, err := hasher.NewBcrypt(cfg.BcryptCost)
	if err != nil {
		return err
	}
	generator := tokens.New()

	authService := services.NewAuthService(
		store, userReadRepo, userWriteRepo, sessionRepo, codeRepo, bcryptHasher, generator,
		services.AuthConfig{SessionTTL: cfg.SessionTTL, LoginMinLatency: cfg.LoginMinLatency},
	)
	verificationService := services.NewVerificationService(userReadRepo, codeRepo, generator, dispatcher, cfg.CodeTTL)

	// Setup router
	docs.SwaggerInfo.Host = net.JoinHostPort(cfg.AppHost, cfg.AppPort)
	r := newRouter(routerDeps{
		auth:         authService,
		verification: verificationService,
		db:           store,
		limiter:      rateLimitRepo,
		rateLimit:    middlewares.RateLimitConfig{Requests: cfg.RateLimitRequests, Window: cfg.RateLimitWindow},
		cookie:       handlers.CookieConfig{Secure: cfg.CookieSecure, MaxAge: cfg.SessionTTL},
		corsOrigins:  cfg.CORSOrigins,
		swaggerURL:   fmt.Sprintf("http://%s/swagger/doc.json", docs.SwaggerInfo.Host),
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.AppHost, cfg.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 2)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	monitor := health.NewMonitor(store, 10*time.Second)
	go monitor.Run(ctxShutdown)
	go func() {
		if err := monitor.Serve(ctxShutdown, net.JoinHostPort(cfg.AppHost, cfg.GRPCHealthPort)); err != nil {
			errChan <- fmt.Errorf("gRPC health server failed: %w", err)
		}
	}()

	go func() {
		logger.Log.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr = <-errChan:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("Notification dispatcher shutdown error", "error", err)
	}

	if serveErr != nil {
		return serveErr
	}
	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
