// Package main provides the entrypoint for the Roadie emergency engine.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/roadieapp/roadie/internal/api"
	"github.com/roadieapp/roadie/internal/api/handler"
	"github.com/roadieapp/roadie/internal/api/middleware"
	"github.com/roadieapp/roadie/internal/audit"
	"github.com/roadieapp/roadie/internal/contact"
	"github.com/roadieapp/roadie/internal/database"
	"github.com/roadieapp/roadie/internal/engine"
	"github.com/roadieapp/roadie/internal/escalation"
	"github.com/roadieapp/roadie/internal/gateway"
	"github.com/roadieapp/roadie/internal/geofence"
	"github.com/roadieapp/roadie/internal/invite"
	"github.com/roadieapp/roadie/internal/location"
	"github.com/roadieapp/roadie/internal/medical"
	"github.com/roadieapp/roadie/internal/phrase"
	"github.com/roadieapp/roadie/internal/resilience"
	"github.com/roadieapp/roadie/internal/session"
	"github.com/roadieapp/roadie/internal/telemetry"
	"github.com/roadieapp/roadie/internal/trigger"
	"github.com/roadieapp/roadie/internal/wearable"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// repositories bundles the durable stores, backed by Postgres or memory.
type repositories struct {
	phrases  phrase.Repository
	zones    geofence.Repository
	contacts contact.Repository
	medical  medical.Repository
	sessions session.Repository
	runs     escalation.Repository
	devices  wearable.Repository
}

func main() {
	const serviceName = "roadie-engine"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Roadie emergency engine")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	userID := os.Getenv("ENGINE_USER_ID")
	if userID == "" {
		userID = "usr_local"
	}

	controlToken := os.Getenv("CONTROL_TOKEN")
	if controlToken == "" {
		controlToken = "local-dev-control-token-change-in-production"
		log.Warn().Msg("using default control token - not secure for production")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database, or run on in-memory stores for local development
	repos, pool := buildRepositories(ctx, log)
	var pinger handler.Pinger
	if pool != nil {
		defer pool.Close()
		pinger = pool
	}

	// Notification delivery: webhooks with per-channel circuit breakers,
	// falling back to the log when no endpoints are configured
	channels := resilience.NewRegistry()
	var notifier gateway.Notifier
	smsEndpoint := os.Getenv("SMS_WEBHOOK_URL")
	callEndpoint := os.Getenv("CALL_WEBHOOK_URL")
	if smsEndpoint != "" || callEndpoint != "" {
		notifier = gateway.NewWebhookNotifier(gateway.WebhookConfig{
			SMSEndpoint:  smsEndpoint,
			CallEndpoint: callEndpoint,
			APIKey:       os.Getenv("DELIVERY_API_KEY"),
		}, channels, log)
		log.Info().Msg("webhook notifier initialized")
	} else {
		notifier = gateway.NewLogNotifier(log)
		log.Warn().Msg("no delivery webhooks configured - notices go to the log")
	}

	// Audit sink: Pub/Sub when configured, log otherwise
	var sink audit.Sink
	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		topic := os.Getenv("AUDIT_TOPIC")
		if topic == "" {
			topic = "roadie-audit"
		}
		pubsubSink, sinkErr := audit.NewPubSubSink(ctx, audit.PubSubConfig{
			ProjectID: projectID,
			TopicName: topic,
			Logger:    log,
		})
		if sinkErr != nil {
			log.Fatal().Err(sinkErr).Msg("failed to initialize audit publisher")
		}
		sink = pubsubSink
		log.Info().Str("topic", topic).Msg("audit publisher initialized")
	} else {
		sink = audit.NewLogSink(log)
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close audit sink")
		}
	}()

	// Invite service (may be nil if not configured)
	var invites *invite.Service
	if signingKey := os.Getenv("INVITE_SIGNING_KEY"); signingKey != "" {
		invites = invite.NewService(invite.Config{
			SigningKey: signingKey,
			Issuer:     "https://api.roadie.app",
			Audience:   "roadie-invite",
		})
		log.Info().Msg("invite service initialized")
	} else {
		log.Warn().Msg("invite signing key not configured - invite endpoint disabled")
	}

	// Assemble the emergency pipeline
	matcher, err := phrase.NewMatcher(phrase.DefaultPhrases())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build phrase matcher")
	}

	registry := geofence.NewRegistry()
	zoneService := geofence.NewService(repos.zones, registry)
	contactService := contact.NewService(repos.contacts)
	medicalService := medical.NewService(repos.medical)

	scheduler := escalation.NewScheduler(
		repos.contacts,
		medicalService,
		notifier,
		repos.runs,
		escalation.Config{},
		log,
	)

	locations := location.NewPushProvider(5 * time.Minute)
	machine := session.NewMachine(session.Config{UserID: userID}, locations, log)

	eng, err := engine.New(engine.Config{
		UserID:          userID,
		EmergencyNumber: os.Getenv("EMERGENCY_NUMBER"),
	}, engine.Deps{
		Matcher:    matcher,
		Phrases:    repos.phrases,
		Zones:      zoneService,
		Registry:   registry,
		Detector:   wearable.NewDetector(wearable.DefaultDetectorConfig(), log),
		Aggregator: trigger.NewAggregator(matcher, trigger.DefaultConfig(), log),
		Machine:    machine,
		Scheduler:  scheduler,
		Sessions:   repos.sessions,
		Audit:      sink,
		Locations:  locations,
		Dialer:     gateway.NewLogDialer(log),
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to assemble engine")
	}

	if err := eng.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start engine")
	}
	defer eng.Stop()

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Auth: middleware.AuthConfig{
			ControlToken: controlToken,
			UserID:       userID,
		},
		Engine:          eng,
		Zones:           zoneService,
		Contacts:        contactService,
		Invites:         invites,
		MedicalProfiles: medicalService,
		Phrases:         repos.phrases,
		Sessions:        repos.sessions,
		Attempts:        repos.runs,
		Devices:         repos.devices,
		Channels:        channels,
		DB:              pinger,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout. The engine is stopped by the
	// deferred eng.Stop after the listener drains, so in-flight
	// escalations finish before the process exits.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// buildRepositories connects to Postgres unless STORAGE_MODE=memory, in
// which case everything lives in process memory and is lost on restart.
func buildRepositories(ctx context.Context, log zerolog.Logger) (repositories, *pgxpool.Pool) {
	if os.Getenv("STORAGE_MODE") == "memory" {
		log.Warn().Msg("running on in-memory storage - state is lost on restart")
		return repositories{
			phrases:  phrase.NewInMemoryRepository(),
			zones:    geofence.NewInMemoryRepository(),
			contacts: contact.NewInMemoryRepository(),
			medical:  medical.NewInMemoryRepository(),
			sessions: session.NewInMemoryRepository(),
			runs:     escalation.NewInMemoryRepository(),
			devices:  wearable.NewInMemoryRepository(),
		}, nil
	}

	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	return repositories{
		phrases:  phrase.NewPostgresRepository(pool),
		zones:    geofence.NewPostgresRepository(pool),
		contacts: contact.NewPostgresRepository(pool),
		medical:  medical.NewPostgresRepository(pool),
		sessions: session.NewPostgresRepository(pool),
		runs:     escalation.NewPostgresRepository(pool),
		devices:  wearable.NewPostgresRepository(pool),
	}, pool
}
