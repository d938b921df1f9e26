// Package api provides the HTTP API for the Roadie emergency engine.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/roadieapp/roadie/internal/api/handler"
	"github.com/roadieapp/roadie/internal/api/middleware"
	"github.com/roadieapp/roadie/internal/contact"
	"github.com/roadieapp/roadie/internal/engine"
	"github.com/roadieapp/roadie/internal/escalation"
	"github.com/roadieapp/roadie/internal/geofence"
	"github.com/roadieapp/roadie/internal/invite"
	"github.com/roadieapp/roadie/internal/medical"
	"github.com/roadieapp/roadie/internal/phrase"
	"github.com/roadieapp/roadie/internal/resilience"
	"github.com/roadieapp/roadie/internal/session"
	"github.com/roadieapp/roadie/internal/wearable"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version         string
	BuildTime       string
	Logger          zerolog.Logger
	ServiceName     string
	Metrics         *middleware.Metrics
	Auth            middleware.AuthConfig
	Engine          *engine.Engine
	Zones           *geofence.Service
	Contacts        *contact.Service
	Invites         *invite.Service
	MedicalProfiles *medical.Service
	Phrases         phrase.Repository
	Sessions        session.Repository
	Attempts        escalation.Repository
	Devices         wearable.Repository
	Channels        *resilience.Registry
	DB              handler.Pinger
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "roadie-engine"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Channels, cfg.DB)
	sessionHandler := handler.NewSessionHandler(cfg.Engine, cfg.Sessions, cfg.Attempts)
	signalHandler := handler.NewSignalHandler(cfg.Engine)
	zoneHandler := handler.NewZoneHandler(cfg.Zones)
	contactHandler := handler.NewContactHandler(cfg.Contacts, cfg.Invites)
	phraseHandler := handler.NewPhraseHandler(cfg.Engine, cfg.Phrases)
	medicalHandler := handler.NewMedicalHandler(cfg.MedicalProfiles)
	deviceHandler := handler.NewDeviceHandler(cfg.Devices)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.Auth)

	// Create rate limit middleware for different endpoint categories.
	// Signal ingestion runs hot during an emergency, so it gets the
	// generous tier; configuration endpoints get the standard tier.
	standardRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit)
	signalRateLimit := middleware.RateLimitByUser(middleware.SignalRateLimit)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Signal ingestion (authenticated)
		r.Route("/signals", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(signalRateLimit)
			r.Post("/utterance", signalHandler.SubmitUtterance)
			r.Post("/tap", signalHandler.SubmitTap)
			r.Post("/location", signalHandler.SubmitLocation)
			r.Post("/wearable", signalHandler.SubmitWearable)
		})

		// SOS session control (authenticated). Deliberately unthrottled:
		// a rate limiter must never stand between a user and cancel.
		r.Route("/sos", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", sessionHandler.GetCurrent)
			r.Post("/trigger", sessionHandler.Trigger)
			r.Post("/cancel", sessionHandler.Cancel)
			r.Post("/resolve", sessionHandler.Resolve)
			r.Post("/confirm-dial", sessionHandler.ConfirmDial)
			r.Get("/history", sessionHandler.History)
			r.Get("/{sessionId}/attempts", sessionHandler.Attempts)
		})

		// Geofence zones (authenticated)
		r.Route("/zones", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", zoneHandler.ListZones)
			r.Post("/", zoneHandler.CreateZone)
			r.Route("/{zoneId}", func(r chi.Router) {
				r.Get("/", zoneHandler.GetZone)
				r.Put("/", zoneHandler.UpdateZone)
				r.Delete("/", zoneHandler.DeleteZone)
			})
		})

		// Emergency contacts (authenticated)
		r.Route("/contacts", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", contactHandler.ListContacts)
			r.Post("/", contactHandler.CreateContact)
			r.Post("/invites/verify", contactHandler.VerifyInvite)
			r.Route("/{contactId}", func(r chi.Router) {
				r.Get("/", contactHandler.GetContact)
				r.Put("/", contactHandler.UpdateContact)
				r.Delete("/", contactHandler.DeleteContact)
				r.Post("/invite", contactHandler.InviteContact)
			})
		})

		// Trigger-phrase catalog (authenticated)
		r.Route("/phrases", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", phraseHandler.ListPhrases)
			r.Put("/", phraseHandler.ReplacePhrases)
		})

		// Paired wearables (authenticated)
		r.Route("/devices", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", deviceHandler.ListDevices)
			r.Post("/", deviceHandler.RegisterDevice)
			r.Delete("/{deviceId}", deviceHandler.UnregisterDevice)
		})

		// Medical profile (authenticated)
		r.Route("/medical-profile", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", medicalHandler.GetProfile)
			r.Put("/", medicalHandler.UpsertProfile)
			r.Delete("/", medicalHandler.DeleteProfile)
		})
	})

	return r
}
