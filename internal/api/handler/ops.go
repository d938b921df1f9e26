// Package handler provides HTTP handlers for the Roadie API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/roadieapp/roadie/internal/api/models"
	"github.com/roadieapp/roadie/internal/api/response"
	"github.com/roadieapp/roadie/internal/resilience"
)

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	channels  *resilience.Registry
	db        Pinger
}

// NewOpsHandler creates a new OpsHandler. Both channels and db may be nil
// when the deployment runs without them.
func NewOpsHandler(version, buildTime string, channels *resilience.Registry, db Pinger) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		channels:  channels,
		db:        db,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"database": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem and channel status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       now,
		Subsystems: []models.SubsystemStatus{},
		Channels:   []models.ChannelStatus{},
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		dbStatus := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
		if err := h.db.Ping(ctx); err != nil {
			detail := err.Error()
			dbStatus.Status = models.HealthStatusFail
			dbStatus.Detail = &detail
			status.Status = models.HealthStatusDegraded
		}
		status.Subsystems = append(status.Subsystems, dbStatus)
	}

	if h.channels != nil {
		for _, ch := range h.channels.GetAllHealth() {
			status.Channels = append(status.Channels, models.ChannelStatus{
				Channel: ch.Name,
				Status:  channelHealthStatus(ch),
				State:   ch.CircuitState.String(),
			})
			if ch.IsUnhealthy() {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func channelHealthStatus(ch *resilience.ChannelHealth) models.HealthStatus {
	switch ch.CircuitState {
	case gobreaker.StateOpen:
		return models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}
