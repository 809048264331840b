package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rm/user-service/services/audit"
	"github.com/rm/user-service/utils"
	"go.uber.org/zap"
)

// HealthChecker reports whether a dependency can serve requests
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// AuditStats reports the state of the audit pipeline
type AuditStats interface {
	GetStats() audit.Stats
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
	Audit     *audit.Stats      `json:"audit,omitempty"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db     HealthChecker
	audit  AuditStats
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. A nil db reports healthy.
func NewHealthHandler(db HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// WithAuditStats adds the audit pipeline to the readiness checks.
// A stopped pipeline makes the service unready.
func (h *HealthHandler) WithAuditStats(stats AuditStats) *HealthHandler {
	h.audit = stats
	return h
}

// HandleHealth handles GET /healthz
// Basic health check - always returns 200 if service is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	_ = utils.WriteSuccess(w, response)
}

// HandleReadiness handles GET /readyz
// Readiness check - validates that all dependencies are available
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	// Check database connectivity
	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			h.logger.Warn("database health check failed", zap.Error(err))
			checks["database"] = "unhealthy"
			allHealthy = false
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "healthy"
	}

	var auditStats *audit.Stats
	if h.audit != nil {
		stats := h.audit.GetStats()
		auditStats = &stats
		if stats.Started {
			checks["audit"] = "healthy"
		} else {
			checks["audit"] = "unhealthy"
			allHealthy = false
		}
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Audit:     auditStats,
	}

	var err error
	if allHealthy {
		err = utils.WriteSuccess(w, response)
	} else {
		response.Status = "unhealthy"
		err = utils.WriteFailWithData(w, utils.CodeUnavailable, response)
	}
	if err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
