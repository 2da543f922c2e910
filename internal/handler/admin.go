package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mir00r/conn-pool/internal/manager"
	"github.com/mir00r/conn-pool/internal/metrics"
	"github.com/mir00r/conn-pool/pkg/logger"
)

// AdminHandler provides the read-only diagnostics API
type AdminHandler struct {
	manager   *manager.PoolManager
	logger    *logger.Logger
	startTime time.Time
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(mgr *manager.PoolManager, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		manager:   mgr,
		logger:    log.AdminLogger(),
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Pools     int       `json:"pools"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// Router builds the mux router for the diagnostics endpoints
func (h *AdminHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/admin/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/admin/pools", h.handlePools).Methods(http.MethodGet)
	r.HandleFunc("/metrics", h.handleMetrics).Methods(http.MethodGet)
	return r
}

// handleHealth reports liveness and the live pool count
func (h *AdminHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Pools:     h.manager.PoolCount(),
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now(),
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handlePools reports a per-pool stats snapshot keyed by pool key
func (h *AdminHandler) handlePools(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.manager.Stats())
}

// handleMetrics writes all counters in Prometheus exposition format
func (h *AdminHandler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	metrics.WritePrometheus(w)
}

// writeJSON writes a JSON response with the given status code
func (h *AdminHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("Failed to encode admin response")
	}
}
