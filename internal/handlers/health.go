package handlers

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"
)

// BackendProbe checks that the clinic backend answers
type BackendProbe interface {
	CheckConnection(ctx context.Context) error
}

type HealthHandler struct {
	backend BackendProbe
	db      *gorm.DB
}

// NewHealthHandler creates the health handler. db is nil when auditing is off.
func NewHealthHandler(backend BackendProbe, db *gorm.DB) *HealthHandler {
	return &HealthHandler{backend: backend, db: db}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	if err := h.backend.CheckConnection(r.Context()); err != nil {
		response.Services["backend"] = "unreachable"
		response.Status = "degraded"
	} else {
		response.Services["backend"] = "healthy"
	}

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil || sqlDB.PingContext(r.Context()) != nil {
			response.Services["database"] = "unhealthy"
			response.Status = "degraded"
		} else {
			response.Services["database"] = "healthy"
		}
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// Ready reports that the console itself is serving
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
