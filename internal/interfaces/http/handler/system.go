package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oms/backend/internal/domain/numbering"
	"github.com/oms/backend/internal/interfaces/http/dto"
)

// SystemHandler handles health and system endpoints
type SystemHandler struct {
	BaseHandler
	db        *gorm.DB
	counters  numbering.CounterRepository
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *gorm.DB, counters numbering.CounterRepository) *SystemHandler {
	return &SystemHandler{
		db:        db,
		counters:  counters,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers system routes on the given group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/ready", h.Ready)
	rg.GET("/system/info", h.GetSystemInfo)
	rg.GET("/system/counters", h.ListCounters)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Health is a liveness probe; it answers as long as the process is up
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// Ready is a readiness probe; it fails when the database is unreachable
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil {
			h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, "Database handle unavailable")
			return
		}
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, "Database unreachable")
			return
		}
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// CounterResponse represents one document-number sequence in API responses
type CounterResponse struct {
	Prefix    string    `json:"prefix"`
	Number    int64     `json:"number"`
	Postfix   string    `json:"postfix"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListCounters returns the current state of every document-number sequence.
// Read-only operational visibility; allocation always goes through orders.
func (h *SystemHandler) ListCounters(c *gin.Context) {
	counters, err := h.counters.FindAll(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]CounterResponse, 0, len(counters))
	for _, counter := range counters {
		responses = append(responses, CounterResponse{
			Prefix:    counter.Prefix,
			Number:    counter.Number,
			Postfix:   counter.Postfix,
			UpdatedAt: counter.UpdatedAt,
		})
	}

	h.Success(c, responses)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Order Management API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo returns basic service information including uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Order Management API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}
