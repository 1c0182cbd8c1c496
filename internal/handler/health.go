package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/incognito-chat/backend/internal/model"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	service string
	version string
	now     func() time.Time
}

func NewHealthHandler(store Pinger, service, version string) *HealthHandler {
	return &HealthHandler{store: store, service: service, version: version, now: time.Now}
}

// Health godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Failure 503 {object} model.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if err := h.store.Ping(c.Request.Context()); err != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, model.HealthResponse{
		Status:    status,
		Service:   h.service,
		Version:   h.version,
		Timestamp: h.now().UTC(),
	})
}

// Ping is a liveness probe that touches no dependencies.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
