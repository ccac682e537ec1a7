package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks that the record store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store         Pinger
	activeWizards func() int
}

func NewHealthHandler(store Pinger, activeWizards func() int) *HealthHandler {
	return &HealthHandler{
		store:         store,
		activeWizards: activeWizards,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		attachError(c, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "record store not reachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"wizardSessions": h.activeWizards(),
	})
}
