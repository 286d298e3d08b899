package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/qrious/internal/generation"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	ctrl    *generation.Controller
	backend string
}

func NewHealthHandler(ctrl *generation.Controller, backend string) *HealthHandler {
	return &HealthHandler{ctrl: ctrl, backend: backend}
}

// HealthCheck returns the health status of the generator
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"encoder": gin.H{
			"backend": h.backend,
		},
		"generation": gin.H{
			"phase": h.ctrl.Snapshot().Phase.String(),
		},
	})
}
