// Package webhook exposes the light-command webhook endpoint. It is glue
// around the Home Assistant client; the wallet core has no dependency on it.
package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"walletwatch/internal/infrastructure/homeassistant"
)

// LightCommandRequest is the body of POST /webhook/light_command.
type LightCommandRequest struct {
	Command string `json:"command" binding:"required"`
	Source  string `json:"source"`
}

// LightHandler receives light commands and relays them to Home Assistant.
type LightHandler struct {
	ha     *homeassistant.Client
	logger *zap.Logger
}

// NewLightHandler creates the webhook handler.
func NewLightHandler(ha *homeassistant.Client, logger *zap.Logger) *LightHandler {
	return &LightHandler{
		ha:     ha,
		logger: logger.Named("LightHandler"),
	}
}

// Handle processes one webhook call.
func (h *LightHandler) Handle(c *gin.Context) {
	var req LightCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("Received webhook command",
		zap.String("command", req.Command), zap.String("source", req.Source))

	cmd, err := homeassistant.ParseCommand(req.Command)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ha.Call(c.Request.Context(), cmd); err != nil {
		h.logger.Error("Home Assistant call failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"command": req.Command,
	})
}

// SetupRouter wires the webhook routes.
func SetupRouter(handler *LightHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/webhook/light_command", handler.Handle)
	return router
}
