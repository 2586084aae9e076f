package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"walletwatch/internal/domain/entity"
	"walletwatch/internal/service"
)

// WalletHandler serves wallet status and the write path over HTTP.
type WalletHandler struct {
	manager  *service.Manager
	notifier *service.Notifier
	logger   *zap.Logger
}

// NewWalletHandler creates the handler set for the wallet API.
func NewWalletHandler(manager *service.Manager, notifier *service.Notifier, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		manager:  manager,
		notifier: notifier,
		logger:   logger.Named("WalletHandler"),
	}
}

// ListWalletsHandler handles GET /api/v1/wallets.
func (h *WalletHandler) ListWalletsHandler(c *gin.Context) {
	monitors := h.manager.Monitors()
	statuses := make([]entity.WalletStatus, 0, len(monitors))
	for _, m := range monitors {
		statuses = append(statuses, m.Status())
	}
	c.JSON(http.StatusOK, gin.H{"wallets": statuses})
}

// GetWalletHandler handles GET /api/v1/wallets/:name.
func (h *WalletHandler) GetWalletHandler(c *gin.Context) {
	m, ok := h.manager.Monitor(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
		return
	}
	c.JSON(http.StatusOK, m.Status())
}

// ListNotificationsHandler handles GET /api/v1/notifications.
func (h *WalletHandler) ListNotificationsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.notifier.Recent()})
}

// TransferRequest is the body of POST /api/v1/wallets/:name/transfer.
type TransferRequest struct {
	ToAddress string          `json:"to_address" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Asset     string          `json:"asset" binding:"required"`
}

// TransferHandler handles POST /api/v1/wallets/:name/transfer.
func (h *WalletHandler) TransferHandler(c *gin.Context) {
	m, ok := h.manager.Monitor(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := m.Transfer(c.Request.Context(), req.ToAddress, req.Amount, req.Asset)
	if err != nil {
		c.JSON(statusForKind(entity.KindOf(err)), gin.H{
			"result": result,
			"kind":   entity.KindOf(err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// SignRequest is the body of POST /api/v1/wallets/:name/sign.
type SignRequest struct {
	Message string `json:"message" binding:"required"`
}

// SignHandler handles POST /api/v1/wallets/:name/sign.
func (h *WalletHandler) SignHandler(c *gin.Context) {
	m, ok := h.manager.Monitor(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
		return
	}

	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := m.SignMessage(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(statusForKind(entity.KindOf(err)), gin.H{
			"result": result,
			"kind":   entity.KindOf(err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// statusForKind maps the error taxonomy onto HTTP statuses so "not
// configured for writes" stays distinguishable from "temporarily
// unreachable".
func statusForKind(kind entity.Kind) int {
	switch kind {
	case entity.KindInvalidAddress, entity.KindInvalidAmount, entity.KindUnsupportedAsset:
		return http.StatusBadRequest
	case entity.KindReadOnly:
		return http.StatusForbidden
	case entity.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
