// Package coinbase implements the wallet adapter for custodial wallets
// managed through the Coinbase developer platform API. The "address" here is
// the custodial wallet identifier, not a single on-chain address, and one
// wallet natively holds multiple assets.
package coinbase

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"walletwatch/internal/domain/entity"
	"walletwatch/internal/infrastructure/wallet/ethereum"
)

// supportedAssets lists what the custodial backend serves, in a stable
// order.
var supportedAssets = []string{"eth", "usdc", "weth"}

// Config carries the adapter inputs. WalletSecret authorizes write
// operations; leaving it empty selects read-only capability even when the
// API key pair permits reads.
type Config struct {
	WalletID     string
	WalletSecret string
}

// Wallet adapts one custodial wallet to the shared capability interface.
type Wallet struct {
	client       *Client
	walletID     string
	walletSecret string
	capability   entity.Capability
	logger       *zap.Logger
}

// NewWallet builds the adapter on top of an API client.
func NewWallet(cfg Config, client *Client, logger *zap.Logger) (*Wallet, error) {
	if cfg.WalletID == "" {
		return nil, fmt.Errorf("coinbase wallet id is required")
	}

	log := logger.Named("CoinbaseWallet")

	capability := entity.CapabilityReadOnly
	if cfg.WalletSecret != "" {
		capability = entity.CapabilityReadWrite
		log.Info("Transaction signing enabled")
	} else {
		log.Warn("Read-only mode (no wallet secret configured)")
	}

	log.Info("Coinbase wallet adapter initialized", zap.String("walletID", cfg.WalletID))
	return &Wallet{
		client:       client,
		walletID:     cfg.WalletID,
		walletSecret: cfg.WalletSecret,
		capability:   capability,
		logger:       log,
	}, nil
}

// FetchBalance returns the wallet's current balance for the asset. An asset
// the custodial wallet holds nothing of reports zero.
func (w *Wallet) FetchBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	if !slices.Contains(supportedAssets, asset) {
		return decimal.Decimal{}, entity.NewWalletError(entity.KindUnsupportedAsset, "fetch_balance", asset, nil)
	}
	balances, err := w.client.Balances(ctx, w.walletID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return balances[asset], nil
}

// Address returns the custodial wallet identifier.
func (w *Wallet) Address() string {
	return w.walletID
}

// SupportedAssets lists the asset symbols this adapter serves.
func (w *Wallet) SupportedAssets() []string {
	return slices.Clone(supportedAssets)
}

// Capability reports the adapter's operating mode.
func (w *Wallet) Capability() entity.Capability {
	return w.capability
}

// Transfer submits a transfer through the custodial API. The custodial
// wallets are EVM-backed, so recipient validation follows the EVM address
// format. Validation order: recipient address, amount, asset, capability.
func (w *Wallet) Transfer(ctx context.Context, toAddress string, amount decimal.Decimal, asset string) (entity.TransferResult, error) {
	if !ethereum.ValidAddress(toAddress) {
		err := entity.NewWalletError(entity.KindInvalidAddress, "transfer", asset, nil)
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}
	if !amount.IsPositive() {
		err := entity.NewWalletError(entity.KindInvalidAmount, "transfer", asset, nil)
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}
	if !slices.Contains(supportedAssets, asset) {
		err := entity.NewWalletError(entity.KindUnsupportedAsset, "transfer", asset, nil)
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}
	if w.walletSecret == "" {
		err := entity.NewWalletError(entity.KindReadOnly, "transfer", asset, nil)
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}

	w.logger.Info("Initiating transfer",
		zap.String("amount", amount.String()),
		zap.String("asset", asset),
		zap.String("to", toAddress))

	resp, err := w.client.Transfer(ctx, w.walletID, toAddress, amount, asset, w.walletSecret)
	if err != nil {
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}

	w.logger.Info("Transfer submitted",
		zap.String("transferID", resp.TransferID),
		zap.String("txHash", resp.TransactionHash))

	return entity.TransferResult{
		Status: entity.StatusSuccess,
		TxHash: resp.TransactionHash,
		Asset:  asset,
		Amount: amount,
		To:     toAddress,
		From:   w.walletID,
	}, nil
}

// SignMessage signs the message remotely through the custodial API; unlike
// the RPC adapters this requires a network call.
func (w *Wallet) SignMessage(ctx context.Context, message string) (entity.SignResult, error) {
	if w.walletSecret == "" {
		err := entity.NewWalletError(entity.KindReadOnly, "sign_message", "", nil)
		return entity.FailedSign(message, w.walletID, err), err
	}

	signature, err := w.client.SignPayload(ctx, w.walletID, message, w.walletSecret)
	if err != nil {
		return entity.FailedSign(message, w.walletID, err), err
	}

	return entity.SignResult{
		Status:    entity.StatusSuccess,
		Signature: signature,
		Message:   message,
		Address:   w.walletID,
	}, nil
}
