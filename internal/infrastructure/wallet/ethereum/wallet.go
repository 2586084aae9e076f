// Package ethereum implements the wallet adapter for EVM accounts over
// direct node RPC.
package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"walletwatch/internal/domain/entity"
	"walletwatch/internal/infrastructure/wallet/chain"
)

const (
	assetETH = "eth"

	// weiDecimals is the wei→ETH shift.
	weiDecimals = 18

	// transferGasLimit is the fixed gas limit of a native ETH transfer.
	transferGasLimit = 21000

	defaultEndpoint          = "https://eth.llamarpc.com"
	defaultConnectionTimeout = 10 * time.Second
)

// Config carries everything the adapter needs; it never reads the process
// environment itself. An empty PrivateKey selects read-only capability.
type Config struct {
	Address           string
	Endpoint          string
	PrivateKey        string
	ConnectionTimeout time.Duration
}

// Wallet monitors a single EVM account and supports native ETH transfers and
// EIP-191 message signing.
type Wallet struct {
	client     *ethclient.Client
	address    common.Address
	key        *ecdsa.PrivateKey
	signerAddr common.Address
	capability entity.Capability
	logger     *zap.Logger
}

// NewWallet dials the RPC endpoint and prepares the adapter. The signing key
// is parsed once here; its absence is not an error.
func NewWallet(cfg Config, logger *zap.Logger) (*Wallet, error) {
	if !ValidAddress(cfg.Address) {
		return nil, fmt.Errorf("invalid ethereum address %q", cfg.Address)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.ConnectionTimeout <= 0 {
		cfg.ConnectionTimeout = defaultConnectionTimeout
	}

	log := logger.Named("EthereumWallet")

	w := &Wallet{
		address:    common.HexToAddress(cfg.Address),
		capability: entity.CapabilityReadOnly,
		logger:     log,
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid ethereum private key: %w", err)
		}
		w.key = key
		w.signerAddr = crypto.PubkeyToAddress(key.PublicKey)
		w.capability = entity.CapabilityReadWrite
		log.Info("Transaction signing enabled", zap.String("signer", w.signerAddr.Hex()))
	} else {
		log.Warn("Read-only mode (no private key configured)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectionTimeout)
	defer cancel()
	client, err := ethclient.DialContext(ctx, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum RPC %s: %w", cfg.Endpoint, err)
	}
	w.client = client

	log.Info("Ethereum wallet adapter initialized",
		zap.String("address", w.address.Hex()), zap.String("endpoint", cfg.Endpoint))
	return w, nil
}

// ValidAddress reports whether addr is a well-formed EVM address. Mixed-case
// input must additionally carry a correct EIP-55 checksum.
func ValidAddress(addr string) bool {
	if !common.IsHexAddress(addr) {
		return false
	}
	hexPart := strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return true
	}
	return common.HexToAddress(addr).Hex() == addr
}

// FetchBalance returns the current native balance in ETH.
func (w *Wallet) FetchBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	if asset != assetETH {
		return decimal.Decimal{}, entity.NewWalletError(entity.KindUnsupportedAsset, "fetch_balance", asset, nil)
	}
	wei, err := w.client.BalanceAt(ctx, w.address, nil)
	if err != nil {
		return decimal.Decimal{}, entity.NewWalletError(chain.Classify(err), "fetch_balance", asset, err)
	}
	return decimal.NewFromBigInt(wei, -weiDecimals), nil
}

// Address returns the monitored account address.
func (w *Wallet) Address() string {
	return w.address.Hex()
}

// SupportedAssets lists the asset symbols this adapter serves.
func (w *Wallet) SupportedAssets() []string {
	return []string{assetETH}
}

// Capability reports the adapter's operating mode.
func (w *Wallet) Capability() entity.Capability {
	return w.capability
}

// Transfer submits a native ETH transfer. Validation order: recipient
// address, amount, asset, capability; only then is the network touched.
func (w *Wallet) Transfer(ctx context.Context, toAddress string, amount decimal.Decimal, asset string) (entity.TransferResult, error) {
	if !ValidAddress(toAddress) {
		err := entity.NewWalletError(entity.KindInvalidAddress, "transfer", asset, nil)
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}
	if !amount.IsPositive() {
		err := entity.NewWalletError(entity.KindInvalidAmount, "transfer", asset, nil)
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}
	if asset != assetETH {
		err := entity.NewWalletError(entity.KindUnsupportedAsset, "transfer", asset, nil)
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}
	if w.key == nil {
		err := entity.NewWalletError(entity.KindReadOnly, "transfer", asset, nil)
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}

	w.logger.Info("Initiating transfer",
		zap.String("amount", amount.String()), zap.String("to", toAddress))

	chainID, err := w.client.ChainID(ctx)
	if err != nil {
		werr := entity.NewWalletError(chain.Classify(err), "transfer", asset, err)
		return entity.FailedTransfer(toAddress, amount, asset, werr), werr
	}
	nonce, err := w.client.PendingNonceAt(ctx, w.signerAddr)
	if err != nil {
		werr := entity.NewWalletError(chain.Classify(err), "transfer", asset, err)
		return entity.FailedTransfer(toAddress, amount, asset, werr), werr
	}
	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		werr := entity.NewWalletError(chain.Classify(err), "transfer", asset, err)
		return entity.FailedTransfer(toAddress, amount, asset, werr), werr
	}

	tx := types.NewTransaction(nonce, common.HexToAddress(toAddress),
		amount.Shift(weiDecimals).BigInt(), transferGasLimit, gasPrice, nil)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), w.key)
	if err != nil {
		werr := entity.NewWalletError(entity.KindProtocol, "transfer", asset, err)
		return entity.FailedTransfer(toAddress, amount, asset, werr), werr
	}
	if err := w.client.SendTransaction(ctx, signedTx); err != nil {
		werr := entity.NewWalletError(chain.Classify(err), "transfer", asset, err)
		return entity.FailedTransfer(toAddress, amount, asset, werr), werr
	}

	txHash := signedTx.Hash().Hex()
	w.logger.Info("Transaction sent", zap.String("txHash", txHash))

	return entity.TransferResult{
		Status: entity.StatusSuccess,
		TxHash: txHash,
		Asset:  asset,
		Amount: amount,
		To:     toAddress,
		From:   w.signerAddr.Hex(),
	}, nil
}

// SignMessage signs an EIP-191 personal message locally; no network call.
func (w *Wallet) SignMessage(_ context.Context, message string) (entity.SignResult, error) {
	if w.key == nil {
		err := entity.NewWalletError(entity.KindReadOnly, "sign_message", assetETH, nil)
		return entity.FailedSign(message, w.address.Hex(), err), err
	}

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), w.key)
	if err != nil {
		werr := entity.NewWalletError(entity.KindProtocol, "sign_message", assetETH, err)
		return entity.FailedSign(message, w.signerAddr.Hex(), werr), werr
	}
	// Recovery id to Ethereum convention.
	sig[64] += 27

	return entity.SignResult{
		Status:    entity.StatusSuccess,
		Signature: hexutil.Encode(sig),
		Message:   message,
		Address:   w.signerAddr.Hex(),
	}, nil
}
