// Package solana implements the wallet adapter for Solana accounts over
// cluster RPC.
package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"walletwatch/internal/domain/entity"
	"walletwatch/internal/infrastructure/wallet/chain"
)

const (
	assetSOL = "sol"

	// lamportDecimals is the lamport→SOL shift (1 SOL = 1e9 lamports).
	lamportDecimals = 9

	defaultEndpoint = rpc.MainNetBeta_RPC
)

// Config carries the adapter inputs; credentials are injected, never read
// from the environment here. An empty PrivateKey selects read-only
// capability.
type Config struct {
	Address    string
	Endpoint   string
	PrivateKey string // base58-encoded keypair
}

// Wallet monitors a single Solana account and supports system-program SOL
// transfers and local ed25519 message signing.
type Wallet struct {
	client     *rpc.Client
	pubkey     solana.PublicKey
	key        *solana.PrivateKey
	capability entity.Capability
	logger     *zap.Logger
}

// NewWallet validates the address, parses the optional keypair and builds
// the RPC client. No network call is made at construction; the monitor
// baselines lazily on its first poll.
func NewWallet(cfg Config, logger *zap.Logger) (*Wallet, error) {
	pubkey, err := solana.PublicKeyFromBase58(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid solana address %q: %w", cfg.Address, err)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}

	log := logger.Named("SolanaWallet")

	w := &Wallet{
		client:     rpc.New(cfg.Endpoint),
		pubkey:     pubkey,
		capability: entity.CapabilityReadOnly,
		logger:     log,
	}

	if cfg.PrivateKey != "" {
		key, err := solana.PrivateKeyFromBase58(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid solana private key: %w", err)
		}
		w.key = &key
		w.capability = entity.CapabilityReadWrite
		log.Info("Transaction signing enabled", zap.String("signer", key.PublicKey().String()))
	} else {
		log.Warn("Read-only mode (no private key configured)")
	}

	log.Info("Solana wallet adapter initialized",
		zap.String("address", pubkey.String()), zap.String("endpoint", cfg.Endpoint))
	return w, nil
}

// ValidAddress reports whether addr parses as a base58 Solana public key.
func ValidAddress(addr string) bool {
	_, err := solana.PublicKeyFromBase58(addr)
	return err == nil
}

// FetchBalance returns the current account balance in SOL.
func (w *Wallet) FetchBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	if asset != assetSOL {
		return decimal.Decimal{}, entity.NewWalletError(entity.KindUnsupportedAsset, "fetch_balance", asset, nil)
	}
	out, err := w.client.GetBalance(ctx, w.pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Decimal{}, entity.NewWalletError(chain.Classify(err), "fetch_balance", asset, err)
	}
	if out == nil {
		err := fmt.Errorf("empty balance response")
		return decimal.Decimal{}, entity.NewWalletError(entity.KindProtocol, "fetch_balance", asset, err)
	}
	return decimal.NewFromUint64(out.Value).Shift(-lamportDecimals), nil
}

// Address returns the monitored public key, base58 encoded.
func (w *Wallet) Address() string {
	return w.pubkey.String()
}

// SupportedAssets lists the asset symbols this adapter serves.
func (w *Wallet) SupportedAssets() []string {
	return []string{assetSOL}
}

// Capability reports the adapter's operating mode.
func (w *Wallet) Capability() entity.Capability {
	return w.capability
}

// Transfer submits a system-program SOL transfer. Validation order:
// recipient address, amount, asset, capability; only then is the network
// touched.
func (w *Wallet) Transfer(ctx context.Context, toAddress string, amount decimal.Decimal, asset string) (entity.TransferResult, error) {
	recipient, parseErr := solana.PublicKeyFromBase58(toAddress)
	if parseErr != nil {
		err := entity.NewWalletError(entity.KindInvalidAddress, "transfer", asset, parseErr)
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}
	if !amount.IsPositive() {
		err := entity.NewWalletError(entity.KindInvalidAmount, "transfer", asset, nil)
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}
	if asset != assetSOL {
		err := entity.NewWalletError(entity.KindUnsupportedAsset, "transfer", asset, nil)
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}
	if w.key == nil {
		err := entity.NewWalletError(entity.KindReadOnly, "transfer", asset, nil)
		return entity.FailedTransfer(toAddress, amount, asset, err), err
	}

	w.logger.Info("Initiating transfer",
		zap.String("amount", amount.String()), zap.String("to", toAddress))

	lamports := amount.Shift(lamportDecimals).BigInt().Uint64()
	payer := w.key.PublicKey()

	recent, err := w.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		werr := entity.NewWalletError(chain.Classify(err), "transfer", asset, err)
		return entity.FailedTransfer(toAddress, amount, asset, werr), werr
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, payer, recipient).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		werr := entity.NewWalletError(entity.KindProtocol, "transfer", asset, err)
		return entity.FailedTransfer(toAddress, amount, asset, werr), werr
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return w.key
		}
		return nil
	}); err != nil {
		werr := entity.NewWalletError(entity.KindProtocol, "transfer", asset, err)
		return entity.FailedTransfer(toAddress, amount, asset, werr), werr
	}

	sig, err := w.client.SendTransaction(ctx, tx)
	if err != nil {
		werr := entity.NewWalletError(chain.Classify(err), "transfer", asset, err)
		return entity.FailedTransfer(toAddress, amount, asset, werr), werr
	}

	w.logger.Info("Transaction sent", zap.String("signature", sig.String()))

	return entity.TransferResult{
		Status: entity.StatusSuccess,
		TxHash: sig.String(),
		Asset:  asset,
		Amount: amount,
		To:     toAddress,
		From:   payer.String(),
	}, nil
}

// SignMessage signs the message bytes with the keypair locally; no network
// call.
func (w *Wallet) SignMessage(_ context.Context, message string) (entity.SignResult, error) {
	if w.key == nil {
		err := entity.NewWalletError(entity.KindReadOnly, "sign_message", assetSOL, nil)
		return entity.FailedSign(message, w.pubkey.String(), err), err
	}

	sig, err := w.key.Sign([]byte(message))
	if err != nil {
		werr := entity.NewWalletError(entity.KindProtocol, "sign_message", assetSOL, err)
		return entity.FailedSign(message, w.key.PublicKey().String(), werr), werr
	}

	return entity.SignResult{
		Status:    entity.StatusSuccess,
		Signature: sig.String(),
		Message:   message,
		Address:   w.key.PublicKey().String(),
	}, nil
}
