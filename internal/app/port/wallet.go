package port

import (
	"context"

	"github.com/shopspring/decimal"

	"walletwatch/internal/domain/entity"
)

// Wallet is the capability interface every asset adapter implements.
// Implementations are specific to a chain or custodial backend (EVM, Solana,
// Coinbase); the monitoring core depends only on this interface.
type Wallet interface {
	// FetchBalance returns the current balance for the given asset symbol at
	// call time. Adapters never cache and never retry internally; transient
	// transport failures come back as entity.KindNetwork, malformed responses
	// as entity.KindProtocol, unknown symbols as entity.KindUnsupportedAsset.
	FetchBalance(ctx context.Context, asset string) (decimal.Decimal, error)

	// Address returns the monitored address (for custodial backends, the
	// wallet identifier). Pure accessor, never fails.
	Address() string

	// SupportedAssets returns the static list of asset symbols this adapter
	// can serve, in a stable order.
	SupportedAssets() []string

	// Capability reports whether the adapter can sign. Computed once at
	// construction and immutable afterwards.
	Capability() entity.Capability

	// Transfer submits a transfer of amount of asset to toAddress. The
	// recipient address is validated before anything else (no I/O), then the
	// amount, then asset support, then capability; a read-only adapter fails
	// with entity.KindReadOnly without touching the network. On success the
	// result carries the submission hash; no confirmation depth is awaited.
	Transfer(ctx context.Context, toAddress string, amount decimal.Decimal, asset string) (entity.TransferResult, error)

	// SignMessage signs an arbitrary message with the wallet's key. Subject
	// to the same read-only precondition as Transfer. Signing is local for
	// chains where the key is held in-process.
	SignMessage(ctx context.Context, message string) (entity.SignResult, error)
}
