package entity

import (
	"errors"
	"fmt"
)

// Kind classifies wallet operation failures so callers can react to the
// category without parsing error strings.
type Kind string

const (
	// KindUnsupportedAsset means the requested symbol is not in the adapter's
	// capability list. Detected locally, never reaches the network.
	KindUnsupportedAsset Kind = "unsupported_asset"

	// KindNetwork covers transient transport failures and timeouts.
	KindNetwork Kind = "network"

	// KindProtocol covers malformed or unexpected responses from the
	// underlying chain API.
	KindProtocol Kind = "protocol"

	// KindReadOnly means a write operation was attempted without a signing
	// credential configured.
	KindReadOnly Kind = "read_only"

	// KindInvalidAddress means the recipient address failed the adapter's
	// format validation. Detected locally, no network call.
	KindInvalidAddress Kind = "invalid_address"

	// KindInvalidAmount means the transfer amount was zero or negative.
	KindInvalidAmount Kind = "invalid_amount"
)

// WalletError is the error type returned by asset adapters. It carries the
// failure Kind alongside the operation and asset for logging.
type WalletError struct {
	Kind  Kind
	Op    string
	Asset string
	Err   error
}

func (e *WalletError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Asset, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Asset, e.Kind)
}

func (e *WalletError) Unwrap() error {
	return e.Err
}

// NewWalletError builds a WalletError wrapping cause (cause may be nil for
// purely local failures).
func NewWalletError(kind Kind, op, asset string, cause error) *WalletError {
	return &WalletError{Kind: kind, Op: op, Asset: asset, Err: cause}
}

// KindOf extracts the Kind from err, or KindProtocol if err is not a
// WalletError. Returns an empty Kind for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var we *WalletError
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindProtocol
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
