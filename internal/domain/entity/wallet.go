package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Capability describes the operating mode of a wallet adapter. It is derived
// once at construction from the presence of a signing credential and never
// changes afterwards.
type Capability string

const (
	CapabilityReadOnly  Capability = "read-only"
	CapabilityReadWrite Capability = "read-write"
)

// BalanceEvent records a detected positive change of one asset's balance
// between two polls. Delta is always strictly positive; decreases never
// produce events.
type BalanceEvent struct {
	Asset      string          `json:"asset"`
	Delta      decimal.Decimal `json:"delta"`
	ObservedAt time.Time       `json:"observedAt"`
}

// OperationStatus marks the outcome of a write operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "success"
	StatusFailed  OperationStatus = "failed"
)

// TransferResult is the synchronous outcome of a transfer submission. On
// success TxHash holds the submission identifier; the adapter does not wait
// for confirmation depth.
type TransferResult struct {
	Status OperationStatus `json:"status"`
	TxHash string          `json:"transactionHash,omitempty"`
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
	To     string          `json:"toAddress"`
	From   string          `json:"fromAddress,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// FailedTransfer builds a failed TransferResult for the given request and
// cause.
func FailedTransfer(to string, amount decimal.Decimal, asset string, cause error) TransferResult {
	res := TransferResult{Status: StatusFailed, Asset: asset, Amount: amount, To: to}
	if cause != nil {
		res.Error = cause.Error()
	}
	return res
}

// SignResult is the synchronous outcome of a message-signing request.
type SignResult struct {
	Status    OperationStatus `json:"status"`
	Signature string          `json:"signature,omitempty"`
	Message   string          `json:"message"`
	Address   string          `json:"address"`
	Error     string          `json:"error,omitempty"`
}

// FailedSign builds a failed SignResult for the given message and cause.
func FailedSign(message, address string, cause error) SignResult {
	res := SignResult{Status: StatusFailed, Message: message, Address: address}
	if cause != nil {
		res.Error = cause.Error()
	}
	return res
}

// WalletStatus is the read model served by the status API: one monitored
// wallet with its last observed balances.
type WalletStatus struct {
	Name            string                     `json:"name"`
	Chain           string                     `json:"chain"`
	Address         string                     `json:"address"`
	Capability      Capability                 `json:"capability"`
	SupportedAssets []string                   `json:"supportedAssets"`
	TrackedAssets   []string                   `json:"trackedAssets"`
	Balances        map[string]decimal.Decimal `json:"balances"`
}
