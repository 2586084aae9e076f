// Package chain holds helpers shared by the blockchain adapter
// implementations.
package chain

import (
	"context"
	"errors"
	"net"

	"walletwatch/internal/domain/entity"
)

// Classify maps an RPC/API call failure onto the wallet error taxonomy:
// transport failures and timeouts are transient network errors, anything
// else coming back from a live endpoint is a protocol error (unexpected or
// malformed response).
func Classify(err error) entity.Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return entity.KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return entity.KindNetwork
	}
	return entity.KindProtocol
}
