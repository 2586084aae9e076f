package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"walletwatch/internal/domain/entity"
)

// amountPrecision is the fixed number of fractional digits rendered in
// notification messages.
const amountPrecision = 5

// FormatNotification combines buffered balance events into a single outbound
// message: one line per asset, same-asset deltas summed over the buffering
// window, assets in first-detection order. Returns "" when events is empty so
// callers never emit empty messages.
func FormatNotification(events []entity.BalanceEvent) string {
	if len(events) == 0 {
		return ""
	}

	order := make([]string, 0, len(events))
	sums := make(map[string]decimal.Decimal, len(events))
	for _, ev := range events {
		sum, seen := sums[ev.Asset]
		if !seen {
			order = append(order, ev.Asset)
		}
		sums[ev.Asset] = sum.Add(ev.Delta)
	}

	lines := make([]string, 0, len(order))
	for _, asset := range order {
		lines = append(lines, fmt.Sprintf("You just received %s %s.",
			sums[asset].StringFixed(amountPrecision), strings.ToUpper(asset)))
	}
	return strings.Join(lines, "\n")
}
