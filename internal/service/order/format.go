package order

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/krobus00/futures-gateway/internal/entity"
)

const notAvailable = "N/A"

// FormatOrderResponse renders a venue acknowledgement as a fixed-layout,
// operator-readable report. Any absent field prints as N/A.
func FormatOrderResponse(resp *entity.OrderResponse) string {
	orderID := notAvailable
	if resp.OrderID != 0 {
		orderID = strconv.FormatInt(resp.OrderID, 10)
	}

	lines := []string{
		"─── Order Response ───────────────────────────",
		fmt.Sprintf("  Order ID      : %s", orderID),
		fmt.Sprintf("  Symbol        : %s", valueOrNA(resp.Symbol)),
		fmt.Sprintf("  Side          : %s", valueOrNA(resp.Side)),
		fmt.Sprintf("  Type          : %s", valueOrNA(resp.Type)),
		fmt.Sprintf("  Status        : %s", valueOrNA(resp.Status)),
		fmt.Sprintf("  Orig Qty      : %s", valueOrNA(resp.OrigQty)),
		fmt.Sprintf("  Executed Qty  : %s", valueOrNA(resp.ExecutedQty)),
		fmt.Sprintf("  Avg Price     : %s", valueOrNA(resp.AvgPrice)),
		fmt.Sprintf("  Price         : %s", valueOrNA(resp.Price)),
		fmt.Sprintf("  Time In Force : %s", valueOrNA(resp.TimeInForce)),
		"───────────────────────────────────────────────",
	}

	return strings.Join(lines, "\n")
}

func valueOrNA(value string) string {
	if value == "" {
		return notAvailable
	}

	return value
}
