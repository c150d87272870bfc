package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/krobus00/futures-gateway/internal/binance"
	"github.com/krobus00/futures-gateway/internal/config"
	"github.com/krobus00/futures-gateway/internal/entity"
	"github.com/krobus00/futures-gateway/internal/service/order"
	"github.com/krobus00/futures-gateway/internal/validator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	orderSymbol   string
	orderSide     string
	orderType     string
	orderQuantity string
	orderPrice    string
)

// orderCmd represents the order command
var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Validate and place a single order",
	Long: `Validates the order parameters, prints a request summary, places the order
against the venue, and prints the formatted acknowledgement.

Examples:
  futures-gateway order --symbol BTCUSDT --side BUY  --type MARKET --quantity 0.01
  futures-gateway order --symbol ETHUSDT --side SELL --type LIMIT  --quantity 0.1 --price 3000`,
	Run: runPlaceOrder,
}

func init() {
	rootCmd.AddCommand(orderCmd)

	orderCmd.Flags().StringVar(&orderSymbol, "symbol", "", "trading pair (e.g. BTCUSDT)")
	orderCmd.Flags().StringVar(&orderSide, "side", "", "order side: BUY or SELL")
	orderCmd.Flags().StringVar(&orderType, "type", "", "order type: MARKET or LIMIT")
	orderCmd.Flags().StringVar(&orderQuantity, "quantity", "", "order quantity")
	orderCmd.Flags().StringVar(&orderPrice, "price", "", "limit price (required for LIMIT orders)")

	_ = orderCmd.MarkFlagRequired("symbol")
	_ = orderCmd.MarkFlagRequired("side")
	_ = orderCmd.MarkFlagRequired("type")
	_ = orderCmd.MarkFlagRequired("quantity")
}

func runPlaceOrder(cmd *cobra.Command, args []string) {
	if strings.TrimSpace(config.Env.Binance.APIKey) == "" || strings.TrimSpace(config.Env.Binance.APISecret) == "" {
		logrus.Error("missing venue credentials: set binance.api_key and binance.api_secret in the config file")
		os.Exit(1)
	}

	var price *string
	if strings.TrimSpace(orderPrice) != "" {
		price = &orderPrice
	}

	req, err := validator.ValidateAll(orderSymbol, orderSide, orderType, orderQuantity, price)
	if err != nil {
		logrus.Errorf("validation error: %v", err)
		os.Exit(1)
	}

	printRequestSummary(req)

	client := binance.NewClient(config.Env.Binance)
	orderService := order.NewService(client, nil)

	resp, err := orderService.PlaceOrder(context.Background(), req)
	if err != nil {
		logrus.Errorf("order failed: %v", err)
		fmt.Printf("\n✗ Order FAILED: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(order.FormatOrderResponse(resp))
	fmt.Println("✓ Order placed successfully!")
}

func printRequestSummary(req entity.OrderRequest) {
	fmt.Println()
	fmt.Println("─── Order Request Summary ────────────────────")
	fmt.Printf("  Symbol   : %s\n", req.Symbol)
	fmt.Printf("  Side     : %s\n", req.Side)
	fmt.Printf("  Type     : %s\n", req.Type)
	fmt.Printf("  Quantity : %s\n", req.Quantity.String())
	if req.Price != nil {
		fmt.Printf("  Price    : %s\n", req.Price.String())
	}
	fmt.Println("───────────────────────────────────────────────")
	fmt.Println()
}
