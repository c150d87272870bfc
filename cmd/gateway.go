package cmd

import (
	"github.com/krobus00/futures-gateway/internal/bootstrap"
	"github.com/spf13/cobra"
)

// gatewayCmd represents the gateway command
var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the HTTP order gateway",
	Long: `The gateway exposes the validate, place, and format pipeline over a JSON
HTTP API for the trading dashboard, together with market data passthrough
endpoints and the in-memory order history.`,
	Run: bootstrap.StartGateway,
}

func init() {
	rootCmd.AddCommand(gatewayCmd)
}
