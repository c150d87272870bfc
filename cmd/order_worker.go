package cmd

import (
	"github.com/krobus00/futures-gateway/internal/bootstrap"
	"github.com/spf13/cobra"
)

// orderWorkerCmd represents the order-worker command
var orderWorkerCmd = &cobra.Command{
	Use:   "order-worker",
	Short: "Start the async order placement worker",
	Long: `The order worker subscribes to the order stream and places queued orders
through the same validated pipeline the gateway uses inline. Transport
failures are requeued with a retry budget; venue rejections are not.`,
	Run: bootstrap.StartOrderWorker,
}

func init() {
	rootCmd.AddCommand(orderWorkerCmd)
}
