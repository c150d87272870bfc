package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/krobus00/futures-gateway/internal/binance"
	"github.com/krobus00/futures-gateway/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check venue connectivity and print the server time",
	Run: func(cmd *cobra.Command, args []string) {
		client := binance.NewClient(config.Env.Binance)

		if err := client.Ping(context.Background()); err != nil {
			logrus.Errorf("ping failed: %v", err)
			os.Exit(1)
		}

		serverTime, err := client.ServerTime(context.Background())
		if err != nil {
			logrus.Errorf("server time failed: %v", err)
			os.Exit(1)
		}

		fmt.Printf("connectivity ok, server time: %s\n", time.UnixMilli(serverTime.ServerTime).UTC().Format(time.RFC3339))
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
