package bootstrap

import (
	"context"

	"github.com/krobus00/futures-gateway/internal/binance"
	"github.com/krobus00/futures-gateway/internal/config"
	"github.com/krobus00/futures-gateway/internal/entity"
	"github.com/krobus00/futures-gateway/internal/infrastructure"
	"github.com/krobus00/futures-gateway/internal/service/order"
	"github.com/krobus00/futures-gateway/internal/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// StartOrderWorker consumes queued order events and drives the same
// place-order pipeline the gateway uses inline.
func StartOrderWorker(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := binance.NewClient(config.Env.Binance)

	nc, js, err := infrastructure.NewJetstream()
	util.ContinueOrFatal(err)

	orderService := order.NewService(client, js)

	subscribers := make([]entity.Subscriber, 0)
	subscribers = append(subscribers, orderService)
	for _, v := range subscribers {
		err = v.JetstreamEventSubscribe(ctx)
		util.ContinueOrFatal(err)
	}

	logrus.Info("order worker started")

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, map[string]operation{
		"nats connection": func(ctx context.Context) error {
			cancel()
			return infrastructure.CloseJetstream(nc)
		},
	})

	<-wait
}
