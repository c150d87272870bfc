package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/krobus00/futures-gateway/internal/binance"
	"github.com/krobus00/futures-gateway/internal/config"
	"github.com/krobus00/futures-gateway/internal/entity"
	gatewayHandler "github.com/krobus00/futures-gateway/internal/handler/gateway/http"
	"github.com/krobus00/futures-gateway/internal/history"
	"github.com/krobus00/futures-gateway/internal/infrastructure"
	"github.com/krobus00/futures-gateway/internal/service/order"
	"github.com/krobus00/futures-gateway/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// StartGateway wires the HTTP front end: one shared venue client, the order
// service, the in-memory history, and the optional redis cache and order
// queue. Everything is passed explicitly; no package-level client.
func StartGateway(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := binance.NewClient(config.Env.Binance)

	cache, err := infrastructure.NewRedisClient(ctx, config.Env.Redis)
	util.ContinueOrFatal(err)
	if cache == nil {
		logrus.Info("redis cache disabled")
	}

	var nc *nats.Conn
	var js nats.JetStreamContext
	if strings.TrimSpace(config.Env.NatsJetstream.URL) != "" {
		nc, js, err = infrastructure.NewJetstream()
		util.ContinueOrFatal(err)
	} else {
		logrus.Info("async order queue disabled")
	}

	orderService := order.NewService(client, js)

	if js != nil {
		publishers := make([]entity.Publisher, 0)
		publishers = append(publishers, orderService)
		for _, v := range publishers {
			err = v.JetstreamEventInit(ctx)
			util.ContinueOrFatal(err)
		}
	}

	historyStore := history.NewStore(config.Env.History.MaxEntries)

	handler := gatewayHandler.NewGatewayHTTPHandler(orderService, client, historyStore, cache, config.Env.Redis.TickerTTL)
	httpMux := http.NewServeMux()
	handler.Register(httpMux)

	httpPort := fmt.Sprintf(":%s", config.Env.Port["gateway_http"])
	httpServer := infrastructure.NewHTTPServerWithConfig(infrastructure.HTTPServerConfig{
		Addr:            httpPort,
		ShutdownTimeout: config.Env.GracefulShutdownTimeout,
	}, httpMux)

	go func() {
		err := httpServer.Start()
		if err != nil {
			logrus.Error(err)
		}
	}()
	logrus.Info(fmt.Sprintf("http server started on %s", httpPort))

	ops := map[string]operation{
		"http": func(ctx context.Context) error {
			cancel()
			return httpServer.Shutdown(ctx)
		},
	}
	if cache != nil {
		ops["redis cache"] = func(ctx context.Context) error {
			return cache.Close()
		}
	}
	if nc != nil {
		ops["nats connection"] = func(ctx context.Context) error {
			return infrastructure.CloseJetstream(nc)
		}
	}

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, ops)

	<-wait
}
