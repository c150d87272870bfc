package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/krobus00/futures-gateway/internal/binance"
	"github.com/krobus00/futures-gateway/internal/config"
	"github.com/krobus00/futures-gateway/internal/constant"
	"github.com/krobus00/futures-gateway/internal/entity"
	"github.com/krobus00/futures-gateway/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

var (
	ErrPlaceOrderFailed        = errors.New("failed to place order")
	ErrPublishOrderEventFailed = errors.New("failed to publish order event")
	ErrAsyncDisabled           = errors.New("async order queue is not configured")
)

// VenueClient is the slice of the venue API the assembler needs.
type VenueClient interface {
	PlaceOrder(ctx context.Context, order binance.PlaceOrderParams) (*entity.OrderResponse, error)
}

// Service assembles validated orders into wire parameters and drives the
// signed place-order call. It holds no mutable state and is safe for
// concurrent callers.
type Service struct {
	client VenueClient
	js     nats.JetStreamContext
}

func NewService(client VenueClient, js nats.JetStreamContext) *Service {
	return &Service{
		client: client,
		js:     js,
	}
}

// PlaceOrder renders req into wire parameters and submits it. Quantity and
// price travel as exact decimal strings; LIMIT orders get timeInForce=GTC.
// Venue and transport failures propagate unchanged.
func (s *Service) PlaceOrder(ctx context.Context, req entity.OrderRequest) (*entity.OrderResponse, error) {
	params := binance.PlaceOrderParams{
		Symbol:   req.Symbol,
		Side:     req.Side,
		Type:     req.Type,
		Quantity: req.Quantity.String(),
	}

	priceLabel := "MARKET"
	if req.Type == entity.OrderTypeLimit && req.Price != nil {
		params.Price = req.Price.String()
		params.TimeInForce = entity.TimeInForceGTC
		priceLabel = req.Price.String()
	}

	logrus.WithFields(logrus.Fields{
		"symbol":   req.Symbol,
		"side":     req.Side,
		"type":     req.Type,
		"quantity": req.Quantity.String(),
		"price":    priceLabel,
	}).Info("placing order")

	resp, err := s.client.PlaceOrder(ctx, params)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": resp.OrderID,
		"status":   resp.Status,
	}).Info("order placed")

	if payload, err := json.Marshal(resp); err == nil {
		logrus.WithField("response", string(payload)).Debug("full order response")
	}

	return resp, nil
}

// PlaceOrderAsync queues the validated request on the order stream instead
// of placing it inline. The worker picks it up with the same pipeline.
func (s *Service) PlaceOrderAsync(ctx context.Context, req entity.OrderRequest) (string, error) {
	if s.js == nil {
		return "", ErrAsyncDisabled
	}

	event := entity.OrderRequestEvent{
		RetryCount: 0,
		RequestID:  uuid.NewString(),
		Data:       req,
	}

	err := util.PublishEvent(s.js, constant.OrderStreamSubjectPlaceOrder, event)
	if err != nil {
		logrus.Error(err)
		return "", fmt.Errorf("%w: %v", ErrPublishOrderEventFailed, err)
	}

	logrus.WithFields(logrus.Fields{
		"request_id": event.RequestID,
		"symbol":     req.Symbol,
	}).Info("order queued")

	return event.RequestID, nil
}

func (s *Service) JetstreamEventInit(ctx context.Context) error {
	streamConfig := &nats.StreamConfig{
		Name:      constant.OrderStreamName,
		Subjects:  []string{constant.OrderStreamSubjectAll},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
		MaxAge:    24 * time.Hour,
	}

	stream, err := s.js.StreamInfo(constant.OrderStreamName, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrStreamNotFound) {
		logrus.Error(err)
		return err
	}

	if stream == nil {
		logrus.Infof("creating stream: %s", constant.OrderStreamName)
		_, err = s.js.AddStream(streamConfig, nats.Context(ctx))
		return err
	}

	logrus.Infof("updating stream: %s", constant.OrderStreamName)
	_, err = s.js.UpdateStream(streamConfig, nats.Context(ctx))
	if err != nil {
		logrus.Error(err)
		return err
	}

	return nil
}

func (s *Service) JetstreamEventSubscribe(ctx context.Context) error {
	err := s.JetstreamEventInit(ctx)
	if err != nil {
		logrus.Error(err)
		return err
	}

	_, err = s.js.QueueSubscribe(
		constant.OrderStreamSubjectPlaceOrder,
		constant.OrderQueueName,
		func(msg *nats.Msg) {
			err := util.ProcessWithTimeout(config.Env.NatsJetstream.TimeoutHandler["place_order"], msg, s.handlePlaceOrderEvent)
			if err != nil {
				logrus.Errorf("error processing message: %v", err)
				return
			}

			err = msg.Ack()
			if err != nil {
				logrus.Errorf("failed to acknowledge message: %v", err)
				return
			}
		},
		nats.ManualAck(),
		nats.Durable(constant.OrderQueueGroup),
	)
	util.ContinueOrFatal(err)

	return nil
}

func (s *Service) handlePlaceOrderEvent(ctx context.Context, msg *nats.Msg) (err error) {
	logger := logrus.WithFields(logrus.Fields{
		"req": string(msg.Data),
	})

	var event *entity.OrderRequestEvent
	err = json.Unmarshal(msg.Data, &event)
	if err != nil {
		logger.Error(err)
		return err
	}

	defer func() {
		if err == nil {
			return
		}

		// Only transport faults are worth requeueing; a venue rejection
		// will fail again with the same parameters.
		var transportErr *binance.TransportError
		if !errors.As(err, &transportErr) {
			return
		}

		event.RetryCount++
		if event.RetryCount >= config.Env.NatsJetstream.MaxRetries {
			return
		}

		if pubErr := util.PublishEvent(s.js, constant.OrderStreamSubjectPlaceOrder, event); pubErr != nil {
			logger.Error(pubErr)
		}
	}()

	_, err = s.PlaceOrder(ctx, event.Data)
	if err != nil {
		logger.Error(err)
		return err
	}

	return nil
}
