package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/critiquest/critiquest/internal/config"
	"github.com/critiquest/critiquest/internal/event"
	"github.com/critiquest/critiquest/internal/metrics"
	"github.com/critiquest/critiquest/internal/notify"
)

// EventHandlerDependencies holds the dependencies needed for event handler registration.
type EventHandlerDependencies struct {
	EventBus event.Bus
	Config   *config.Config
}

// RegisterEventHandlers sets up all event subscribers:
// the metrics collector always, and the AMQP reward notifier when AMQP_URL is set.
// The returned closer releases the broker connection; it is never nil.
func RegisterEventHandlers(ctx context.Context, deps EventHandlerDependencies) (io.Closer, error) {
	metricsCollector := metrics.NewEventMetricsCollector()
	if err := metricsCollector.Register(deps.EventBus); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	if deps.Config.AMQPURL == "" {
		slog.Info(LogMsgNotifierDisabled)
		return nopCloser{}, nil
	}

	conn, err := notify.Dial(ctx, deps.Config.AMQPURL, deps.Config.AMQPExchange)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectBroker, err)
	}

	notifier := notify.NewAMQPNotifier(conn, conn.Exchange())
	if err := notifier.Register(deps.EventBus); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedRegisterNotifier, err)
	}
	slog.Info(LogMsgNotifierRegistered, "exchange", conn.Exchange())

	return conn, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
