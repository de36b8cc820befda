package observability

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type (
	// Observability is the collection of "observability providers" passed
	// around in the code, ie logger and metrics.
	Observability interface {
		Meter(name string, opts ...metric.MeterOption) metric.Meter
		Logger() *slog.Logger
	}

	nopObservability struct {
		log *slog.Logger
		mp  metric.MeterProvider
	}
)

// WithLogger returns Observability with no-op metrics and the given logger.
func WithLogger(log *slog.Logger) Observability {
	return nopObservability{log: log, mp: noop.NewMeterProvider()}
}

func (o nopObservability) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return o.mp.Meter(name, opts...)
}

func (o nopObservability) Logger() *slog.Logger { return o.log }
