package aegis

import (
	"log/slog"

	"github.com/robertogiachetta/aegis-origin/segment"
)

type options struct {
	logger  *Logger
	metrics MetricsCollector
	initial *segment.Collection
}

// Option configures Pipeline construction behavior.
type Option func(*options)

// WithLogger configures structured logging for the pipeline.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithInitialCollection supplies a pre-existing partition in place of the
// default one-segment-per-cell initialization. If its live segment count is
// below the cell count, ISODATA assignment runs at segment level.
func WithInitialCollection(coll *segment.Collection) Option {
	return func(o *options) {
		o.initial = coll
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
