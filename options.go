package towertrack

import (
	"log/slog"

	"github.com/towerkit/towertrack/codec"
	"github.com/towerkit/towertrack/store"
)

type options struct {
	store   store.Store
	fetcher Fetcher
	codec   codec.Codec
	logger  *Logger
	metrics MetricsCollector
}

// Option configures Tracker construction.
type Option func(*options)

// WithStore sets the local persistent cache. If unset, an in-memory store
// is used and nothing survives the session.
func WithStore(s store.Store) Option {
	return func(o *options) {
		if s != nil {
			o.store = s
		}
	}
}

// WithFetcher sets the remote badge data source. Without one, Sync returns
// ErrNoFetcher; the tracker still works from the local cache and snapshots.
func WithFetcher(f Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithCodec configures the codec used for cached records.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
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
	return func(o *options) { o.logger = NewTextLogger(level) }
}

// WithMetricsCollector configures a metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		store:   store.NewMemoryStore(),
		codec:   codec.Default,
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
